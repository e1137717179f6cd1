// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/grapeserver/room"

	"github.com/wfunc/grapeserver/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// 基于房间的广播器：状态广播只发给房间内的会话，其他房间不可见
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	room, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	sessions := room.GetSessions()

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			// 发送失败的连接留给读循环的断线清理处理
			continue
		}
	}

	return nil
}

// SendToSession 单播，用于 room-created / join-success / join-failed 应答
func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
