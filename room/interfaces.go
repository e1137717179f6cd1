package room

import (
	"github.com/wfunc/grapeserver/models"
)

// Broadcaster defines the interface for broadcasting messages to a room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// ResultRecorder 终局落库接口，由 services.RecordService 实现。
// 传 nil 表示不落库。
type ResultRecorder interface {
	RecordGame(record *models.GameRecord)
}
