// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/grapeserver/network"
)

// Session 一条客户端连接。入座后记录其 (RoomID, Role) 绑定，
// 连接断开即失去座位，不支持重连恢复。
type Session struct {
	ID         string
	Conn       network.Connection
	Name       string
	RoomID     string
	Role       string // "A" 或 "B"，未入座为空
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// BindSeat 记录会话在某房间的座位
func (s *Session) BindSeat(roomID, role, name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = roomID
	s.Role = role
	s.Name = name
}

// Seat 返回当前绑定的 (房间, 角色)
func (s *Session) Seat() (roomID, role string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomID, s.Role
}

// ClearSeat 解除座位绑定
func (s *Session) ClearSeat() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = ""
	s.Role = ""
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

// GetRole 实现 game.Player 接口
func (s *Session) GetRole() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Role
}

func (s *Session) GetName() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.Name
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// Count 当前在线连接数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByRoom 返回绑定在某房间的所有会话
func (m *Manager) GetByRoom(roomID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if id, _ := session.Seat(); id == roomID {
			result = append(result, session)
		}
	}
	return result
}
