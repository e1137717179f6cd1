// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/grapeserver/game"
	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/session"
)

// GameType 本服务器唯一的游戏类型
const GameType = "poison_grape"

// MaxPlayers 每个房间固定两名玩家
const MaxPlayers = 2

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// RoleForSeat 座位到角色的全量映射: 创建者=A，加入者=B，不支持换座
func RoleForSeat(seat int) string {
	if seat == 0 {
		return game.RoleA
	}
	return game.RoleB
}

// Room 一局两人对战。持有自己的对局数据和阶段机，
// 事件通过 eventMutex 串行执行，恢复原版 run-to-completion 语义。
type Room struct {
	ID        string
	CreatedAt time.Time

	players      []*session.Session // 有序，players[0]=A
	gameState    *game.GameState
	stateMachine game.StateMachine
	broadcaster  Broadcaster
	recorder     ResultRecorder

	lastActive  time.Time
	activeMutex sync.RWMutex
	playerMutex sync.RWMutex
	eventMutex  sync.Mutex
}

// NewRoom 创建房间，对局数据与阶段机同时就位（初始 setupA）
func NewRoom(id string, broadcaster Broadcaster, recorder ResultRecorder) *Room {
	now := time.Now()
	room := &Room{
		ID:          id,
		CreatedAt:   now,
		players:     make([]*session.Session, 0, MaxPlayers),
		gameState:   game.NewGameState(),
		broadcaster: broadcaster,
		recorder:    recorder,
		lastActive:  now,
	}
	room.stateMachine = game.NewPhaseMachine(game.NewSetupAState(room))
	return room
}

// --- 实现 game.RoomContext 接口 ---

func (r *Room) GetID() string {
	return r.ID
}

// Game 返回当前对局数据
func (r *Room) Game() *game.GameState {
	return r.gameState
}

// ResetGame 整体替换对局数据（不是逐字段清理）
func (r *Room) ResetGame() *game.GameState {
	r.gameState = game.NewGameState()
	return r.gameState
}

// ChangeState 推进阶段机
func (r *Room) ChangeState(newState game.State) error {
	return r.stateMachine.ChangeState(newState)
}

// Broadcast sends a message to all players in the room.
func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.ID, msgID, data)
}

// RecordResult 终局落库。recorder 为 nil 时跳过。
func (r *Room) RecordResult(winner, loser string) {
	if r.recorder == nil {
		return
	}

	g := r.gameState
	record := &models.GameRecord{
		RoomID:    r.ID,
		GameType:  GameType,
		Winner:    winner,
		Loser:     loser,
		Moves:     len(g.SelectedCells),
		Duration:  int(time.Since(g.StartedAt).Seconds()),
		CreatedAt: time.Now(),
	}
	if g.PoisonA != nil {
		record.PoisonA = *g.PoisonA
	}
	if g.PoisonB != nil {
		record.PoisonB = *g.PoisonB
	}
	if p := r.PlayerByRole(winner); p != nil {
		record.WinnerName = p.GetName()
	}
	if p := r.PlayerByRole(loser); p != nil {
		record.LoserName = p.GetName()
	}

	r.recorder.RecordGame(record)
}

// --- 座位管理 ---

// AddPlayer 按入座顺序分配角色。房间已满返回 ErrRoomFull。
func (r *Room) AddPlayer(s *session.Session, name string) (role string, err error) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if len(r.players) >= MaxPlayers {
		return "", ErrRoomFull
	}

	role = RoleForSeat(len(r.players))
	r.players = append(r.players, s)
	s.BindSeat(r.ID, role, name)
	return role, nil
}

// RemovePlayer 移除某会话的座位，返回是否移除及剩余人数
func (r *Room) RemovePlayer(sessionID string) (removed bool, remaining int) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	for i, p := range r.players {
		if p.GetID() == sessionID {
			p.ClearSeat()
			r.players = append(r.players[:i], r.players[i+1:]...)
			removed = true
			break
		}
	}
	return removed, len(r.players)
}

// PlayerByRole 按角色查找在座玩家
func (r *Room) PlayerByRole(role string) *session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	for _, p := range r.players {
		if p.GetRole() == role {
			return p
		}
	}
	return nil
}

// GetSessions returns a slice of all sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, len(r.players))
	copy(sessions, r.players)
	return sessions
}

// PlayerCount 在座人数
func (r *Room) PlayerCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.players)
}

// PlayerNames 按座位顺序返回昵称 (A, B)
func (r *Room) PlayerNames() (playerA, playerB string) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	if len(r.players) > 0 {
		playerA = r.players[0].GetName()
	}
	if len(r.players) > 1 {
		playerB = r.players[1].GetName()
	}
	return
}

// --- 事件分发（按房间串行） ---

// HandleSetPoison 下毒事件交给当前阶段处理
func (r *Room) HandleSetPoison(player game.Player, cell models.Cell) error {
	r.eventMutex.Lock()
	defer r.eventMutex.Unlock()

	r.touch()
	return r.stateMachine.GetCurrentState().HandleSetPoison(player, cell)
}

// HandleMove 采摘事件交给当前阶段处理
func (r *Room) HandleMove(player game.Player, cell models.Cell) error {
	r.eventMutex.Lock()
	defer r.eventMutex.Unlock()

	r.touch()
	return r.stateMachine.GetCurrentState().HandleMove(player, cell)
}

// HandleReset 重置事件交给当前阶段处理
func (r *Room) HandleReset(player game.Player) error {
	r.eventMutex.Lock()
	defer r.eventMutex.Unlock()

	r.touch()
	return r.stateMachine.GetCurrentState().HandleReset(player)
}

// Phase 当前阶段
func (r *Room) Phase() game.Phase {
	return r.stateMachine.GetCurrentState().GetPhase()
}

func (r *Room) touch() {
	r.activeMutex.Lock()
	defer r.activeMutex.Unlock()
	r.lastActive = time.Now()
}

// IdleSince 最后一次事件距今时长
func (r *Room) IdleSince() time.Duration {
	r.activeMutex.RLock()
	defer r.activeMutex.RUnlock()
	return time.Since(r.lastActive)
}

// --- 房间管理器 ---

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 创建房间并让创建者入座(角色A)。房间号重复返回 ErrRoomExists。
func (m *Manager) CreateRoom(id string, creator *session.Session, name string, broadcaster Broadcaster, recorder ResultRecorder) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.rooms[id]; exists {
		return nil, ErrRoomExists
	}

	room := NewRoom(id, broadcaster, recorder)
	if _, err := room.AddPlayer(creator, name); err != nil {
		return nil, err
	}
	m.rooms[id] = room
	return room, nil
}

// JoinRoom 加入者入座(角色B)。可能返回 ErrRoomNotFound / ErrRoomFull。
func (m *Manager) JoinRoom(id string, joiner *session.Session, name string) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[id]
	if !exists {
		return nil, ErrRoomNotFound
	}

	if _, err := room.AddPlayer(joiner, name); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// RemoveRoom 从管理器中移除一个房间
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, id)
}

// RoomCount 当前房间数
func (m *Manager) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// RemoveSession 断线清理: 全量扫描所有房间移除该会话的座位，
// 清空的房间随即销毁。返回被销毁的房间ID。
func (m *Manager) RemoveSession(sessionID string) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var emptied []string
	for id, room := range m.rooms {
		removed, remaining := room.RemovePlayer(sessionID)
		if removed && remaining == 0 {
			delete(m.rooms, id)
			emptied = append(emptied, id)
		}
	}
	return emptied
}

// SweepIdle 清理长时间无事件的空房间（断线清理的兜底逻辑），返回清理数量。
// 有人在座的房间永远不清理：房间只在玩家列表清空后销毁。
func (m *Manager) SweepIdle(ttl time.Duration) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	swept := 0
	for id, room := range m.rooms {
		if room.PlayerCount() > 0 {
			continue
		}
		if room.IdleSince() > ttl {
			delete(m.rooms, id)
			swept++
			logger.Log.Infof("空房间 %s 长时间无活动，已清理", id)
		}
	}
	return swept
}
