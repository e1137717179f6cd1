package game

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/network"
)

const (
	statusYourTurn  = "你的回合"
	statusWaiting   = "等待"
	statusDone      = "已完成"
	statusPoisoning = "设置毒葡萄"

	msgSetupA = "玩家A：请秘密选择一个有毒的葡萄"
	msgSetupB = "玩家B：请秘密选择一个有毒的葡萄"
	msgStart  = "游戏开始！玩家A先采摘"
)

// BaseState 各阶段的公共实现。默认把一切事件当作
// 过期客户端意图静默丢弃；重置在任意阶段都可用。
type BaseState struct {
	Phase Phase
	Room  RoomContext
}

func (s *BaseState) GetPhase() Phase {
	return s.Phase
}

func (s *BaseState) OnEnter() {
	// 默认实现
}

func (s *BaseState) OnExit() {
	// 默认实现
}

func (s *BaseState) HandleSetPoison(player Player, cell models.Cell) error {
	return nil
}

func (s *BaseState) HandleMove(player Player, cell models.Cell) error {
	return nil
}

// HandleReset 整体替换对局数据并回到 setupA
func (s *BaseState) HandleReset(player Player) error {
	s.Room.ResetGame()
	if err := s.Room.ChangeState(NewSetupAState(s.Room)); err != nil {
		return err
	}

	data, _ := json.Marshal(models.GameResetMsg{Message: msgSetupA})
	return s.Room.Broadcast(network.MsgTypeGameReset, data)
}

func (s *BaseState) broadcastState(msg models.GameStateMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Errorf("Error marshalling game state for room %s: %v", s.Room.GetID(), err)
		return err
	}
	return s.Room.Broadcast(network.MsgTypeGameState, data)
}

// --- setupA: 玩家A秘密下毒 ---

type SetupAState struct {
	BaseState
}

func NewSetupAState(room RoomContext) *SetupAState {
	return &SetupAState{
		BaseState: BaseState{
			Phase: PhaseSetupA,
			Room:  room,
		},
	}
}

func (s *SetupAState) OnEnter() {
	logger.Log.Infof("房间 %s 进入下毒阶段(A)", s.Room.GetID())
}

func (s *SetupAState) HandleSetPoison(player Player, cell models.Cell) error {
	if player.GetRole() != RoleA || !InBounds(cell) {
		return nil
	}

	g := s.Room.Game()
	g.PoisonA = &models.Cell{Row: cell.Row, Col: cell.Col}

	if err := s.Room.ChangeState(NewSetupBState(s.Room)); err != nil {
		return err
	}

	return s.broadcastState(models.GameStateMsg{
		CurrentPlayer: RoleB,
		GamePhase:     string(PhaseSetupB),
		SelectedCells: g.PublicCells(),
		Message:       msgSetupB,
		PlayerAStatus: statusDone,
		PlayerBStatus: statusPoisoning,
	})
}

// --- setupB: 玩家B秘密下毒 ---

type SetupBState struct {
	BaseState
}

func NewSetupBState(room RoomContext) *SetupBState {
	return &SetupBState{
		BaseState: BaseState{
			Phase: PhaseSetupB,
			Room:  room,
		},
	}
}

func (s *SetupBState) HandleSetPoison(player Player, cell models.Cell) error {
	if player.GetRole() != RoleB || !InBounds(cell) {
		return nil
	}

	g := s.Room.Game()
	g.PoisonB = &models.Cell{Row: cell.Row, Col: cell.Col}
	g.CurrentPlayer = RoleA

	if err := s.Room.ChangeState(NewPlayingState(s.Room)); err != nil {
		return err
	}

	return s.broadcastState(models.GameStateMsg{
		CurrentPlayer: RoleA,
		GamePhase:     string(PhasePlaying),
		SelectedCells: g.PublicCells(),
		Message:       msgStart,
		PlayerAStatus: statusYourTurn,
		PlayerBStatus: statusWaiting,
	})
}

// --- playing: 轮流采摘 ---

type PlayingState struct {
	BaseState
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		BaseState: BaseState{
			Phase: PhasePlaying,
			Room:  room,
		},
	}
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infof("房间 %s 进入采摘阶段", s.Room.GetID())
}

func (s *PlayingState) HandleMove(player Player, cell models.Cell) error {
	g := s.Room.Game()

	// 非当前玩家、越界或重复采摘一律丢弃
	if player.GetRole() != g.CurrentPlayer {
		return nil
	}
	if !InBounds(cell) || g.Selected(cell) {
		return nil
	}

	g.Select(cell)

	if g.IsPoison(cell) {
		return s.endGame(player.GetRole())
	}

	g.CurrentPlayer = OtherRole(g.CurrentPlayer)

	return s.broadcastState(models.GameStateMsg{
		CurrentPlayer: g.CurrentPlayer,
		GamePhase:     string(PhasePlaying),
		SelectedCells: g.PublicCells(),
		Message:       fmt.Sprintf("玩家%s：请采摘葡萄", g.CurrentPlayer),
		PlayerAStatus: statusFor(RoleA, g.CurrentPlayer),
		PlayerBStatus: statusFor(RoleB, g.CurrentPlayer),
	})
}

// endGame 踩中毒葡萄，终局并首次揭示双方毒葡萄坐标
func (s *PlayingState) endGame(loser string) error {
	g := s.Room.Game()
	winner := OtherRole(loser)

	if err := s.Room.ChangeState(NewEndedState(s.Room)); err != nil {
		return err
	}

	s.Room.RecordResult(winner, loser)

	data, _ := json.Marshal(models.GameEndedMsg{
		Winner:  winner,
		Loser:   loser,
		PoisonA: g.PoisonA,
		PoisonB: g.PoisonB,
	})
	return s.Room.Broadcast(network.MsgTypeGameEnded, data)
}

func statusFor(role, currentPlayer string) string {
	if role == currentPlayer {
		return statusYourTurn
	}
	return statusWaiting
}

// --- ended: 等待重置 ---

type EndedState struct {
	BaseState
}

func NewEndedState(room RoomContext) *EndedState {
	return &EndedState{
		BaseState: BaseState{
			Phase: PhaseEnded,
			Room:  room,
		},
	}
}

func (s *EndedState) OnEnter() {
	logger.Log.Infof("房间 %s 对局结束", s.Room.GetID())
}
