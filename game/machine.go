package game

import (
	"errors"
	"sync"

	"github.com/wfunc/grapeserver/models"
)

// Phase 对局阶段
type Phase string

const (
	PhaseSetupA  Phase = "setupA"
	PhaseSetupB  Phase = "setupB"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// State 是一个阶段的事件处理器。未覆盖的事件由 BaseState
// 静默丢弃（服务端权威，无视过期/非法的客户端意图）。
type State interface {
	OnEnter()
	OnExit()
	GetPhase() Phase
	HandleSetPoison(player Player, cell models.Cell) error
	HandleMove(player Player, cell models.Cell) error
	HandleReset(player Player) error
}

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// 合法迁移: setupA→setupB→playing→ended 严格线性，
// 重置（回到 setupA）在任意阶段都允许。
func legalTransition(from, to Phase) bool {
	if to == PhaseSetupA {
		return true
	}
	switch from {
	case PhaseSetupA:
		return to == PhaseSetupB
	case PhaseSetupB:
		return to == PhasePlaying
	case PhasePlaying:
		return to == PhaseEnded
	}
	return false
}

// StateMachine 阶段机接口
type StateMachine interface {
	ChangeState(newState State) error
	GetCurrentState() State
}

// PhaseMachine 按固定迁移表推进的阶段机
type PhaseMachine struct {
	currentState State
	mutex        sync.RWMutex
}

func NewPhaseMachine(initialState State) *PhaseMachine {
	machine := &PhaseMachine{
		currentState: initialState,
	}
	initialState.OnEnter()
	return machine
}

func (m *PhaseMachine) ChangeState(newState State) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !legalTransition(m.currentState.GetPhase(), newState.GetPhase()) {
		return ErrTransitionNotAllowed
	}

	m.currentState.OnExit()
	m.currentState = newState
	m.currentState.OnEnter()

	return nil
}

func (m *PhaseMachine) GetCurrentState() State {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.currentState
}
