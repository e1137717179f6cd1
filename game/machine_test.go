package game

import (
	"testing"

	"github.com/wfunc/grapeserver/models"
)

// mockState is a test double for the State interface.
type mockState struct {
	phase          Phase
	onEnterCalled  bool
	onExitCalled   bool
}

func (m *mockState) OnEnter()        { m.onEnterCalled = true }
func (m *mockState) OnExit()         { m.onExitCalled = true }
func (m *mockState) GetPhase() Phase { return m.phase }

func (m *mockState) HandleSetPoison(player Player, cell models.Cell) error { return nil }
func (m *mockState) HandleMove(player Player, cell models.Cell) error      { return nil }
func (m *mockState) HandleReset(player Player) error                       { return nil }

func TestPhaseMachine_InitialState(t *testing.T) {
	initial := &mockState{phase: PhaseSetupA}
	m := NewPhaseMachine(initial)

	if !initial.onEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}
	if m.GetCurrentState() != initial {
		t.Error("GetCurrentState should return the initial state")
	}
}

func TestPhaseMachine_LinearProgression(t *testing.T) {
	setupA := &mockState{phase: PhaseSetupA}
	setupB := &mockState{phase: PhaseSetupB}
	playing := &mockState{phase: PhasePlaying}
	ended := &mockState{phase: PhaseEnded}

	m := NewPhaseMachine(setupA)

	for _, next := range []*mockState{setupB, playing, ended} {
		if err := m.ChangeState(next); err != nil {
			t.Fatalf("Expected transition to %s to be allowed, got: %v", next.phase, err)
		}
		if m.GetCurrentState().GetPhase() != next.phase {
			t.Fatalf("Expected current phase %s, got %s", next.phase, m.GetCurrentState().GetPhase())
		}
	}

	if !setupA.onExitCalled || !setupB.onEnterCalled {
		t.Error("Expected OnExit/OnEnter to fire across the transition")
	}
}

func TestPhaseMachine_IllegalTransitions(t *testing.T) {
	cases := []struct {
		from Phase
		to   Phase
	}{
		{PhaseSetupA, PhasePlaying},
		{PhaseSetupA, PhaseEnded},
		{PhaseSetupB, PhaseEnded},
		{PhaseSetupB, PhaseSetupB},
		{PhasePlaying, PhaseSetupB},
		{PhaseEnded, PhaseSetupB},
		{PhaseEnded, PhasePlaying},
		{PhaseEnded, PhaseEnded},
	}

	for _, c := range cases {
		m := NewPhaseMachine(&mockState{phase: c.from})
		next := &mockState{phase: c.to}

		if err := m.ChangeState(next); err != ErrTransitionNotAllowed {
			t.Errorf("Transition %s -> %s: expected ErrTransitionNotAllowed, got: %v", c.from, c.to, err)
		}
		if m.GetCurrentState().GetPhase() != c.from {
			t.Errorf("Transition %s -> %s: phase should not change on a blocked transition", c.from, c.to)
		}
		if next.onEnterCalled {
			t.Errorf("Transition %s -> %s: OnEnter should not fire on a blocked transition", c.from, c.to)
		}
	}
}

func TestPhaseMachine_ResetAllowedFromAnyPhase(t *testing.T) {
	for _, from := range []Phase{PhaseSetupA, PhaseSetupB, PhasePlaying, PhaseEnded} {
		m := NewPhaseMachine(&mockState{phase: from})

		if err := m.ChangeState(&mockState{phase: PhaseSetupA}); err != nil {
			t.Errorf("Reset from %s: expected transition to setupA to be allowed, got: %v", from, err)
		}
	}
}
