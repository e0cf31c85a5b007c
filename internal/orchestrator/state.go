package orchestrator

import "github.com/pkg/errors"

// State is the orchestrator's position in the tip lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateApproving  State = "approving"
	StateSwapping   State = "swapping"
	StateRouting    State = "routing"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Message returns the user-facing status line for a state. The exact
// wording is a contract surface; UI and log consumers match on it.
func (s State) Message() string {
	switch s {
	case StateIdle:
		return ""
	case StateConnecting:
		return "Connecting wallet..."
	case StateConnected:
		return "Wallet connected"
	case StateApproving:
		return "Approving transaction..."
	case StateSwapping:
		return "Processing payment..."
	case StateRouting:
		return "Routing to shielded address..."
	case StateConfirming:
		return "Confirming transaction..."
	case StateCompleted:
		return "Tip sent successfully!"
	case StateFailed:
		return "Transaction failed"
	}
	return ""
}

// transitions is the explicit edge table of the lifecycle. A new attempt
// starts only from Idle, Connected, or Completed; Failed leads nowhere but
// back to Idle through an explicit reset.
var transitions = map[State][]State{
	StateIdle:       {StateConnecting, StateApproving, StateFailed},
	StateConnecting: {StateConnected, StateFailed},
	StateConnected:  {StateConnecting, StateApproving, StateIdle, StateFailed},
	StateApproving:  {StateSwapping, StateFailed},
	StateSwapping:   {StateRouting, StateFailed},
	StateRouting:    {StateConfirming, StateFailed},
	StateConfirming: {StateCompleted, StateFailed},
	StateCompleted:  {StateIdle, StateConnecting, StateApproving, StateFailed},
	StateFailed:     {StateIdle},
}

// StateMachine tracks the lifecycle position of one session. It is not
// safe for concurrent use on its own; the orchestrator serializes access.
type StateMachine struct {
	current State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle}
}

func (m *StateMachine) Current() State {
	return m.current
}

func (m *StateMachine) TransitionTo(next State) error {
	if next == m.current {
		return nil
	}
	for _, allowed := range transitions[m.current] {
		if allowed == next {
			m.current = next
			return nil
		}
	}

	return errors.Errorf("illegal transition %s -> %s", m.current, next)
}

// CanStartAttempt reports whether a new tip attempt may begin from the
// current state.
func (m *StateMachine) CanStartAttempt() bool {
	switch m.current {
	case StateIdle, StateConnected, StateCompleted:
		return true
	}
	return false
}
