package job

import "fmt"

// State is the coarse lifecycle position of a job
type State string

// Job states
const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// States lists every state in lifecycle order
var States = []State{StateQueued, StateRunning, StateCompleted, StateFailed, StateCancelled}

// ParseState converts a user-supplied status filter into a State
func ParseState(s string) (State, error) {
	for _, st := range States {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (expected one of queued, running, completed, failed, cancelled)", s)
}

// Status is the job status: a state plus the payload that state carries.
type Status struct {
	State    State  `json:"state"`
	Progress int    `json:"progress,omitempty"` // running only
	Error    string `json:"error,omitempty"`    // failed only
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	switch s.State {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s.State {
	case StateRunning:
		return fmt.Sprintf("running (%d%%)", s.Progress)
	case StateFailed:
		return "failed: " + s.Error
	default:
		return string(s.State)
	}
}
