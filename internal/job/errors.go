package job

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt is returned when a job is created without a prompt
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// TransitionError reports a status change the state machine forbids.
type TransitionError struct {
	JobID string
	From  State
	To    State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("job %s: cannot move from %s to %s", e.JobID, e.From, e.To)
}
