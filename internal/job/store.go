package job

import "context"

// DefaultListLimit is used when ListOptions.Limit is not positive
const DefaultListLimit = 20

// ListOptions filters a List call.
type ListOptions struct {
	Limit int
	State State // empty means any state
}

// Store is durable keyed storage for jobs. Implementations must be safe
// for one writer concurrent with any number of readers.
type Store interface {
	// Insert persists a new job
	Insert(ctx context.Context, j *Job) error
	// Update overwrites the stored copy of an existing job; unknown ids are ignored
	Update(ctx context.Context, j *Job) error
	// Get returns the job or nil when it does not exist
	Get(ctx context.Context, id string) (*Job, error)
	// List returns jobs newest first
	List(ctx context.Context, opts ListOptions) ([]*Job, error)
	// Delete removes a job and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)
	// Count returns the number of stored jobs
	Count(ctx context.Context) (int, error)
	// Close releases the store
	Close() error
}
