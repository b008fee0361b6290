package pipeline

import "fmt"

// FailureKind classifies why a generation ended in the failed state
type FailureKind string

// Failure kinds
const (
	FailureTransport FailureKind = "transport"
	FailureRefusal   FailureKind = "refusal"
	FailureEmpty     FailureKind = "empty"
)

// Messages recorded on failed jobs
const (
	DefaultRefusalMessage = "generation refused"
	NoImagesMessage       = "no images produced"
)

// GenerationError is returned when the service call did not produce a
// usable result. The job has already been marked failed and persisted.
type GenerationError struct {
	JobID   string
	Kind    FailureKind
	Reason  string // provider finish reason, refusals only
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("job %s failed (%s): %s", e.JobID, e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// StoreError wraps a job store failure.
type StoreError struct {
	Op    string
	JobID string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s job %s: %v", e.Op, e.JobID, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// DownloadError reports a single image that could not be written. It does
// not affect the job status.
type DownloadError struct {
	JobID string
	Index int
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download image %d of job %s: %v", e.Index, e.JobID, e.Cause)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}
