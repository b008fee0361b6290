// Package job defines the image-generation job entity, its status state
// machine and the storage contract used to persist it.
package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// idPrefix is prepended to every generated job id
const idPrefix = "bn_"

// Job is one tracked request/response cycle with the generation service.
type Job struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Params    Params    `json:"params"`
	Status    Status    `json:"status"`
	Images    []Image   `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ParentID  string    `json:"parent_id,omitempty"` // reserved for lineage, never set today
}

// Image is one produced artifact. Before the download phase only Data is
// set; afterwards only Path is.
type Image struct {
	Index    int    `json:"index"`
	Data     string `json:"data,omitempty"` // base64 inline payload
	Path     string `json:"path,omitempty"`
	MIMEType string `json:"mime_type"`
}

// Downloaded reports whether the image has been written to disk
func (i Image) Downloaded() bool {
	return i.Path != ""
}

// NewID returns a short job identifier such as "bn_1a2b3c4d"
func NewID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// New creates a queued job for the given parameters and action.
func New(params Params, action Action) (*Job, error) {
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	params = params.withDefaults()

	now := time.Now().UTC()
	return &Job{
		ID:        NewID(),
		Action:    action,
		Params:    params,
		Status:    Status{State: StateQueued},
		Images:    []Image{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkRunning moves the job to running with the given progress (0-100).
// It may be called again while running to update progress.
func (j *Job) MarkRunning(progress int) error {
	if j.Status.State != StateQueued && j.Status.State != StateRunning {
		return &TransitionError{JobID: j.ID, From: j.Status.State, To: StateRunning}
	}
	j.Status = Status{State: StateRunning, Progress: clampProgress(progress)}
	j.touch()
	return nil
}

// MarkCompleted finishes a running job successfully.
func (j *Job) MarkCompleted() error {
	if j.Status.State != StateRunning {
		return &TransitionError{JobID: j.ID, From: j.Status.State, To: StateCompleted}
	}
	j.Status = Status{State: StateCompleted}
	j.touch()
	return nil
}

// MarkFailed terminates the job with a human-readable message. Images
// collected so far are kept.
func (j *Job) MarkFailed(message string) error {
	if j.Status.IsTerminal() {
		return &TransitionError{JobID: j.ID, From: j.Status.State, To: StateFailed}
	}
	j.Status = Status{State: StateFailed, Error: message}
	j.touch()
	return nil
}

// MarkCancelled abandons a job that has not reached a terminal state.
func (j *Job) MarkCancelled() error {
	if j.Status.IsTerminal() {
		return &TransitionError{JobID: j.ID, From: j.Status.State, To: StateCancelled}
	}
	j.Status = Status{State: StateCancelled}
	j.touch()
	return nil
}

// AppendImage records an inline image produced by the service.
func (j *Job) AppendImage(index int, data, mimeType string) error {
	if j.Status.IsTerminal() {
		return &TransitionError{JobID: j.ID, From: j.Status.State, To: j.Status.State}
	}
	j.Images = append(j.Images, Image{Index: index, Data: data, MIMEType: mimeType})
	j.touch()
	return nil
}

// SetImagePath records where image i was written and drops its inline
// payload. Status is not consulted: downloads may follow completion.
func (j *Job) SetImagePath(i int, path string) {
	j.Images[i].Path = path
	j.Images[i].Data = ""
	j.touch()
}

// Preview returns the prompt truncated to at most maxLen characters,
// ending in "..." when cut.
func (j *Job) Preview(maxLen int) string {
	return truncate(j.Params.Prompt, maxLen)
}

// Paths returns the persisted image locations in index order
func (j *Job) Paths() []string {
	var paths []string
	for _, img := range j.Images {
		if img.Path != "" {
			paths = append(paths, img.Path)
		}
	}
	return paths
}

// Clone returns a deep copy that shares no mutable state with j.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Images = make([]Image, len(j.Images))
	copy(cp.Images, j.Images)
	if j.Params.Seed != nil {
		seed := *j.Params.Seed
		cp.Params.Seed = &seed
	}
	if j.Params.Reference != nil {
		ref := *j.Params.Reference
		cp.Params.Reference = &ref
	}
	return &cp
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now().UTC()
}

func clampProgress(p int) int {
	return max(0, min(p, 100))
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
