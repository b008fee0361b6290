package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/banana-cli/internal/job"
)

// jobColumns is the column list shared by every SELECT
const jobColumns = `id, action, params, status, progress, error_message, images, model, parent_id, created_at, updated_at`

// rowScanner is satisfied by pgx rows and database/sql rows
type rowScanner interface {
	Scan(dest ...any) error
}

// jobRow is the flattened database form of a job. JSON columns hold the
// nested values.
type jobRow struct {
	ID           string
	Action       []byte
	Params       []byte
	Status       string
	Progress     int
	ErrorMessage string
	Images       []byte
	Model        string
	ParentID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// toRow flattens a job for storage
func toRow(j *job.Job) (*jobRow, error) {
	action, err := json.Marshal(j.Action)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action: %w", err)
	}
	params, err := json.Marshal(j.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	images := j.Images
	if images == nil {
		images = []job.Image{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}

	var parent *string
	if j.ParentID != "" {
		parent = &j.ParentID
	}

	return &jobRow{
		ID:           j.ID,
		Action:       action,
		Params:       params,
		Status:       string(j.Status.State),
		Progress:     j.Status.Progress,
		ErrorMessage: j.Status.Error,
		Images:       imagesJSON,
		Model:        j.Params.Model,
		ParentID:     parent,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}, nil
}

// toJob rebuilds a job from its row
func (r *jobRow) toJob() (*job.Job, error) {
	j := &job.Job{
		ID: r.ID,
		Status: job.Status{
			State:    job.State(r.Status),
			Progress: r.Progress,
			Error:    r.ErrorMessage,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(r.Action, &j.Action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action of job %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.Params, &j.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params of job %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(r.Images, &j.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images of job %s: %w", r.ID, err)
	}
	if j.Images == nil {
		j.Images = []job.Image{}
	}
	if r.ParentID != nil {
		j.ParentID = *r.ParentID
	}
	return j, nil
}
