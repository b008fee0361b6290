package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/banana-cli/internal/job"
)

// Insert stores a new job
func (db *DB) Insert(ctx context.Context, j *job.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO image_jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		row.ID, row.Action, row.Params, row.Status, row.Progress, row.ErrorMessage,
		row.Images, row.Model, row.ParentID, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing job. Unknown ids
// affect no rows and are not an error.
func (db *DB) Update(ctx context.Context, j *job.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE image_jobs
		 SET status = $2, progress = $3, error_message = $4, images = $5, updated_at = $6
		 WHERE id = $1`,
		row.ID, row.Status, row.Progress, row.ErrorMessage, row.Images, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID; returns nil when it does not exist
func (db *DB) Get(ctx context.Context, id string) (*job.Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM image_jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// List returns jobs newest first, optionally filtered by state
func (db *DB) List(ctx context.Context, opts job.ListOptions) ([]*job.Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = job.DefaultListLimit
	}

	query := `SELECT ` + jobColumns + ` FROM image_jobs WHERE 1=1`
	args := []any{}
	argNum := 1

	if opts.State != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(opts.State))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argNum)
	args = append(args, opts.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a job and reports whether a row was deleted
func (db *DB) Delete(ctx context.Context, id string) (bool, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM image_jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Count returns the total number of jobs
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM image_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

func scanJob(row rowScanner) (*job.Job, error) {
	var r jobRow
	if err := row.Scan(&r.ID, &r.Action, &r.Params, &r.Status, &r.Progress, &r.ErrorMessage,
		&r.Images, &r.Model, &r.ParentID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r.toJob()
}
