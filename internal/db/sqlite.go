package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jonathan/banana-cli/internal/job"
)

// SQLiteFile is the default database file inside the data directory
const SQLiteFile = "jobs.db"

// busyTimeout bounds how long a writer waits for another process's lock
const busyTimeout = 5 * time.Second

var _ job.Store = (*SQLite)(nil)

// SQLite is the local job store. Every call goes to the database file, so
// several processes sharing a data directory see each other's writes.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating when missing) the database at path and
// ensures its schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_txlock", "immediate")
	conn, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open job database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLite{db: conn, path: path}
	if _, err := conn.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to prepare job database %s: %w", path, err)
	}
	return s, nil
}

// Path returns the database file
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Timestamps are stored as unix nanoseconds so ORDER BY is numeric.
const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS image_jobs (
	id            TEXT PRIMARY KEY,
	action        TEXT NOT NULL,
	params        TEXT NOT NULL,
	status        TEXT NOT NULL,
	progress      INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	images        TEXT NOT NULL DEFAULT '[]',
	model         TEXT NOT NULL,
	parent_id     TEXT,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS image_jobs_created_at_idx ON image_jobs (created_at DESC);
CREATE INDEX IF NOT EXISTS image_jobs_status_idx ON image_jobs (status);
`

// Insert stores a new job; a duplicate id violates the primary key
func (s *SQLite) Insert(ctx context.Context, j *job.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO image_jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, string(row.Action), string(row.Params), row.Status, row.Progress, row.ErrorMessage,
		string(row.Images), row.Model, row.ParentID, row.CreatedAt.UnixNano(), row.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing job. Unknown ids
// affect no rows and are not an error.
func (s *SQLite) Update(ctx context.Context, j *job.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE image_jobs
		 SET status = ?, progress = ?, error_message = ?, images = ?, updated_at = ?
		 WHERE id = ?`,
		row.Status, row.Progress, row.ErrorMessage, string(row.Images), row.UpdatedAt.UnixNano(), row.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID; returns nil when it does not exist
func (s *SQLite) Get(ctx context.Context, id string) (*job.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM image_jobs WHERE id = ?`, id)

	j, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// List returns jobs newest first, optionally filtered by state
func (s *SQLite) List(ctx context.Context, opts job.ListOptions) ([]*job.Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = job.DefaultListLimit
	}

	query := `SELECT ` + jobColumns + ` FROM image_jobs`
	args := []any{}
	if opts.State != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.State))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*job.Job
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
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
func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM image_jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return n > 0, nil
}

// Count returns the total number of jobs
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM image_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

func scanSQLiteJob(row rowScanner) (*job.Job, error) {
	var (
		r                        jobRow
		action, params, images   string
		createdNano, updatedNano int64
	)
	if err := row.Scan(&r.ID, &action, &params, &r.Status, &r.Progress, &r.ErrorMessage,
		&images, &r.Model, &r.ParentID, &createdNano, &updatedNano); err != nil {
		return nil, err
	}
	r.Action = []byte(action)
	r.Params = []byte(params)
	r.Images = []byte(images)
	r.CreatedAt = time.Unix(0, createdNano)
	r.UpdatedAt = time.Unix(0, updatedNano)
	return r.toJob()
}
