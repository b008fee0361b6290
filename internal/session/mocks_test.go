package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/db"
	"github.com/jonathan/banana-cli/internal/job"
)

// MockRunner is a mock implementation of Runner
type MockRunner struct {
	RunFunc      func(ctx context.Context, params job.Params, action job.Action) (*job.Job, error)
	DownloadFunc func(ctx context.Context, j *job.Job, outputDir string) ([]string, error)
	Closed       bool
}

func (m *MockRunner) Run(ctx context.Context, params job.Params, action job.Action) (*job.Job, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, params, action)
	}
	return nil, nil
}

func (m *MockRunner) Download(ctx context.Context, j *job.Job, outputDir string) ([]string, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, j, outputDir)
	}
	return nil, nil
}

func (m *MockRunner) Close() error {
	m.Closed = true
	return nil
}

// failingStore wraps a store and overrides selected methods
type failingStore struct {
	job.Store
	ListFunc   func(ctx context.Context, opts job.ListOptions) ([]*job.Job, error)
	DeleteFunc func(ctx context.Context, id string) (bool, error)
}

func (s *failingStore) List(ctx context.Context, opts job.ListOptions) ([]*job.Job, error) {
	if s.ListFunc != nil {
		return s.ListFunc(ctx, opts)
	}
	return s.Store.List(ctx, opts)
}

func (s *failingStore) Delete(ctx context.Context, id string) (bool, error) {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, id)
	}
	return s.Store.Delete(ctx, id)
}

func staticFactory(r Runner) RunnerFactory {
	return func(context.Context, config.Config) (Runner, error) { return r, nil }
}

type fixture struct {
	store *db.SQLite
	cfg   *config.Config
	ctrl  *Controller
}

func newFixture(t *testing.T, factory RunnerFactory) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := db.OpenSQLite(context.Background(), filepath.Join(dir, db.SQLiteFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	cfg, err := config.LoadConfig(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	require.NoError(t, cfg.Set(config.KeyOutputDirectory, filepath.Join(dir, "out")))
	return &fixture{store: store, cfg: cfg, ctrl: New(store, cfg, factory, zerolog.Nop())}
}

// seed inserts n queued jobs, newest last
func (f *fixture) seed(t *testing.T, n int) []*job.Job {
	t.Helper()
	out := make([]*job.Job, n)
	for i := range out {
		j, err := job.New(job.Params{Prompt: "prompt"}, job.Generate())
		require.NoError(t, err)
		require.NoError(t, f.store.Insert(context.Background(), j))
		out[i] = j
	}
	require.NoError(t, f.ctrl.Refresh(context.Background()))
	return out
}

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.InsertRune(r)
	}
}
