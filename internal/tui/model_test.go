package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/db"
	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/session"
)

// MockRunner is a mock implementation of session.Runner
type MockRunner struct {
	RunFunc func(ctx context.Context, params job.Params, action job.Action) (*job.Job, error)
}

func (m *MockRunner) Run(ctx context.Context, params job.Params, action job.Action) (*job.Job, error) {
	return m.RunFunc(ctx, params, action)
}

func (m *MockRunner) Download(_ context.Context, j *job.Job, _ string) ([]string, error) {
	return j.Paths(), nil
}

func (m *MockRunner) Close() error { return nil }

func newTestModel(t *testing.T, runner session.Runner) (*Model, *db.SQLite) {
	t.Helper()
	dir := t.TempDir()
	store, err := db.OpenSQLite(context.Background(), filepath.Join(dir, db.SQLiteFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	cfg, err := config.LoadConfig(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	factory := func(context.Context, config.Config) (session.Runner, error) { return runner, nil }
	ctrl := session.New(store, cfg, factory, zerolog.Nop())
	require.NoError(t, ctrl.Refresh(context.Background()))
	return NewModel(context.Background(), ctrl), store
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		if r == ' ' {
			send(m, " ")
			continue
		}
		send(m, string(r))
	}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestQuit_FromMain(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.True(t, isQuit(t, send(m, "q")))
	assert.True(t, m.ctrl.Quitting())
}

func TestQuit_CtrlCFromInput(t *testing.T) {
	m, _ := newTestModel(t, nil)
	send(m, "i")
	require.Equal(t, session.ModeInput, m.ctrl.Mode())

	// q is text while composing
	send(m, "q")
	assert.Equal(t, "q", m.ctrl.Input())
	assert.False(t, m.ctrl.Quitting())

	assert.True(t, isQuit(t, send(m, "ctrl+c")))
}

func TestQuit_WaitsForRunningGeneration(t *testing.T) {
	var store *db.SQLite
	runner := &MockRunner{RunFunc: func(ctx context.Context, params job.Params, action job.Action) (*job.Job, error) {
		j, err := job.New(params, action)
		if err != nil {
			return nil, err
		}
		if err := store.Insert(ctx, j); err != nil {
			return nil, err
		}
		_ = j.MarkRunning(0)
		_ = j.AppendImage(0, "aGk=", "image/png")
		_ = j.MarkCompleted()
		return j, store.Update(ctx, j)
	}}
	m, s := newTestModel(t, runner)
	store = s

	send(m, "i")
	typeText(m, "a cosmic banana")
	require.NotNil(t, send(m, "enter"))
	require.True(t, m.ctrl.Busy())

	assert.False(t, isQuit(t, send(m, "q")))
	assert.False(t, isQuit(t, send(m, "ctrl+c")))
	assert.False(t, m.ctrl.Quitting())
	assert.Contains(t, m.View(), "quitting when it finishes")

	done := m.generate(session.GenerationRequest{Params: job.Params{Prompt: "a cosmic banana"}, Config: *m.ctrl.Config()})()
	_, cmd := m.Update(done)
	assert.True(t, isQuit(t, cmd))

	jobs, err := store.List(context.Background(), job.ListOptions{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.StateCompleted, jobs[0].Status.State)
}

func TestInput_TypeEditAndCancel(t *testing.T) {
	m, _ := newTestModel(t, nil)
	send(m, "/")
	typeText(m, "a cosmic banana")
	assert.Equal(t, "a cosmic banana", m.ctrl.Input())

	send(m, "backspace", "left", "X")
	assert.Equal(t, "a cosmic banaXn", m.ctrl.Input())
	assert.Contains(t, m.View(), "Prompt:")

	send(m, "esc")
	assert.Equal(t, session.ModeMain, m.ctrl.Mode())
	assert.Empty(t, m.ctrl.Input())
}

func TestSubmit_RunsGenerationInBackground(t *testing.T) {
	var store *db.SQLite
	runner := &MockRunner{RunFunc: func(ctx context.Context, params job.Params, action job.Action) (*job.Job, error) {
		j, err := job.New(params, action)
		if err != nil {
			return nil, err
		}
		_ = j.MarkRunning(0)
		_ = j.AppendImage(0, "aGk=", "image/png")
		_ = j.MarkCompleted()
		return j, store.Insert(ctx, j)
	}}
	m, s := newTestModel(t, runner)
	store = s

	send(m, "i")
	typeText(m, "a cosmic banana")
	cmd := send(m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.Busy())
	assert.Equal(t, session.ModeMain, m.ctrl.Mode())
	assert.Contains(t, m.View(), "generating")

	// A second submit while busy is refused with feedback
	send(m, "i")
	typeText(m, "another")
	assert.Nil(t, send(m, "enter"))
	assert.Contains(t, m.View(), session.ErrBusy.Error())

	done := m.generate(session.GenerationRequest{Params: job.Params{Prompt: "a cosmic banana"}, Config: *m.ctrl.Config()})()
	_, _ = m.Update(done)
	assert.False(t, m.ctrl.Busy())
	require.Len(t, m.ctrl.Jobs(), 1)
	assert.Contains(t, m.View(), "completed with 1 image(s)")
}

func TestDetail_OpenAndBack(t *testing.T) {
	m, store := newTestModel(t, nil)
	j, err := job.New(job.Params{Prompt: "a cosmic banana"}, job.Generate())
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), j))
	send(m, "r")
	require.Len(t, m.ctrl.Jobs(), 1)

	send(m, "enter")
	require.Equal(t, session.ModeJobDetail, m.ctrl.Mode())
	view := m.View()
	assert.Contains(t, view, j.ID)
	assert.Contains(t, view, "a cosmic banana")

	send(m, "backspace")
	assert.Equal(t, session.ModeMain, m.ctrl.Mode())

	send(m, "enter", "q")
	assert.Equal(t, session.ModeMain, m.ctrl.Mode())
	assert.False(t, m.ctrl.Quitting(), "q in detail goes back")
}

func TestDelete_ClampsSelection(t *testing.T) {
	m, store := newTestModel(t, nil)
	for i := 0; i < 2; i++ {
		j, err := job.New(job.Params{Prompt: "x"}, job.Generate())
		require.NoError(t, err)
		require.NoError(t, store.Insert(context.Background(), j))
	}
	send(m, "r", "G")
	assert.Equal(t, 1, m.ctrl.Selected())

	send(m, "d")
	assert.Len(t, m.ctrl.Jobs(), 1)
	assert.Equal(t, 0, m.ctrl.Selected())
	send(m, "d")
	assert.Empty(t, m.ctrl.Jobs())
	assert.Contains(t, m.View(), "No jobs yet")
}

func TestSettings_CycleEditAndLeave(t *testing.T) {
	m, _ := newTestModel(t, nil)
	send(m, "s")
	require.Equal(t, session.ModeSettings, m.ctrl.Mode())
	assert.Contains(t, m.View(), "Settings")

	// Theme is the last field
	for range session.Fields {
		send(m, "j")
	}
	send(m, " ")
	assert.Equal(t, config.ThemeLight, m.ctrl.Config().TUI.Theme)
	assert.Contains(t, m.View(), "(unsaved)")

	send(m, "k", "k", "k", "k") // Output directory
	send(m, "enter")
	require.True(t, m.ctrl.Editing())
	send(m, "q")
	assert.Equal(t, session.ModeSettings, m.ctrl.Mode(), "q is text while editing")
	send(m, "esc")
	assert.False(t, m.ctrl.Editing())

	send(m, "w")
	assert.False(t, m.ctrl.Dirty())

	send(m, "esc")
	assert.Equal(t, session.ModeMain, m.ctrl.Mode())
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		selected, total, rows int
		from, to              int
	}{
		{0, 5, 0, 0, 5},
		{0, 5, 10, 0, 5},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
	}
	for _, tt := range tests {
		from, to := visibleRange(tt.selected, tt.total, tt.rows)
		assert.Equal(t, tt.from, from)
		assert.Equal(t, tt.to, to)
	}
}

func TestRenderLine(t *testing.T) {
	plain := newStyles(config.ThemeDark).cursor.UnsetReverse()
	assert.Equal(t, "ab ", renderLine("ab", 2, plain))
	assert.Equal(t, "äb", renderLine("äb", 0, plain))
}
