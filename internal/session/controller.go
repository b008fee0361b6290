// Package session holds the state of one interactive run: the job list,
// the selection, the current mode and the text being edited. It drives the
// pipeline from user intent and knows nothing about terminals.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
)

// ListLimit is how many recent jobs the session shows
const ListLimit = 50

// Mode is the top-level interaction mode
type Mode int

// Modes. Main is the initial mode.
const (
	ModeMain Mode = iota
	ModeInput
	ModeJobDetail
	ModeSettings
)

func (m Mode) String() string {
	switch m {
	case ModeMain:
		return "main"
	case ModeInput:
		return "input"
	case ModeJobDetail:
		return "detail"
	case ModeSettings:
		return "settings"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Controller owns the session state. All methods except RunGeneration must
// be called from the event loop goroutine.
type Controller struct {
	store   job.Store
	cfg     *config.Config
	factory RunnerFactory
	logger  zerolog.Logger

	// busy holds one slot while a generation is in flight
	busy       *semaphore.Weighted
	generating bool

	mode     Mode
	jobs     []*job.Job
	selected int
	detail   *job.Job
	input    lineBuffer

	settingsCursor int
	editing        bool
	edit           lineBuffer
	dirty          bool

	status string
	err    string
	quit   bool

	// quitPending defers a quit until the running generation reports back
	quitPending bool
}

// New creates a Controller in Main mode. The store and config are owned by
// the caller; call Refresh to load the job list.
func New(store job.Store, cfg *config.Config, factory RunnerFactory, logger zerolog.Logger) *Controller {
	return &Controller{
		store:   store,
		cfg:     cfg,
		factory: factory,
		logger:  logger,
		busy:    semaphore.NewWeighted(1),
	}
}

// ──────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────

func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) Jobs() []*job.Job { return c.jobs }
func (c *Controller) Selected() int { return c.selected }
func (c *Controller) Detail() *job.Job { return c.detail }
func (c *Controller) Input() string { return c.input.String() }
func (c *Controller) InputCursor() int { return c.input.Cursor() }
func (c *Controller) Status() string { return c.status }
func (c *Controller) Error() string { return c.err }
func (c *Controller) Busy() bool { return c.generating }
func (c *Controller) Quitting() bool { return c.quit }
func (c *Controller) QuitPending() bool { return c.quitPending }
func (c *Controller) Config() *config.Config { return c.cfg }
func (c *Controller) Dirty() bool { return c.dirty }
func (c *Controller) Logger() zerolog.Logger { return c.logger }

// SelectedJob returns the highlighted job, or nil when the list is empty
func (c *Controller) SelectedJob() *job.Job {
	if len(c.jobs) == 0 {
		return nil
	}
	return c.jobs[c.selected]
}

// setMode switches mode and clears the transient messages
func (c *Controller) setMode(m Mode) {
	if c.mode != m {
		c.logger.Debug().Stringer("from", c.mode).Stringer("to", m).Msg("session: mode change")
	}
	c.mode = m
	c.status = ""
	c.err = ""
}

func (c *Controller) setError(err error) {
	c.err = err.Error()
}

// ──────────────────────────────────────────────────
// Job list
// ──────────────────────────────────────────────────

// Refresh reloads the most recent jobs and clamps the selection
func (c *Controller) Refresh(ctx context.Context) error {
	jobs, err := c.store.List(ctx, job.ListOptions{Limit: ListLimit})
	if err != nil {
		c.setError(fmt.Errorf("load jobs: %w", err))
		return err
	}
	c.jobs = jobs
	c.clampSelection()
	return nil
}

func (c *Controller) clampSelection() {
	switch {
	case len(c.jobs) == 0:
		c.selected = 0
	case c.selected >= len(c.jobs):
		c.selected = len(c.jobs) - 1
	case c.selected < 0:
		c.selected = 0
	}
}

// MoveSelection moves the list selection by delta, staying in bounds
func (c *Controller) MoveSelection(delta int) {
	c.selected += delta
	c.clampSelection()
}

// SelectFirst highlights the newest job
func (c *Controller) SelectFirst() { c.selected = 0 }

// SelectLast highlights the oldest loaded job
func (c *Controller) SelectLast() {
	c.selected = len(c.jobs) - 1
	c.clampSelection()
}

// DeleteSelected removes the highlighted job from the store
func (c *Controller) DeleteSelected(ctx context.Context) error {
	j := c.SelectedJob()
	if j == nil {
		return nil
	}
	found, err := c.store.Delete(ctx, j.ID)
	if err != nil {
		c.setError(fmt.Errorf("delete %s: %w", j.ID, err))
		return err
	}
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	if found {
		c.status = "Deleted " + j.ID
	}
	return nil
}

// OpenDetail shows a snapshot of the selected job
func (c *Controller) OpenDetail() {
	j := c.SelectedJob()
	if j == nil {
		return
	}
	c.setMode(ModeJobDetail)
	c.detail = j.Clone()
}

// CloseDetail returns to the list
func (c *Controller) CloseDetail() {
	if c.mode != ModeJobDetail {
		return
	}
	c.detail = nil
	c.setMode(ModeMain)
}

// ──────────────────────────────────────────────────
// Prompt input
// ──────────────────────────────────────────────────

// EnterInput starts composing a prompt
func (c *Controller) EnterInput() {
	c.setMode(ModeInput)
}

// CancelInput abandons the prompt
func (c *Controller) CancelInput() {
	c.input.reset()
	c.setMode(ModeMain)
}

// activeBuffer is the buffer keystrokes apply to in the current mode
func (c *Controller) activeBuffer() *lineBuffer {
	switch {
	case c.mode == ModeInput:
		return &c.input
	case c.mode == ModeSettings && c.editing:
		return &c.edit
	}
	return nil
}

// InsertRune types r at the cursor
func (c *Controller) InsertRune(r rune) {
	if b := c.activeBuffer(); b != nil {
		b.insert(r)
	}
}

// Backspace deletes the rune before the cursor
func (c *Controller) Backspace() {
	if b := c.activeBuffer(); b != nil {
		b.backspace()
	}
}

// DeleteForward deletes the rune under the cursor
func (c *Controller) DeleteForward() {
	if b := c.activeBuffer(); b != nil {
		b.deleteForward()
	}
}

func (c *Controller) CursorLeft() {
	if b := c.activeBuffer(); b != nil {
		b.left()
	}
}

func (c *Controller) CursorRight() {
	if b := c.activeBuffer(); b != nil {
		b.right()
	}
}

func (c *Controller) CursorHome() {
	if b := c.activeBuffer(); b != nil {
		b.home()
	}
}

func (c *Controller) CursorEnd() {
	if b := c.activeBuffer(); b != nil {
		b.end()
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Quit asks the loop to stop. While a generation is running the quit is
// deferred until CompleteGeneration, so the job never stays running in the
// store.
func (c *Controller) Quit() {
	if c.generating {
		c.quitPending = true
		c.status, c.err = "Generation in progress, quitting when it finishes", ""
		return
	}
	c.quit = true
}

// Close saves configuration changes made during the session
func (c *Controller) Close() error {
	if !c.dirty {
		return nil
	}
	return c.Save()
}
