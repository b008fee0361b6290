// Package tui is the interactive terminal front end. It translates key
// presses into session.Controller calls and renders the controller state.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jonathan/banana-cli/internal/session"
)

// generationDoneMsg carries a finished background generation back to the
// loop.
type generationDoneMsg struct {
	result session.GenerationResult
}

// Model is the bubbletea model wrapping a session controller
type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
}

// NewModel creates a Model for ctrl. ctx bounds background generations.
func NewModel(ctx context.Context, ctrl *session.Controller) *Model {
	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generationDoneMsg:
		m.ctrl.CompleteGeneration(m.ctx, msg.result)
		if m.ctrl.Quitting() {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.ctrl.Quitting() {
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.forceQuit) {
		m.ctrl.Quit()
		return nil
	}

	switch m.ctrl.Mode() {
	case session.ModeMain:
		return m.handleMain(msg)
	case session.ModeInput:
		return m.handleInput(msg)
	case session.ModeJobDetail:
		if key.Matches(msg, m.keys.back) {
			m.ctrl.CloseDetail()
		}
	case session.ModeSettings:
		if m.ctrl.Editing() {
			m.handleSettingsEdit(msg)
		} else {
			m.handleSettings(msg)
		}
	}
	return nil
}

func (m *Model) handleMain(msg tea.KeyMsg) tea.Cmd {
	c := m.ctrl
	switch {
	case key.Matches(msg, m.keys.quit):
		c.Quit()
	case key.Matches(msg, m.keys.up):
		c.MoveSelection(-1)
	case key.Matches(msg, m.keys.down):
		c.MoveSelection(1)
	case key.Matches(msg, m.keys.first):
		c.SelectFirst()
	case key.Matches(msg, m.keys.last):
		c.SelectLast()
	case key.Matches(msg, m.keys.compose):
		c.EnterInput()
	case key.Matches(msg, m.keys.open):
		c.OpenDetail()
	case key.Matches(msg, m.keys.settings):
		c.EnterSettings()
	case key.Matches(msg, m.keys.refresh):
		_ = c.Refresh(m.ctx)
	case key.Matches(msg, m.keys.delete):
		_ = c.DeleteSelected(m.ctx)
	}
	return nil
}

func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	c := m.ctrl
	switch {
	case key.Matches(msg, m.keys.submit):
		req, ok := c.SubmitInput()
		if !ok {
			return nil
		}
		return tea.Batch(m.generate(req), m.spinner.Tick)
	case key.Matches(msg, m.keys.cancel):
		c.CancelInput()
	default:
		m.edit(msg)
	}
	return nil
}

func (m *Model) handleSettings(msg tea.KeyMsg) {
	c := m.ctrl
	switch {
	case key.Matches(msg, m.keys.leave):
		c.ExitSettings()
	case key.Matches(msg, m.keys.up):
		c.MoveSettingsCursor(-1)
	case key.Matches(msg, m.keys.down):
		c.MoveSettingsCursor(1)
	case key.Matches(msg, m.keys.activate):
		_ = c.ActivateField()
	case key.Matches(msg, m.keys.save):
		_ = c.Save()
	}
}

func (m *Model) handleSettingsEdit(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.submit):
		_ = m.ctrl.SubmitEdit()
	case key.Matches(msg, m.keys.cancel):
		m.ctrl.CancelEdit()
	default:
		m.edit(msg)
	}
}

// edit applies a line-editing key to the controller's active buffer
func (m *Model) edit(msg tea.KeyMsg) {
	c := m.ctrl
	switch {
	case key.Matches(msg, m.keys.backspace):
		c.Backspace()
	case key.Matches(msg, m.keys.deleteFwd):
		c.DeleteForward()
	case key.Matches(msg, m.keys.left):
		c.CursorLeft()
	case key.Matches(msg, m.keys.right):
		c.CursorRight()
	case key.Matches(msg, m.keys.home):
		c.CursorHome()
	case key.Matches(msg, m.keys.end):
		c.CursorEnd()
	case msg.Type == tea.KeySpace:
		c.InsertRune(' ')
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			c.InsertRune(r)
		}
	}
}

// generate runs the request off the loop and reports back with a
// generationDoneMsg
func (m *Model) generate(req session.GenerationRequest) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return generationDoneMsg{result: ctrl.RunGeneration(ctx, req)}
	}
}
