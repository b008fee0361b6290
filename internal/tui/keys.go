package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	forceQuit key.Binding
	quit      key.Binding
	up        key.Binding
	down      key.Binding
	first     key.Binding
	last      key.Binding
	compose   key.Binding
	open      key.Binding
	settings  key.Binding
	refresh   key.Binding
	delete    key.Binding

	submit    key.Binding
	cancel    key.Binding
	back      key.Binding
	backspace key.Binding
	deleteFwd key.Binding
	left      key.Binding
	right     key.Binding
	home      key.Binding
	end       key.Binding

	activate key.Binding
	save     key.Binding
	leave    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		first: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),
		compose: key.NewBinding(
			key.WithKeys("i", "/"),
			key.WithHelp("i", "new prompt"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		back: key.NewBinding(
			key.WithKeys("esc", "backspace", "q"),
			key.WithHelp("esc", "back"),
		),
		backspace: key.NewBinding(key.WithKeys("backspace")),
		deleteFwd: key.NewBinding(key.WithKeys("delete")),
		left:      key.NewBinding(key.WithKeys("left")),
		right:     key.NewBinding(key.WithKeys("right")),
		home:      key.NewBinding(key.WithKeys("home", "ctrl+a")),
		end:       key.NewBinding(key.WithKeys("end", "ctrl+e")),
		activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "change"),
		),
		save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save"),
		),
		leave: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
	}
}

// bindings adapts a fixed set of bindings to help.KeyMap
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (k keyMap) mainHelp() bindings {
	return bindings{k.up, k.down, k.compose, k.open, k.settings, k.refresh, k.delete, k.quit}
}

func (k keyMap) inputHelp() bindings {
	return bindings{k.submit, k.cancel, k.forceQuit}
}

func (k keyMap) detailHelp() bindings {
	return bindings{k.back, k.forceQuit}
}

func (k keyMap) settingsHelp(editing bool) bindings {
	if editing {
		return bindings{k.submit, k.cancel}
	}
	return bindings{k.up, k.down, k.activate, k.save, k.leave}
}
