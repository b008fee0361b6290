package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/session"
)

const (
	previewLen   = 48
	timeLayout   = "01-02 15:04"
	chromeHeight = 7
)

type styles struct {
	title    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	label    lipgloss.Style
	cursor   lipgloss.Style
	states   map[job.State]lipgloss.Style
}

func newStyles(theme config.Theme) styles {
	accent, text, faint := lipgloss.Color("220"), lipgloss.Color("252"), lipgloss.Color("242")
	if theme == config.ThemeLight {
		accent, text, faint = lipgloss.Color("130"), lipgloss.Color("235"), lipgloss.Color("245")
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:    lipgloss.NewStyle().Foreground(faint),
		status:   lipgloss.NewStyle().Foreground(text),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		label:    lipgloss.NewStyle().Foreground(faint).Width(18),
		cursor:   lipgloss.NewStyle().Reverse(true),
		states: map[job.State]lipgloss.Style{
			job.StateQueued:    lipgloss.NewStyle().Foreground(faint),
			job.StateRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
			job.StateCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
			job.StateFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			job.StateCancelled: lipgloss.NewStyle().Foreground(faint),
		},
	}
}

func (m *Model) View() string {
	c := m.ctrl
	st := newStyles(c.Config().TUI.Theme)

	var b strings.Builder
	b.WriteString(m.header(st))
	b.WriteString("\n\n")

	switch c.Mode() {
	case session.ModeMain:
		b.WriteString(m.jobList(st))
	case session.ModeInput:
		b.WriteString(m.jobList(st))
		b.WriteString("\n")
		b.WriteString(st.title.Render("Prompt: "))
		b.WriteString(renderLine(c.Input(), c.InputCursor(), st.cursor))
	case session.ModeJobDetail:
		b.WriteString(m.detail(st, c.Detail()))
	case session.ModeSettings:
		b.WriteString(m.settings(st))
	}

	b.WriteString("\n\n")
	switch {
	case c.Error() != "":
		b.WriteString(st.err.Render(c.Error()))
	case c.Status() != "":
		b.WriteString(st.status.Render(c.Status()))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.helpKeys()))
	return b.String()
}

func (m *Model) header(st styles) string {
	c := m.ctrl
	h := st.title.Render("banana") + st.muted.Render(" · "+c.Config().API.Model)
	if c.Busy() {
		h += "  " + m.spinner.View() + st.muted.Render(" generating")
	}
	return h
}

func (m *Model) helpKeys() bindings {
	switch m.ctrl.Mode() {
	case session.ModeInput:
		return m.keys.inputHelp()
	case session.ModeJobDetail:
		return m.keys.detailHelp()
	case session.ModeSettings:
		return m.keys.settingsHelp(m.ctrl.Editing())
	}
	return m.keys.mainHelp()
}

func (m *Model) jobList(st styles) string {
	jobs := m.ctrl.Jobs()
	if len(jobs) == 0 {
		return st.muted.Render("No jobs yet. Press i to write a prompt.")
	}

	from, to := visibleRange(m.ctrl.Selected(), len(jobs), m.height-chromeHeight)
	var b strings.Builder
	for i := from; i < to; i++ {
		j := jobs[i]
		line := fmt.Sprintf("%-11s %-10s %s  %s",
			j.ID, j.Status.State, j.CreatedAt.Local().Format(timeLayout), j.Preview(previewLen))
		if i == m.ctrl.Selected() {
			b.WriteString(st.selected.Render("> " + line))
		} else {
			b.WriteString("  " + st.states[j.Status.State].Render(line))
		}
		if i < to-1 {
			b.WriteString("\n")
		}
	}
	if to-from < len(jobs) {
		b.WriteString("\n" + st.muted.Render(fmt.Sprintf("%d-%d of %d", from+1, to, len(jobs))))
	}
	return b.String()
}

func (m *Model) detail(st styles, j *job.Job) string {
	if j == nil {
		return ""
	}
	rows := [][2]string{
		{"ID", j.ID},
		{"Action", j.Action.String()},
		{"Status", st.states[j.Status.State].Render(j.Status.String())},
		{"Model", j.Params.Model},
		{"Aspect ratio", string(j.Params.AspectRatio)},
		{"Size", string(j.Params.Size)},
		{"Created", j.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{"Prompt", j.Params.Prompt},
	}
	if j.Action.SourceImage != "" {
		rows = append(rows, [2]string{"Source", j.Action.SourceImage})
	}
	if j.Params.NegativePrompt != "" {
		rows = append(rows, [2]string{"Avoid", j.Params.NegativePrompt})
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(st.label.Render(r[0]) + r[1] + "\n")
	}

	b.WriteString(st.label.Render("Images") + fmt.Sprintf("%d", len(j.Images)))
	if m.ctrl.Config().TUI.ShowImages {
		for _, img := range j.Images {
			loc := img.Path
			if loc == "" {
				loc = st.muted.Render("(not downloaded)")
			}
			b.WriteString(fmt.Sprintf("\n  [%d] %s", img.Index, loc))
		}
	}
	return b.String()
}

func (m *Model) settings(st styles) string {
	c := m.ctrl
	var b strings.Builder
	b.WriteString(st.title.Render("Settings"))
	if c.Dirty() {
		b.WriteString(st.muted.Render(" (unsaved)"))
	}
	b.WriteString("\n")

	for i, f := range session.Fields {
		value := c.FieldValue(i)
		if i == c.SettingsCursor() && c.Editing() {
			value = renderLine(c.EditBuffer(), c.EditCursor(), st.cursor)
		}
		row := st.label.Render(f.Label) + value
		if i == c.SettingsCursor() {
			row = st.selected.Render("> ") + row
		} else {
			row = "  " + row
		}
		b.WriteString("\n" + row)
	}
	return b.String()
}

// renderLine draws s with the rune at cursor highlighted
func renderLine(s string, cursor int, cursorStyle lipgloss.Style) string {
	runes := []rune(s)
	if cursor >= len(runes) {
		return s + cursorStyle.Render(" ")
	}
	return string(runes[:cursor]) + cursorStyle.Render(string(runes[cursor])) + string(runes[cursor+1:])
}

// visibleRange returns the window of rows to draw so that selected stays
// visible. rows <= 0 means no limit.
func visibleRange(selected, total, rows int) (int, int) {
	if rows <= 0 || total <= rows {
		return 0, total
	}
	from := selected - rows/2
	if from < 0 {
		from = 0
	}
	if from+rows > total {
		from = total - rows
	}
	return from, from + rows
}
