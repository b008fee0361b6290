// Package observability provides logging and the formatted output of the
// batch commands.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// promptPreviewLen is the prompt width in job tables
	promptPreviewLen = 38
	// timeLayout is used for timestamps in text output
	timeLayout = "2006-01-02 15:04"
)

// Format selects how batch commands print results
type Format string

// Output formats
const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatQuiet Format = "quiet"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatQuiet:
		return Format(s), nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("invalid format %q (expected text, json or quiet)", s)
}

// Printer handles formatted output for the batch commands
type Printer struct {
	out    io.Writer
	format Format
	ok     lipgloss.Style
	bad    lipgloss.Style
	muted  lipgloss.Style
	title  lipgloss.Style
}

// NewPrinter creates a Printer that writes to out. Colors are only emitted
// when out is a terminal.
func NewPrinter(out io.Writer, format Format) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		format: format,
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:  r.NewStyle().Faint(true),
		title:  r.NewStyle().Bold(true),
	}
}

// PrintWarning writes a highlighted warning line to w
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func PrintWarning(w io.Writer, format string, args ...any) {
	label := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Render("Warning:")
	fmt.Fprintf(w, "%s %s\n", label, fmt.Sprintf(format, args...))
}

// Format returns the printer's output format
func (p *Printer) Format() Format {
	return p.format
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintJob outputs a job in the printer's format. Quiet mode prints the
// image paths, or the job id when nothing was saved.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJob(j *job.Job) error {
	if j == nil {
		return nil
	}
	switch p.format {
	case FormatJSON:
		return p.PrintJSON(j)
	case FormatQuiet:
		paths := j.Paths()
		if len(paths) == 0 {
			fmt.Fprintln(p.out, j.ID)
			return nil
		}
		for _, path := range paths {
			fmt.Fprintln(p.out, path)
		}
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", j.ID))
	sb.WriteString(fmt.Sprintf("Action:   %s\n", j.Action))
	if j.Action.SourceImage != "" {
		sb.WriteString(fmt.Sprintf("Source:   %s\n", j.Action.SourceImage))
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", j.Status))
	sb.WriteString(fmt.Sprintf("Model:    %s\n", j.Params.Model))
	sb.WriteString(fmt.Sprintf("Aspect:   %s   Size: %s\n", j.Params.AspectRatio, j.Params.Size))
	if j.Params.Seed != nil {
		sb.WriteString(fmt.Sprintf("Seed:     %d\n", *j.Params.Seed))
	}
	sb.WriteString(fmt.Sprintf("Created:  %s\n", j.CreatedAt.Local().Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("Prompt:   %s\n", j.Preview(boxWidth-14)))
	if j.Params.NegativePrompt != "" {
		sb.WriteString(fmt.Sprintf("Avoid:    %s\n", truncate(j.Params.NegativePrompt, boxWidth-14)))
	}
	if len(j.Images) > 0 {
		sb.WriteString("\nImages:\n")
		for _, img := range j.Images {
			loc := img.Path
			if loc == "" {
				loc = "(inline)"
			}
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", img.Index, loc))
		}
	}

	p.printBox("JOB "+j.ID, strings.TrimSuffix(sb.String(), "\n"))
	return nil
}

// PrintJobList outputs a table of jobs. total is the number of stored jobs;
// when larger than the list a "Showing N of M" footer is printed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobList(jobs []*job.Job, total int) error {
	switch p.format {
	case FormatJSON:
		if jobs == nil {
			jobs = []*job.Job{}
		}
		return p.PrintJSON(jobs)
	case FormatQuiet:
		for _, j := range jobs {
			fmt.Fprintln(p.out, j.ID)
		}
		return nil
	}

	if len(jobs) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("No jobs found."))
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTION\tSTATUS\tPROMPT\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Action, j.Status.State, j.Preview(promptPreviewLen), j.CreatedAt.Local().Format(timeLayout))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if total > len(jobs) {
		fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("\nShowing %d of %d jobs", len(jobs), total)))
	}
	return nil
}

// PrintOutcome reports the end of a generate or edit command in text mode
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(j *job.Job) {
	if p.format != FormatText || j == nil {
		return
	}
	switch j.Status.State {
	case job.StateCompleted:
		fmt.Fprintln(p.out, p.ok.Render(fmt.Sprintf("✓ Job %s completed with %d image(s)", j.ID, len(j.Images))))
		for _, path := range j.Paths() {
			fmt.Fprintf(p.out, "  %s\n", path)
		}
	case job.StateFailed:
		fmt.Fprintln(p.out, p.bad.Render(fmt.Sprintf("✗ Job %s failed: %s", j.ID, j.Status.Error)))
	default:
		fmt.Fprintf(p.out, "Job %s is %s\n", j.ID, j.Status)
	}
}

// PrintStep prints a progress line in text mode
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStep(message string) {
	if p.format != FormatText {
		return
	}
	fmt.Fprintln(p.out, p.muted.Render("• "+message))
}

// PrintConfig outputs the configuration with secrets masked
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintConfig(cfg *config.Config) error {
	if p.format == FormatJSON {
		values := make(map[string]string, len(config.Keys))
		for _, k := range config.Keys {
			values[string(k)] = cfg.Get(k)
		}
		return p.PrintJSON(values)
	}

	fmt.Fprintln(p.out, p.title.Render("Configuration")+" "+p.muted.Render("("+cfg.Path()+")"))
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	for _, k := range config.Keys {
		v := cfg.Get(k)
		if v == "" {
			v = p.muted.Render("(not set)")
		}
		fmt.Fprintf(tw, "  %s\t%s\n", k, v)
	}
	return tw.Flush()
}

// pad truncates or right-pads s to exactly width runes
func pad(s string, width int) string {
	s = truncate(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
