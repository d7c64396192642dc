package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/Dicklesworthstone/quorum/internal/events"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	stylePhase   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	styleErr     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	styleDim     = lipgloss.NewStyle().Faint(true)
)

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderMarkdown renders an answer for the terminal. Piped output stays
// plain so it can feed other tools.
func renderMarkdown(text string) string {
	if !stdoutIsTTY() {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// padCell pads a table cell to the given display width, runewidth-aware so
// model ids with wide characters keep columns aligned.
func padCell(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-runewidth.StringWidth(s)))
}

// progressEmitter prints pipeline events as they stream, one line each.
// It satisfies events.Emitter so `quorum ask` shows the same protocol the
// HTTP server sends over SSE.
type progressEmitter struct {
	w     io.Writer
	color bool
}

func newProgressEmitter(w io.Writer, color bool) *progressEmitter {
	return &progressEmitter{w: w, color: color}
}

func (p *progressEmitter) Emit(e events.Event) error {
	line := p.format(e)
	if line == "" {
		return nil
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *progressEmitter) format(e events.Event) string {
	switch {
	case e.Type == events.TypeError:
		return p.style(styleErr, "✗ "+e.Message)
	case e.Type == events.TypeComplete:
		return p.style(styleDone, "✓ done")
	case e.Type == events.TypeTitleComplete:
		return ""
	case strings.HasSuffix(e.Type, "_start"):
		return p.style(stylePhase, "• "+phaseName(e.Type))
	case strings.HasSuffix(e.Type, "_complete"):
		return p.style(styleDim, "  "+phaseName(e.Type)+" complete")
	default:
		return p.style(styleDim, "  "+phaseName(e.Type))
	}
}

func (p *progressEmitter) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// phaseName turns an event type like "initial_responses_complete" into
// "initial responses".
func phaseName(eventType string) string {
	name := strings.TrimSuffix(eventType, "_complete")
	name = strings.TrimSuffix(name, "_start")
	return strings.ReplaceAll(name, "_", " ")
}
