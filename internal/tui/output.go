package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/sidbridge/internal/bridge"
)

// Detail is one key-value line of a header or result box
type Detail struct {
	Key   string
	Value string
}

// Printer renders one-shot command output to a writer
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width, nil)
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(RenderResult(SuccessMarker+"  SUCCESS  ─  "+title, SuccessColor, details, nil, p.width))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(RenderResult("⚠  WARNING  ─  "+title, WarningColor, details, nil, p.width))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	var details []Detail
	if err != nil {
		details = append(details, Detail{Key: "Error", Value: err.Error()})
	}
	p.Println(RenderResult(FailureMarker+"  FAILED  ─  "+title, ErrorColor, details, troubleshooting, p.width))
}

// PrintStatus prints a bridge status report
func (p *Printer) PrintStatus(st bridge.Status) {
	p.Println(PanelStyle.Width(p.width - 2).Render(RenderStatus(st, p.width-4)))
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Detail, width int) string {
	top := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.PaddingLeft(2).Render(strings.ToUpper(title)),
		SubtleStyle.PaddingLeft(2).Render(command),
	)

	content := top
	if len(params) > 0 {
		dividerWidth := width - 6
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := lipgloss.NewStyle().Foreground(PrimaryColor).Render(strings.Repeat("─", dividerWidth))
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, renderDetails(params))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(content)
}

// RenderResult renders a double-bordered result box in color
func RenderResult(title string, color lipgloss.Color, details []Detail, troubleshooting []string, width int) string {
	lines := []string{
		"",
		lipgloss.NewStyle().Foreground(color).Bold(true).Render("   " + title),
		"",
	}
	if len(details) > 0 {
		lines = append(lines, renderDetails(details), "")
	}

	if len(troubleshooting) > 0 {
		tips := []string{SubtleStyle.Bold(true).Render("Troubleshooting:"), ""}
		for _, tip := range troubleshooting {
			tips = append(tips, SubtleStyle.Render("  • "+tip))
		}
		innerWidth := width - 12
		if innerWidth < 40 {
			innerWidth = 40
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Width(innerWidth).
			Padding(0, 1).
			MarginLeft(3).
			Render(strings.Join(tips, "\n"))
		lines = append(lines, box, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func renderDetails(details []Detail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, " "+field(d.Key+":", d.Value))
	}
	return strings.Join(lines, "\n")
}
