package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/sidbridge/internal/version"
)

// Application branding constants
const (
	AppName   = "SID BRIDGE MONITOR"
	GitHubURL = "github.com/muurk/sidbridge"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - granted, connected
	ErrorColor   = lipgloss.Color("#FF5555") // Red - denied, errors
	WarningColor = lipgloss.Color("#FFA500") // Orange - user message on display
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
	LCDColor     = lipgloss.Color("#F2C14E") // Amber - SID segment text
	LCDBackColor = lipgloss.Color("#1A1A1A")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// SectionTitleStyle is for "DISPLAY", "PRIORITY" and similar
	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// LCDStyle renders the row text the way the SID shows it
	LCDStyle = lipgloss.NewStyle().
			Foreground(LCDColor).
			Background(LCDBackColor).
			Bold(true).
			Padding(0, 1)

	GrantedStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	DeniedStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	UserOwnerStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	ActiveMarker  = "●"
	PendingMarker = "·"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	return clampWidth(width, err)
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24
	}
	return clampWidth(width, nil), height
}

func clampWidth(width int, err error) int {
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// BuildHeaderContent creates header content with app name and version
func BuildHeaderContent(subtitle string) string {
	left := TitleStyle.Render(AppName + " v" + version.Version)
	right := SubtleStyle.Render(subtitle)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps a screen with the application header,
// a footer holding the help text and an outer border sized to the terminal
func RenderApplicationContainer(content, subtitle, footer string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(PrimaryColor).
		Width(width-4).
		Padding(0, 1).
		Render(BuildHeaderContent(subtitle))

	foot := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(PrimaryColor).
		Width(width-4).
		Padding(0, 1).
		Render(SubtleStyle.Render(footer))

	body := lipgloss.NewStyle().
		Width(width - 4).
		Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, foot)

	outer := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
	if height > 2 {
		outer = outer.Height(height - 2).AlignVertical(lipgloss.Top)
	}

	return lipgloss.Place(width, max(height, 1), lipgloss.Left, lipgloss.Top, outer.Render(inner))
}
