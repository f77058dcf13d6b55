package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/sidbridge/internal/discovery"
)

// Scanner finds bridges on the local network
type Scanner interface {
	Scan(ctx context.Context) ([]*discovery.Bridge, error)
}

type scanStartMsg struct{}

type scanCompleteMsg struct {
	bridges []*discovery.Bridge
	err     error
}

// bridgeSelectedMsg asks the app to open the monitor for a bridge
type bridgeSelectedMsg struct {
	bridge *discovery.Bridge
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Quit},
	}
}

// DiscoveryModel scans for bridges over mDNS and lets the user pick one
type DiscoveryModel struct {
	scanner Scanner
	ctx     context.Context

	Scanning      bool
	ScanStartTime time.Time
	Bridges       []*discovery.Bridge
	Cursor        int
	Err           error

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    discoveryKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel(ctx context.Context, scanner Scanner) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	width, height := GetTerminalSize()

	return DiscoveryModel{
		scanner: scanner,
		ctx:     ctx,
		Width:   width,
		Height:  height,
		Spinner: s,
		Help:    help.New(),
		Keys: discoveryKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Enter: key.NewBinding(
				key.WithKeys("enter", " "),
				key.WithHelp("enter", "monitor"),
			),
			Rescan: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "rescan"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanBridges(m.ctx, m.scanner),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		m.Bridges = msg.bridges
		if m.Cursor >= len(m.Bridges) {
			m.Cursor = 0
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m DiscoveryModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case m.Scanning:
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}

	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(m.Bridges)-1 {
			m.Cursor++
		}

	case key.Matches(msg, m.Keys.Rescan):
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanBridges(m.ctx, m.scanner),
		)

	case key.Matches(msg, m.Keys.Enter):
		if b := m.Selected(); b != nil {
			return m, func() tea.Msg { return bridgeSelectedMsg{bridge: b} }
		}
	}
	return m, nil
}

// Selected returns the bridge under the cursor
func (m DiscoveryModel) Selected() *discovery.Bridge {
	if m.Cursor < 0 || m.Cursor >= len(m.Bridges) {
		return nil
	}
	return m.Bridges[m.Cursor]
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var b strings.Builder

	switch {
	case m.Scanning:
		elapsed := time.Since(m.ScanStartTime).Truncate(time.Second)
		b.WriteString(fmt.Sprintf("%s Scanning for %s services... %s\n",
			m.Spinner.View(), discovery.ServiceType, SubtleStyle.Render(elapsed.String())))

	case m.Err != nil:
		b.WriteString(ErrorTextStyle.Render(FailureMarker+" Discovery failed: "+m.Err.Error()) + "\n")

	case len(m.Bridges) == 0:
		b.WriteString(SectionTitleStyle.Render("NO BRIDGES FOUND") + "\n\n")
		b.WriteString(SubtleStyle.Render("  Check that sidbridge is running with monitor.mdns enabled\n"))
		b.WriteString(SubtleStyle.Render("  and that this machine is on the same network.\n"))
		b.WriteString(SubtleStyle.Render("  Use --addr to connect directly.\n"))

	default:
		b.WriteString(SectionTitleStyle.Render(fmt.Sprintf("BRIDGES (%d)", len(m.Bridges))) + "\n\n")
		for i, br := range m.Bridges {
			line := fmt.Sprintf("%-24s %s", br.Instance, br.Addr())
			if v := br.GetMetadata("version"); v != "" {
				line += "  v" + v
			}
			if i == m.Cursor {
				b.WriteString(SelectedStyle.Render("→ "+line) + "\n")
			} else {
				b.WriteString("  " + ValueStyle.Render(line) + "\n")
			}
		}
	}

	return RenderApplicationContainer(b.String(), "discovery", m.Help.View(m.Keys), m.Width, m.Height)
}

func scanBridges(ctx context.Context, scanner Scanner) tea.Cmd {
	return func() tea.Msg {
		bridges, err := scanner.Scan(ctx)
		return scanCompleteMsg{bridges: bridges, err: err}
	}
}
