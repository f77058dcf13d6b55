package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenMonitor   Screen = "monitor"
)

// ConnectFunc opens the monitor API at addr
type ConnectFunc func(addr string) (API, error)

// Options configures the monitor application
type Options struct {
	// Addr connects straight to a bridge. Empty starts with discovery.
	Addr    string
	Scanner Scanner
	Connect ConnectFunc
}

// AppModel is the top-level model that switches between discovery and
// the live monitor
type AppModel struct {
	ctx     context.Context
	connect ConnectFunc

	CurrentScreen Screen
	Discovery     DiscoveryModel
	Monitor       MonitorModel
	Err           error

	Width  int
	Height int
}

// NewAppModel creates the application model
func NewAppModel(ctx context.Context, opts Options) AppModel {
	m := AppModel{
		ctx:     ctx,
		connect: opts.Connect,
	}
	m.Width, m.Height = GetTerminalSize()

	if opts.Addr != "" {
		m.CurrentScreen = ScreenMonitor
		api, err := opts.Connect(opts.Addr)
		if err != nil {
			m.Err = err
			return m
		}
		m.Monitor = NewMonitorModel(ctx, opts.Addr, api)
		return m
	}

	m.CurrentScreen = ScreenDiscovery
	m.Discovery = NewDiscoveryModel(ctx, opts.Scanner)
	return m
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	if m.Err != nil {
		return tea.Quit
	}
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.Discovery.Init()
	case ScreenMonitor:
		return m.Monitor.Init()
	}
	return nil
}

// Update routes messages to the current screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case bridgeSelectedMsg:
		api, err := m.connect(msg.bridge.Addr())
		if err != nil {
			m.Discovery.Err = fmt.Errorf("failed to connect to %s: %w", msg.bridge, err)
			return m, nil
		}
		m.CurrentScreen = ScreenMonitor
		m.Monitor = NewMonitorModel(m.ctx, msg.bridge.Addr(), api)
		m.Monitor.Width, m.Monitor.Height = m.Width, m.Height
		return m, m.Monitor.Init()
	}

	var cmd tea.Cmd
	var updated tea.Model
	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, cmd = m.Discovery.Update(msg)
		m.Discovery = updated.(DiscoveryModel)
	case ScreenMonitor:
		updated, cmd = m.Monitor.Update(msg)
		m.Monitor = updated.(MonitorModel)
	}
	return m, cmd
}

// View renders the current screen
func (m AppModel) View() string {
	if m.Err != nil {
		return ErrorTextStyle.Render(FailureMarker+" "+m.Err.Error()) + "\n"
	}
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.Discovery.View()
	case ScreenMonitor:
		return m.Monitor.View()
	}
	return ""
}

// Run starts the monitor application and blocks until the user quits
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewAppModel(ctx, opts)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("monitor failed: %w", err)
	}
	if app, ok := final.(AppModel); ok && app.Err != nil {
		return app.Err
	}
	return nil
}
