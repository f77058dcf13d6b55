package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/protocol"
)

// ReconnectDelay is how long the monitor waits before reconnecting a
// dropped status stream
const ReconnectDelay = 2 * time.Second

// DurationPresets are the message durations the d key cycles through.
// Zero keeps the message until cancelled.
var DurationPresets = []time.Duration{
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	0,
}

// API is the part of the monitor client the TUI uses
type API interface {
	Send(ctx context.Context, text string, duration time.Duration) (bool, error)
	Cancel(ctx context.Context) error
	Watch(ctx context.Context, fn func(bridge.Status)) error
}

// Messages for async operations
type statusMsg struct {
	status bridge.Status
}

type watchEndedMsg struct {
	err error
}

type reconnectMsg struct{}

type sendResultMsg struct {
	text string
	sent bool
	err  error
}

type cancelResultMsg struct {
	err error
}

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Send     key.Binding
	Cancel   key.Binding
	Duration key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Cancel, k.Duration, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Cancel, k.Duration},
		{k.Help, k.Quit},
	}
}

// composeKeyMap defines key bindings while a message is being typed
type composeKeyMap struct {
	Submit key.Binding
	Abort  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k composeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Abort}
}

// FullHelp returns keybindings for the expanded help view
func (k composeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Abort}}
}

// MonitorModel shows live bridge status and sends messages to the display
type MonitorModel struct {
	// Connection
	Address string
	api     API
	ctx     context.Context
	updates chan tea.Msg

	// Latest state
	Status     bridge.Status
	HasStatus  bool
	Connected  bool
	LastError  error
	LastUpdate time.Time

	// Compose state
	Composing   bool
	Input       textinput.Model
	DurationIdx int
	Notice      string
	NoticeOK    bool

	// UI state
	Width    int
	Height   int
	Spinner  spinner.Model
	Help     help.Model
	Keys     monitorKeyMap
	Compose  composeKeyMap
	Quitting bool
}

// NewMonitorModel creates a monitor for the bridge at address. The status
// stream stops when ctx is cancelled.
func NewMonitorModel(ctx context.Context, address string, api API) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "NEXT TRACK"
	input.CharLimit = protocol.MaxMessageLength
	input.Width = protocol.MaxMessageLength + 2
	input.Prompt = "> "

	width, height := GetTerminalSize()

	return MonitorModel{
		Address: address,
		api:     api,
		ctx:     ctx,
		updates: make(chan tea.Msg),
		Input:   input,
		Width:   width,
		Height:  height,
		Spinner: s,
		Help:    help.New(),
		Keys: monitorKeyMap{
			Send: key.NewBinding(
				key.WithKeys("s", "enter"),
				key.WithHelp("s", "send message"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("c"),
				key.WithHelp("c", "cancel message"),
			),
			Duration: key.NewBinding(
				key.WithKeys("d"),
				key.WithHelp("d", "duration"),
			),
			Help: key.NewBinding(
				key.WithKeys("?"),
				key.WithHelp("?", "help"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		Compose: composeKeyMap{
			Submit: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "send"),
			),
			Abort: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "abort"),
			),
		},
	}
}

// Init starts the status stream
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		watchStatus(m.ctx, m.api, m.updates),
		waitForUpdate(m.updates),
	)
}

// Duration returns the currently selected message duration
func (m MonitorModel) Duration() time.Duration {
	return DurationPresets[m.DurationIdx%len(DurationPresets)]
}

// Update handles messages and updates the model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.Composing {
			return m.updateCompose(msg)
		}
		return m.updateNormal(msg)

	case statusMsg:
		m.Status = msg.status
		m.HasStatus = true
		m.Connected = true
		m.LastError = nil
		m.LastUpdate = time.Now()
		return m, waitForUpdate(m.updates)

	case watchEndedMsg:
		m.Connected = false
		m.LastError = msg.err
		if m.Quitting || m.ctx.Err() != nil {
			return m, nil
		}
		return m, tea.Batch(
			tea.Tick(ReconnectDelay, func(time.Time) tea.Msg { return reconnectMsg{} }),
			waitForUpdate(m.updates),
		)

	case reconnectMsg:
		if m.Quitting {
			return m, nil
		}
		return m, watchStatus(m.ctx, m.api, m.updates)

	case sendResultMsg:
		switch {
		case msg.err != nil:
			m.Notice = fmt.Sprintf("%s send failed: %v", FailureMarker, msg.err)
			m.NoticeOK = false
		case msg.sent:
			m.Notice = fmt.Sprintf("%s %q on display", SuccessMarker, msg.text)
			m.NoticeOK = true
		default:
			m.Notice = fmt.Sprintf("%s %q denied, another device owns the row", FailureMarker, msg.text)
			m.NoticeOK = false
		}
		return m, nil

	case cancelResultMsg:
		if msg.err != nil {
			m.Notice = fmt.Sprintf("%s cancel failed: %v", FailureMarker, msg.err)
			m.NoticeOK = false
		} else {
			m.Notice = SuccessMarker + " vehicle content restored"
			m.NoticeOK = true
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m MonitorModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Send):
		m.Composing = true
		m.Input.SetValue("")
		return m, m.Input.Focus()

	case key.Matches(msg, m.Keys.Cancel):
		return m, cancelMessage(m.ctx, m.api)

	case key.Matches(msg, m.Keys.Duration):
		m.DurationIdx = (m.DurationIdx + 1) % len(DurationPresets)
		return m, nil

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m MonitorModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Compose.Abort):
		m.Composing = false
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.Compose.Submit):
		text := strings.TrimSpace(m.Input.Value())
		m.Composing = false
		m.Input.Blur()
		if text == "" {
			return m, nil
		}
		return m, sendMessage(m.ctx, m.api, text, m.Duration())
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// View renders the monitor screen
func (m MonitorModel) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	switch {
	case !m.HasStatus && m.LastError == nil:
		b.WriteString(m.Spinner.View() + " Connecting to " + m.Address + "...\n")
	case !m.HasStatus:
		b.WriteString(ErrorTextStyle.Render(FailureMarker+" "+m.LastError.Error()) + "\n")
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  retrying every %s", ReconnectDelay)) + "\n")
	default:
		b.WriteString(m.renderConnection() + "\n\n")
		b.WriteString(RenderStatus(m.Status, m.Width-4) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderComposer())

	footer := m.Help.View(m.Keys)
	if m.Composing {
		footer = m.Help.View(m.Compose)
	}
	return RenderApplicationContainer(b.String(), m.Address, footer, m.Width, m.Height)
}

func (m MonitorModel) renderConnection() string {
	if m.Connected {
		return GrantedStyle.Render(ActiveMarker+" live") +
			SubtleStyle.Render("  updated "+m.LastUpdate.Format("15:04:05.000"))
	}
	status := DeniedStyle.Render(FailureMarker + " disconnected")
	if m.LastError != nil {
		status += SubtleStyle.Render("  " + m.LastError.Error())
	}
	return status + " " + m.Spinner.View()
}

func (m MonitorModel) renderComposer() string {
	var lines []string
	duration := "until cancelled"
	if d := m.Duration(); d > 0 {
		duration = d.String()
	}
	lines = append(lines, field("Duration", duration))

	if m.Composing {
		lines = append(lines, "  "+m.Input.View())
	}
	if m.Notice != "" {
		style := DeniedStyle
		if m.NoticeOK {
			style = GrantedStyle
		}
		lines = append(lines, "  "+style.Render(m.Notice))
	}
	return strings.Join(lines, "\n")
}

// watchStatus runs the status stream, forwarding every update to updates.
// The returned message reports why the stream ended.
func watchStatus(ctx context.Context, api API, updates chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		err := api.Watch(ctx, func(st bridge.Status) {
			select {
			case updates <- statusMsg{status: st}:
			case <-ctx.Done():
			}
		})
		if err == nil && ctx.Err() == nil {
			err = errors.New("status stream closed by bridge")
		}
		select {
		case updates <- watchEndedMsg{err: err}:
		case <-ctx.Done():
		}
		return nil
	}
}

// waitForUpdate delivers the next message from the status stream
func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func sendMessage(ctx context.Context, api API, text string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		sent, err := api.Send(reqCtx, text, d)
		return sendResultMsg{text: text, sent: sent, err: err}
	}
}

func cancelMessage(ctx context.Context, api API) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return cancelResultMsg{err: api.Cancel(reqCtx)}
	}
}
