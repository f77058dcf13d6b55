package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/discovery"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/protocol"
)

type fakeAPI struct {
	sent     []string
	grant    bool
	sendErr  error
	cancels  int
	statuses []bridge.Status
	watchErr error
}

func (a *fakeAPI) Send(_ context.Context, text string, _ time.Duration) (bool, error) {
	a.sent = append(a.sent, text)
	return a.grant, a.sendErr
}

func (a *fakeAPI) Cancel(context.Context) error {
	a.cancels++
	return nil
}

func (a *fakeAPI) Watch(_ context.Context, fn func(bridge.Status)) error {
	for _, st := range a.statuses {
		fn(st)
	}
	return a.watchErr
}

type fakeScanner struct {
	bridges []*discovery.Bridge
	err     error
}

func (s fakeScanner) Scan(context.Context) ([]*discovery.Bridge, error) {
	return s.bridges, s.err
}

func sampleStatus() bridge.Status {
	return bridge.Status{
		Display: display.Snapshot{
			Owner:        display.OwnerUser,
			DurationMS:   2000,
			RemainingMS:  1500,
			UserText:     "BLUETOOTH READY",
			Scrolling:    true,
			ScrollOffset: 2,
			VehicleText:  "RADIO FM1",
			OutgoingText: "UETOOTH READ",
			CanWrite:     true,
			Priorities: []display.PrioritySlot{
				{Row: 0, Owner: protocol.Unowned, Name: "none"},
				{Row: 1, Owner: protocol.DeviceTrionic, Name: "TRIONIC"},
				{Row: 2, Owner: protocol.DeviceRadio, Name: "RADIO"},
			},
		},
		Controls: bridge.Controls{Bluetooth: true, Brightness: 137, Speed: 100, RPM: 3000},
		Frames: []bridge.FrameCount{
			{ID: protocol.IDRadioMessage, Name: "RADIO_MSG", Count: 42},
		},
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(sampleStatus(), 80)

	for _, want := range []string{
		"DISPLAY", "UETOOTH READ", "user", "BLUETOOTH READY",
		"offset 2", "1.5s of 2s", `"RADIO FM1"`, "granted",
		"PRIORITY", "row 1  0x21 TRIONIC", "row 2  0x19 RADIO",
		"CONTROLS", "100 km/h", "3000",
		"FRAMES", "0x328 RADIO_MSG", "42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderStatus() missing %q\n%s", want, out)
		}
	}
}

func TestRenderDisplay(t *testing.T) {
	tests := []struct {
		name    string
		snap    display.Snapshot
		want    []string
		notWant []string
	}{
		{
			name:    "vehicle owner",
			snap:    display.Snapshot{Owner: display.OwnerVehicle, VehicleText: "RADIO FM1"},
			want:    []string{"vehicle", "RADIO FM1   ", "denied"},
			notWant: []string{"Remaining", "Scroll"},
		},
		{
			name: "indefinite message",
			snap: display.Snapshot{Owner: display.OwnerUser, UserText: "HELLO", OutgoingText: "HELLO"},
			want: []string{"until cancelled", "HELLO"},
		},
		{
			name: "nothing received",
			snap: display.Snapshot{},
			want: []string{"(none)"},
		},
		{
			name: "write errors",
			snap: display.Snapshot{Stats: display.Stats{WriteErrors: 3}},
			want: []string{"3 write errors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderDisplay(tt.snap)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q in\n%s", w, out)
				}
			}
		})
	}
}

func TestRenderEmptySections(t *testing.T) {
	if out := RenderPriorities(nil); !strings.Contains(out, "no priority updates yet") {
		t.Errorf("RenderPriorities(nil) = %q", out)
	}
	if out := RenderFrames(nil); !strings.Contains(out, "nothing received") {
		t.Errorf("RenderFrames(nil) = %q", out)
	}
}

func TestLCDText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "            "},
		{"RADIO", "RADIO       "},
		{"BLUETOOTH READY", "BLUETOOTH RE"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := lcdText(tt.in); got != tt.want {
				t.Errorf("lcdText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func newTestMonitor(api API) MonitorModel {
	m := NewMonitorModel(context.Background(), "127.0.0.1:8787", api)
	m.Width, m.Height = 100, 40
	return m
}

func update(t *testing.T, m MonitorModel, msg tea.Msg) (MonitorModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(MonitorModel), cmd
}

func TestMonitor_StatusUpdates(t *testing.T) {
	m := newTestMonitor(&fakeAPI{})

	if !strings.Contains(m.View(), "Connecting to 127.0.0.1:8787") {
		t.Errorf("initial view missing connecting line:\n%s", m.View())
	}

	m, cmd := update(t, m, statusMsg{status: sampleStatus()})
	if !m.Connected || !m.HasStatus {
		t.Fatalf("Connected=%v HasStatus=%v after status", m.Connected, m.HasStatus)
	}
	if cmd == nil {
		t.Error("no follow-up wait after status")
	}
	if !strings.Contains(m.View(), "live") {
		t.Errorf("view missing live marker:\n%s", m.View())
	}

	m, cmd = update(t, m, watchEndedMsg{err: errors.New("connection reset")})
	if m.Connected {
		t.Error("still connected after stream ended")
	}
	if cmd == nil {
		t.Error("no reconnect scheduled")
	}
	if !strings.Contains(m.View(), "disconnected") {
		t.Errorf("view missing disconnected marker:\n%s", m.View())
	}
}

func TestMonitor_SendFlow(t *testing.T) {
	tests := []struct {
		name       string
		api        *fakeAPI
		wantNotice string
		wantOK     bool
	}{
		{name: "granted", api: &fakeAPI{grant: true}, wantNotice: `"HELLO" on display`, wantOK: true},
		{name: "denied", api: &fakeAPI{}, wantNotice: "another device owns the row"},
		{name: "error", api: &fakeAPI{sendErr: errors.New("timeout")}, wantNotice: "send failed: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMonitor(tt.api)

			m, _ = update(t, m, keyPress("s"))
			if !m.Composing {
				t.Fatal("s did not open the composer")
			}
			for _, r := range "HELLO" {
				m, _ = update(t, m, keyPress(string(r)))
			}
			m, cmd := update(t, m, keyPress("enter"))
			if m.Composing {
				t.Error("composer still open after enter")
			}
			if cmd == nil {
				t.Fatal("no send command")
			}

			m, _ = update(t, m, cmd())
			if len(tt.api.sent) != 1 || tt.api.sent[0] != "HELLO" {
				t.Errorf("sent = %v, want [HELLO]", tt.api.sent)
			}
			if !strings.Contains(m.Notice, tt.wantNotice) {
				t.Errorf("Notice = %q, want it to contain %q", m.Notice, tt.wantNotice)
			}
			if m.NoticeOK != tt.wantOK {
				t.Errorf("NoticeOK = %v, want %v", m.NoticeOK, tt.wantOK)
			}
		})
	}
}

func TestMonitor_ComposeAbortAndEmpty(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMonitor(api)

	m, _ = update(t, m, keyPress("s"))
	m, _ = update(t, m, keyPress("q"))
	if !m.Composing || m.Quitting {
		t.Fatal("q while composing must type, not quit")
	}
	m, _ = update(t, m, keyPress("esc"))
	if m.Composing {
		t.Error("esc did not close the composer")
	}

	m, _ = update(t, m, keyPress("s"))
	m, cmd := update(t, m, keyPress("enter"))
	if cmd != nil {
		t.Error("empty message produced a send command")
	}
	if len(api.sent) != 0 {
		t.Errorf("sent = %v", api.sent)
	}
}

func TestMonitor_CancelAndDuration(t *testing.T) {
	api := &fakeAPI{}
	m := newTestMonitor(api)

	if m.Duration() != 2*time.Second {
		t.Errorf("default duration = %v", m.Duration())
	}
	for _, want := range []time.Duration{5 * time.Second, 10 * time.Second, 0, 2 * time.Second} {
		m, _ = update(t, m, keyPress("d"))
		if m.Duration() != want {
			t.Errorf("duration = %v, want %v", m.Duration(), want)
		}
	}

	m, cmd := update(t, m, keyPress("c"))
	if cmd == nil {
		t.Fatal("no cancel command")
	}
	m, _ = update(t, m, cmd())
	if api.cancels != 1 {
		t.Errorf("cancels = %d, want 1", api.cancels)
	}
	if !m.NoticeOK || !strings.Contains(m.Notice, "restored") {
		t.Errorf("Notice = %q", m.Notice)
	}

	m, _ = update(t, m, keyPress("q"))
	if !m.Quitting {
		t.Error("q did not quit")
	}
}

func TestWatchStatus_ForwardsUpdates(t *testing.T) {
	api := &fakeAPI{statuses: []bridge.Status{sampleStatus(), {}}}
	updates := make(chan tea.Msg)
	go watchStatus(context.Background(), api, updates)()

	for i := 0; i < 2; i++ {
		if _, ok := (<-updates).(statusMsg); !ok {
			t.Fatalf("update %d is not a status", i)
		}
	}
	ended, ok := (<-updates).(watchEndedMsg)
	if !ok {
		t.Fatal("stream end not reported")
	}
	if ended.err == nil {
		t.Error("clean close by the bridge should be reported as an error")
	}
}

func TestDiscovery_SelectBridge(t *testing.T) {
	bridges := []*discovery.Bridge{
		{Instance: "saab-9-3", IP: "192.168.1.20", Port: 8787},
		{Instance: "bench", IP: "192.168.1.21", Port: 8787, Metadata: map[string]string{"version": "1.0.0"}},
	}
	m := NewDiscoveryModel(context.Background(), fakeScanner{bridges: bridges})

	updated, _ := m.Update(scanStartMsg{})
	m = updated.(DiscoveryModel)
	if !strings.Contains(m.View(), "Scanning for _sidbridge._tcp") {
		t.Errorf("scanning view:\n%s", m.View())
	}

	msg := scanBridges(context.Background(), fakeScanner{bridges: bridges})()
	updated, _ = m.Update(msg)
	m = updated.(DiscoveryModel)
	if m.Scanning || len(m.Bridges) != 2 {
		t.Fatalf("Scanning=%v Bridges=%d", m.Scanning, len(m.Bridges))
	}
	if !strings.Contains(m.View(), "192.168.1.21:8787  v1.0.0") {
		t.Errorf("results view:\n%s", m.View())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(DiscoveryModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(DiscoveryModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}

	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	sel, ok := cmd().(bridgeSelectedMsg)
	if !ok || sel.bridge.Instance != "bench" {
		t.Errorf("selected = %+v", sel)
	}
}

func TestDiscovery_EmptyAndError(t *testing.T) {
	m := NewDiscoveryModel(context.Background(), fakeScanner{})
	updated, _ := m.Update(scanCompleteMsg{})
	if !strings.Contains(updated.View(), "NO BRIDGES FOUND") {
		t.Errorf("empty view:\n%s", updated.View())
	}

	updated, _ = m.Update(scanCompleteMsg{err: errors.New("no multicast")})
	if !strings.Contains(updated.View(), "Discovery failed: no multicast") {
		t.Errorf("error view:\n%s", updated.View())
	}
}

func TestApp_Screens(t *testing.T) {
	api := &fakeAPI{}
	var dialed []string
	connect := func(addr string) (API, error) {
		dialed = append(dialed, addr)
		return api, nil
	}

	t.Run("direct address", func(t *testing.T) {
		app := NewAppModel(context.Background(), Options{Addr: "10.0.0.5:8787", Connect: connect})
		if app.CurrentScreen != ScreenMonitor {
			t.Errorf("CurrentScreen = %s, want monitor", app.CurrentScreen)
		}
	})

	t.Run("connect failure", func(t *testing.T) {
		app := NewAppModel(context.Background(), Options{
			Addr:    "bad",
			Connect: func(string) (API, error) { return nil, errors.New("invalid address") },
		})
		if app.Err == nil || !strings.Contains(app.View(), "invalid address") {
			t.Errorf("Err = %v, view %q", app.Err, app.View())
		}
	})

	t.Run("discovery then monitor", func(t *testing.T) {
		app := NewAppModel(context.Background(), Options{Scanner: fakeScanner{}, Connect: connect})
		if app.CurrentScreen != ScreenDiscovery {
			t.Fatalf("CurrentScreen = %s, want discovery", app.CurrentScreen)
		}

		br := &discovery.Bridge{Instance: "saab", IP: "192.168.1.20", Port: 8787}
		updated, cmd := app.Update(bridgeSelectedMsg{bridge: br})
		app = updated.(AppModel)
		if app.CurrentScreen != ScreenMonitor {
			t.Errorf("CurrentScreen = %s, want monitor", app.CurrentScreen)
		}
		if app.Monitor.Address != "192.168.1.20:8787" {
			t.Errorf("monitor address = %q", app.Monitor.Address)
		}
		if cmd == nil {
			t.Error("monitor not initialised")
		}
	})

	if len(dialed) != 2 {
		t.Errorf("dialed = %v", dialed)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(80)

	p.PrintHeader("Send message", "sidbridge send", Detail{Key: "Bridge", Value: "127.0.0.1:8787"})
	p.PrintSuccess("Message on display", Detail{Key: "Text", Value: "HELLO"})
	p.PrintError("Message denied", errors.New("row owned by TRIONIC"), "Wait for the current owner to release the row")
	p.PrintStatus(sampleStatus())

	out := buf.String()
	for _, want := range []string{
		"SEND MESSAGE", "sidbridge send", "127.0.0.1:8787",
		"SUCCESS", "HELLO",
		"FAILED", "row owned by TRIONIC", "Troubleshooting:",
		"PRIORITY",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if p.Width() != 80 {
		t.Errorf("Width() = %d", p.Width())
	}
}
