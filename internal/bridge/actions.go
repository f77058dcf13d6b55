package bridge

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

const (
	// TrackMessageDuration is how long the track change notice stays up
	TrackMessageDuration = 800 * time.Millisecond

	// DoubleTapWindow is the longest gap between two presses of SET or CLR
	// that counts as a double tap
	DoubleTapWindow = 500 * time.Millisecond

	// Brightness range sent to the lights for the ambient light level
	MinBrightness = 20
	MaxBrightness = 255
)

// Bluetooth drives the Bluetooth audio module
type Bluetooth interface {
	SetPower(on bool) error
	PulseNext() error
	PulsePrevious() error
}

// Lights drives the LED ring and strips
type Lights interface {
	SetBrightness(level uint8)
	SetStripsEnabled(enabled bool)
}

// MessageSender shows a user message on the display
type MessageSender interface {
	SendUserMessage(text string, duration time.Duration) bool
}

// Controls is the state of the bridge's own controls
type Controls struct {
	Bluetooth     bool   `json:"bluetooth"`
	NightPanel    bool   `json:"night_panel"`
	StripsEnabled bool   `json:"strips_enabled"`
	Brightness    uint8  `json:"brightness"`
	RPM           uint16 `json:"rpm"`
	Speed         uint16 `json:"speed_kmh"`
	LastWheel     string `json:"last_wheel,omitempty"`
	LastSID       string `json:"last_sid,omitempty"`
}

// Actions reacts to steering wheel and SID buttons, light level and vehicle
// speed frames. It implements display.Listener.
type Actions struct {
	sender    MessageSender
	bluetooth Bluetooth
	lights    Lights
	clock     display.Clock

	mu        sync.Mutex
	state     Controls
	lastSet   time.Time
	lastClear time.Time
}

var _ display.Listener = (*Actions)(nil)

// NewActions creates the button handler. Bluetooth and lights are required.
func NewActions(sender MessageSender, bt Bluetooth, lights Lights, clock display.Clock) *Actions {
	if clock == nil {
		clock = display.SystemClock{}
	}
	return &Actions{
		sender:    sender,
		bluetooth: bt,
		lights:    lights,
		clock:     clock,
	}
}

// OnButtons handles an IBUS_BUTTONS frame
func (a *Actions) OnButtons(b protocol.Buttons) {
	if b.Wheel != protocol.WheelNone {
		a.onWheel(b.Wheel)
	}
	if b.SID != protocol.SIDNone {
		a.onSID(b.SID)
	}
}

func (a *Actions) onWheel(btn protocol.SteeringWheelButton) {
	a.mu.Lock()
	a.state.LastWheel = btn.String()
	bluetoothOn := a.state.Bluetooth
	a.mu.Unlock()

	logging.Debug("Steering wheel button", zap.Stringer("button", btn))

	switch btn {
	case protocol.WheelSource:
		a.toggleBluetooth()

	case protocol.WheelSeekUp:
		if bluetoothOn {
			a.changeTrack("NEXT TRACK", a.bluetooth.PulseNext)
		}

	case protocol.WheelSeekDown:
		if bluetoothOn {
			a.changeTrack("PREV TRACK", a.bluetooth.PulsePrevious)
		}
	}
}

func (a *Actions) toggleBluetooth() {
	a.mu.Lock()
	on := !a.state.Bluetooth
	a.state.Bluetooth = on
	a.mu.Unlock()

	if err := a.bluetooth.SetPower(on); err != nil {
		logging.Error("Failed to switch Bluetooth power", zap.Bool("on", on), zap.Error(err))
		return
	}
	logging.Info("Bluetooth toggled", zap.Bool("on", on))
}

func (a *Actions) changeTrack(notice string, pulse func() error) {
	if !a.sender.SendUserMessage(notice, TrackMessageDuration) {
		logging.Debug("Track notice not shown", zap.String("text", notice))
	}
	if err := pulse(); err != nil {
		logging.Error("Failed to pulse track line", zap.String("action", notice), zap.Error(err))
	}
}

func (a *Actions) onSID(btn protocol.SIDButton) {
	now := a.clock.Now()

	a.mu.Lock()
	a.state.LastSID = btn.String()

	switched := false
	switch btn {
	case protocol.SIDNightPanel:
		a.state.NightPanel = !a.state.NightPanel
		logging.Info("Night panel toggled", zap.Bool("on", a.state.NightPanel))

	case protocol.SIDSet:
		if isDoubleTap(a.lastSet, now) {
			a.state.StripsEnabled = true
			switched = true
		}
		a.lastSet = now

	case protocol.SIDClear:
		if isDoubleTap(a.lastClear, now) {
			a.state.StripsEnabled = false
			switched = true
		}
		a.lastClear = now
	}
	enable := a.state.StripsEnabled
	a.mu.Unlock()

	logging.Debug("SID button", zap.Stringer("button", btn))
	if switched {
		logging.Info("LED strips switched", zap.Bool("enabled", enable))
		a.lights.SetStripsEnabled(enable)
	}
}

func isDoubleTap(last, now time.Time) bool {
	return !last.IsZero() && now.Sub(last) < DoubleTapWindow
}

// OnLighting maps the ambient light level to LED brightness. The LEDs are
// dark while the night panel is on.
func (a *Actions) OnLighting(l protocol.Lighting) {
	a.mu.Lock()
	level := ScaleBrightness(l.LightLevel, protocol.LightMin, protocol.LightMax)
	if a.state.NightPanel {
		level = 0
	}
	changed := level != a.state.Brightness
	a.state.Brightness = level
	a.mu.Unlock()

	if changed {
		logging.Debug("Brightness changed", zap.Uint8("level", level), zap.Uint16("light", l.LightLevel))
	}
	a.lights.SetBrightness(level)
}

// OnVehicle records engine and vehicle speed
func (a *Actions) OnVehicle(v protocol.Vehicle) {
	a.mu.Lock()
	a.state.RPM = v.RPM
	a.state.Speed = v.Speed
	a.mu.Unlock()
}

// Controls returns a copy of the current control state
func (a *Actions) Controls() Controls {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// ScaleBrightness maps val linearly from [min, max] onto
// [MinBrightness, MaxBrightness]. Values outside the range are clamped.
func ScaleBrightness(val, min, max uint16) uint8 {
	if max <= min {
		return MaxBrightness
	}
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	span := uint32(MaxBrightness - MinBrightness)
	return uint8(uint32(val-min)*span/uint32(max-min) + MinBrightness)
}
