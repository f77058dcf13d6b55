package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/canbus"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

// SimulatorConfig configures the vehicle-side simulator
type SimulatorConfig struct {
	Text     string        // Row content broadcast by the vehicle side
	Interval time.Duration // Time between broadcasts
	Row      byte          // Row granted to the bridge
	Grantee  byte          // Device id granted the row
	FrameGap time.Duration // Pause between sub-frames
}

// Simulator plays the vehicle side of the bus for desk testing. Every
// interval it grants the bridge its row, broadcasts its own display content
// and sends light level and speed frames.
type Simulator struct {
	bus   canbus.Bus
	cfg   SimulatorConfig
	clock display.Clock
	step  int
}

// NewSimulator creates a simulator sending on bus
func NewSimulator(bus canbus.Bus, cfg SimulatorConfig, clock display.Clock) *Simulator {
	if clock == nil {
		clock = display.SystemClock{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Row == 0 {
		cfg.Row = protocol.DefaultRow
	}
	if cfg.Grantee == 0 {
		cfg.Grantee = protocol.DeviceRadio
	}
	return &Simulator{bus: bus, cfg: cfg, clock: clock}
}

// Run broadcasts until ctx is cancelled
func (s *Simulator) Run(ctx context.Context) error {
	logging.Info("Vehicle simulator running",
		zap.String("text", s.cfg.Text),
		zap.Duration("interval", s.cfg.Interval),
	)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := s.Broadcast(); err != nil {
			logging.Warn("Simulator broadcast failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Broadcast sends one round of vehicle-side frames
func (s *Simulator) Broadcast() error {
	s.step++

	frames := []protocol.Frame{
		protocol.NewFrame(protocol.IDTextPriority, []byte{0, protocol.Unowned}),
		protocol.NewFrame(protocol.IDTextPriority, []byte{s.cfg.Row, s.cfg.Grantee}),
	}
	for _, f := range frames {
		if err := s.bus.Send(f); err != nil {
			return err
		}
	}

	buf := protocol.EncodeWindow(s.cfg.Text, s.cfg.Row)
	for i := 0; i < protocol.SubFrameCount; i++ {
		if err := s.bus.Send(protocol.Frame{ID: protocol.IDRadioMessage, Data: buf.SubFrame(i)}); err != nil {
			return err
		}
		if i != protocol.SubFrameCount-1 && s.cfg.FrameGap > 0 {
			s.clock.Sleep(s.cfg.FrameGap)
		}
	}

	light, rpm, speed := s.telemetry()
	if err := s.bus.Send(protocol.NewFrame(protocol.IDLighting, []byte{
		0, 0, 0, byte(light >> 8), byte(light),
	})); err != nil {
		return err
	}
	return s.bus.Send(protocol.NewFrame(protocol.IDSpeedRPM, []byte{
		0, byte(rpm >> 8), byte(rpm), byte(speed >> 8), byte(speed),
	}))
}

// telemetry sweeps the light level across its range and cycles a gentle
// speed profile. Speed is in 0.1 km/h as on the bus.
func (s *Simulator) telemetry() (light, rpm, speed uint16) {
	const steps = 20
	phase := uint32(s.step % steps)
	span := uint32(protocol.LightMax - protocol.LightMin)
	light = protocol.LightMin + uint16(span*phase/(steps-1))
	rpm = 800 + uint16(phase)*150
	speed = uint16(phase) * 60
	return light, rpm, speed
}

// PressButtons sends a single IBUS_BUTTONS frame with the given wheel and
// SID buttons down. Pass NoButton values to leave one group released.
func (s *Simulator) PressButtons(wheel protocol.SteeringWheelButton, sid protocol.SIDButton) error {
	var data [protocol.PayloadSize]byte
	if wheel != protocol.WheelNone {
		data[protocol.ButtonByteAudio] = 1 << byte(wheel)
	}
	if sid != protocol.SIDNone {
		data[protocol.ButtonByteSID] = 1 << byte(sid)
	}
	return s.bus.Send(protocol.Frame{ID: protocol.IDButtons, Data: data})
}
