package actuator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/muurk/sidbridge/internal/logging"
)

// TrackPulse is how long a track line is held low to skip a track
const TrackPulse = 70 * time.Millisecond

// PinNames names the GPIO pins wired to the Bluetooth module
type PinNames struct {
	Power         []string // Module supply, driven together
	RadioChannel  string   // Optional transistor for the radio phone channel
	NextTrack     string
	PreviousTrack string
}

// Pins holds the resolved Bluetooth pins
type Pins struct {
	Power         []gpio.PinOut
	RadioChannel  gpio.PinOut // may be nil
	NextTrack     gpio.PinIO
	PreviousTrack gpio.PinIO
}

// Bluetooth drives a Bluetooth audio module over GPIO. The module is powered
// from two pins and the radio phone channel is opened with a transistor.
// The track lines are active low and left floating when idle so the module's
// own buttons keep working.
type Bluetooth struct {
	mu    sync.Mutex
	pins  Pins
	on    bool
	sleep func(time.Duration)
}

// OpenBluetooth initializes the host drivers and looks up the named pins
func OpenBluetooth(names PinNames) (*Bluetooth, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GPIO host drivers: %w", err)
	}
	pins, err := ResolvePins(names)
	if err != nil {
		return nil, err
	}
	return NewBluetooth(pins)
}

// ResolvePins looks up every named pin in the gpioreg registry
func ResolvePins(names PinNames) (Pins, error) {
	var pins Pins
	if len(names.Power) == 0 {
		return pins, errors.New("no Bluetooth power pins configured")
	}

	lookup := func(role, name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%s pin %q not found", role, name)
		}
		return p, nil
	}

	for _, name := range names.Power {
		p, err := lookup("power", name)
		if err != nil {
			return pins, err
		}
		pins.Power = append(pins.Power, p)
	}
	if names.RadioChannel != "" {
		p, err := lookup("radio channel", names.RadioChannel)
		if err != nil {
			return pins, err
		}
		pins.RadioChannel = p
	}

	var err error
	if pins.NextTrack, err = lookup("next track", names.NextTrack); err != nil {
		return pins, err
	}
	if pins.PreviousTrack, err = lookup("previous track", names.PreviousTrack); err != nil {
		return pins, err
	}
	return pins, nil
}

// NewBluetooth takes control of pins: the module is switched off and the
// track lines released.
func NewBluetooth(pins Pins) (*Bluetooth, error) {
	b := &Bluetooth{pins: pins, sleep: time.Sleep}
	if err := b.drivePower(gpio.Low); err != nil {
		return nil, err
	}
	for _, p := range []gpio.PinIO{pins.NextTrack, pins.PreviousTrack} {
		if err := release(p); err != nil {
			return nil, err
		}
	}
	logging.Info("Bluetooth GPIO ready",
		zap.Int("power_pins", len(pins.Power)),
		zap.Stringer("next", pins.NextTrack),
		zap.Stringer("previous", pins.PreviousTrack),
	)
	return b, nil
}

// SetPower switches the module and the radio phone channel
func (b *Bluetooth) SetPower(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.drivePower(gpio.Level(on)); err != nil {
		return err
	}
	b.on = on
	return nil
}

// On reports whether the module is powered
func (b *Bluetooth) On() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}

// PulseNext skips to the next track
func (b *Bluetooth) PulseNext() error {
	return b.pulse(b.pins.NextTrack)
}

// PulsePrevious skips to the previous track
func (b *Bluetooth) PulsePrevious() error {
	return b.pulse(b.pins.PreviousTrack)
}

func (b *Bluetooth) pulse(p gpio.PinIO) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to drive %s low: %w", p, err)
	}
	b.sleep(TrackPulse)
	return release(p)
}

func (b *Bluetooth) drivePower(level gpio.Level) error {
	outs := b.pins.Power
	if b.pins.RadioChannel != nil {
		outs = append(outs[:len(outs):len(outs)], b.pins.RadioChannel)
	}
	for _, p := range outs {
		if err := p.Out(level); err != nil {
			return fmt.Errorf("failed to set %s %s: %w", p, level, err)
		}
	}
	return nil
}

// Halt releases every pin
func (b *Bluetooth) Halt() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	if err := b.drivePower(gpio.Low); err != nil {
		errs = append(errs, err)
	}
	for _, p := range []gpio.PinIO{b.pins.NextTrack, b.pins.PreviousTrack} {
		if err := release(p); err != nil {
			errs = append(errs, err)
		}
	}
	b.on = false
	return errors.Join(errs...)
}

// release switches p to a floating input
func release(p gpio.PinIO) error {
	if err := p.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("failed to release %s: %w", p, err)
	}
	return nil
}
