package actuator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/logging"
)

// LogLights records LED commands in the log. LED rendering lives on the
// LED controller board; the bridge only reports what it would show.
type LogLights struct {
	mu         sync.Mutex
	brightness uint8
	strips     bool
	set        bool
}

// SetBrightness records the ring brightness. Repeated values are not logged.
func (l *LogLights) SetBrightness(level uint8) {
	l.mu.Lock()
	changed := !l.set || level != l.brightness
	l.brightness = level
	l.set = true
	l.mu.Unlock()

	if changed {
		logging.Debug("LED brightness", zap.Uint8("level", level))
	}
}

// SetStripsEnabled records the strip state
func (l *LogLights) SetStripsEnabled(enabled bool) {
	l.mu.Lock()
	l.strips = enabled
	l.mu.Unlock()
	logging.Info("LED strips", zap.Bool("enabled", enabled))
}

// State returns the last brightness and strip state
func (l *LogLights) State() (brightness uint8, strips bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.brightness, l.strips
}

// LogBluetooth stands in for the Bluetooth module when GPIO is disabled
type LogBluetooth struct {
	mu sync.Mutex
	on bool
}

func (b *LogBluetooth) SetPower(on bool) error {
	b.mu.Lock()
	b.on = on
	b.mu.Unlock()
	logging.Info("Bluetooth power (no GPIO)", zap.Bool("on", on))
	return nil
}

func (b *LogBluetooth) PulseNext() error {
	logging.Info("Bluetooth next track (no GPIO)")
	return nil
}

func (b *LogBluetooth) PulsePrevious() error {
	logging.Info("Bluetooth previous track (no GPIO)")
	return nil
}

// On reports the last requested power state
func (b *LogBluetooth) On() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}
