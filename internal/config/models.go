package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config file format version written by Save
const CurrentVersion = 1

// Config is the bridge configuration file
type Config struct {
	Version   int              `yaml:"version"`
	LogLevel  string           `yaml:"log_level,omitempty"` // debug, info, warn, error (empty = silent)
	Bus       *BusConfig       `yaml:"bus"`
	Display   *DisplayConfig   `yaml:"display"`
	Monitor   *MonitorConfig   `yaml:"monitor"`
	GPIO      *GPIOConfig      `yaml:"gpio"`
	Simulator *SimulatorConfig `yaml:"simulator"`
}

// BusConfig selects the bus driver
type BusConfig struct {
	Driver  string `yaml:"driver"`  // socketcan or virtual
	Channel string `yaml:"channel"` // Interface name (can0) or virtual channel name
}

// DisplayConfig holds the display row settings
type DisplayConfig struct {
	Row            int     `yaml:"row"`              // Row the bridge writes (1 or 2)
	SelfID         HexByte `yaml:"self_id"`          // Device id the bridge writes as
	FrameGapMS     int     `yaml:"frame_gap_ms"`     // Pause between sub-frames
	PollIntervalMS int     `yaml:"poll_interval_ms"` // Event loop sleep when the bus is idle
}

// FrameGap returns the sub-frame spacing as a duration
func (d *DisplayConfig) FrameGap() time.Duration {
	return time.Duration(d.FrameGapMS) * time.Millisecond
}

// PollInterval returns the idle loop sleep as a duration
func (d *DisplayConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMS) * time.Millisecond
}

// MonitorConfig controls the HTTP/WebSocket monitor
type MonitorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Listen   string `yaml:"listen"`             // host:port
	MDNS     bool   `yaml:"mdns"`               // Advertise _sidbridge._tcp
	Instance string `yaml:"instance,omitempty"` // mDNS instance name (default: hostname)
}

// GPIOConfig names the periph.io pins wired to the Bluetooth module.
// Pin names are those known to gpioreg, e.g. GPIO17.
type GPIOConfig struct {
	Enabled       bool     `yaml:"enabled"`
	PowerPins     []string `yaml:"power_pins"`    // Bluetooth module supply (driven together)
	RadioChannel  string   `yaml:"radio_channel"` // Transistor switching the radio phone channel
	NextTrack     string   `yaml:"next_track"`
	PreviousTrack string   `yaml:"previous_track"`
}

// SimulatorConfig controls the built-in vehicle-side simulator
type SimulatorConfig struct {
	Enabled    bool   `yaml:"enabled"`
	IntervalMS int    `yaml:"interval_ms"` // Time between vehicle broadcasts
	Text       string `yaml:"text"`        // Vehicle-side row content
}

// Interval returns the broadcast interval as a duration
func (s *SimulatorConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// HexByte is a byte written to YAML in hex (0x19). Decimal values are
// accepted on read.
type HexByte byte

// MarshalYAML implements yaml.Marshaler
func (h HexByte) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: fmt.Sprintf("0x%02X", byte(h)),
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (h *HexByte) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(node.Value, 0, 8)
	if err != nil {
		return fmt.Errorf("line %d: invalid byte value %q", node.Line, node.Value)
	}
	*h = HexByte(v)
	return nil
}

// Default creates a Config populated with default values
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Bus: &BusConfig{
			Driver:  "socketcan",
			Channel: "can0",
		},
		Display: &DisplayConfig{
			Row:            2,
			SelfID:         0x19,
			FrameGapMS:     10,
			PollIntervalMS: 2,
		},
		Monitor: &MonitorConfig{
			Enabled: true,
			Listen:  ":8787",
			MDNS:    true,
		},
		GPIO: &GPIOConfig{
			Enabled:       false,
			PowerPins:     []string{"GPIO17", "GPIO27"},
			RadioChannel:  "GPIO22",
			NextTrack:     "GPIO23",
			PreviousTrack: "GPIO24",
		},
		Simulator: &SimulatorConfig{
			Enabled:    false,
			IntervalMS: 1000,
			Text:       "RADIO P1 98",
		},
	}
}

// fillDefaults replaces missing sections with their defaults
func (c *Config) fillDefaults() {
	def := Default()
	if c.Bus == nil {
		c.Bus = def.Bus
	}
	if c.Display == nil {
		c.Display = def.Display
	}
	if c.Monitor == nil {
		c.Monitor = def.Monitor
	}
	if c.GPIO == nil {
		c.GPIO = def.GPIO
	}
	if c.Simulator == nil {
		c.Simulator = def.Simulator
	}
}

// Validate checks the configuration for values the bridge cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion))
	}
	if c.Bus != nil {
		if c.Bus.Driver == "" {
			errs = append(errs, errors.New("bus.driver must be set"))
		}
		if c.Bus.Channel == "" {
			errs = append(errs, errors.New("bus.channel must be set"))
		}
	}
	if c.Display != nil {
		if c.Display.Row < 1 || c.Display.Row > 2 {
			errs = append(errs, fmt.Errorf("display.row must be 1 or 2, got %d", c.Display.Row))
		}
		if c.Display.FrameGapMS < 0 {
			errs = append(errs, fmt.Errorf("display.frame_gap_ms must not be negative, got %d", c.Display.FrameGapMS))
		}
		if c.Display.PollIntervalMS < 0 {
			errs = append(errs, fmt.Errorf("display.poll_interval_ms must not be negative, got %d", c.Display.PollIntervalMS))
		}
	}
	if c.Monitor != nil && c.Monitor.Enabled && c.Monitor.Listen == "" {
		errs = append(errs, errors.New("monitor.listen must be set when the monitor is enabled"))
	}
	if c.GPIO != nil && c.GPIO.Enabled {
		if len(c.GPIO.PowerPins) == 0 {
			errs = append(errs, errors.New("gpio.power_pins must name at least one pin"))
		}
		if c.GPIO.NextTrack == "" || c.GPIO.PreviousTrack == "" {
			errs = append(errs, errors.New("gpio.next_track and gpio.previous_track must be set"))
		}
	}
	if c.Simulator != nil && c.Simulator.Enabled && c.Simulator.IntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("simulator.interval_ms must be positive, got %d", c.Simulator.IntervalMS))
	}

	return errors.Join(errs...)
}
