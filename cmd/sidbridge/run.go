package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/actuator"
	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/canbus"
	"github.com/muurk/sidbridge/internal/config"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
	"github.com/muurk/sidbridge/internal/server"
	"github.com/muurk/sidbridge/internal/version"
)

// Run command flags
var (
	busDriver  string
	busChannel string
	listenAddr string
	noMonitor  bool
	noMDNS     bool
	simulate   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge",
	Long: `Run the bridge event loop on the configured bus.

The bridge reads priority, display, button, lighting and speed frames,
arbitrates the display row and serves the monitor API. It stops cleanly
on SIGINT or SIGTERM, restoring the vehicle content if a message is
still on screen.

With --simulate the bridge runs on a virtual bus with a simulated
vehicle, which is useful on a desk without a car attached.`,
	Example: `  # Run with the config file settings
  sidbridge run

  # Run on can1 with debug logging
  sidbridge run --channel can1 --log-level debug

  # Desk test against the vehicle simulator
  sidbridge run --simulate --log-level info

  # Monitor API on a custom port without mDNS
  sidbridge run --listen :9000 --no-mdns`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().StringVar(&busDriver, "driver", "", "Bus driver ("+strings.Join(canbus.Drivers(), ", ")+")")
	runCmd.Flags().StringVar(&busChannel, "channel", "", "Bus channel, e.g. can0")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "Monitor API listen address")
	runCmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "Disable the monitor API")
	runCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the monitor over mDNS")
	runCmd.Flags().BoolVar(&simulate, "simulate", false, "Run on a virtual bus with a simulated vehicle")

	rootCmd.AddCommand(runCmd)
}

// loadConfig reads the config file and applies the global flags
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// applyRunFlags overrides config values with run flags that were set
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Bus.Driver = busDriver
	}
	if flags.Changed("channel") {
		cfg.Bus.Channel = busChannel
	}
	if flags.Changed("listen") {
		cfg.Monitor.Listen = listenAddr
	}
	if noMonitor {
		cfg.Monitor.Enabled = false
	}
	if noMDNS {
		cfg.Monitor.MDNS = false
	}
	if simulate {
		cfg.Simulator.Enabled = true
	}
	if cfg.Simulator.Enabled {
		// The simulator can only reach the bridge on a virtual bus
		cfg.Bus.Driver = "virtual"
		if !flags.Changed("channel") {
			cfg.Bus.Channel = "sim"
		}
	}
}

// displayConfig maps the file settings onto the scheduler configuration
func displayConfig(cfg *config.DisplayConfig) display.Config {
	dc := display.DefaultConfig()
	dc.Row = byte(cfg.Row)
	dc.SelfID = byte(cfg.SelfID)
	dc.FrameGap = cfg.FrameGap()
	return dc
}

// openActuators returns the Bluetooth and light actuators. Without GPIO the
// log stand-ins are used so the bridge runs on any machine.
func openActuators(cfg *config.GPIOConfig) (bridge.Bluetooth, bridge.Lights, func(), error) {
	lights := &actuator.LogLights{}
	if !cfg.Enabled {
		return &actuator.LogBluetooth{}, lights, func() {}, nil
	}

	bt, err := actuator.OpenBluetooth(actuator.PinNames{
		Power:         cfg.PowerPins,
		RadioChannel:  cfg.RadioChannel,
		NextTrack:     cfg.NextTrack,
		PreviousTrack: cfg.PreviousTrack,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open Bluetooth GPIO: %w", err)
	}
	halt := func() {
		if err := bt.Halt(); err != nil {
			logging.Warn("Failed to release Bluetooth GPIO", zap.Error(err))
		}
	}
	return bt, lights, halt, nil
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()

	logging.Info("Starting sidbridge",
		zap.String("version", version.Full()),
		zap.String("driver", cfg.Bus.Driver),
		zap.String("channel", cfg.Bus.Channel),
		zap.Int("row", cfg.Display.Row),
		zap.String("self_id", protocol.DeviceName(byte(cfg.Display.SelfID))),
	)

	bus, err := canbus.Open(cfg.Bus.Driver, cfg.Bus.Channel)
	if err != nil {
		return err
	}
	defer bus.Close()

	bt, lights, halt, err := openActuators(cfg.GPIO)
	if err != nil {
		return err
	}
	defer halt()

	b, err := bridge.New(bridge.Options{
		Bus:          bus,
		Display:      displayConfig(cfg.Display),
		PollInterval: cfg.Display.PollInterval(),
		Bluetooth:    bt,
		Lights:       lights,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				// One failed component stops the rest
				stop()
			}
		}()
	}

	if cfg.Monitor.Enabled {
		srv := server.New(&server.Config{
			Listen:   cfg.Monitor.Listen,
			MDNS:     cfg.Monitor.MDNS,
			Instance: cfg.Monitor.Instance,
			TXT: []string{
				"version=" + version.Version,
				"row=" + fmt.Sprint(cfg.Display.Row),
				"bus=" + cfg.Bus.Driver,
			},
		}, b)
		b.Scheduler().SetObserver(srv)
		start("monitor", srv.Start)
	}

	if cfg.Simulator.Enabled {
		simBus := canbus.OpenVirtual(cfg.Bus.Channel)
		defer simBus.Close()
		sim := bridge.NewSimulator(simBus, bridge.SimulatorConfig{
			Text:     cfg.Simulator.Text,
			Interval: cfg.Simulator.Interval(),
			Row:      byte(cfg.Display.Row),
			Grantee:  byte(cfg.Display.SelfID),
			FrameGap: cfg.Display.FrameGap(),
		}, nil)
		start("simulator", sim.Run)
	}

	start("bridge", b.Run)

	<-ctx.Done()
	logging.Info("Shutting down sidbridge...")

	// Hand the row back before the bus closes
	b.CancelUserMessage()

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logging.Info("sidbridge stopped")
	return nil
}
