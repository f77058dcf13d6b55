package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/muurk/sidbridge/internal/config"
)

func TestLocalAddr(t *testing.T) {
	tests := []struct {
		listen string
		want   string
	}{
		{":8787", "127.0.0.1:8787"},
		{"0.0.0.0:8787", "127.0.0.1:8787"},
		{"[::]:8787", "127.0.0.1:8787"},
		{"192.168.1.20:9000", "192.168.1.20:9000"},
		{"not-an-addr", "not-an-addr"},
	}
	for _, tt := range tests {
		t.Run(tt.listen, func(t *testing.T) {
			if got := localAddr(tt.listen); got != tt.want {
				t.Errorf("localAddr(%q) = %q, want %q", tt.listen, got, tt.want)
			}
		})
	}
}

func newRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringVar(&busDriver, "driver", "", "")
	cmd.Flags().StringVar(&busChannel, "channel", "", "")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "")
	cmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "")
	cmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestApplyRunFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantDriver  string
		wantChannel string
		wantListen  string
		wantMonitor bool
		wantMDNS    bool
	}{
		{
			name:        "defaults kept",
			wantDriver:  "socketcan",
			wantChannel: "can0",
			wantListen:  ":8787",
			wantMonitor: true,
			wantMDNS:    true,
		},
		{
			name:        "overrides",
			args:        []string{"--channel", "can1", "--listen", ":9000", "--no-mdns"},
			wantDriver:  "socketcan",
			wantChannel: "can1",
			wantListen:  ":9000",
			wantMonitor: true,
		},
		{
			name:        "simulate forces virtual bus",
			args:        []string{"--simulate", "--no-monitor"},
			wantDriver:  "virtual",
			wantChannel: "sim",
			wantListen:  ":8787",
			wantMDNS:    true,
		},
		{
			name:        "simulate keeps explicit channel",
			args:        []string{"--simulate", "--channel", "bench"},
			wantDriver:  "virtual",
			wantChannel: "bench",
			wantListen:  ":8787",
			wantMonitor: true,
			wantMDNS:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRunFlags(t, tt.args...)
			cfg := config.Default()
			applyRunFlags(cmd, cfg)

			if cfg.Bus.Driver != tt.wantDriver || cfg.Bus.Channel != tt.wantChannel {
				t.Errorf("bus = %s/%s, want %s/%s", cfg.Bus.Driver, cfg.Bus.Channel, tt.wantDriver, tt.wantChannel)
			}
			if cfg.Monitor.Listen != tt.wantListen {
				t.Errorf("listen = %q, want %q", cfg.Monitor.Listen, tt.wantListen)
			}
			if cfg.Monitor.Enabled != tt.wantMonitor || cfg.Monitor.MDNS != tt.wantMDNS {
				t.Errorf("monitor enabled=%v mdns=%v, want %v %v",
					cfg.Monitor.Enabled, cfg.Monitor.MDNS, tt.wantMonitor, tt.wantMDNS)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestDisplayConfig(t *testing.T) {
	cfg := config.Default().Display
	cfg.Row = 1
	cfg.SelfID = 0x32
	cfg.FrameGapMS = 20

	dc := displayConfig(cfg)
	if dc.Row != 1 || dc.SelfID != 0x32 || dc.FrameGap.Milliseconds() != 20 {
		t.Errorf("displayConfig = %+v", dc)
	}
	if dc.MessageID != 0x328 {
		t.Errorf("MessageID = 0x%X, want 0x328", dc.MessageID)
	}
}

func TestOpenActuators_WithoutGPIO(t *testing.T) {
	bt, lights, halt, err := openActuators(config.Default().GPIO)
	if err != nil {
		t.Fatalf("openActuators: %v", err)
	}
	defer halt()
	if bt == nil || lights == nil {
		t.Fatal("nil actuator")
	}
	if err := bt.SetPower(true); err != nil {
		t.Errorf("SetPower: %v", err)
	}
}
