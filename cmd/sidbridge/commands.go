package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/sidbridge/internal/config"
	"github.com/muurk/sidbridge/internal/discovery"
	"github.com/muurk/sidbridge/internal/server"
	"github.com/muurk/sidbridge/internal/tui"
	"github.com/muurk/sidbridge/internal/version"
)

// Client command flags
var (
	bridgeAddr   string
	useDiscovery bool
	duration     time.Duration
	outputFormat string
	forceInit    bool
)

func init() {
	for _, cmd := range []*cobra.Command{sendCmd, cancelCmd, stateCmd} {
		cmd.Flags().StringVar(&bridgeAddr, "addr", "", "Monitor API address (default: monitor.listen from the config)")
		cmd.Flags().BoolVar(&useDiscovery, "discover", false, "Find the bridge over mDNS instead of --addr")
	}
	sendCmd.Flags().DurationVar(&duration, "duration", 2*time.Second, "How long the message stays (0 = until cancelled)")
	stateCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send TEXT",
	Short: "Show a message on the SID",
	Long: `Ask a running bridge to show TEXT on its display row.

Messages longer than 12 characters scroll; anything past 23 characters is
rejected. The message is shown only when the vehicle has granted the row.
A denied message is reported but is not an error, since another device
can legitimately hold the row.`,
	Example: `  # Two-second message (default)
  sidbridge send "NEXT TRACK"

  # Scrolling message for 10 seconds
  sidbridge send "BLUETOOTH READY" --duration 10s

  # Keep the message until 'sidbridge cancel'
  sidbridge send "PARKED" --duration 0`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	client, addr, err := newClient(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	sent, err := client.Send(ctx, args[0], duration)
	p := tui.NewPrinter(nil)
	if err != nil {
		p.PrintError("Message not sent", err,
			"Check that 'sidbridge run' is running with the monitor enabled",
			"Use --addr or --discover to point at the bridge")
		return err
	}

	shown := duration.String()
	if duration == 0 {
		shown = "until cancelled"
	}
	if !sent {
		p.PrintWarning("Row not granted",
			tui.Detail{Key: "Bridge", Value: addr},
			tui.Detail{Key: "Text", Value: args[0]},
			tui.Detail{Key: "Note", Value: "another device owns the row, try again later"},
		)
		return nil
	}
	p.PrintSuccess("Message on display",
		tui.Detail{Key: "Bridge", Value: addr},
		tui.Detail{Key: "Text", Value: args[0]},
		tui.Detail{Key: "Duration", Value: shown},
	)
	return nil
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Remove the message and restore the vehicle content",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, addr, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := client.Cancel(ctx); err != nil {
			return err
		}
		fmt.Printf("Message cancelled on %s\n", addr)
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the display and bus state of a running bridge",
	Example: `  # Styled report
  sidbridge state

  # JSON for scripting
  sidbridge state --format json`,
	Args: cobra.NoArgs,
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	client, addr, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	status, err := client.State(ctx)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		p := tui.NewPrinter(nil)
		p.PrintHeader("Bridge state", "sidbridge state", tui.Detail{Key: "Bridge", Value: addr})
		p.PrintStatus(status)
	default:
		return fmt.Errorf("unknown format %q (want detailed or json)", outputFormat)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if _, err := os.Stat(configPath); err == nil && !forceInit {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
			}
			if err := config.Default().SaveFile(configPath); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", configPath)
			return nil
		}

		path, err := config.CreateDefaultConfig(forceInit)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

// newClient resolves the bridge address from the flags, mDNS or the config
// file and returns a client for it
func newClient(ctx context.Context) (*server.Client, string, error) {
	addr, err := resolveAddr(ctx)
	if err != nil {
		return nil, "", err
	}
	client, err := server.NewClient(addr, version.UserAgent("sidbridge"))
	if err != nil {
		return nil, "", err
	}
	return client, addr, nil
}

func resolveAddr(ctx context.Context) (string, error) {
	if bridgeAddr != "" {
		return bridgeAddr, nil
	}
	if useDiscovery {
		if ctx == nil {
			ctx = context.Background()
		}
		b, err := discovery.FindFirst(ctx, discovery.DefaultScanTimeout)
		if err != nil {
			return "", fmt.Errorf("bridge discovery failed: %w", err)
		}
		return b.Addr(), nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return localAddr(cfg.Monitor.Listen), nil
}

// localAddr turns a listen address into one a local client can dial
func localAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
