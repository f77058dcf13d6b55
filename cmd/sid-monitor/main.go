// Sid-monitor is a terminal monitor for a running sidbridge.
//
// It shows the SID row as the car sees it, the text priority table, the
// Bluetooth and lighting state and frame counters, and can send and cancel
// messages.
//
// Usage:
//
//	sid-monitor [--addr host:port]
//
// Without --addr the monitor scans the network for bridges over mDNS.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/sidbridge/internal/discovery"
	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/server"
	"github.com/muurk/sidbridge/internal/tui"
	"github.com/muurk/sidbridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command flags
var (
	addr        string
	scanTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sid-monitor",
	Short: "Terminal monitor for sidbridge",
	Long: `An interactive terminal monitor for a running sidbridge.

Connects to the bridge monitor API and shows the live display row,
priority table, controls and frame counters. Press s to send a message,
c to cancel it and q to quit.

Without --addr the monitor discovers bridges on the local network.`,
	Example: `  # Discover bridges and pick one
  sid-monitor

  # Connect directly
  sid-monitor --addr 192.168.1.20:8787`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMonitor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "mDNS scan timeout")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Bridge monitor address (skips discovery)")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)
}

func connect(addr string) (tui.API, error) {
	return server.NewClient(addr, version.UserAgent("sid-monitor"))
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// zap output would corrupt the full-screen view; stay silent unless
	// SIDBRIDGE_LOG_LEVEL asks otherwise
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout

	return tui.Run(ctx, tui.Options{
		Addr:    addr,
		Scanner: scanner,
		Connect: connect,
	})
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List bridges advertised on the network",
	Long: `Scan for sidbridge monitor APIs using mDNS/DNS-SD discovery.

Lists every bridge that answers within the timeout together with the
version, row and bus driver it advertises.`,
	Example: `  # Scan for 5 seconds (default)
  sid-monitor discover

  # Longer scan for busy networks
  sid-monitor discover --timeout 15s`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for %s services (timeout: %s)...\n\n", discovery.ServiceType, scanTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout
	bridges, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(bridges) == 0 {
		fmt.Println("No bridges found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure 'sidbridge run' is running with monitor.mdns enabled")
		fmt.Println("  - Verify this machine is on the same network as the bridge")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --addr to connect directly if multicast is blocked")
		return nil
	}

	fmt.Printf("Found %d bridge(s):\n\n", len(bridges))
	for i, b := range bridges {
		fmt.Printf("%d. %s\n", i+1, b.Instance)
		fmt.Printf("   Address: %s\n", b.Addr())
		if b.Host != "" {
			fmt.Printf("   Host:    %s\n", b.Host)
		}
		for _, k := range []string{"version", "row", "bus"} {
			if v := b.GetMetadata(k); v != "" {
				fmt.Printf("   %-8s %s\n", k+":", v)
			}
		}
		fmt.Println()
	}

	fmt.Println("Use 'sid-monitor --addr <address>' to connect to a bridge")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.Detailed("sid-monitor"))
	},
}
