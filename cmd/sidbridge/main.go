// Sidbridge writes messages to the Saab SID display over the I-Bus.
//
// It shares the radio's row with the vehicle: a message is written only
// when the text priority table grants the row, resent whenever the vehicle
// redraws it, and replaced by the vehicle content once it expires. A small
// HTTP and WebSocket API lets monitors watch the display and send messages.
//
// Usage:
//
//	sidbridge [command] [flags]
//
// See 'sidbridge --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/sidbridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "sidbridge",
	Short: "Saab SID display bridge",
	Long: `A bridge that writes text to the Saab SID display over the I-Bus.

The bridge claims the radio row only when the vehicle grants it, keeps
its message on screen while the vehicle redraws, and hands the row back
when the message expires. Steering wheel buttons control an attached
Bluetooth audio module.

Use 'sidbridge run' on the car computer. The send, cancel and state
commands talk to a running bridge over its monitor API.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.Detailed("sidbridge"))
	},
}
