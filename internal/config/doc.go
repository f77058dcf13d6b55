// Package config provides the bridge configuration file.
//
// The configuration is a YAML file holding the bus driver, display row
// settings, the monitor listener, GPIO pin names and the simulator. Every
// section is optional; missing sections take the values from Default.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/sidbridge/config.yaml or $HOME/.config/sidbridge/config.yaml
//   - macOS: $HOME/.config/sidbridge/config.yaml
//   - Windows: %LOCALAPPDATA%\sidbridge\config.yaml
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.Bus.Channel = "can1"
//
//	// Save changes atomically
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
