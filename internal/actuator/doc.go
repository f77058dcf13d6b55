// Package actuator drives the hardware around the bridge.
//
// Bluetooth switches a Bluetooth audio module through periph.io GPIO pins
// and skips tracks by pulsing its track lines low for 70ms. LogLights and
// LogBluetooth report the same commands to the log when no hardware is
// attached.
package actuator
