// Package tui implements the terminal monitor for a running bridge.
//
// The monitor connects to the bridge HTTP API, either directly by address
// or after an mDNS scan, and renders the live status stream: the row as the
// SID shows it, who owns it and for how long, the text priority table, the
// Bluetooth and lighting controls and per-identifier frame counters.
//
// # Keys
//
//	s, enter  compose and send a message
//	d         cycle the message duration
//	c         cancel the message and restore the vehicle content
//	?         toggle full help
//	q         quit
//
// # Rendering
//
// RenderStatus and the other Render functions are plain string renderers.
// The sidbridge CLI uses them through Printer for one-shot output, so the
// state command and the monitor look the same.
package tui
