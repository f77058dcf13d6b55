package display

import (
	"time"

	"github.com/muurk/sidbridge/internal/protocol"
)

// Transport writes frames to the bus
type Transport interface {
	Send(frame protocol.Frame) error
}

// Clock supplies the monotonic time read once per tick and the bounded
// spacing between sub-frames of one display update
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Observer is notified with a fresh snapshot after every state change
type Observer interface {
	DisplayChanged(snap Snapshot)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(snap Snapshot)

// DisplayChanged calls f(snap)
func (f ObserverFunc) DisplayChanged(snap Snapshot) { f(snap) }

// SystemClock is the wall clock with a monotonic reading
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep blocks for d
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
