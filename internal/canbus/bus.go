package canbus

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/muurk/sidbridge/internal/protocol"
)

// Bus is a connection to the I-Bus which can send and receive frames.
// Implementations are safe for concurrent use.
type Bus interface {
	// Send transmits a frame
	Send(frame protocol.Frame) error

	// Receive returns the next pending frame without blocking. ok is false
	// when nothing is waiting.
	Receive() (frame protocol.Frame, ok bool, err error)

	// Close releases the connection. Further calls return ErrClosed.
	Close() error
}

// ErrClosed is returned by a Bus after Close
var ErrClosed = errors.New("canbus: closed")

// OpenFunc opens a bus on the named channel
type OpenFunc func(channel string) (Bus, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]OpenFunc)
)

// Register makes a driver available to Open under name.
// It is called from the init function of each driver.
func Register(name string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if open == nil {
		panic("canbus: Register open func is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("canbus: Register called twice for driver " + name)
	}
	drivers[name] = open
}

// Drivers returns the names of the registered drivers, sorted
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects to channel using the named driver
func Open(driver, channel string) (Bus, error) {
	driversMu.RLock()
	open, ok := drivers[driver]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported bus driver %q (available: %v)", driver, Drivers())
	}
	bus, err := open(channel)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s bus on %q: %w", driver, channel, err)
	}
	return bus, nil
}
