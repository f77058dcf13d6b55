package display

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

// Listener receives the auxiliary frames the display core does not process
type Listener interface {
	OnButtons(b protocol.Buttons)
	OnLighting(l protocol.Lighting)
	OnVehicle(v protocol.Vehicle)
}

// NopListener ignores every auxiliary frame
type NopListener struct{}

func (NopListener) OnButtons(protocol.Buttons)   {}
func (NopListener) OnLighting(protocol.Lighting) {}
func (NopListener) OnVehicle(protocol.Vehicle)   {}

// Dispatcher routes received bus frames by identifier
type Dispatcher struct {
	scheduler *Scheduler
	listener  Listener
	displayID uint32

	mu     sync.Mutex
	counts map[uint32]uint64
}

// NewDispatcher creates a dispatcher feeding scheduler and listener.
// A nil listener drops auxiliary frames.
func NewDispatcher(scheduler *Scheduler, listener Listener) *Dispatcher {
	if listener == nil {
		listener = NopListener{}
	}
	return &Dispatcher{
		scheduler: scheduler,
		listener:  listener,
		displayID: scheduler.cfg.MessageID,
		counts:    make(map[uint32]uint64),
	}
}

// OnBusFrame handles one received frame. Unknown identifiers and malformed
// payloads are ignored.
func (d *Dispatcher) OnBusFrame(f protocol.Frame) {
	d.mu.Lock()
	d.counts[f.ID]++
	d.mu.Unlock()

	logging.LogFrame("rx", f.ID, f.Data[:])

	switch f.ID {
	case protocol.IDTextPriority:
		u, err := protocol.DecodePriorityUpdate(f.Data)
		if err != nil {
			logging.Warn("Ignoring priority update",
				zap.String("frame", f.String()),
				zap.Error(err),
			)
			return
		}
		_ = d.scheduler.SetPriority(u.Row, u.Owner)

	case d.displayID:
		d.scheduler.OnDisplayFrame(f.Data)

	case protocol.IDButtons:
		d.listener.OnButtons(protocol.DecodeButtons(f.Data))

	case protocol.IDLighting:
		d.listener.OnLighting(protocol.DecodeLighting(f.Data))

	case protocol.IDSpeedRPM:
		d.listener.OnVehicle(protocol.DecodeVehicle(f.Data))
	}
}

// Counts returns the number of frames received per identifier
func (d *Dispatcher) Counts() map[uint32]uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[uint32]uint64, len(d.counts))
	for id, n := range d.counts {
		out[id] = n
	}
	return out
}
