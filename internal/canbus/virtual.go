package canbus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

// VirtualQueueSize is the number of frames buffered per virtual endpoint.
// When an endpoint falls behind, the oldest frames are dropped.
const VirtualQueueSize = 256

func init() {
	Register("virtual", func(channel string) (Bus, error) {
		return OpenVirtual(channel), nil
	})
}

var (
	hubsMu sync.Mutex
	hubs   = make(map[string]*hub)
)

// hub connects every virtual endpoint opened on one channel name
type hub struct {
	mu        sync.Mutex
	name      string
	endpoints map[*Virtual]struct{}
}

func getHub(name string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	h, ok := hubs[name]
	if !ok {
		h = &hub{name: name, endpoints: make(map[*Virtual]struct{})}
		hubs[name] = h
	}
	return h
}

// broadcast delivers f to every endpoint except from
func (h *hub) broadcast(from *Virtual, f protocol.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ep := range h.endpoints {
		if ep != from {
			ep.deliver(f)
		}
	}
}

func (h *hub) leave(ep *Virtual) {
	h.mu.Lock()
	delete(h.endpoints, ep)
	empty := len(h.endpoints) == 0
	h.mu.Unlock()

	if empty {
		hubsMu.Lock()
		if hubs[h.name] == h {
			delete(hubs, h.name)
		}
		hubsMu.Unlock()
	}
}

// Virtual is an in-process bus endpoint. Frames sent on one endpoint are
// received by every other endpoint open on the same channel, like nodes on
// a shared wire. An endpoint does not receive its own frames.
type Virtual struct {
	hub   *hub
	queue chan protocol.Frame

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// OpenVirtual joins the named virtual channel
func OpenVirtual(channel string) *Virtual {
	h := getHub(channel)
	v := &Virtual{
		hub:   h,
		queue: make(chan protocol.Frame, VirtualQueueSize),
	}
	h.mu.Lock()
	h.endpoints[v] = struct{}{}
	h.mu.Unlock()
	return v
}

// Send broadcasts f to the other endpoints on the channel
func (v *Virtual) Send(f protocol.Frame) error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return ErrClosed
	}
	v.hub.broadcast(v, f)
	return nil
}

// Receive returns the oldest queued frame, if any
func (v *Virtual) Receive() (protocol.Frame, bool, error) {
	select {
	case f := <-v.queue:
		return f, true, nil
	default:
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return protocol.Frame{}, false, ErrClosed
	}
	return protocol.Frame{}, false, nil
}

// Close leaves the channel
func (v *Virtual) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	v.hub.leave(v)
	return nil
}

// Dropped returns the number of frames discarded because the queue was full
func (v *Virtual) Dropped() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropped
}

func (v *Virtual) deliver(f protocol.Frame) {
	for {
		select {
		case v.queue <- f:
			return
		default:
		}

		// Queue full: drop the oldest frame and try again
		select {
		case <-v.queue:
			v.mu.Lock()
			v.dropped++
			n := v.dropped
			v.mu.Unlock()
			if n == 1 || n%VirtualQueueSize == 0 {
				logging.Warn("Virtual bus endpoint falling behind",
					zap.String("channel", v.hub.name),
					zap.Uint64("dropped", n),
				)
			}
		default:
		}
	}
}
