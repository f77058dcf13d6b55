package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/canbus"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

const (
	// DefaultPollInterval is how long the loop sleeps when the bus is idle
	DefaultPollInterval = 2 * time.Millisecond

	// maxFramesPerPoll bounds how many frames are handled before the
	// scheduler gets its next tick
	maxFramesPerPoll = 64
)

// Options configures a Bridge
type Options struct {
	Bus          canbus.Bus
	Display      display.Config
	PollInterval time.Duration
	Clock        display.Clock
	Bluetooth    Bluetooth
	Lights       Lights
}

// Bridge runs the event loop connecting the bus to the display scheduler
// and the button actions
type Bridge struct {
	bus          canbus.Bus
	clock        display.Clock
	pollInterval time.Duration

	scheduler  *display.Scheduler
	dispatcher *display.Dispatcher
	actions    *Actions
}

// New wires a bridge from opts. The bus is not closed by the bridge.
func New(opts Options) (*Bridge, error) {
	if opts.Bus == nil {
		return nil, errors.New("bridge: bus is required")
	}
	if opts.Bluetooth == nil || opts.Lights == nil {
		return nil, errors.New("bridge: bluetooth and lights are required")
	}
	if opts.Clock == nil {
		opts.Clock = display.SystemClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	sched := display.NewScheduler(opts.Display, opts.Bus, opts.Clock)
	actions := NewActions(sched, opts.Bluetooth, opts.Lights, opts.Clock)

	return &Bridge{
		bus:          opts.Bus,
		clock:        opts.Clock,
		pollInterval: opts.PollInterval,
		scheduler:    sched,
		dispatcher:   display.NewDispatcher(sched, actions),
		actions:      actions,
	}, nil
}

// Scheduler returns the display scheduler
func (b *Bridge) Scheduler() *display.Scheduler { return b.scheduler }

// Actions returns the button handler
func (b *Bridge) Actions() *Actions { return b.actions }

// SendUserMessage shows text on the display for duration
func (b *Bridge) SendUserMessage(text string, duration time.Duration) bool {
	return b.scheduler.SendUserMessage(text, duration)
}

// CancelUserMessage restores the vehicle content
func (b *Bridge) CancelUserMessage() {
	b.scheduler.CancelUserMessage()
}

// Run processes bus frames and scheduler ticks until ctx is cancelled or the
// bus is closed
func (b *Bridge) Run(ctx context.Context) error {
	logging.Info("Bridge running",
		zap.Duration("poll_interval", b.pollInterval),
	)

	timer := time.NewTimer(b.pollInterval)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			logging.Info("Bridge stopped")
			return nil
		}

		n, err := b.poll()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		timer.Reset(b.pollInterval)
		select {
		case <-ctx.Done():
			logging.Info("Bridge stopped")
			return nil
		case <-timer.C:
		}
	}
}

// poll handles the frames waiting on the bus, then ticks the scheduler once.
// It returns the number of frames handled.
func (b *Bridge) poll() (int, error) {
	n := 0
	for n < maxFramesPerPoll {
		frame, ok, err := b.bus.Receive()
		if err != nil {
			if errors.Is(err, canbus.ErrClosed) {
				return n, fmt.Errorf("bus closed: %w", err)
			}
			logging.Warn("Bus receive failed", zap.Error(err))
			break
		}
		if !ok {
			break
		}
		b.dispatcher.OnBusFrame(frame)
		n++
	}

	b.scheduler.Tick(b.clock.Now())
	return n, nil
}

// FrameCount is the number of frames received on one identifier
type FrameCount struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// Status is everything the monitor shows about a running bridge
type Status struct {
	Display  display.Snapshot `json:"display"`
	Controls Controls         `json:"controls"`
	Frames   []FrameCount     `json:"frames"`
}

// Status returns the current bridge state
func (b *Bridge) Status() Status {
	counts := b.dispatcher.Counts()
	frames := make([]FrameCount, 0, len(counts))
	for id, n := range counts {
		frames = append(frames, FrameCount{ID: id, Name: protocol.IdentifierName(id), Count: n})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].ID < frames[j].ID })

	return Status{
		Display:  b.scheduler.Snapshot(),
		Controls: b.actions.Controls(),
		Frames:   frames,
	}
}
