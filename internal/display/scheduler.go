package display

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

const (
	// DefaultFrameGap is the pause between the sub-frames of one update
	DefaultFrameGap = 10 * time.Millisecond

	// DefaultIndefiniteScrollDelay is the scroll step used for long messages
	// that have no display duration to spread the scroll over
	DefaultIndefiniteScrollDelay = 500 * time.Millisecond
)

// Config holds the scheduler settings
type Config struct {
	Row                   byte          // Display row written by the bridge
	SelfID                byte          // Device id the bridge writes as
	MessageID             uint32        // Bus identifier for display content
	FrameGap              time.Duration // Pause between sub-frames
	IndefiniteScrollDelay time.Duration // Scroll step when duration is zero
}

// DefaultConfig returns the settings used by the radio on row 2
func DefaultConfig() Config {
	return Config{
		Row:                   protocol.DefaultRow,
		SelfID:                protocol.DeviceRadio,
		MessageID:             protocol.IDRadioMessage,
		FrameGap:              DefaultFrameGap,
		IndefiniteScrollDelay: DefaultIndefiniteScrollDelay,
	}
}

// userMessage is the last message accepted by SendUserMessage
type userMessage struct {
	text     string
	sentAt   time.Time
	duration time.Duration
	active   bool // still eligible for resend and expiry
}

// Scheduler owns the shared display row. It tracks whose content is shown,
// advances scrolling, resends user messages the vehicle side overwrote, and
// restores vehicle content when a user message expires or is cancelled.
//
// All methods are safe for concurrent use; state changes are serialized
// behind one mutex and observers are notified after it is released.
type Scheduler struct {
	mu        sync.Mutex
	cfg       Config
	transport Transport
	clock     Clock
	observer  Observer

	priority    protocol.PriorityTable
	reassembler protocol.Reassembler

	vehicle    protocol.DisplayBuffer
	hasVehicle bool
	outgoing   protocol.DisplayBuffer

	user           userMessage
	ownership      Ownership
	scroll         *protocol.ScrollState
	restorePending bool

	stats Stats
}

// NewScheduler creates a scheduler writing through transport
func NewScheduler(cfg Config, transport Transport, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.MessageID == 0 {
		cfg.MessageID = protocol.IDRadioMessage
	}
	if cfg.IndefiniteScrollDelay <= 0 {
		cfg.IndefiniteScrollDelay = DefaultIndefiniteScrollDelay
	}
	return &Scheduler{
		cfg:       cfg,
		transport: transport,
		clock:     clock,
		priority:  protocol.NewPriorityTable(),
		ownership: Ownership{Owner: OwnerVehicle},
	}
}

// SetObserver registers the observer notified after state changes
func (s *Scheduler) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// SetPriority records a row owner announced on the bus
func (s *Scheduler) SetPriority(row, owner byte) error {
	s.mu.Lock()
	if err := s.priority.SetPriority(row, owner); err != nil {
		s.mu.Unlock()
		return err
	}
	logging.Debug("Priority updated",
		zap.Uint8("row", row),
		zap.String("owner", protocol.DeviceName(owner)),
	)
	s.publishLocked()
	return nil
}

// CanWrite reports whether the bridge may currently write its row
func (s *Scheduler) CanWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priority.CanWrite(s.cfg.Row, s.cfg.SelfID)
}

// SendUserMessage writes text to the display for duration (zero keeps it
// until cancelled). Text longer than the row scrolls; text past
// protocol.MaxMessageLength is dropped. It returns false, changing nothing,
// when the bridge does not hold write permission or the write fails.
func (s *Scheduler) SendUserMessage(text string, duration time.Duration) bool {
	s.mu.Lock()

	text = protocol.TruncateMessage(text)
	buf, scroll := protocol.EncodeMessage(text, s.cfg.Row, duration)
	if !s.writeLocked(buf) {
		s.mu.Unlock()
		return false
	}

	now := s.clock.Now()
	s.outgoing = buf
	s.user = userMessage{text: text, sentAt: now, duration: duration, active: true}
	s.ownership = Ownership{Owner: OwnerUser, Since: now, Duration: duration}
	s.restorePending = false
	if scroll != nil {
		if scroll.Delay == 0 {
			scroll.Delay = s.cfg.IndefiniteScrollDelay
		}
		scroll.LastScrollAt = now
	}
	s.scroll = scroll
	s.stats.UserMessages++

	logging.Info("User message sent",
		zap.String("text", text),
		zap.Duration("duration", duration),
		zap.Bool("scrolling", scroll != nil),
	)
	s.publishLocked()
	return true
}

// CancelUserMessage puts the last vehicle content back on the display. It is
// a no-op while the vehicle content is already shown.
func (s *Scheduler) CancelUserMessage() {
	s.mu.Lock()
	if s.ownership.Owner != OwnerUser {
		s.mu.Unlock()
		return
	}

	s.user.active = false
	s.user.sentAt = time.Time{}
	s.user.duration = 0
	s.restorePending = true
	logging.Info("User message cancelled", zap.String("text", s.user.text))
	s.restoreLocked()
	s.publishLocked()
}

// Tick advances time-driven behavior: expiry of the user message window
// first, then one scroll step when due. Call it once per loop iteration.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	if s.ownership.Owner != OwnerUser {
		s.mu.Unlock()
		return
	}

	expired := s.user.duration > 0 && now.Sub(s.user.sentAt) >= s.user.duration
	if s.restorePending || expired {
		if expired {
			logging.Debug("User message expired", zap.String("text", s.user.text))
		}
		s.user.active = false
		s.restorePending = true
		s.restoreLocked()
		s.publishLocked()
		return
	}

	sc := s.scroll
	if sc == nil || !sc.CanAdvance() || now.Sub(sc.LastScrollAt) < sc.Delay {
		s.mu.Unlock()
		return
	}

	sc.Advance()
	buf := protocol.EncodeWindow(sc.Window(), s.cfg.Row)
	s.outgoing = buf
	sc.LastScrollAt = now
	s.stats.ScrollSteps++
	s.writeLocked(buf)
	s.publishLocked()
}

// OnDisplayFrame feeds one display sub-frame broadcast by the vehicle side.
// A completed cycle becomes the content to restore; if a user message is
// still inside its window it is resent once, verbatim, since the vehicle
// side has just overwritten it.
func (s *Scheduler) OnDisplayFrame(data [protocol.PayloadSize]byte) {
	s.mu.Lock()
	buf, ok := s.reassembler.Feed(data)
	if !ok {
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	s.vehicle = buf
	s.hasVehicle = true
	s.restorePending = false
	s.ownership = Ownership{Owner: OwnerVehicle, Since: now}
	s.stats.VehicleCycles++
	logging.Debug("Vehicle display content received", zap.String("text", buf.Text()))

	if s.userWindowOpen(now) {
		if s.writeLocked(s.outgoing) {
			s.ownership = Ownership{Owner: OwnerUser, Since: s.user.sentAt, Duration: s.user.duration}
			s.stats.Resends++
			logging.Debug("User message resent", zap.String("text", s.outgoing.Text()))
		}
	} else {
		s.user.active = false
		s.scroll = nil
	}
	s.publishLocked()
}

func (s *Scheduler) userWindowOpen(now time.Time) bool {
	if !s.user.active {
		return false
	}
	return s.user.duration == 0 || now.Sub(s.user.sentAt) < s.user.duration
}

// restoreLocked writes the last vehicle content back. Without any vehicle
// content yet there is nothing to write, so ownership is simply handed back.
// A denied write leaves the restore pending for the next tick.
func (s *Scheduler) restoreLocked() {
	if s.hasVehicle && !s.writeLocked(s.vehicle) {
		return
	}
	if s.hasVehicle {
		s.stats.Restores++
	}
	s.ownership = Ownership{Owner: OwnerVehicle, Since: s.clock.Now()}
	s.scroll = nil
	s.restorePending = false
	logging.Info("Vehicle display content restored", zap.String("text", s.vehicle.Text()))
}

// writeLocked sends the three sub-frames of buf in order with the
// configured spacing, after checking write permission.
func (s *Scheduler) writeLocked(buf protocol.DisplayBuffer) bool {
	if !s.priority.CanWrite(s.cfg.Row, s.cfg.SelfID) {
		s.stats.Denied++
		logging.Debug("Display write denied",
			zap.Uint8("row", s.cfg.Row),
			zap.String("priority", s.priority.String()),
		)
		return false
	}

	for i := 0; i < protocol.SubFrameCount; i++ {
		frame := protocol.Frame{ID: s.cfg.MessageID, Data: buf.SubFrame(i)}
		if err := s.transport.Send(frame); err != nil {
			s.stats.WriteErrors++
			logging.Warn("Display write failed",
				zap.Int("sub_frame", i),
				zap.Error(err),
			)
			return false
		}
		if i != protocol.SubFrameCount-1 && s.cfg.FrameGap > 0 {
			s.clock.Sleep(s.cfg.FrameGap)
		}
	}
	return true
}

// publishLocked releases the lock and notifies the observer
func (s *Scheduler) publishLocked() {
	snap := s.snapshotLocked()
	o := s.observer
	s.mu.Unlock()
	if o != nil {
		o.DisplayChanged(snap)
	}
}

// Ownership returns the current display ownership
func (s *Scheduler) Ownership() Ownership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownership
}

// VehicleBuffer returns the last reassembled vehicle content and whether one
// has been received
func (s *Scheduler) VehicleBuffer() (protocol.DisplayBuffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicle, s.hasVehicle
}

// OutgoingBuffer returns the last user buffer encoded by the scheduler
func (s *Scheduler) OutgoingBuffer() protocol.DisplayBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outgoing
}

// Scroll returns a copy of the scroll state, or nil when not scrolling
func (s *Scheduler) Scroll() *protocol.ScrollState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scroll == nil {
		return nil
	}
	sc := *s.scroll
	return &sc
}

// Snapshot returns a copy of the current state
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	now := s.clock.Now()
	snap := Snapshot{
		Owner:        s.ownership.Owner,
		Since:        s.ownership.Since,
		DurationMS:   s.ownership.Duration.Milliseconds(),
		VehicleText:  s.vehicle.Text(),
		VehicleHex:   s.vehicle.Hex(),
		OutgoingText: s.outgoing.Text(),
		OutgoingHex:  s.outgoing.Hex(),
		CanWrite:     s.priority.CanWrite(s.cfg.Row, s.cfg.SelfID),
		Priorities:   prioritySlots(&s.priority),
		Reassembly:   s.reassembler.State().String(),
		Stats:        s.stats,
		TakenAt:      now,
	}
	if s.ownership.Owner == OwnerUser {
		snap.UserText = s.user.text
		if s.user.duration > 0 {
			remaining := s.user.duration - now.Sub(s.user.sentAt)
			if remaining < 0 {
				remaining = 0
			}
			snap.RemainingMS = remaining.Milliseconds()
		}
	}
	if s.scroll != nil {
		snap.Scrolling = true
		snap.ScrollOffset = s.scroll.Offset
	}
	return snap
}
