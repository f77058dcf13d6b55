package protocol

// ReassemblyState is the progress of the current display cycle
type ReassemblyState int

const (
	ReassemblyIdle ReassemblyState = iota
	ReassemblyCollecting
	ReassemblyComplete
)

// String returns a human-readable state name
func (s ReassemblyState) String() string {
	switch s {
	case ReassemblyIdle:
		return "idle"
	case ReassemblyCollecting:
		return "collecting"
	case ReassemblyComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Reassembler rebuilds the three-frame display broadcast sent by the vehicle
// side. The order on the wire is always start, middle, end. A start frame
// opens a new cycle and discards anything collected so far; middle and end
// frames arriving out of order are dropped until the next start.
type Reassembler struct {
	state   ReassemblyState
	partial DisplayBuffer
	next    int // index of the sub-frame expected next
}

// State returns the current reassembly state
func (r *Reassembler) State() ReassemblyState {
	return r.state
}

// Reset drops any in-flight cycle
func (r *Reassembler) Reset() {
	r.state = ReassemblyIdle
	r.partial = DisplayBuffer{}
	r.next = 0
}

// Feed consumes one display payload. It returns the completed buffer and true
// when data was the end frame of a valid cycle.
func (r *Reassembler) Feed(data [PayloadSize]byte) (DisplayBuffer, bool) {
	kind := DecodeSubFrame(data)

	switch kind {
	case SubFrameStart:
		r.partial = DisplayBuffer{}
		r.partial.SetSubFrame(0, data)
		r.state = ReassemblyCollecting
		r.next = 1
		return DisplayBuffer{}, false

	case SubFrameMiddle, SubFrameEnd:
		if r.state != ReassemblyCollecting {
			return DisplayBuffer{}, false
		}
		if kind.Index() != r.next {
			// a lost sub-frame invalidates the whole cycle
			r.Reset()
			return DisplayBuffer{}, false
		}
		r.partial.SetSubFrame(r.next, data)
		r.next++
		if kind != SubFrameEnd {
			return DisplayBuffer{}, false
		}
		r.state = ReassemblyComplete
		r.next = 0
		return r.partial, true
	}

	return DisplayBuffer{}, false
}
