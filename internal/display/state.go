package display

import (
	"fmt"
	"time"

	"github.com/muurk/sidbridge/internal/protocol"
)

// Owner identifies whose content is currently on the display row
type Owner int

const (
	// OwnerVehicle means the row shows the last content broadcast by the
	// vehicle side.
	OwnerVehicle Owner = iota
	// OwnerUser means the row shows a message written by the bridge.
	OwnerUser
)

// String returns the owner name
func (o Owner) String() string {
	switch o {
	case OwnerVehicle:
		return "vehicle"
	case OwnerUser:
		return "user"
	default:
		return fmt.Sprintf("Owner(%d)", int(o))
	}
}

// MarshalText encodes the owner as its name
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an owner name
func (o *Owner) UnmarshalText(text []byte) error {
	switch string(text) {
	case "vehicle":
		*o = OwnerVehicle
	case "user":
		*o = OwnerUser
	default:
		return fmt.Errorf("unknown display owner %q", text)
	}
	return nil
}

// Ownership records who owns the display, since when, and for how long the
// owner asked to keep it (zero = indefinite)
type Ownership struct {
	Owner    Owner
	Since    time.Time
	Duration time.Duration
}

// Stats counts scheduler activity since start
type Stats struct {
	UserMessages  uint64 `json:"user_messages"`
	Denied        uint64 `json:"denied"`
	WriteErrors   uint64 `json:"write_errors"`
	Resends       uint64 `json:"resends"`
	Restores      uint64 `json:"restores"`
	ScrollSteps   uint64 `json:"scroll_steps"`
	VehicleCycles uint64 `json:"vehicle_cycles"`
}

// PrioritySlot is one row of the priority table in a snapshot
type PrioritySlot struct {
	Row   int    `json:"row"`
	Owner byte   `json:"owner"`
	Name  string `json:"name"`
}

// Snapshot is a read-only copy of the scheduler state, published to
// observers and served by the monitor API
type Snapshot struct {
	Owner        Owner          `json:"owner"`
	Since        time.Time      `json:"since"`
	DurationMS   int64          `json:"duration_ms"`
	RemainingMS  int64          `json:"remaining_ms"`
	UserText     string         `json:"user_text,omitempty"`
	Scrolling    bool           `json:"scrolling"`
	ScrollOffset int            `json:"scroll_offset"`
	VehicleText  string         `json:"vehicle_text"`
	VehicleHex   string         `json:"vehicle_hex"`
	OutgoingText string         `json:"outgoing_text"`
	OutgoingHex  string         `json:"outgoing_hex"`
	CanWrite     bool           `json:"can_write"`
	Priorities   []PrioritySlot `json:"priorities"`
	Reassembly   string         `json:"reassembly"`
	Stats        Stats          `json:"stats"`
	TakenAt      time.Time      `json:"taken_at"`
}

func prioritySlots(t *protocol.PriorityTable) []PrioritySlot {
	owners := t.Owners()
	slots := make([]PrioritySlot, 0, len(owners))
	for row, owner := range owners {
		slots = append(slots, PrioritySlot{
			Row:   row,
			Owner: owner,
			Name:  protocol.DeviceName(owner),
		})
	}
	return slots
}
