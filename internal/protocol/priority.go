package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidRow is returned for a priority update naming a row outside 0..2
var ErrInvalidRow = errors.New("invalid priority row")

// PriorityTable records which device currently owns each SID row slot.
//
//	Slot 0: both rows are used by one device
//	Slot 1: row one
//	Slot 2: row two
//
// A slot equal to Unowned (0xFF) is not in use.
type PriorityTable struct {
	owners [Rows]byte
}

// NewPriorityTable returns a table with every slot unowned
func NewPriorityTable() PriorityTable {
	return PriorityTable{owners: [Rows]byte{Unowned, Unowned, Unowned}}
}

// SetPriority records owner for row. Rows outside 0..2 are rejected.
func (p *PriorityTable) SetPriority(row, owner byte) error {
	if int(row) >= Rows {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	p.owners[row] = owner
	return nil
}

// CanWrite reports whether device as may write row. Writing is allowed only
// while slot 0 is unowned and row's slot is held by as.
func (p *PriorityTable) CanWrite(row, as byte) bool {
	if int(row) >= Rows {
		return false
	}
	if p.owners[0] != Unowned {
		return false
	}
	return p.owners[row] == as
}

// Owner returns the recorded owner of row, or Unowned for an invalid row
func (p *PriorityTable) Owner(row byte) byte {
	if int(row) >= Rows {
		return Unowned
	}
	return p.owners[row]
}

// Owners returns a copy of all three slots
func (p *PriorityTable) Owners() [Rows]byte {
	return p.owners
}

// String returns a debug representation of the table
func (p *PriorityTable) String() string {
	return fmt.Sprintf("Priority{both=%s, row1=%s, row2=%s}",
		DeviceName(p.owners[0]), DeviceName(p.owners[1]), DeviceName(p.owners[2]))
}

// PriorityUpdate is a decoded TEXT_PRIORITY frame
type PriorityUpdate struct {
	Row   byte
	Owner byte
}

// DecodePriorityUpdate parses a TEXT_PRIORITY payload
//
// Payload Structure:
//
//	[0]     row            Row slot (0 = both, 1, 2)
//	[1]     owner          Device id, 0xFF when unowned
func DecodePriorityUpdate(data [PayloadSize]byte) (PriorityUpdate, error) {
	u := PriorityUpdate{Row: data[0], Owner: data[1]}
	if int(u.Row) >= Rows {
		return u, fmt.Errorf("%w: %d", ErrInvalidRow, u.Row)
	}
	return u, nil
}
