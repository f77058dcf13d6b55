package protocol

import (
	"encoding/hex"
	"fmt"
)

// PayloadSize is the fixed data length of every frame handled by the bridge
const PayloadSize = 8

// Frame represents one received or outgoing bus frame
type Frame struct {
	ID   uint32
	Data [PayloadSize]byte
}

// NewFrame builds a frame from an identifier and up to 8 payload bytes.
// Shorter payloads are zero-padded, longer ones are truncated.
func NewFrame(id uint32, data []byte) Frame {
	f := Frame{ID: id}
	copy(f.Data[:], data)
	return f
}

// Hex returns the payload as a lowercase hex string
func (f Frame) Hex() string {
	return hex.EncodeToString(f.Data[:])
}

// String returns a debug representation of the frame
func (f Frame) String() string {
	return fmt.Sprintf("Frame{id=%s, data=% X}", IdentifierName(f.ID), f.Data[:])
}

// SubFrameKind identifies a display sub-frame by its order marker
type SubFrameKind int

const (
	SubFrameUnknown SubFrameKind = iota
	SubFrameStart
	SubFrameMiddle
	SubFrameEnd
)

// String returns a human-readable sub-frame kind
func (k SubFrameKind) String() string {
	switch k {
	case SubFrameStart:
		return "start"
	case SubFrameMiddle:
		return "middle"
	case SubFrameEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Index returns the position of the sub-frame inside a DisplayBuffer, or -1
// for an unknown kind.
func (k SubFrameKind) Index() int {
	switch k {
	case SubFrameStart:
		return 0
	case SubFrameMiddle:
		return 1
	case SubFrameEnd:
		return 2
	default:
		return -1
	}
}

// DecodeSubFrame classifies a display payload by its first byte.
// Payloads with an unrecognized marker are SubFrameUnknown and are treated as
// noise by callers.
func DecodeSubFrame(data [PayloadSize]byte) SubFrameKind {
	switch data[OffsetOrder] {
	case OrderStart:
		return SubFrameStart
	case OrderMiddle:
		return SubFrameMiddle
	case OrderEnd:
		return SubFrameEnd
	default:
		return SubFrameUnknown
	}
}

// EncodeSubFrame builds one display sub-frame payload
//
// Payload Structure:
//
//	[0]     order          Order marker (0x42 start, 0x01 middle, 0x00 end)
//	[1]     0x96           Category byte (CategorySID)
//	[2]     row            Target row
//	[3-7]   content        Five content bytes, zero padded
func EncodeSubFrame(order, row byte, content [CharsPerSubFrame]byte) [PayloadSize]byte {
	var p [PayloadSize]byte
	p[OffsetOrder] = order
	p[OffsetCategory] = CategorySID
	p[OffsetRow] = row
	copy(p[OffsetText:], content[:])
	return p
}
