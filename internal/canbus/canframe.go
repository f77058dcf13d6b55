package canbus

import (
	"encoding/binary"
	"fmt"

	"github.com/muurk/sidbridge/internal/protocol"
)

// Linux struct can_frame layout
//
//	[0-3]   can_id   Identifier and EFF/RTR/ERR flags (host order)
//	[4]     can_dlc  Payload length
//	[5-7]   padding
//	[8-15]  data
const (
	canFrameSize = 16

	canEFFFlag uint32 = 0x80000000
	canRTRFlag uint32 = 0x40000000
	canErrFlag uint32 = 0x20000000
	canSFFMask uint32 = 0x000007FF
	canEFFMask uint32 = 0x1FFFFFFF
)

// marshalFrame encodes f as a can_frame with a full 8-byte payload
func marshalFrame(f protocol.Frame) []byte {
	raw := make([]byte, canFrameSize)

	id := f.ID
	if id != id&canSFFMask {
		id = (id & canEFFMask) | canEFFFlag
	}
	binary.NativeEndian.PutUint32(raw[0:4], id)
	raw[4] = protocol.PayloadSize
	copy(raw[8:], f.Data[:])
	return raw
}

// unmarshalFrame decodes a can_frame. Remote and error frames are reported
// as not ok.
func unmarshalFrame(raw []byte) (protocol.Frame, bool, error) {
	if len(raw) < canFrameSize {
		return protocol.Frame{}, false, fmt.Errorf("short can_frame: %d bytes", len(raw))
	}

	id := binary.NativeEndian.Uint32(raw[0:4])
	if id&(canRTRFlag|canErrFlag) != 0 {
		return protocol.Frame{}, false, nil
	}

	var f protocol.Frame
	if id&canEFFFlag != 0 {
		f.ID = id & canEFFMask
	} else {
		f.ID = id & canSFFMask
	}

	dlc := int(raw[4])
	if dlc > protocol.PayloadSize {
		dlc = protocol.PayloadSize
	}
	copy(f.Data[:dlc], raw[8:8+dlc])
	return f, true, nil
}
