package protocol

import "fmt"

// Bus identifiers (I-Bus, 47.619 kbit/s)
const (
	IDButtons       uint32 = 0x290 // Steering wheel and SID buttons
	IDRadioMessage  uint32 = 0x328 // Display content written as the radio
	IDRadioPriority uint32 = 0x348 // Radio requesting a display row
	IDOpenSIDMsg    uint32 = 0x33F // Display content written as OpenSID
	IDOpenSIDPrio   uint32 = 0x358 // OpenSID requesting a display row
	IDTextPriority  uint32 = 0x368 // SID announcing current row owners
	IDLighting      uint32 = 0x410 // Dimmer and ambient light sensor
	IDSpeedRPM      uint32 = 0x460 // Engine speed and vehicle speed
)

// Device ids used in the priority table
const (
	DeviceSPA     byte = 0x12
	DeviceRadio   byte = 0x19
	DeviceTrionic byte = 0x21
	DeviceACC     byte = 0x23
	DeviceTWICE   byte = 0x2D
	DeviceOpenSID byte = 0x32

	// Unowned marks a row slot nobody currently holds.
	Unowned byte = 0xFF
)

// Display geometry
const (
	// Rows is the number of slots in the priority table (0 = both rows).
	Rows = 3

	// VisibleWidth is the number of characters one SID row can show.
	VisibleWidth = 12

	// MaxMessageLength is the longest text accepted for a user message.
	// Anything past it is dropped before encoding.
	MaxMessageLength = 23

	// SubFrameSize is the payload length of one display sub-frame.
	SubFrameSize = 8

	// SubFrameCount is the number of sub-frames in one display update.
	SubFrameCount = 3

	// BufferSize is the length of a complete display update.
	BufferSize = SubFrameSize * SubFrameCount

	// CharsPerSubFrame is the number of content bytes carried per sub-frame.
	CharsPerSubFrame = 5
)

// Sub-frame byte offsets
const (
	OffsetOrder    = 0
	OffsetCategory = 1
	OffsetRow      = 2
	OffsetText     = 3
)

// Sub-frame order markers. Bit 6 flags the start of a new message and the
// low bits count down to the last sub-frame.
const (
	OrderNewMessage byte = 0x40
	OrderStart      byte = OrderNewMessage | 0x02 // 0x42
	OrderMiddle     byte = 0x01
	OrderEnd        byte = 0x00

	// CategorySID is the constant second byte of every display sub-frame.
	CategorySID byte = 0x96

	// DefaultRow is the SID row written by the bridge.
	DefaultRow byte = 0x02
)

// DeviceName returns a human-readable name for a display device id
func DeviceName(id byte) string {
	switch id {
	case DeviceSPA:
		return "SPA"
	case DeviceRadio:
		return "RADIO"
	case DeviceTrionic:
		return "TRIONIC"
	case DeviceACC:
		return "ACC"
	case DeviceTWICE:
		return "TWICE"
	case DeviceOpenSID:
		return "OPEN_SID"
	case Unowned:
		return "unowned"
	default:
		return fmt.Sprintf("unknown(0x%02X)", id)
	}
}

// IdentifierName returns a human-readable name for a bus identifier
func IdentifierName(id uint32) string {
	switch id {
	case IDButtons:
		return "IBUS_BUTTONS"
	case IDRadioMessage:
		return "RADIO_MSG"
	case IDRadioPriority:
		return "RADIO_PRIORITY"
	case IDOpenSIDMsg:
		return "O_SID_MSG"
	case IDOpenSIDPrio:
		return "O_SID_PRIORITY"
	case IDTextPriority:
		return "TEXT_PRIORITY"
	case IDLighting:
		return "LIGHTING"
	case IDSpeedRPM:
		return "SPEED_RPM"
	default:
		return fmt.Sprintf("0x%03X", id)
	}
}
