package protocol

import "fmt"

// Button payload byte offsets (IBUS_BUTTONS)
const (
	ButtonByteAudio = 2
	ButtonByteSID   = 3
)

// NoButton is returned when no bit is set in a button byte
const NoButton = 0xFF

// SteeringWheelButton is an audio button on the steering wheel
type SteeringWheelButton byte

const (
	WheelNext     SteeringWheelButton = 2
	WheelSeekDown SteeringWheelButton = 3
	WheelSeekUp   SteeringWheelButton = 4
	WheelSource   SteeringWheelButton = 5
	WheelVolUp    SteeringWheelButton = 6
	WheelVolDown  SteeringWheelButton = 7
	WheelNone     SteeringWheelButton = NoButton
)

// String returns the button label
func (b SteeringWheelButton) String() string {
	switch b {
	case WheelNext:
		return "NXT"
	case WheelSeekDown:
		return "SEEK_DOWN"
	case WheelSeekUp:
		return "SEEK_UP"
	case WheelSource:
		return "SRC"
	case WheelVolUp:
		return "VOL_UP"
	case WheelVolDown:
		return "VOL_DOWN"
	case WheelNone:
		return "none"
	default:
		return fmt.Sprintf("wheel(%d)", byte(b))
	}
}

// SIDButton is a button on the SID panel
type SIDButton byte

const (
	SIDNightPanel SIDButton = 3
	SIDUp         SIDButton = 4
	SIDDown       SIDButton = 5
	SIDSet        SIDButton = 6
	SIDClear      SIDButton = 7
	SIDNone       SIDButton = NoButton
)

// String returns the button label
func (b SIDButton) String() string {
	switch b {
	case SIDNightPanel:
		return "NPANEL"
	case SIDUp:
		return "UP"
	case SIDDown:
		return "DOWN"
	case SIDSet:
		return "SET"
	case SIDClear:
		return "CLR"
	case SIDNone:
		return "none"
	default:
		return fmt.Sprintf("sid(%d)", byte(b))
	}
}

// LowestSetBit returns the position of the lowest set bit of v, or NoButton
// when v is zero.
func LowestSetBit(v byte) byte {
	if v == 0 {
		return NoButton
	}
	for i := byte(0); i < 8; i++ {
		if v>>i&1 != 0 {
			return i
		}
	}
	return NoButton
}

// Buttons is a decoded IBUS_BUTTONS frame
type Buttons struct {
	Wheel SteeringWheelButton
	SID   SIDButton
}

// DecodeButtons parses an IBUS_BUTTONS payload
func DecodeButtons(data [PayloadSize]byte) Buttons {
	return Buttons{
		Wheel: SteeringWheelButton(LowestSetBit(data[ButtonByteAudio])),
		SID:   SIDButton(LowestSetBit(data[ButtonByteSID])),
	}
}

// Light sensor range reported by the SID. Varies between SID versions.
const (
	LightMin  uint16 = 0x2308
	LightMax  uint16 = 0xC7FB
	DimmerMin uint16 = 0x423F
	DimmerMax uint16 = 0xFE9D
)

// Lighting is a decoded LIGHTING frame
type Lighting struct {
	Dimmer     uint16
	LightLevel uint16
}

// DecodeLighting parses a LIGHTING payload
//
// Payload Structure:
//
//	[1-2]   dimmer         Manual dimmer (big-endian)
//	[3-4]   light level    Ambient light sensor (big-endian)
func DecodeLighting(data [PayloadSize]byte) Lighting {
	return Lighting{
		Dimmer:     combine(data[1], data[2]),
		LightLevel: combine(data[3], data[4]),
	}
}

// Vehicle is a decoded SPEED_RPM frame
type Vehicle struct {
	RPM   uint16
	Speed uint16 // km/h
}

// DecodeVehicle parses a SPEED_RPM payload
//
// Payload Structure:
//
//	[1-2]   rpm            Engine speed (big-endian)
//	[3-4]   speed          Vehicle speed in 0.1 km/h (big-endian)
func DecodeVehicle(data [PayloadSize]byte) Vehicle {
	return Vehicle{
		RPM:   combine(data[1], data[2]),
		Speed: combine(data[3], data[4]) / 10,
	}
}

func combine(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
