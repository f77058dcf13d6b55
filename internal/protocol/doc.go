// Package protocol implements the Saab I-Bus display (SID) wire format.
//
// This package handles decoding, validation, and construction of the 8-byte
// bus payloads used to share the SID text display between the devices on the
// instrument bus. Everything here is pure and stateless except the two small
// state holders, PriorityTable and Reassembler, which callers own.
//
// # Bus Identifiers
//
// The bridge only acts on a handful of identifiers:
//   - 0x368 TEXT_PRIORITY: current owner of each display row
//   - 0x328 RADIO_MSG: display content, three frames per update
//   - 0x290 IBUS_BUTTONS: steering wheel and SID panel buttons
//   - 0x410 LIGHTING: dimmer and ambient light sensor
//   - 0x460 SPEED_RPM: engine and vehicle speed
//
// # Display Updates
//
// One display update is 24 bytes sent as three sub-frames:
//
//	[0]     order          0x42 start, 0x01 middle, 0x00 end
//	[1]     0x96           Category byte
//	[2]     row            Target row
//	[3-7]   content        Five characters, zero padded
//
// A row shows 12 characters: five from the start frame, five from the middle
// frame and two from the end frame. Longer text (up to 23 characters) is
// scrolled one character at a time; see EncodeMessage and ScrollState.
//
// # Row Priority
//
// The SID announces who owns each row on TEXT_PRIORITY. Slot 0 means one
// device holds both rows; while it is owned nobody else may write.
//
//	table := protocol.NewPriorityTable()
//	_ = table.SetPriority(2, protocol.DeviceRadio)
//	if table.CanWrite(2, protocol.DeviceRadio) {
//	    buf, scroll := protocol.EncodeMessage("NEXT TRACK", 2, 800*time.Millisecond)
//	    ...
//	}
//
// # Reassembly
//
// Reassembler consumes display frames in wire order and yields a complete
// DisplayBuffer after start, middle and end were seen in one cycle:
//
//	var r protocol.Reassembler
//	if buf, ok := r.Feed(frame.Data); ok {
//	    fmt.Println(buf.Text())
//	}
//
// # Thread Safety
//
// Functions are safe for concurrent use. PriorityTable and Reassembler values
// are not; the display package serializes access to them.
package protocol
