package protocol

import "time"

// ScrollState tracks horizontal scrolling of a message longer than the
// visible row. It lives only while such a message is displayed.
type ScrollState struct {
	Text         string        // Full (truncated) message text
	Width        int           // Visible row width
	Offset       int           // Index of the first visible character
	Delay        time.Duration // Time between scroll steps
	LastScrollAt time.Time     // When the window last moved
}

// Window returns the currently visible slice of the text
func (s *ScrollState) Window() string {
	end := s.Offset + s.Width
	if end > len(s.Text) {
		end = len(s.Text)
	}
	return s.Text[s.Offset:end]
}

// CanAdvance reports whether characters remain beyond the visible window
func (s *ScrollState) CanAdvance() bool {
	return len(s.Text)-s.Offset > s.Width
}

// Advance moves the window one character to the right. It is a no-op once
// the last character is visible.
func (s *ScrollState) Advance() {
	if s.CanAdvance() {
		s.Offset++
	}
}

// TruncateMessage limits text to MaxMessageLength bytes
func TruncateMessage(text string) string {
	if len(text) > MaxMessageLength {
		return text[:MaxMessageLength]
	}
	return text
}

// ScrollDelay returns the time between scroll steps so that the whole text
// has been shown once the display duration elapses.
//
// For example, a 13 character message shown for 1000ms overlaps the row by
// one character and scrolls once every 1000 / (1 + 1) = 500ms.
func ScrollDelay(length int, duration time.Duration) time.Duration {
	overlap := length - VisibleWidth
	if overlap <= 0 {
		return 0
	}
	return duration / time.Duration(overlap+1)
}

// EncodeWindow encodes the first VisibleWidth bytes of text into a display
// buffer for row
//
// Buffer Structure (three sub-frames):
//
//	[0-7]   0x42 0x96 row  c0  c1  c2  c3  c4
//	[8-15]  0x01 0x96 row  c5  c6  c7  c8  c9
//	[16-23] 0x00 0x96 row  c10 c11 0x00 0x00 0x00
//
// Bytes past the end of text are literal zero, not spaces.
func EncodeWindow(text string, row byte) DisplayBuffer {
	var visible [VisibleWidth]byte
	copy(visible[:], text)

	var buf DisplayBuffer
	orders := [SubFrameCount]byte{OrderStart, OrderMiddle, OrderEnd}
	n := 0
	for i, order := range orders {
		var content [CharsPerSubFrame]byte
		for j := 0; j < CharsPerSubFrame && n < VisibleWidth; j++ {
			content[j] = visible[n]
			n++
		}
		buf.SetSubFrame(i, EncodeSubFrame(order, row, content))
	}
	return buf
}

// EncodeMessage turns a user message into its display buffer. Text longer
// than VisibleWidth also yields a ScrollState starting at offset zero; the
// caller stamps LastScrollAt when the message is actually written.
func EncodeMessage(text string, row byte, duration time.Duration) (DisplayBuffer, *ScrollState) {
	text = TruncateMessage(text)
	buf := EncodeWindow(text, row)

	if len(text) <= VisibleWidth {
		return buf, nil
	}

	return buf, &ScrollState{
		Text:  text,
		Width: VisibleWidth,
		Delay: ScrollDelay(len(text), duration),
	}
}
