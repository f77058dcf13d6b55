package protocol

import (
	"bytes"
	"encoding/hex"
)

// DisplayBuffer holds one complete display update: three consecutive 8-byte
// sub-frames (start, middle, end).
type DisplayBuffer [BufferSize]byte

// SubFrame returns sub-frame i (0 = start, 1 = middle, 2 = end)
func (b DisplayBuffer) SubFrame(i int) [PayloadSize]byte {
	var p [PayloadSize]byte
	copy(p[:], b[i*SubFrameSize:(i+1)*SubFrameSize])
	return p
}

// SetSubFrame stores payload as sub-frame i
func (b *DisplayBuffer) SetSubFrame(i int, payload [PayloadSize]byte) {
	copy(b[i*SubFrameSize:(i+1)*SubFrameSize], payload[:])
}

// Row returns the target row recorded in the start sub-frame
func (b DisplayBuffer) Row() byte {
	return b[OffsetRow]
}

// Visible returns the VisibleWidth content bytes carried by the buffer, in
// display order. Five come from each of the first two sub-frames and the
// remaining two from the end sub-frame.
func (b DisplayBuffer) Visible() [VisibleWidth]byte {
	var out [VisibleWidth]byte
	n := 0
	for i := 0; i < SubFrameCount && n < VisibleWidth; i++ {
		base := i*SubFrameSize + OffsetText
		for j := 0; j < CharsPerSubFrame && n < VisibleWidth; j++ {
			out[n] = b[base+j]
			n++
		}
	}
	return out
}

// Text returns the visible content with zero padding removed
func (b DisplayBuffer) Text() string {
	v := b.Visible()
	return string(bytes.TrimRight(v[:], "\x00"))
}

// IsZero reports whether the buffer has never been filled
func (b DisplayBuffer) IsZero() bool {
	return b == DisplayBuffer{}
}

// Hex returns the buffer as a lowercase hex string
func (b DisplayBuffer) Hex() string {
	return hex.EncodeToString(b[:])
}
