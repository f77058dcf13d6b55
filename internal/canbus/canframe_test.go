package canbus

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/muurk/sidbridge/internal/protocol"
)

func TestMarshalFrame(t *testing.T) {
	tests := []struct {
		name   string
		frame  protocol.Frame
		wantID uint32
	}{
		{
			name:   "standard id",
			frame:  protocol.NewFrame(protocol.IDRadioMessage, []byte{0x42, 0x96, 0x02, 'N', 'E', 'X', 'T', ' '}),
			wantID: 0x328,
		},
		{
			name:   "extended id sets EFF flag",
			frame:  protocol.NewFrame(0x18FEF100, []byte{1}),
			wantID: 0x98FEF100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := marshalFrame(tt.frame)
			if len(raw) != canFrameSize {
				t.Fatalf("len = %d, want %d", len(raw), canFrameSize)
			}
			if got := binary.NativeEndian.Uint32(raw[0:4]); got != tt.wantID {
				t.Errorf("can_id = 0x%08X, want 0x%08X", got, tt.wantID)
			}
			if raw[4] != 8 {
				t.Errorf("dlc = %d, want 8", raw[4])
			}
			if !bytes.Equal(raw[8:], tt.frame.Data[:]) {
				t.Errorf("data = % X, want % X", raw[8:], tt.frame.Data[:])
			}

			back, ok, err := unmarshalFrame(raw)
			if err != nil || !ok {
				t.Fatalf("unmarshalFrame() = %v, %v", ok, err)
			}
			if back != tt.frame {
				t.Errorf("unmarshalFrame() = %s, want %s", back, tt.frame)
			}
		})
	}
}

func TestUnmarshalFrame(t *testing.T) {
	short := make([]byte, canFrameSize)
	binary.NativeEndian.PutUint32(short[0:4], protocol.IDTextPriority)
	short[4] = 2
	copy(short[8:], []byte{0x02, 0x19, 0xAA, 0xBB})

	rtr := make([]byte, canFrameSize)
	binary.NativeEndian.PutUint32(rtr[0:4], protocol.IDButtons|canRTRFlag)

	tests := []struct {
		name    string
		raw     []byte
		want    protocol.Frame
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "short dlc ignores trailing bytes",
			raw:    short,
			want:   protocol.NewFrame(protocol.IDTextPriority, []byte{0x02, 0x19}),
			wantOK: true,
		},
		{name: "remote frame skipped", raw: rtr},
		{name: "truncated read", raw: []byte{1, 2, 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := unmarshalFrame(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("frame = %s, want %s", got, tt.want)
			}
		})
	}
}
