package protocol

import "testing"

func subFrame(order byte, text string) [PayloadSize]byte {
	var content [CharsPerSubFrame]byte
	copy(content[:], text)
	return EncodeSubFrame(order, DefaultRow, content)
}

func TestReassembler_InOrder(t *testing.T) {
	var r Reassembler

	if _, ok := r.Feed(subFrame(OrderStart, "RADIO")); ok {
		t.Fatal("complete after start frame")
	}
	if r.State() != ReassemblyCollecting {
		t.Errorf("state = %s, want collecting", r.State())
	}
	if _, ok := r.Feed(subFrame(OrderMiddle, " P3 1")); ok {
		t.Fatal("complete after middle frame")
	}
	buf, ok := r.Feed(subFrame(OrderEnd, "02"))
	if !ok {
		t.Fatal("not complete after end frame")
	}
	if r.State() != ReassemblyComplete {
		t.Errorf("state = %s, want complete", r.State())
	}
	if got := buf.Text(); got != "RADIO P3 102" {
		t.Errorf("Text() = %q, want %q", got, "RADIO P3 102")
	}
}

func TestReassembler_Sequences(t *testing.T) {
	tests := []struct {
		name      string
		frames    [][PayloadSize]byte
		wantCount int
		wantText  string
	}{
		{
			name: "two full cycles",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"), subFrame(OrderMiddle, "BBBBB"), subFrame(OrderEnd, "CC"),
				subFrame(OrderStart, "DDDDD"), subFrame(OrderMiddle, "EEEEE"), subFrame(OrderEnd, "FF"),
			},
			wantCount: 2,
			wantText:  "DDDDDEEEEEFF",
		},
		{
			name: "repeated start discards first",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "FIRST"),
				subFrame(OrderStart, "SECND"),
				subFrame(OrderMiddle, "MIDDL"),
				subFrame(OrderEnd, "EN"),
			},
			wantCount: 1,
			wantText:  "SECNDMIDDLEN",
		},
		{
			name: "restart mid cycle",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "OLD01"),
				subFrame(OrderMiddle, "OLD02"),
				subFrame(OrderStart, "NEW01"),
				subFrame(OrderMiddle, "NEW02"),
				subFrame(OrderEnd, "NW"),
			},
			wantCount: 1,
			wantText:  "NEW01NEW02NW",
		},
		{
			name: "end without start ignored",
			frames: [][PayloadSize]byte{
				subFrame(OrderMiddle, "XXXXX"),
				subFrame(OrderEnd, "XX"),
			},
			wantCount: 0,
		},
		{
			name: "end before middle drops cycle",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"),
				subFrame(OrderEnd, "CC"),
				subFrame(OrderMiddle, "BBBBB"),
				subFrame(OrderEnd, "DD"),
			},
			wantCount: 0,
		},
		{
			name: "middle of next cycle does not join previous start",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"),
				subFrame(OrderEnd, "A2"),
				subFrame(OrderMiddle, "BBBBB"),
				subFrame(OrderEnd, "B2"),
				subFrame(OrderStart, "CCCCC"),
				subFrame(OrderMiddle, "DDDDD"),
				subFrame(OrderEnd, "C2"),
			},
			wantCount: 1,
			wantText:  "CCCCCDDDDDC2",
		},
		{
			name: "repeated middle drops cycle",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"),
				subFrame(OrderMiddle, "BBBBB"),
				subFrame(OrderMiddle, "XXXXX"),
				subFrame(OrderEnd, "CC"),
			},
			wantCount: 0,
		},
		{
			name: "duplicate end after completion ignored",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"), subFrame(OrderMiddle, "BBBBB"), subFrame(OrderEnd, "CC"),
				subFrame(OrderEnd, "ZZ"),
			},
			wantCount: 1,
			wantText:  "AAAAABBBBBCC",
		},
		{
			name: "unknown markers are noise",
			frames: [][PayloadSize]byte{
				subFrame(OrderStart, "AAAAA"),
				subFrame(0x7F, "?????"),
				subFrame(OrderMiddle, "BBBBB"),
				subFrame(OrderEnd, "CC"),
			},
			wantCount: 1,
			wantText:  "AAAAABBBBBCC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Reassembler
			count := 0
			var last DisplayBuffer
			for _, f := range tt.frames {
				if buf, ok := r.Feed(f); ok {
					count++
					last = buf
				}
			}
			if count != tt.wantCount {
				t.Fatalf("completed %d cycles, want %d", count, tt.wantCount)
			}
			if count > 0 && last.Text() != tt.wantText {
				t.Errorf("last buffer = %q, want %q", last.Text(), tt.wantText)
			}
		})
	}
}

func TestReassembler_CompleteBufferIsVerbatim(t *testing.T) {
	frames := [SubFrameCount][PayloadSize]byte{
		{0x42, 0x96, 0x02, 'R', 'A', 'D', 'I', 'O'},
		{0x01, 0x96, 0x02, ' ', 'F', 'M', '1', ' '},
		{0x00, 0x96, 0x02, '9', '8', 0x00, 0x00, 0x00},
	}

	var r Reassembler
	var got DisplayBuffer
	for _, f := range frames {
		got, _ = r.Feed(f)
	}

	for i, f := range frames {
		if got.SubFrame(i) != f {
			t.Errorf("SubFrame(%d) = % X, want % X", i, got.SubFrame(i), f)
		}
	}
}

func TestReassembler_OutOfOrderResets(t *testing.T) {
	var r Reassembler
	r.Feed(subFrame(OrderStart, "AAAAA"))
	if _, ok := r.Feed(subFrame(OrderEnd, "A2")); ok {
		t.Fatal("end accepted before middle")
	}
	if r.State() != ReassemblyIdle {
		t.Errorf("state = %s, want idle", r.State())
	}
}

func TestReassembler_Reset(t *testing.T) {
	var r Reassembler
	r.Feed(subFrame(OrderStart, "AAAAA"))
	r.Reset()
	if r.State() != ReassemblyIdle {
		t.Errorf("state = %s, want idle", r.State())
	}
	if _, ok := r.Feed(subFrame(OrderMiddle, "BBBBB")); ok {
		t.Error("middle accepted after reset")
	}
}
