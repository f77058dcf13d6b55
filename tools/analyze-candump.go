//go:build ignore

// Analyze-candump decodes a candump log of the I-Bus into priority changes,
// reassembled display text and button presses.
//
// Capture on the car with:
//
//	candump -L can0 > drive.log
//
// then run:
//
//	go run tools/analyze-candump.go drive.log
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/muurk/sidbridge/internal/protocol"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-candump <candump-log>")
		fmt.Println("Example: analyze-candump captures/drive-20260912.log")
		os.Exit(1)
	}

	filename := os.Args[1]
	f, err := os.Open(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("=== SID Bus Analyzer ===\n")
	fmt.Printf("File: %s\n\n", filename)

	var (
		table      = protocol.NewPriorityTable()
		reassembly = map[uint32]*protocol.Reassembler{}
		lastText   = map[uint32]string{}
		counts     = map[uint32]int{}
		lineNum    int
		bad        int
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ts, frame, err := parseLine(line)
		if err != nil {
			bad++
			fmt.Printf("line %d: %v\n", lineNum, err)
			continue
		}
		counts[frame.ID]++

		switch frame.ID {
		case protocol.IDTextPriority:
			u, err := protocol.DecodePriorityUpdate(frame.Data)
			if err != nil {
				fmt.Printf("%s  priority  invalid: %v\n", ts, err)
				continue
			}
			if table.Owner(u.Row) == u.Owner {
				continue
			}
			_ = table.SetPriority(u.Row, u.Owner)
			fmt.Printf("%s  priority  row %d -> %s   table %s\n", ts, u.Row, protocol.DeviceName(u.Owner), table.String())

		case protocol.IDRadioMessage, protocol.IDOpenSIDMsg:
			r, ok := reassembly[frame.ID]
			if !ok {
				r = &protocol.Reassembler{}
				reassembly[frame.ID] = r
			}
			buf, done := r.Feed(frame.Data)
			if !done {
				continue
			}
			text := buf.Text()
			if text == lastText[frame.ID] {
				continue
			}
			lastText[frame.ID] = text
			fmt.Printf("%s  %-9s row %d %q\n", ts, protocol.IdentifierName(frame.ID), buf.Row(), text)

		case protocol.IDButtons:
			b := protocol.DecodeButtons(frame.Data)
			if b.Wheel == protocol.WheelNone && b.SID == protocol.SIDNone {
				continue
			}
			fmt.Printf("%s  buttons   wheel=%s sid=%s\n", ts, b.Wheel, b.SID)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Lines: %d (%d unparsed)\n", lineNum, bad)
	ids := make([]uint32, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Printf("  0x%03X %-14s %d\n", id, protocol.IdentifierName(id), counts[id])
	}
}

// parseLine reads one "candump -L" line: (1694512345.123456) can0 328#42960252414449
func parseLine(line string) (string, protocol.Frame, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", protocol.Frame{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	ts := strings.Trim(fields[0], "()")
	idHex, dataHex, ok := strings.Cut(fields[2], "#")
	if !ok {
		return "", protocol.Frame{}, fmt.Errorf("missing '#' in %q", fields[2])
	}

	id, err := strconv.ParseUint(idHex, 16, 32)
	if err != nil {
		return "", protocol.Frame{}, fmt.Errorf("invalid identifier %q: %w", idHex, err)
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", protocol.Frame{}, fmt.Errorf("invalid payload %q: %w", dataHex, err)
	}
	return ts, protocol.NewFrame(uint32(id), data), nil
}
