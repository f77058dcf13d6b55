package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/protocol"
)

// RenderStatus renders a full status report: display, priority table,
// controls and frame counters
func RenderStatus(st bridge.Status, width int) string {
	sections := []string{
		RenderDisplay(st.Display),
		RenderPriorities(st.Display.Priorities),
		RenderControls(st.Controls),
		RenderFrames(st.Frames),
	}

	if width >= 2*MinTerminalWidth {
		left := lipgloss.JoinVertical(lipgloss.Left, sections[0], "", sections[2])
		right := lipgloss.JoinVertical(lipgloss.Left, sections[1], "", sections[3])
		col := lipgloss.NewStyle().Width(width/2 - 4)
		return lipgloss.JoinHorizontal(lipgloss.Top, col.Render(left), "  ", col.Render(right))
	}
	return strings.Join(sections, "\n\n")
}

// RenderDisplay renders the row as the SID shows it plus ownership details
func RenderDisplay(snap display.Snapshot) string {
	var lines []string
	lines = append(lines, SectionTitleStyle.Render("DISPLAY"))

	shown := snap.VehicleText
	if snap.Owner == display.OwnerUser {
		shown = snap.OutgoingText
	}
	lines = append(lines, LCDStyle.Render(lcdText(shown)))
	lines = append(lines, "")

	lines = append(lines, field("Owner", renderOwner(snap)))
	if snap.Owner == display.OwnerUser {
		lines = append(lines, field("Message", snap.UserText))
		lines = append(lines, field("Remaining", formatRemaining(snap)))
		if snap.Scrolling {
			lines = append(lines, field("Scroll", fmt.Sprintf("offset %d", snap.ScrollOffset)))
		}
	}
	lines = append(lines, field("Vehicle", quoted(snap.VehicleText)))
	lines = append(lines, field("Write", renderGrant(snap.CanWrite)))
	if snap.Reassembly != "" {
		lines = append(lines, field("Reassembly", snap.Reassembly))
	}
	lines = append(lines, field("Stats", fmt.Sprintf("sent %d  denied %d  resent %d  restored %d",
		snap.Stats.UserMessages, snap.Stats.Denied, snap.Stats.Resends, snap.Stats.Restores)))
	if snap.Stats.WriteErrors > 0 {
		lines = append(lines, field("Errors", ErrorTextStyle.Render(fmt.Sprintf("%d write errors", snap.Stats.WriteErrors))))
	}

	return strings.Join(lines, "\n")
}

// RenderPriorities renders the owner of every text priority slot
func RenderPriorities(slots []display.PrioritySlot) string {
	lines := []string{SectionTitleStyle.Render("PRIORITY")}
	if len(slots) == 0 {
		return strings.Join(append(lines, SubtleStyle.Render("  no priority updates yet")), "\n")
	}
	for _, slot := range slots {
		owner := fmt.Sprintf("0x%02X %s", slot.Owner, slot.Name)
		switch {
		case slot.Owner == protocol.Unowned:
			owner = SubtleStyle.Render(owner)
		case slot.Owner == protocol.DeviceRadio:
			owner = GrantedStyle.Render(owner)
		default:
			owner = ValueStyle.Render(owner)
		}
		lines = append(lines, fmt.Sprintf("  row %d  %s", slot.Row, owner))
	}
	return strings.Join(lines, "\n")
}

// RenderControls renders Bluetooth, lighting and vehicle state
func RenderControls(c bridge.Controls) string {
	lines := []string{SectionTitleStyle.Render("CONTROLS")}
	lines = append(lines, field("Bluetooth", onOff(c.Bluetooth)))
	lines = append(lines, field("Night panel", onOff(c.NightPanel)))
	lines = append(lines, field("Strips", onOff(c.StripsEnabled)))
	lines = append(lines, field("Brightness", fmt.Sprintf("%d", c.Brightness)))
	lines = append(lines, field("Speed", fmt.Sprintf("%d km/h", c.Speed)))
	lines = append(lines, field("RPM", fmt.Sprintf("%d", c.RPM)))
	if c.LastWheel != "" || c.LastSID != "" {
		lines = append(lines, field("Last button", strings.TrimSpace(c.LastWheel+" "+c.LastSID)))
	}
	return strings.Join(lines, "\n")
}

// RenderFrames renders the received frame counters
func RenderFrames(frames []bridge.FrameCount) string {
	lines := []string{SectionTitleStyle.Render("FRAMES")}
	if len(frames) == 0 {
		return strings.Join(append(lines, SubtleStyle.Render("  nothing received")), "\n")
	}
	for _, f := range frames {
		lines = append(lines, fmt.Sprintf("  0x%03X %-14s %8d", f.ID, f.Name, f.Count))
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return "  " + LabelStyle.Render(label) + ValueStyle.Render(value)
}

func renderOwner(snap display.Snapshot) string {
	if snap.Owner == display.OwnerUser {
		return UserOwnerStyle.Render(ActiveMarker + " user")
	}
	return ValueStyle.Render(snap.Owner.String())
}

func renderGrant(ok bool) string {
	if ok {
		return GrantedStyle.Render(SuccessMarker + " granted")
	}
	return DeniedStyle.Render(FailureMarker + " denied")
}

func onOff(v bool) string {
	if v {
		return GrantedStyle.Render("on")
	}
	return SubtleStyle.Render("off")
}

func quoted(s string) string {
	if s == "" {
		return SubtleStyle.Render("(none)")
	}
	return fmt.Sprintf("%q", s)
}

// lcdText pads text to the visible width of the row
func lcdText(s string) string {
	if len(s) > protocol.VisibleWidth {
		s = s[:protocol.VisibleWidth]
	}
	return fmt.Sprintf("%-*s", protocol.VisibleWidth, s)
}

func formatRemaining(snap display.Snapshot) string {
	if snap.DurationMS == 0 {
		return "until cancelled"
	}
	d := time.Duration(snap.RemainingMS) * time.Millisecond
	return fmt.Sprintf("%s of %s", d.Round(10*time.Millisecond), time.Duration(snap.DurationMS)*time.Millisecond)
}
