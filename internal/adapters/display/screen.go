package display

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// Character LCD geometry.
const (
	Cols = 16
	Rows = 2
)

// counterPageSeconds is how long each counter page stays on the capture
// status screen before rotating.
const counterPageSeconds = 2

// Screen is the text of a 16x2 character display.
type Screen [Rows]string

func (s Screen) String() string {
	return s[0] + "\n" + s[1]
}

// Compose lays a snapshot out on the character display. Every row is cut
// to Cols runes.
func Compose(s domain.Snapshot) Screen {
	var sc Screen
	if len(s.Notice) > 0 {
		for i := 0; i < Rows && i < len(s.Notice); i++ {
			sc[i] = s.Notice[i]
		}
		return sc.fit()
	}

	switch s.Mode.Kind {
	case domain.ModeMenu:
		sc = menuScreen(domain.MainMenuItems, s.MenuIndex)
	case domain.ModeAttackMenu:
		sc[0] = "ATTACK MODE"
		sc[1] = menuRow(domain.AttackMenuItems, 0, len(domain.AttackMenuItems), s.AttackIndex)
	case domain.ModeScanning:
		sc = Screen{"Scanning...", "Please wait"}
	case domain.ModeScanResults:
		sc = resultsScreen(s)
	case domain.ModeSelectingNetwork:
		sc = selectScreen(s)
	case domain.ModeShowingInfo:
		sc = infoScreen(s)
	case domain.ModePacketCapture:
		sc = captureScreen(s)
	case domain.ModeRogueAP:
		sc = accessPointScreen(s, "MITM: ", "Credential Logs", "No credentials")
	case domain.ModeHoneypotAP:
		sc = accessPointScreen(s, "AP: ", "Activity Logs", "No activity")
	}
	return sc.fit()
}

func (sc Screen) fit() Screen {
	for i := range sc {
		r := []rune(sc[i])
		if len(r) > Cols {
			sc[i] = string(r[:Cols])
		}
	}
	return sc
}

func menuScreen(items []string, index int) Screen {
	half := (len(items) + 1) / 2
	return Screen{
		menuRow(items, 0, half, index),
		menuRow(items, half, len(items), index),
	}
}

func menuRow(items []string, from, to, index int) string {
	var b strings.Builder
	for i := from; i < to; i++ {
		if i == index {
			b.WriteString(">")
		}
		b.WriteString(items[i])
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

func resultsScreen(s domain.Snapshot) Screen {
	if len(s.Networks) == 0 {
		return Screen{"No networks", ""}
	}
	rec := s.Networks[clamp(s.Scroll, len(s.Networks))]
	return Screen{
		fmt.Sprintf("Found: %d", len(s.Networks)),
		fmt.Sprintf("%d %s", rec.RSSI, rec.SSID),
	}
}

func selectScreen(s domain.Snapshot) Screen {
	if len(s.Networks) == 0 {
		return Screen{"Select network:", "No networks"}
	}
	i := clamp(s.Scroll, len(s.Networks))
	line := Ellipsis(s.Networks[i].SSID, Cols)
	if i == s.Selected {
		line = ">" + line
	}
	return Screen{"Select network:", line}
}

func infoScreen(s domain.Snapshot) Screen {
	rec, ok := s.SelectedRecord()
	if !ok {
		return Screen{"No network", "selected"}
	}

	var sc Screen
	switch s.InfoPage {
	case 0:
		sc = Screen{"SSID:", rec.SSID}
	case 1:
		sc = Screen{
			fmt.Sprintf("RSSI:%ddB", rec.RSSI),
			fmt.Sprintf("Ch:%d Bw:%s", rec.Channel, rec.Band()),
		}
	default:
		sc = Screen{
			"MAC:" + prefix(rec.BSSIDString(), 13),
			"Sec:" + prefix(rec.Encryption.String(), 12),
		}
	}

	// Page indicator in the top-right corner.
	indicator := fmt.Sprintf("%d/%d", s.InfoPage+1, domain.InfoPages)
	row := []rune(sc[0])
	if len(row) > Cols-len(indicator) {
		row = row[:Cols-len(indicator)]
	}
	sc[0] = string(row) + strings.Repeat(" ", Cols-len(indicator)-len(row)) + indicator
	return sc
}

func captureScreen(s domain.Snapshot) Screen {
	if s.LogBrowsing && len(s.PacketLog) > 0 {
		i := clamp(s.LogIndex, len(s.PacketLog))
		return Screen{fmt.Sprintf("Log %d/%d", i+1, len(s.PacketLog)), s.PacketLog[i]}
	}

	c := s.Counters
	switch (s.TakenAt.Unix() / counterPageSeconds) % 3 {
	case 0:
		return Screen{fmt.Sprintf("HTTP: %d", c.HTTP), fmt.Sprintf("DNS: %d", c.DNS)}
	case 1:
		return Screen{fmt.Sprintf("TCP: %d", c.TCP), fmt.Sprintf("UDP: %d", c.UDP)}
	}
	return Screen{fmt.Sprintf("ARP: %d", c.ARP), fmt.Sprintf("Total: %d", c.Total)}
}

func accessPointScreen(s domain.Snapshot, title, logTitle, empty string) Screen {
	if s.Mode.Page == 0 {
		return Screen{title + s.APName, fmt.Sprintf("Clients: %d", s.StationCount)}
	}
	lines := s.ActiveLog()
	if len(lines) == 0 {
		return Screen{logTitle, empty}
	}
	i := len(lines) - 1
	if s.LogBrowsing {
		i = clamp(s.LogIndex, len(lines))
	}
	return Screen{logTitle, lines[i]}
}

// Ellipsis shortens s to fit width, marking the cut with "...".
func Ellipsis(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
