package radio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// SetInterfaceChannel sets the WiFi channel for a given interface.
func SetInterfaceChannel(iface string, channel int) error {
	if channel <= 0 {
		return fmt.Errorf("invalid channel: %d", channel)
	}
	cmd := exec.Command("iw", iface, "set", "channel", strconv.Itoa(channel))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to set channel %d on %s: %v (%s)", channel, iface, err, string(output))
	}
	return nil
}

// KillConflictingProcesses stops NetworkManager and wpa_supplicant so they
// do not fight over the interface.
func KillConflictingProcesses() error {
	for _, unit := range []string{"NetworkManager", "wpa_supplicant"} {
		if err := runCmd("systemctl", "stop", unit); err != nil {
			return fmt.Errorf("failed to stop %s: %w", unit, err)
		}
	}
	return nil
}

// RestoreNetworkServices restarts wpa_supplicant and NetworkManager.
func RestoreNetworkServices() error {
	var lastErr error
	for _, unit := range []string{"wpa_supplicant", "NetworkManager"} {
		if err := runCmd("systemctl", "start", unit); err != nil {
			lastErr = fmt.Errorf("failed to start %s: %w", unit, err)
		}
	}
	return lastErr
}

// EnableMonitorMode puts the interface into monitor mode
func EnableMonitorMode(iface string) error {
	log.Printf("Enabling monitor mode on %s...", iface)
	if err := runCmd("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := runCmd("iw", iface, "set", "type", "monitor"); err != nil {
		log.Printf("Hint: If you see 'Device or resource busy', stop NetworkManager/wpa_supplicant first.")
		return err
	}
	return runCmd("ip", "link", "set", iface, "up")
}

// DisableMonitorMode puts the interface back into managed mode
func DisableMonitorMode(iface string) {
	log.Printf("Restoring managed mode on %s...", iface)
	runCmd("ip", "link", "set", iface, "down")
	runCmd("iw", iface, "set", "type", "managed")
	runCmd("ip", "link", "set", iface, "up")
}

// SetInterfaceAddress replaces the interface's addresses with addr.
func SetInterfaceAddress(iface, cidr string) error {
	if err := runCmd("ip", "addr", "flush", "dev", iface); err != nil {
		return err
	}
	return runCmd("ip", "addr", "add", cidr, "dev", iface)
}

// FlushInterfaceAddress removes every address from the interface.
func FlushInterfaceAddress(iface string) {
	runCmd("ip", "addr", "flush", "dev", iface)
}

// ScanInterface runs a station scan and parses the result.
func ScanInterface(ctx context.Context, iface string) ([]domain.NetworkRecord, error) {
	out, err := exec.CommandContext(ctx, "iw", "dev", iface, "scan").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("scan on %s: %v (%s)", iface, err, strings.TrimSpace(string(out)))
	}
	return ParseScan(out), nil
}

// StationCount returns the number of stations associated to the AP on iface.
func StationCount(iface string) (int, error) {
	out, err := exec.Command("iw", "dev", iface, "station", "dump").Output()
	if err != nil {
		return 0, err
	}
	return ParseStationDump(out), nil
}

func runCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("Command failed: %s %v\nOutput: %s", name, args, string(output))
		return err
	}
	return nil
}

var (
	reBSS     = regexp.MustCompile(`^BSS ([0-9a-fA-F:]{17})`)
	reSignal  = regexp.MustCompile(`^signal: (-?[0-9.]+) dBm`)
	reFreq    = regexp.MustCompile(`^freq: ([0-9.]+)`)
	reDSParam = regexp.MustCompile(`^DS Parameter set: channel ([0-9]+)`)
)

type scanEntry struct {
	rec      domain.NetworkRecord
	privacy  bool
	wpa      bool
	rsn      bool
	eap      bool
	freqChan int
}

func (e *scanEntry) finish() domain.NetworkRecord {
	if e.rec.Channel == 0 {
		e.rec.Channel = e.freqChan
	}
	switch {
	case e.rsn && e.eap:
		e.rec.Encryption = domain.EncryptionEnterprise
	case e.rsn && e.wpa:
		e.rec.Encryption = domain.EncryptionMixed
	case e.rsn:
		e.rec.Encryption = domain.EncryptionWPA2
	case e.wpa:
		e.rec.Encryption = domain.EncryptionWPA
	case e.privacy:
		e.rec.Encryption = domain.EncryptionWEP
	default:
		e.rec.Encryption = domain.EncryptionOpen
	}
	return e.rec
}

// ParseScan parses `iw dev <iface> scan` output, in the order reported.
func ParseScan(out []byte) []domain.NetworkRecord {
	var records []domain.NetworkRecord
	var cur *scanEntry

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := reBSS.FindStringSubmatch(line); m != nil {
			if cur != nil {
				records = append(records, cur.finish())
			}
			bssid, _ := net.ParseMAC(m[1])
			cur = &scanEntry{rec: domain.NetworkRecord{BSSID: bssid}}
			continue
		}
		if cur == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SSID: "):
			cur.rec.SSID = strings.TrimPrefix(line, "SSID: ")
		case reSignal.MatchString(line):
			f, _ := strconv.ParseFloat(reSignal.FindStringSubmatch(line)[1], 64)
			cur.rec.RSSI = int(f)
		case reFreq.MatchString(line):
			f, _ := strconv.ParseFloat(reFreq.FindStringSubmatch(line)[1], 64)
			cur.freqChan = frequencyToChannel(int(f))
		case reDSParam.MatchString(line):
			cur.rec.Channel, _ = strconv.Atoi(reDSParam.FindStringSubmatch(line)[1])
		case strings.HasPrefix(line, "capability:") && strings.Contains(line, "Privacy"):
			cur.privacy = true
		case strings.HasPrefix(line, "RSN:"):
			cur.rsn = true
		case strings.HasPrefix(line, "WPA:"):
			cur.wpa = true
		case strings.Contains(line, "Authentication suites:") && strings.Contains(line, "802.1X"):
			cur.eap = true
		}
	}
	if cur != nil {
		records = append(records, cur.finish())
	}
	return records
}

// ParseStationDump counts the stations in `iw dev <iface> station dump`.
func ParseStationDump(out []byte) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "Station ") {
			n++
		}
	}
	return n
}

// frequencyToChannel converts a centre frequency in MHz to a channel number.
func frequencyToChannel(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return (freq-2407)/5
	case freq >= 5000 && freq < 5900:
		return (freq - 5000) / 5
	}
	return 0
}
