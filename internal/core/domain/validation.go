package domain

import (
	"regexp"
	"unicode/utf8"
)

// Validation Helpers

var (
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// MaxSSIDLength is the 802.11 limit on an SSID, in bytes.
const MaxSSIDLength = 32

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// IFNAMSIZ is 16
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// IsValidSSID checks that an advertised name fits in a beacon.
func IsValidSSID(ssid string) bool {
	return len(ssid) > 0 && len(ssid) <= MaxSSIDLength && utf8.ValidString(ssid)
}
