package domain

import (
	"net"
	"strings"
)

// MaxNetworks is the capacity of a scan result list.
const MaxNetworks = 20

// NoSelection marks the absence of a selected network.
const NoSelection = -1

// EncryptionClass is the coarse security classification of a network.
type EncryptionClass int

const (
	EncryptionUnknown EncryptionClass = iota
	EncryptionOpen
	EncryptionWEP
	EncryptionWPA
	EncryptionWPA2
	EncryptionMixed
	EncryptionEnterprise
)

func (e EncryptionClass) String() string {
	switch e {
	case EncryptionOpen:
		return "OPEN"
	case EncryptionWEP:
		return "WEP"
	case EncryptionWPA:
		return "WPA"
	case EncryptionWPA2:
		return "WPA2"
	case EncryptionMixed:
		return "WPA/WPA2"
	case EncryptionEnterprise:
		return "WPA2-E"
	}
	return "UNKNOWN"
}

// WiFiBand represents a typed string for frequency bands.
type WiFiBand string

const (
	Band24GHz WiFiBand = "2.4GHz"
	Band5GHz  WiFiBand = "5GHz"
)

// BandForChannel derives the band from a channel number.
func BandForChannel(channel int) WiFiBand {
	if channel > 14 {
		return Band5GHz
	}
	return Band24GHz
}

// NetworkRecord is one access point seen during a scan.
type NetworkRecord struct {
	SSID       string           `json:"ssid"`
	RSSI       int              `json:"rssi"`
	Channel    int              `json:"channel"`
	BSSID      net.HardwareAddr `json:"bssid"`
	Encryption EncryptionClass  `json:"encryption"`
}

// Band returns the frequency band of the record's channel.
func (n NetworkRecord) Band() WiFiBand {
	return BandForChannel(n.Channel)
}

// BSSIDString formats the hardware address as lowercase colon-separated hex.
func (n NetworkRecord) BSSIDString() string {
	return strings.ToLower(n.BSSID.String())
}

// NetworkList is an immutable, capacity-bounded list of scan results.
// A new scan produces a new list; entries are never edited in place.
type NetworkList struct {
	records []NetworkRecord
}

// NewNetworkList copies at most MaxNetworks records into a new list.
func NewNetworkList(records []NetworkRecord) NetworkList {
	n := len(records)
	if n > MaxNetworks {
		n = MaxNetworks
	}
	out := make([]NetworkRecord, n)
	for i := 0; i < n; i++ {
		r := records[i]
		r.BSSID = append(net.HardwareAddr(nil), r.BSSID...)
		out[i] = r
	}
	return NetworkList{records: out}
}

// Len returns the number of records.
func (l NetworkList) Len() int { return len(l.records) }

// At returns the record at i.
func (l NetworkList) At(i int) (NetworkRecord, error) {
	if i < 0 || i >= len(l.records) {
		return NetworkRecord{}, ErrIndexOutOfRange
	}
	return l.records[i], nil
}

// Records returns a copy of the records.
func (l NetworkList) Records() []NetworkRecord {
	out := make([]NetworkRecord, len(l.records))
	copy(out, l.records)
	return out
}
