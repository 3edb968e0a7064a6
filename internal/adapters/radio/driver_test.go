package radio

import (
	"testing"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iwScanOutput = `BSS aa:bb:cc:dd:ee:01(on wlan0)
	last seen: 123.456s [boottime]
	freq: 2437
	signal: -42.00 dBm
	capability: ESS Privacy ShortSlotTime (0x0411)
	SSID: Home_WiFi
	DS Parameter set: channel 6
	RSN:	 * Version: 1
		 * Group cipher: CCMP
		 * Authentication suites: PSK
BSS 11:22:33:44:55:66(on wlan0) -- associated
	freq: 5180
	signal: -67.50 dBm
	capability: ESS Privacy (0x0011)
	SSID: Corp
	RSN:	 * Version: 1
		 * Authentication suites: IEEE 802.1X
BSS de:ad:be:ef:00:01(on wlan0)
	freq: 2412
	signal: -80.00 dBm
	capability: ESS (0x0001)
	SSID: Cafe
BSS de:ad:be:ef:00:02(on wlan0)
	freq: 2462
	signal: -71.00 dBm
	capability: ESS Privacy (0x0011)
	SSID: Old
BSS de:ad:be:ef:00:03(on wlan0)
	freq: 2472
	signal: -55.00 dBm
	capability: ESS Privacy (0x0011)
	SSID: Both
	RSN:	 * Version: 1
	WPA:	 * Version: 1
`

func TestParseScan(t *testing.T) {
	records := ParseScan([]byte(iwScanOutput))
	require.Len(t, records, 5)

	home := records[0]
	assert.Equal(t, "Home_WiFi", home.SSID)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", home.BSSIDString())
	assert.Equal(t, -42, home.RSSI)
	assert.Equal(t, 6, home.Channel)
	assert.Equal(t, domain.EncryptionWPA2, home.Encryption)

	corp := records[1]
	assert.Equal(t, 36, corp.Channel, "channel derived from frequency")
	assert.Equal(t, -67, corp.RSSI)
	assert.Equal(t, domain.EncryptionEnterprise, corp.Encryption)
	assert.Equal(t, domain.Band5GHz, corp.Band())

	assert.Equal(t, domain.EncryptionOpen, records[2].Encryption)
	assert.Equal(t, 1, records[2].Channel)
	assert.Equal(t, domain.EncryptionWEP, records[3].Encryption)
	assert.Equal(t, domain.EncryptionMixed, records[4].Encryption)
	assert.Equal(t, 13, records[4].Channel)
}

func TestParseScan_Empty(t *testing.T) {
	assert.Empty(t, ParseScan(nil))
	assert.Empty(t, ParseScan([]byte("command failed: Device or resource busy (-16)\n")))
}

func TestParseStationDump(t *testing.T) {
	out := `Station 02:00:00:00:00:01 (on wlan0)
	inactive time:	120 ms
	rx bytes:	1234
Station 02:00:00:00:00:02 (on wlan0)
	inactive time:	40 ms
`
	assert.Equal(t, 2, ParseStationDump([]byte(out)))
	assert.Equal(t, 0, ParseStationDump(nil))
}

func TestFrequencyToChannel(t *testing.T) {
	tests := []struct {
		freq int
		want int
	}{
		{2412, 1},
		{2437, 6},
		{2472, 13},
		{2484, 14},
		{5180, 36},
		{5825, 165},
		{900, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, frequencyToChannel(tt.freq), "freq %d", tt.freq)
	}
}

func TestHostapdConfig(t *testing.T) {
	conf := HostapdConfig("wlan0", "Free_Public_WiFi", 6)
	assert.Contains(t, conf, "interface=wlan0\n")
	assert.Contains(t, conf, "ssid=Free_Public_WiFi\n")
	assert.Contains(t, conf, "channel=6\n")
	assert.NotContains(t, conf, "wpa=")
}

func TestStripRadioTap(t *testing.T) {
	header := []byte{
		0x00, 0x00, // version, pad
		0x0a, 0x00, // length 10
		0x22, 0x00, 0x00, 0x00, // present: flags, dbm antenna signal
		0x10, // flags: FCS at end
		0xd6, // -42 dBm
	}
	body := []byte{0x08, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}
	fcs := []byte{0xde, 0xad, 0xbe, 0xef}

	data := append(append(append([]byte{}, header...), body...), fcs...)
	frame, ok := stripRadioTap(data)
	require.True(t, ok)
	assert.Equal(t, body, frame.Payload)
	assert.Equal(t, len(body), frame.SigLen)
	assert.Equal(t, -42, frame.RSSI)

	_, ok = stripRadioTap([]byte{0x00, 0x00})
	assert.False(t, ok)
}
