package radio

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

var errBusy = errors.New("radio busy")

// SimOptions tunes the simulated radio.
type SimOptions struct {
	ScanDelay     time.Duration
	FrameInterval time.Duration
	Seed          int64
	Clock         func() time.Time
}

// Simulated is a radio that fakes scans, traffic and stations so the whole
// device can run on a workstation.
type Simulated struct {
	opts  SimOptions
	state AtomicState

	handler atomic.Pointer[ports.FrameHandler]

	channel atomic.Int64

	mu      sync.Mutex // guards the fields below and generator start/stop
	apName  string
	apSince time.Time
	stop    chan struct{}
	wg      sync.WaitGroup
}

var _ ports.Radio = (*Simulated)(nil)

// NewSimulated creates an idle simulated radio.
func NewSimulated(opts SimOptions) *Simulated {
	if opts.ScanDelay <= 0 {
		opts.ScanDelay = 1500 * time.Millisecond
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 50 * time.Millisecond
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Simulated{opts: opts}
	s.channel.Store(1)
	return s
}

// State returns the current radio state.
func (s *Simulated) State() State { return s.state.Get() }

// Channel returns the channel the radio is tuned to.
func (s *Simulated) Channel() int {
	return int(s.channel.Load())
}

// ScanNetworks simulates a station scan.
func (s *Simulated) ScanNetworks(ctx context.Context) ([]domain.NetworkRecord, error) {
	if !s.state.CompareAndSwap(StateIdle, StateScanning) {
		return nil, errBusy
	}
	defer s.state.CompareAndSwap(StateScanning, StateIdle)

	log.Printf("[SIM] Scanning...")
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.opts.ScanDelay):
	}
	return simNetworks(), nil
}

func simNetworks() []domain.NetworkRecord {
	return []domain.NetworkRecord{
		{SSID: "Home_WiFi", RSSI: -42, Channel: 6, BSSID: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0x01}, Encryption: domain.EncryptionWPA2},
		{SSID: "Starbucks", RSSI: -58, Channel: 1, BSSID: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0x02}, Encryption: domain.EncryptionOpen},
		{SSID: "Office-5G", RSSI: -63, Channel: 36, BSSID: net.HardwareAddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, Encryption: domain.EncryptionEnterprise},
		{SSID: "Legacy_Router", RSSI: -77, Channel: 11, BSSID: net.HardwareAddr{0xca, 0xfe, 0xba, 0xbe, 0x00, 0x00}, Encryption: domain.EncryptionWEP},
		{SSID: "iPhone_Hotspot", RSSI: -81, Channel: 6, BSSID: net.HardwareAddr{0x02, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}, Encryption: domain.EncryptionMixed},
	}
}

// SetPromiscuousCallback installs the frame handler.
func (s *Simulated) SetPromiscuousCallback(fn ports.FrameHandler) {
	if fn == nil {
		s.handler.Store(nil)
		return
	}
	s.handler.Store(&fn)
}

// SetPromiscuous starts or stops the synthetic traffic generator. Stopping
// waits for the generator to exit.
func (s *Simulated) SetPromiscuous(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !enabled {
		s.stopGenerator()
		s.state.CompareAndSwap(StatePromiscuous, StateIdle)
		return nil
	}

	if s.state.Get() == StatePromiscuous {
		return nil
	}
	if !s.state.CompareAndSwap(StateIdle, StatePromiscuous) {
		return errBusy
	}
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.generate(s.stop)
	log.Printf("[SIM] Promiscuous mode enabled")
	return nil
}

func (s *Simulated) stopGenerator() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.stop = nil
	log.Printf("[SIM] Promiscuous mode disabled")
}

func (s *Simulated) generate(stop <-chan struct{}) {
	defer s.wg.Done()
	rng := rand.New(rand.NewSource(s.opts.Seed))
	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if h := s.handler.Load(); h != nil {
				(*h)(simFrame(rng, s.Channel()))
			}
		}
	}
}

var simHosts = []string{"example.com", "captive.apple.com", "connectivitycheck.gstatic.com", "neverssl.com"}

// simFrame builds a random 802.11 frame: mostly data, some with an HTTP
// request, plus beacons and RTS frames.
func simFrame(rng *rand.Rand, channel int) domain.Frame {
	src := net.HardwareAddr{0x02, 0x00, 0x00, byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))}
	dst := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0x01}

	dot11 := &layers.Dot11{Address1: dst, Address2: src, Address3: dst}
	var body []byte
	switch n := rng.Intn(10); {
	case n < 2:
		dot11.Type = layers.Dot11TypeMgmtBeacon
	case n < 3:
		dot11.Type = layers.Dot11TypeCtrlRTS
	case n < 6:
		dot11.Type = layers.Dot11TypeData
		body = []byte("GET / HTTP/1.1\r\nHost: " + simHosts[rng.Intn(len(simHosts))] + "\r\n\r\n")
	default:
		dot11.Type = layers.Dot11TypeDataQOSData
		body = make([]byte, 32+rng.Intn(64))
		rng.Read(body)
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, dot11, gopacket.Payload(body)); err != nil {
		return domain.Frame{}
	}
	data := buf.Bytes()
	return domain.Frame{Payload: data, SigLen: len(data), RSSI: -40 - rng.Intn(50), Channel: channel}
}

// SetChannel tunes the radio.
func (s *Simulated) SetChannel(channel int) error {
	if channel <= 0 {
		return errors.New("invalid channel")
	}
	s.channel.Store(int64(channel))
	return nil
}

// StartAccessPoint pretends to bring up an access point.
func (s *Simulated) StartAccessPoint(name string) error {
	if !domain.IsValidSSID(name) {
		return errors.New("invalid SSID")
	}
	if !s.state.CompareAndSwap(StateIdle, StateAccessPoint) {
		return errBusy
	}
	s.mu.Lock()
	s.apName = name
	s.apSince = s.opts.Clock()
	s.mu.Unlock()
	log.Printf("[SIM] Access point %q up", name)
	return nil
}

// StopAccessPoint tears the access point down.
func (s *Simulated) StopAccessPoint() error {
	if s.state.CompareAndSwap(StateAccessPoint, StateIdle) {
		log.Printf("[SIM] Access point down")
	}
	return nil
}

// StationCount grows by one every seven seconds the AP is up, wrapping at 4.
func (s *Simulated) StationCount() int {
	if s.state.Get() != StateAccessPoint {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.opts.Clock().Sub(s.apSince)/(7*time.Second)) % 4
}

// SetIdle stops whatever is running.
func (s *Simulated) SetIdle() error {
	s.mu.Lock()
	s.stopGenerator()
	s.mu.Unlock()
	s.state.Release()
	return nil
}
