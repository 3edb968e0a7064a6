package radio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

// LinuxOptions configures the nl80211 radio.
type LinuxOptions struct {
	Interface   string
	HostapdPath string
	APAddr      string // gateway address handed to portal clients
	APChannel   int
	ReadTimeout time.Duration
}

// Linux drives a real wireless interface through iw, ip, hostapd and pcap.
// It needs root.
type Linux struct {
	opts  LinuxOptions
	state AtomicState

	handler atomic.Pointer[ports.FrameHandler]
	channel atomic.Int64

	mu       sync.Mutex // guards the fields below
	handle   *pcap.Handle
	stop     chan struct{}
	wg       sync.WaitGroup
	hostapd  *exec.Cmd
	confPath string
}

var _ ports.Radio = (*Linux)(nil)

// NewLinux creates a radio bound to opts.Interface. The interface is not
// touched until an operation needs it.
func NewLinux(opts LinuxOptions) *Linux {
	if opts.HostapdPath == "" {
		opts.HostapdPath = "hostapd"
	}
	if opts.APAddr == "" {
		opts.APAddr = "192.168.4.1"
	}
	if opts.APChannel <= 0 {
		opts.APChannel = 6
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 250 * time.Millisecond
	}
	return &Linux{opts: opts}
}

// ScanNetworks runs `iw scan` on the interface.
func (l *Linux) ScanNetworks(ctx context.Context) ([]domain.NetworkRecord, error) {
	if !l.state.CompareAndSwap(StateIdle, StateScanning) {
		return nil, errBusy
	}
	defer l.state.CompareAndSwap(StateScanning, StateIdle)
	return ScanInterface(ctx, l.opts.Interface)
}

// SetPromiscuousCallback installs the frame handler.
func (l *Linux) SetPromiscuousCallback(fn ports.FrameHandler) {
	if fn == nil {
		l.handler.Store(nil)
		return
	}
	l.handler.Store(&fn)
}

// SetPromiscuous switches the interface to monitor mode and starts reading
// frames. Disabling waits for the reader to exit before returning.
func (l *Linux) SetPromiscuous(enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !enabled {
		if l.stopCapture() {
			DisableMonitorMode(l.opts.Interface)
		}
		l.state.CompareAndSwap(StatePromiscuous, StateIdle)
		return nil
	}

	if l.state.Get() == StatePromiscuous {
		return nil
	}
	if !l.state.CompareAndSwap(StateIdle, StatePromiscuous) {
		return errBusy
	}
	if err := EnableMonitorMode(l.opts.Interface); err != nil {
		l.state.Set(StateIdle)
		return err
	}
	handle, err := pcap.OpenLive(l.opts.Interface, 65536, true, l.opts.ReadTimeout)
	if err != nil {
		DisableMonitorMode(l.opts.Interface)
		l.state.Set(StateIdle)
		return fmt.Errorf("open capture on %s: %w", l.opts.Interface, err)
	}
	if handle.LinkType() != layers.LinkTypeIEEE80211Radio {
		handle.Close()
		DisableMonitorMode(l.opts.Interface)
		l.state.Set(StateIdle)
		return fmt.Errorf("%s: unexpected link type %v", l.opts.Interface, handle.LinkType())
	}

	l.handle = handle
	l.stop = make(chan struct{})
	l.wg.Add(1)
	go l.read(handle, l.stop)
	log.Printf("Capture started on %s", l.opts.Interface)
	return nil
}

// stopCapture reports whether a capture was running.
func (l *Linux) stopCapture() bool {
	if l.stop == nil {
		return false
	}
	close(l.stop)
	l.wg.Wait()
	l.handle.Close()
	l.handle = nil
	l.stop = nil
	log.Printf("Capture stopped on %s", l.opts.Interface)
	return true
}

func (l *Linux) read(handle *pcap.Handle, stop <-chan struct{}) {
	defer l.wg.Done()
	for {
		select {
		case <-stop:
			return
		default:
		}

		data, _, err := handle.ReadPacketData()
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			continue
		}
		if err != nil {
			log.Printf("Capture read error on %s: %v", l.opts.Interface, err)
			return
		}

		frame, ok := stripRadioTap(data)
		if !ok {
			continue
		}
		frame.Channel = int(l.channel.Load())
		if h := l.handler.Load(); h != nil {
			(*h)(frame)
		}
	}
}

// stripRadioTap removes the radiotap header (and a trailing FCS when the
// driver reports one) and keeps the antenna signal as RSSI.
func stripRadioTap(data []byte) (domain.Frame, bool) {
	var rt layers.RadioTap
	if err := rt.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return domain.Frame{}, false
	}
	payload := rt.Payload
	if rt.Flags.FCS() && len(payload) >= 4 {
		payload = payload[:len(payload)-4]
	}
	rssi := -100
	if rt.Present.DBMAntennaSignal() {
		rssi = int(rt.DBMAntennaSignal)
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return domain.Frame{Payload: buf, SigLen: len(buf), RSSI: rssi}, true
}

// SetChannel tunes the interface.
func (l *Linux) SetChannel(channel int) error {
	if err := SetInterfaceChannel(l.opts.Interface, channel); err != nil {
		return err
	}
	l.channel.Store(int64(channel))
	return nil
}

// StartAccessPoint launches hostapd with an open network named name.
func (l *Linux) StartAccessPoint(name string) error {
	if !domain.IsValidSSID(name) {
		return errors.New("invalid SSID")
	}
	if !l.state.CompareAndSwap(StateIdle, StateAccessPoint) {
		return errBusy
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.launchHostapd(name); err != nil {
		l.cleanupHostapd()
		l.state.Set(StateIdle)
		return err
	}
	log.Printf("Access point %q up on %s", name, l.opts.Interface)
	return nil
}

func (l *Linux) launchHostapd(name string) error {
	f, err := os.CreateTemp("", "wdeck-hostapd-*.conf")
	if err != nil {
		return err
	}
	l.confPath = f.Name()
	_, err = f.WriteString(HostapdConfig(l.opts.Interface, name, l.opts.APChannel))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := SetInterfaceAddress(l.opts.Interface, l.opts.APAddr+"/24"); err != nil {
		return fmt.Errorf("address %s: %w", l.opts.Interface, err)
	}

	cmd := exec.Command(l.opts.HostapdPath, l.confPath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start hostapd: %w", err)
	}
	l.hostapd = cmd
	l.channel.Store(int64(l.opts.APChannel))
	return nil
}

func (l *Linux) cleanupHostapd() {
	if l.hostapd != nil {
		if l.hostapd.Process != nil {
			l.hostapd.Process.Kill()
		}
		l.hostapd.Wait()
		l.hostapd = nil
		FlushInterfaceAddress(l.opts.Interface)
	}
	if l.confPath != "" {
		os.Remove(l.confPath)
		l.confPath = ""
	}
}

// StopAccessPoint kills hostapd. Safe to call when no AP runs.
func (l *Linux) StopAccessPoint() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupHostapd()
	if l.state.CompareAndSwap(StateAccessPoint, StateIdle) {
		log.Printf("Access point down on %s", l.opts.Interface)
	}
	return nil
}

// StationCount asks the driver how many stations are associated.
func (l *Linux) StationCount() int {
	if l.state.Get() != StateAccessPoint {
		return 0
	}
	n, err := StationCount(l.opts.Interface)
	if err != nil {
		return 0
	}
	return n
}

// SetIdle stops capture and the AP and leaves the interface managed.
func (l *Linux) SetIdle() error {
	l.mu.Lock()
	if l.stopCapture() {
		DisableMonitorMode(l.opts.Interface)
	}
	l.cleanupHostapd()
	l.mu.Unlock()
	l.state.Release()
	return nil
}

// HostapdConfig renders a hostapd configuration for an open network.
func HostapdConfig(iface, ssid string, channel int) string {
	return fmt.Sprintf(`interface=%s
driver=nl80211
ssid=%s
hw_mode=g
channel=%d
auth_algs=1
wmm_enabled=0
ignore_broadcast_ssid=0
`, iface, ssid, channel)
}
