package mode

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/core/services/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	ctrl     *Controller
	radio    *MockRadio
	clock    *fakeClock
	rogue    *MockPortal
	honeypot *MockPortal
	creds    *logbuf.Feed[domain.CredentialRecord]
	activity *logbuf.Feed[string]
	journal  *fakeJournal
}

func newHarness(t *testing.T, radio *MockRadio) *harness {
	t.Helper()
	h := &harness{
		radio:    radio,
		clock:    newFakeClock(),
		rogue:    &MockPortal{},
		honeypot: &MockPortal{},
		creds:    logbuf.NewFeed[domain.CredentialRecord](32),
		activity: logbuf.NewFeed[string](20),
		journal:  &fakeJournal{},
	}
	h.ctrl = NewController(Options{
		Radio:          radio,
		Session:        capture.NewSession(capture.Options{Clock: h.clock.Now}),
		RoguePortal:    h.rogue,
		HoneypotPortal: h.honeypot,
		Credentials:    h.creds,
		Activity:       h.activity,
		Journal:        h.journal,
		Clock:          h.clock.Now,
	})
	return h
}

func (h *harness) press(evs ...domain.NavEvent) error {
	var err error
	for _, ev := range evs {
		err = h.ctrl.HandleNavigation(context.Background(), ev)
	}
	return err
}

func (h *harness) tick() {
	h.ctrl.Tick(context.Background(), h.clock.Now())
}

// settle lets any notice expire.
func (h *harness) settle() {
	h.clock.Advance(DefaultMessageDelay)
	h.tick()
}

// menuItem moves the main menu cursor to idx.
func (h *harness) menuItem(t *testing.T, idx int) {
	t.Helper()
	require.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	for i := 0; i < len(domain.MainMenuItems) && h.ctrl.Snapshot().MenuIndex != idx; i++ {
		require.NoError(t, h.press(domain.NavDown))
	}
	require.Equal(t, idx, h.ctrl.Snapshot().MenuIndex)
}

func (h *harness) attackItem(t *testing.T, idx int) {
	t.Helper()
	h.menuItem(t, 2)
	require.NoError(t, h.press(domain.NavRight))
	require.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	for i := 0; i < idx; i++ {
		require.NoError(t, h.press(domain.NavDown))
	}
}

// scan runs a scan and waits for the results screen, then returns to the menu.
func (h *harness) scan(t *testing.T) {
	t.Helper()
	h.menuItem(t, 0)
	require.NoError(t, h.press(domain.NavSelect))
	require.Eventually(t, func() bool {
		h.tick()
		return h.ctrl.Mode().Kind == domain.ModeScanResults
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, h.press(domain.NavLeft))
}

// selectNetwork commits the record at idx and waits out the confirmation.
func (h *harness) selectNetwork(t *testing.T, idx int) {
	t.Helper()
	h.menuItem(t, 1)
	require.NoError(t, h.press(domain.NavRight))
	for i := 0; i < idx; i++ {
		require.NoError(t, h.press(domain.NavDown))
	}
	require.NoError(t, h.press(domain.NavRight))
	h.settle()
}

func testNetworks(n int) []domain.NetworkRecord {
	out := make([]domain.NetworkRecord, n)
	for i := range out {
		out[i] = domain.NetworkRecord{
			SSID:       fmt.Sprintf("net-%02d", i),
			RSSI:       -40 - i,
			Channel:    1 + i%11,
			BSSID:      net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, byte(i)},
			Encryption: domain.EncryptionWPA2,
		}
	}
	return out
}

func dataFrame() domain.Frame {
	payload := make([]byte, 24)
	payload[0] = 0x08
	copy(payload[10:16], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	return domain.Frame{Payload: payload, SigLen: len(payload)}
}

func TestController_StartsInMenu(t *testing.T) {
	h := newHarness(t, newHappyRadio())

	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ModeMenu, s.Mode.Kind)
	assert.Equal(t, domain.NoSelection, s.Selected)
	assert.Empty(t, s.Networks)
	assert.Empty(t, s.Notice)
}

func TestController_MenuWrapsAround(t *testing.T) {
	h := newHarness(t, newHappyRadio())

	require.NoError(t, h.press(domain.NavUp))
	assert.Equal(t, 3, h.ctrl.Snapshot().MenuIndex)

	for i := 0; i < len(domain.MainMenuItems); i++ {
		require.NoError(t, h.press(domain.NavDown))
	}
	assert.Equal(t, 3, h.ctrl.Snapshot().MenuIndex)

	require.NoError(t, h.press(domain.NavDown))
	assert.Equal(t, 0, h.ctrl.Snapshot().MenuIndex)
}

func TestController_LeftInMenuIsNoop(t *testing.T) {
	radio := newHappyRadio()
	h := newHarness(t, radio)

	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	assert.Empty(t, radio.CallLog())
}

func TestController_AttackMenuNavigation(t *testing.T) {
	h := newHarness(t, newHappyRadio())
	h.attackItem(t, 0)

	require.NoError(t, h.press(domain.NavUp))
	assert.Equal(t, 2, h.ctrl.Snapshot().AttackIndex)
	require.NoError(t, h.press(domain.NavDown, domain.NavDown, domain.NavDown))
	assert.Equal(t, 2, h.ctrl.Snapshot().AttackIndex)

	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
}

func TestController_ScanReplacesListAndResetsSelection(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(25), nil).Once()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(3), nil).Once()
	h := newHarness(t, radio)

	h.scan(t)
	s := h.ctrl.Snapshot()
	require.Len(t, s.Networks, domain.MaxNetworks)
	assert.Equal(t, "net-00", s.Networks[0].SSID)
	assert.True(t, h.journal.Has(domain.ActionScan, "20 networks"))

	h.selectNetwork(t, 4)
	assert.Equal(t, 4, h.ctrl.Selected())

	h.scan(t)
	assert.Len(t, h.ctrl.Snapshot().Networks, 3)
	assert.Equal(t, domain.NoSelection, h.ctrl.Selected())
}

func TestController_ScanResultsScroll(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(3), nil)
	h := newHarness(t, radio)

	require.NoError(t, h.press(domain.NavSelect))
	require.Eventually(t, func() bool {
		h.tick()
		return h.ctrl.Mode().Kind == domain.ModeScanResults
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, h.press(domain.NavUp))
	assert.Equal(t, 2, h.ctrl.Snapshot().Scroll)
	require.NoError(t, h.press(domain.NavDown))
	assert.Equal(t, 0, h.ctrl.Snapshot().Scroll)

	require.NoError(t, h.press(domain.NavDown, domain.NavLeft))
	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ModeMenu, s.Mode.Kind)
	assert.Equal(t, 0, s.Scroll)
}

func TestController_ScanFailure(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(nil, errors.New("firmware timeout"))
	h := newHarness(t, radio)

	require.NoError(t, h.press(domain.NavSelect))
	require.Eventually(t, func() bool {
		h.tick()
		return h.ctrl.Mode().Kind == domain.ModeMenu
	}, time.Second, 5*time.Millisecond)

	assert.True(t, h.ctrl.NoticeActive())
	assert.Equal(t, []string{"Scan failed!"}, h.ctrl.Snapshot().Notice)
	h.settle()
	assert.False(t, h.ctrl.NoticeActive())
}

func TestController_AbortScanDropsResult(t *testing.T) {
	radio := newHappyRadio()
	release := make(chan struct{})
	radio.On("ScanNetworks", mock.Anything).
		Run(func(args mock.Arguments) {
			select {
			case <-release:
			case <-args.Get(0).(context.Context).Done():
			}
		}).
		Return(testNetworks(2), nil)
	h := newHarness(t, radio)

	require.NoError(t, h.press(domain.NavSelect))
	assert.Equal(t, domain.ModeScanning, h.ctrl.Mode().Kind)
	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)

	close(release)
	for i := 0; i < 20; i++ {
		h.tick()
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	assert.Empty(t, h.ctrl.Snapshot().Networks)
}

func TestController_AbortScanWaitsForRadio(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
			// the driver takes a while to notice the cancellation
			time.Sleep(20 * time.Millisecond)
			radio.track("ScanNetworks returned")
		}).
		Return(nil, context.Canceled)
	h := newHarness(t, radio)
	h.rogue.On("Start", mock.Anything).Return(nil)

	require.NoError(t, h.press(domain.NavSelect))
	require.Equal(t, domain.ModeScanning, h.ctrl.Mode().Kind)
	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, []string{"ScanNetworks returned"}, radio.CallLog(),
		"leaving the scan returns only after the driver is done")

	h.attackItem(t, 1)
	require.NoError(t, h.press(domain.NavRight))
	assert.Equal(t, domain.ModeRogueAP, h.ctrl.Mode().Kind)

	log := radio.CallLog()
	require.NotEmpty(t, log)
	assert.Equal(t, "ScanNetworks returned", log[0])
	assert.Contains(t, log, "StartAccessPoint("+DefaultRogueSSID+")")
}

func TestController_SelectWithoutNetworks(t *testing.T) {
	h := newHarness(t, newHappyRadio())
	h.menuItem(t, 1)

	err := h.press(domain.NavRight)
	assert.ErrorIs(t, err, domain.ErrNoNetworksAvailable)
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	assert.Equal(t, []string{"No networks!", "Scan first"}, h.ctrl.Snapshot().Notice)
}

func TestController_NoticeSwallowsInput(t *testing.T) {
	h := newHarness(t, newHappyRadio())
	h.menuItem(t, 1)
	require.Error(t, h.press(domain.NavRight))

	require.NoError(t, h.press(domain.NavDown))
	assert.Equal(t, 1, h.ctrl.Snapshot().MenuIndex, "input during a notice is ignored")

	h.clock.Advance(DefaultMessageDelay)
	require.NoError(t, h.press(domain.NavDown))
	assert.Equal(t, 2, h.ctrl.Snapshot().MenuIndex)
}

func TestController_Info(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(2), nil)
	h := newHarness(t, radio)

	h.menuItem(t, 3)
	assert.ErrorIs(t, h.press(domain.NavRight), domain.ErrNoNetworksAvailable)
	h.settle()

	h.scan(t)
	h.menuItem(t, 3)
	assert.ErrorIs(t, h.press(domain.NavRight), domain.ErrNoNetworkSelected)
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	h.settle()

	h.selectNetwork(t, 1)
	h.menuItem(t, 3)
	require.NoError(t, h.press(domain.NavRight))
	assert.Equal(t, domain.ModeShowingInfo, h.ctrl.Mode().Kind)

	require.NoError(t, h.press(domain.NavUp))
	assert.Equal(t, domain.InfoPages-1, h.ctrl.Snapshot().InfoPage)

	require.NoError(t, h.press(domain.NavLeft))
	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ModeMenu, s.Mode.Kind)
	assert.Equal(t, 0, s.InfoPage)
}

func TestController_SelectionConfirmation(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return([]domain.NetworkRecord{
		{SSID: "A-very-long-network-name", Channel: 6, BSSID: net.HardwareAddr{1, 2, 3, 4, 5, 6}},
	}, nil)
	h := newHarness(t, radio)
	h.scan(t)

	h.menuItem(t, 1)
	require.NoError(t, h.press(domain.NavRight))
	require.NoError(t, h.press(domain.NavSelect))

	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ModeMenu, s.Mode.Kind)
	assert.Equal(t, 0, s.Selected)
	assert.Equal(t, []string{"Selected:", "A-very-long-n..."}, s.Notice)
	assert.True(t, h.journal.Has(domain.ActionSelect, "A-very-long-network-name"))
}

func TestController_PacketCaptureWithoutSelection(t *testing.T) {
	radio := newHappyRadio()
	h := newHarness(t, radio)
	h.attackItem(t, 0)
	radio.ResetCalls()

	err := h.press(domain.NavRight)
	assert.ErrorIs(t, err, domain.ErrNoNetworkSelected)

	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ModeAttackMenu, s.Mode.Kind)
	assert.Equal(t, domain.ProtocolCounters{}, s.Counters)
	assert.Equal(t, []string{"No network", "selected!"}, s.Notice)
	assert.Empty(t, radio.CallLog(), "radio must not be touched")

	h.settle()
	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	assert.False(t, h.ctrl.NoticeActive())
}

func TestController_PacketCaptureLifecycle(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(3), nil)
	h := newHarness(t, radio)
	h.scan(t)
	h.selectNetwork(t, 2)
	h.attackItem(t, 0)
	radio.ResetCalls()

	require.NoError(t, h.press(domain.NavRight))
	assert.Equal(t, domain.ModePacketCapture, h.ctrl.Mode().Kind)
	assert.Equal(t, []string{
		"SetPromiscuousCallback(false)",
		"SetPromiscuousCallback(true)",
		"SetPromiscuous(true)",
		"SetChannel(3)",
	}, radio.CallLog())

	for i := 0; i < 5; i++ {
		radio.Deliver(dataFrame())
	}
	h.tick()

	s := h.ctrl.Snapshot()
	assert.Equal(t, uint64(5), s.Counters.HTTP)
	assert.Equal(t, uint64(5), s.Counters.Total)
	assert.Equal(t, []string{"HTTP from dd:ee:ff"}, s.PacketLog)
	assert.Equal(t, s.PacketLog, s.ActiveLog())

	radio.ResetCalls()
	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	assert.Equal(t, []string{
		"SetPromiscuous(false)",
		"SetPromiscuousCallback(false)",
		"SetIdle",
	}, radio.CallLog())

	// A frame racing the teardown is not counted
	h.ctrl.session.HandleFrame(dataFrame())
	assert.Equal(t, uint64(5), h.ctrl.Snapshot().Counters.Total)
}

func TestController_PacketCaptureReentryResets(t *testing.T) {
	radio := newHappyRadio()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(1), nil)
	h := newHarness(t, radio)
	h.scan(t)
	h.selectNetwork(t, 0)
	h.attackItem(t, 0)

	require.NoError(t, h.press(domain.NavRight))
	radio.Deliver(dataFrame())
	h.tick()
	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, uint64(1), h.ctrl.Snapshot().Counters.HTTP, "results stay visible after leaving")

	require.NoError(t, h.press(domain.NavRight))
	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.ProtocolCounters{}, s.Counters)
	assert.Empty(t, s.PacketLog)
}

func TestController_PacketCaptureChannelFailure(t *testing.T) {
	radio := &MockRadio{}
	radio.On("SetIdle").Return(nil).Maybe()
	radio.On("ScanNetworks", mock.Anything).Return(testNetworks(1), nil)
	radio.On("SetPromiscuous", true).Return(nil)
	radio.On("SetPromiscuous", false).Return(nil)
	radio.On("SetChannel", 1).Return(errors.New("channel locked"))
	h := newHarness(t, radio)
	h.scan(t)
	h.selectNetwork(t, 0)
	h.attackItem(t, 0)

	err := h.press(domain.NavRight)
	assert.ErrorIs(t, err, domain.ErrRadioSetupFailed)
	var radioErr *domain.RadioError
	require.ErrorAs(t, err, &radioErr)
	assert.Equal(t, "set-channel", radioErr.Op)

	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	radio.AssertCalled(t, "SetPromiscuous", false)
	radio.Deliver(dataFrame())
	assert.Equal(t, uint64(0), h.ctrl.Snapshot().Counters.Total)
}

func TestController_AccessPointFailure(t *testing.T) {
	radio := &MockRadio{}
	radio.On("SetIdle").Return(nil)
	radio.On("StartAccessPoint", DefaultRogueSSID).Return(errors.New("driver refused"))
	radio.On("StopAccessPoint").Return(nil)
	h := newHarness(t, radio)
	h.attackItem(t, 1)

	err := h.press(domain.NavRight)
	assert.ErrorIs(t, err, domain.ErrRadioSetupFailed)
	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	assert.Equal(t, []string{"AP Setup Failed!"}, h.ctrl.Snapshot().Notice)

	radio.AssertCalled(t, "StopAccessPoint")
	h.rogue.AssertNotCalled(t, "Start", mock.Anything)

	log := radio.CallLog()
	assert.Equal(t, "SetIdle", log[len(log)-1], "radio is left idle")
}

func TestController_PortalFailureStopsAccessPoint(t *testing.T) {
	radio := newHappyRadio()
	h := newHarness(t, radio)
	h.honeypot.On("Start", mock.Anything).Return(errors.New("address in use"))
	h.honeypot.On("Stop", mock.Anything).Return(nil)
	h.attackItem(t, 2)

	err := h.press(domain.NavRight)
	assert.ErrorIs(t, err, domain.ErrRadioSetupFailed)
	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	radio.AssertCalled(t, "StopAccessPoint")
	h.honeypot.AssertCalled(t, "Stop", mock.Anything)
}

func TestController_RogueAPCredentials(t *testing.T) {
	radio := newHappyRadio()
	radio.On("StationCount").Return(1)
	h := newHarness(t, radio)
	h.rogue.On("Start", mock.Anything).Return(nil)
	h.rogue.On("Stop", mock.Anything).Return(nil)
	h.attackItem(t, 1)

	require.NoError(t, h.press(domain.NavRight))
	s := h.ctrl.Snapshot()
	assert.Equal(t, domain.Mode{Kind: domain.ModeRogueAP}, s.Mode)
	assert.Equal(t, DefaultRogueSSID, s.APName)
	radio.AssertCalled(t, "StartAccessPoint", DefaultRogueSSID)

	for i := 0; i < 12; i++ {
		h.creds.Publish(domain.NewCredentialRecord(fmt.Sprintf("user%d@example.com", i), "pw"))
	}
	h.clock.Advance(DefaultStationInterval)
	h.tick()

	s = h.ctrl.Snapshot()
	require.Len(t, s.Credentials, DefaultCredentialCapacity)
	assert.Equal(t, "user2@example.com", s.Credentials[0].Identifier)
	assert.Equal(t, 1, s.StationCount)
	assert.Nil(t, s.ActiveLog(), "status page has no log view")
	assert.True(t, h.journal.Has(domain.ActionCredential, "Cred: user11@example.com:pw"))

	// Logs page
	require.NoError(t, h.press(domain.NavSelect))
	s = h.ctrl.Snapshot()
	assert.Equal(t, 1, s.Mode.Page)
	assert.Equal(t, DefaultCredentialCapacity-1, s.LogIndex)
	require.NoError(t, h.press(domain.NavDown))
	assert.Equal(t, 0, h.ctrl.Snapshot().LogIndex)

	require.NoError(t, h.press(domain.NavSelect))
	assert.Equal(t, 0, h.ctrl.Snapshot().Mode.Page)

	require.NoError(t, h.press(domain.NavLeft))
	assert.Equal(t, domain.ModeAttackMenu, h.ctrl.Mode().Kind)
	h.rogue.AssertCalled(t, "Stop", mock.Anything)
	radio.AssertCalled(t, "StopAccessPoint")
}

func TestController_HoneypotLogsStationChanges(t *testing.T) {
	radio := newHappyRadio()
	radio.On("StationCount").Return(0).Once()
	radio.On("StationCount").Return(2)
	h := newHarness(t, radio)
	h.honeypot.On("Start", mock.Anything).Return(nil)
	h.honeypot.On("Stop", mock.Anything).Return(nil)
	h.attackItem(t, 2)
	require.NoError(t, h.press(domain.NavRight))
	assert.Equal(t, DefaultHoneypotSSID, h.ctrl.Snapshot().APName)

	h.activity.Publish("HTTP from 192.168.4.2")

	h.clock.Advance(DefaultStationInterval)
	h.tick() // count unchanged at 0
	h.clock.Advance(DefaultStationInterval / 2)
	h.tick() // too early to poll
	h.clock.Advance(DefaultStationInterval / 2)
	h.tick() // 2 stations
	h.clock.Advance(DefaultStationInterval)
	h.tick() // still 2, nothing logged

	assert.Equal(t, []string{"HTTP from 192.168.4.2", "Clients: 2"}, h.ctrl.Snapshot().Activity)

	require.NoError(t, h.press(domain.NavLeft))
	h.honeypot.AssertCalled(t, "Stop", mock.Anything)
}

func TestController_CloseTearsDown(t *testing.T) {
	radio := newHappyRadio()
	h := newHarness(t, radio)
	h.rogue.On("Start", mock.Anything).Return(nil)
	h.rogue.On("Stop", mock.Anything).Return(nil)
	h.attackItem(t, 1)
	require.NoError(t, h.press(domain.NavRight))

	h.ctrl.Close(context.Background())
	assert.Equal(t, domain.ModeMenu, h.ctrl.Mode().Kind)
	h.rogue.AssertCalled(t, "Stop", mock.Anything)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly-16-chars", "exactly-16-chars"},
		{"A-very-long-network-name", "A-very-long-n..."},
		{"Café-Niño-Señor-Wi", "Café-Niño-Señ..."},
		{"日本語のネットワーク名です長い", "日本語のネットワーク名です長い"},
		{"日本語のネットワーク名です長いです", "日本語のネットワーク名です..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, 16)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, utf8.ValidString(got), tt.in)
	}
}

func TestWrap(t *testing.T) {
	for m := 1; m <= 7; m++ {
		for start := 0; start < m; start++ {
			i := start
			for n := 0; n < m; n++ {
				i = wrap(i, 1, m)
				assert.True(t, i >= 0 && i < m)
			}
			assert.Equal(t, start, i, "m=%d", m)

			for n := 0; n < m; n++ {
				i = wrap(i, -1, m)
				assert.True(t, i >= 0 && i < m)
			}
			assert.Equal(t, start, i, "m=%d", m)
		}
	}
	assert.Equal(t, 0, wrap(5, 1, 0))
}

// stateRadio models the radio configuration so random navigation can be
// checked against the mode it is supposed to match.
type stateRadio struct {
	MockRadio
	promiscuous bool
	ap          bool
}

func (r *stateRadio) ScanNetworks(context.Context) ([]domain.NetworkRecord, error) {
	return testNetworks(4), nil
}
func (r *stateRadio) SetPromiscuous(enabled bool) error { r.promiscuous = enabled; return nil }
func (r *stateRadio) SetChannel(int) error              { return nil }
func (r *stateRadio) StartAccessPoint(string) error     { r.ap = true; return nil }
func (r *stateRadio) StopAccessPoint() error            { r.ap = false; return nil }
func (r *stateRadio) StationCount() int                 { return 0 }
func (r *stateRadio) SetIdle() error                    { return nil }

func TestController_RandomNavigationKeepsRadioConsistent(t *testing.T) {
	radio := &stateRadio{}
	portal := &MockPortal{}
	portal.On("Start", mock.Anything).Return(nil)
	portal.On("Stop", mock.Anything).Return(nil)
	clock := newFakeClock()
	ctrl := NewController(Options{
		Radio:          radio,
		RoguePortal:    portal,
		HoneypotPortal: portal,
		Clock:          clock.Now,
	})

	rng := rand.New(rand.NewSource(42))
	events := []domain.NavEvent{domain.NavUp, domain.NavDown, domain.NavLeft, domain.NavRight, domain.NavSelect}
	for i := 0; i < 3000; i++ {
		_ = ctrl.HandleNavigation(context.Background(), events[rng.Intn(len(events))])
		if rng.Intn(4) == 0 {
			clock.Advance(DefaultMessageDelay)
		}
		ctrl.Tick(context.Background(), clock.Now())

		m := ctrl.Mode()
		require.True(t, m.Kind.Valid())
		require.False(t, radio.promiscuous && radio.ap, "two radio modes active")
		switch m.Kind.RadioRole() {
		case domain.RolePromiscuous:
			require.True(t, radio.promiscuous)
		case domain.RoleAccessPoint:
			require.True(t, radio.ap)
			require.Less(t, m.Page, domain.AccessPointPages)
		default:
			require.False(t, radio.promiscuous, "mode %s", m)
			require.False(t, radio.ap, "mode %s", m)
		}
	}
}
