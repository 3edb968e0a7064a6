package domain

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeKind_RadioRole(t *testing.T) {
	tests := []struct {
		kind ModeKind
		role RadioRole
	}{
		{ModeMenu, RoleIdle},
		{ModeAttackMenu, RoleIdle},
		{ModeScanning, RoleScan},
		{ModeScanResults, RoleIdle},
		{ModeSelectingNetwork, RoleIdle},
		{ModeShowingInfo, RoleIdle},
		{ModePacketCapture, RolePromiscuous},
		{ModeRogueAP, RoleAccessPoint},
		{ModeHoneypotAP, RoleAccessPoint},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.role, tt.kind.RadioRole(), tt.kind.String())
	}
}

func TestModeKind_IsAttack(t *testing.T) {
	assert.True(t, ModePacketCapture.IsAttack())
	assert.True(t, ModeRogueAP.IsAttack())
	assert.True(t, ModeHoneypotAP.IsAttack())
	assert.False(t, ModeAttackMenu.IsAttack())
	assert.False(t, ModeScanning.IsAttack())
	assert.False(t, ModeKind(99).Valid())
	assert.Equal(t, "Unknown", ModeKind(99).String())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "Menu", Mode{Kind: ModeMenu}.String())
	assert.Equal(t, "RogueAP{page=1}", Mode{Kind: ModeRogueAP, Page: 1}.String())
}

func TestNewNetworkList_TruncatesAndCopies(t *testing.T) {
	var recs []NetworkRecord
	for i := 0; i < MaxNetworks+5; i++ {
		recs = append(recs, NetworkRecord{
			SSID:  fmt.Sprintf("net-%d", i),
			BSSID: net.HardwareAddr{0, 1, 2, 3, 4, byte(i)},
		})
	}

	list := NewNetworkList(recs)
	require.Equal(t, MaxNetworks, list.Len())

	recs[0].BSSID[5] = 0xff
	first, err := list.At(0)
	require.NoError(t, err)
	assert.Equal(t, byte(0), first.BSSID[5], "list must not alias caller memory")

	_, err = list.At(MaxNetworks)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = list.At(-1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestNetworkRecord_Band(t *testing.T) {
	assert.Equal(t, Band24GHz, NetworkRecord{Channel: 6}.Band())
	assert.Equal(t, Band24GHz, NetworkRecord{Channel: 14}.Band())
	assert.Equal(t, Band5GHz, NetworkRecord{Channel: 36}.Band())
}

func TestSnapshot_ActiveLog(t *testing.T) {
	s := Snapshot{
		PacketLog:   []string{"Data from aa:bb:cc"},
		Credentials: []CredentialRecord{{Identifier: "a@b.c", Secret: "pw"}},
		Activity:    []string{"404: /x"},
	}

	s.Mode = Mode{Kind: ModePacketCapture}
	assert.Equal(t, []string{"Data from aa:bb:cc"}, s.ActiveLog())

	s.Mode = Mode{Kind: ModeRogueAP, Page: 0}
	assert.Nil(t, s.ActiveLog())
	s.Mode.Page = 1
	assert.Equal(t, []string{"Cred: a@b.c:pw"}, s.ActiveLog())

	s.Mode = Mode{Kind: ModeHoneypotAP, Page: 1}
	assert.Equal(t, []string{"404: /x"}, s.ActiveLog())

	s.Mode = Mode{Kind: ModeMenu}
	assert.Nil(t, s.ActiveLog())
}

func TestErrorKind(t *testing.T) {
	wrapped := fmt.Errorf("%w: %v", ErrRadioSetupFailed, &RadioError{Op: "start-ap", Err: errors.New("busy")})
	assert.Equal(t, "radio_setup_failed", ErrorKind(wrapped))
	assert.Equal(t, "no_network_selected", ErrorKind(ErrNoNetworkSelected))
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "other", ErrorKind(errors.New("x")))
}

func TestNewJournalEntry(t *testing.T) {
	e, err := NewJournalEntry("s-1", ActionTransition, "RogueAP", "from AttackMenu")
	require.NoError(t, err)
	assert.Equal(t, ActionTransition, e.Action)
	assert.False(t, e.Timestamp.IsZero())

	_, err = NewJournalEntry("", JournalAction("BOGUS"), "", "")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestParseNavEvent(t *testing.T) {
	ev, ok := ParseNavEvent("select")
	assert.True(t, ok)
	assert.Equal(t, NavSelect, ev)

	ev, ok = ParseNavEvent("Up")
	assert.True(t, ok)
	assert.Equal(t, NavUp, ev)

	_, ok = ParseNavEvent("jump")
	assert.False(t, ok)
	_, ok = ParseNavEvent("Unknown")
	assert.False(t, ok)
}
