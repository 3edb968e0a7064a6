package domain

import "fmt"

// ModeKind identifies which screen/radio configuration the device is in.
type ModeKind int

const (
	ModeMenu ModeKind = iota
	ModeAttackMenu
	ModeScanning
	ModeScanResults
	ModeSelectingNetwork
	ModeShowingInfo
	ModePacketCapture
	ModeRogueAP
	ModeHoneypotAP
)

var modeNames = map[ModeKind]string{
	ModeMenu:             "Menu",
	ModeAttackMenu:       "AttackMenu",
	ModeScanning:         "Scanning",
	ModeScanResults:      "ScanResults",
	ModeSelectingNetwork: "SelectingNetwork",
	ModeShowingInfo:      "ShowingInfo",
	ModePacketCapture:    "PacketCapture",
	ModeRogueAP:          "RogueAP",
	ModeHoneypotAP:       "HoneypotAP",
}

func (k ModeKind) String() string {
	if name, ok := modeNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether k is one of the defined mode kinds.
func (k ModeKind) Valid() bool {
	_, ok := modeNames[k]
	return ok
}

// RadioRole is the radio configuration a mode requires.
type RadioRole int

const (
	RoleIdle        RadioRole = iota // station role, not scanning
	RoleScan                         // station role, scan in progress
	RolePromiscuous                  // monitor/promiscuous, locked to a channel
	RoleAccessPoint                  // soft AP running
)

func (r RadioRole) String() string {
	switch r {
	case RoleIdle:
		return "idle"
	case RoleScan:
		return "scan"
	case RolePromiscuous:
		return "promiscuous"
	case RoleAccessPoint:
		return "access-point"
	}
	return "unknown"
}

// RadioRole returns the radio configuration required while k is current.
func (k ModeKind) RadioRole() RadioRole {
	switch k {
	case ModeScanning:
		return RoleScan
	case ModePacketCapture:
		return RolePromiscuous
	case ModeRogueAP, ModeHoneypotAP:
		return RoleAccessPoint
	}
	return RoleIdle
}

// IsAttack reports whether k is one of the radio-exclusive attack modes.
func (k ModeKind) IsAttack() bool {
	return k == ModePacketCapture || k == ModeRogueAP || k == ModeHoneypotAP
}

// Mode is the current state of the device. Page is only meaningful for the
// access point modes (0 = status, 1 = logs).
type Mode struct {
	Kind ModeKind `json:"kind"`
	Page int      `json:"page"`
}

// AccessPointPages is the number of pages in RogueAP and HoneypotAP.
const AccessPointPages = 2

func (m Mode) String() string {
	if m.Kind == ModeRogueAP || m.Kind == ModeHoneypotAP {
		return fmt.Sprintf("%s{page=%d}", m.Kind, m.Page)
	}
	return m.Kind.String()
}

// Menu entries, in display order.
var (
	MainMenuItems   = []string{"SCAN", "SELECT", "ATTACK", "INFO"}
	AttackMenuItems = []string{"PS", "MITM", "AP"}
)

// InfoPages is the number of pages in the network info view.
const InfoPages = 3
