package domain

import "time"

// Snapshot is a read-only copy of the controller state handed to displays.
// All slices are copies; mutating them has no effect on the controller.
type Snapshot struct {
	Mode        Mode     `json:"mode"`
	Notice      []string `json:"notice,omitempty"` // shown instead of the mode screen while set
	MenuIndex   int      `json:"menu_index"`
	AttackIndex int      `json:"attack_index"`
	Scroll      int      `json:"scroll"`
	InfoPage    int      `json:"info_page"`
	LogIndex    int      `json:"log_index"`
	LogBrowsing bool     `json:"log_browsing"` // the user has scrolled the log view

	Networks []NetworkRecord `json:"networks"`
	Selected int             `json:"selected"`

	Counters    ProtocolCounters   `json:"counters"`
	PacketLog   []string           `json:"packet_log"`
	Credentials []CredentialRecord `json:"credentials"`
	Activity    []string           `json:"activity"`

	APName       string `json:"ap_name,omitempty"`
	StationCount int    `json:"station_count"`

	TakenAt time.Time `json:"taken_at"`
}

// SelectedRecord returns the selected network, if any.
func (s Snapshot) SelectedRecord() (NetworkRecord, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Networks) {
		return NetworkRecord{}, false
	}
	return s.Networks[s.Selected], true
}

// ActiveLog returns the log lines the log viewer browses in the current mode,
// or nil when the mode has no log view.
func (s Snapshot) ActiveLog() []string {
	switch s.Mode.Kind {
	case ModePacketCapture:
		return s.PacketLog
	case ModeRogueAP:
		if s.Mode.Page == 1 {
			lines := make([]string, len(s.Credentials))
			for i, c := range s.Credentials {
				lines[i] = c.String()
			}
			return lines
		}
	case ModeHoneypotAP:
		if s.Mode.Page == 1 {
			return s.Activity
		}
	}
	return nil
}
