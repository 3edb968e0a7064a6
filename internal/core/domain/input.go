package domain

import "strings"

// NavEvent is a logical navigation event produced by the input dispatcher.
type NavEvent int

const (
	NavUp NavEvent = iota
	NavDown
	NavLeft
	NavRight
	NavSelect
)

func (e NavEvent) String() string {
	switch e {
	case NavUp:
		return "Up"
	case NavDown:
		return "Down"
	case NavLeft:
		return "Left"
	case NavRight:
		return "Right"
	case NavSelect:
		return "Select"
	}
	return "Unknown"
}

// ParseNavEvent accepts the event names produced by String, in any case.
func ParseNavEvent(name string) (NavEvent, bool) {
	for ev := NavUp; ev <= NavSelect; ev++ {
		if strings.EqualFold(name, ev.String()) {
			return ev, true
		}
	}
	return 0, false
}

// Joystick ADC range. The stick rests near the midpoint.
const (
	AxisMin    = 0
	AxisMax    = 4095
	AxisCenter = 2048
)

// RawSample is one poll of the joystick: two analog axes and the button.
type RawSample struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Button bool `json:"button"`
}

// CenteredSample is a sample with the stick at rest and the button released.
func CenteredSample() RawSample {
	return RawSample{X: AxisCenter, Y: AxisCenter}
}

// SampleForEvent returns a full-deflection sample the dispatcher maps back
// to ev.
func SampleForEvent(ev NavEvent) RawSample {
	s := CenteredSample()
	switch ev {
	case NavUp:
		s.Y = AxisMin
	case NavDown:
		s.Y = AxisMax
	case NavLeft:
		s.X = AxisMin
	case NavRight:
		s.X = AxisMax
	case NavSelect:
		s.Button = true
	}
	return s
}

// Frame is a raw 802.11 frame delivered by the radio in promiscuous mode.
// SigLen is the length declared by the radio; bytes past it are not valid.
type Frame struct {
	Payload []byte
	SigLen  int
	RSSI    int
	Channel int
}

// Bytes returns the valid portion of the frame.
func (f Frame) Bytes() []byte {
	n := f.SigLen
	if n < 0 {
		n = 0
	}
	if n > len(f.Payload) {
		n = len(f.Payload)
	}
	return f.Payload[:n]
}
