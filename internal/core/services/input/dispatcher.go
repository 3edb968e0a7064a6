package input

import (
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

// Defaults for the joystick.
const (
	DefaultLowThreshold  = 1000
	DefaultHighThreshold = 3000
	DefaultDebounce      = 200 * time.Millisecond
)

// Options configures a Dispatcher.
type Options struct {
	LowThreshold  int
	HighThreshold int
	Debounce      time.Duration
	Clock         func() time.Time
}

// Dispatcher turns raw joystick samples into navigation events.
//
// One debounce window is shared by both axes and the button: once an event
// is accepted every other qualifying sample is dropped until the window
// has passed. Not safe for concurrent use.
type Dispatcher struct {
	low      int
	high     int
	debounce time.Duration
	now      func() time.Time

	last     time.Time
	accepted bool
}

// NewDispatcher creates a dispatcher, filling zero options with defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.LowThreshold <= 0 {
		opts.LowThreshold = DefaultLowThreshold
	}
	if opts.HighThreshold <= 0 {
		opts.HighThreshold = DefaultHighThreshold
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Dispatcher{
		low:      opts.LowThreshold,
		high:     opts.HighThreshold,
		debounce: opts.Debounce,
		now:      opts.Clock,
	}
}

// Dispatch classifies s and applies the debounce window. It returns false
// when the stick is centred or the event was suppressed.
func (d *Dispatcher) Dispatch(s domain.RawSample) (domain.NavEvent, bool) {
	ev, ok := d.classify(s)
	if !ok {
		return 0, false
	}

	now := d.now()
	if d.accepted && now.Sub(d.last) < d.debounce {
		return 0, false
	}
	d.last = now
	d.accepted = true

	telemetry.InputEvents.WithLabelValues(ev.String()).Inc()
	return ev, true
}

// classify maps a sample to at most one event: button, then Y, then X.
func (d *Dispatcher) classify(s domain.RawSample) (domain.NavEvent, bool) {
	switch {
	case s.Button:
		return domain.NavSelect, true
	case s.Y < d.low:
		return domain.NavUp, true
	case s.Y > d.high:
		return domain.NavDown, true
	case s.X < d.low:
		return domain.NavLeft, true
	case s.X > d.high:
		return domain.NavRight, true
	}
	return 0, false
}
