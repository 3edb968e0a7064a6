package ports

import (
	"context"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// FrameHandler receives frames while the radio is in promiscuous mode. It is
// called from the radio's own goroutine, concurrently with the control loop.
type FrameHandler func(frame domain.Frame)

// Radio is the driver capability for the single wireless interface. Only the
// mode controller calls it.
type Radio interface {
	// ScanNetworks performs a station scan. It blocks until the scan finishes
	// or ctx is cancelled; the controller runs it off the control loop.
	ScanNetworks(ctx context.Context) ([]domain.NetworkRecord, error)

	// SetPromiscuousCallback installs fn as the frame handler. nil clears it.
	SetPromiscuousCallback(fn FrameHandler)
	// SetPromiscuous toggles promiscuous capture. Disabling it returns only
	// after the handler can no longer be invoked.
	SetPromiscuous(enabled bool) error
	// SetChannel locks the radio to a channel.
	SetChannel(channel int) error

	// StartAccessPoint brings up an open access point advertising name.
	StartAccessPoint(name string) error
	// StopAccessPoint tears the access point down. Safe to call when none runs.
	StopAccessPoint() error
	// StationCount returns the number of stations associated to the AP.
	StationCount() int

	// SetIdle returns the radio to a station role that is neither scanning,
	// capturing nor serving an access point.
	SetIdle() error
}

// Portal is the HTTP (and DNS) capability that runs alongside an access point.
type Portal interface {
	// Start begins serving. It returns once listeners are bound.
	Start(ctx context.Context) error
	// Stop shuts the portal down and returns after all in-flight handlers
	// have finished.
	Stop(ctx context.Context) error
}

// Display consumes controller snapshots. It must not retain or mutate them.
type Display interface {
	Render(s domain.Snapshot) error
}

// InputSource yields raw joystick samples.
type InputSource interface {
	Samples() <-chan domain.RawSample
	Close() error
}
