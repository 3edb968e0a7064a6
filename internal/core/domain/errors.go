package domain

import (
	"errors"
	"fmt"
)

// Controller-level errors. All of them are recovered locally by showing a
// notice and returning to a well-defined mode.
var (
	ErrNoNetworkSelected   = errors.New("no network selected")
	ErrNoNetworksAvailable = errors.New("no networks available")
	ErrRadioSetupFailed    = errors.New("radio setup failed")
)

// Buffer errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmpty           = errors.New("buffer is empty")
)

// RadioError wraps a driver failure with the operation that caused it.
type RadioError struct {
	Op  string // e.g. "start-ap", "set-channel"
	Err error
}

func (e *RadioError) Error() string {
	return fmt.Sprintf("radio %s failed: %v", e.Op, e.Err)
}

func (e *RadioError) Unwrap() error {
	return e.Err
}

// ErrorKind returns a short stable label for metrics and journal entries.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoNetworkSelected):
		return "no_network_selected"
	case errors.Is(err, ErrNoNetworksAvailable):
		return "no_networks_available"
	case errors.Is(err, ErrRadioSetupFailed):
		return "radio_setup_failed"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrEmpty):
		return "empty"
	}
	return "other"
}
