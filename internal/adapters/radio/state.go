package radio

import (
	"sync/atomic"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

// State is the configuration the radio is currently in.
type State int32

const (
	StateIdle        State = iota // station role, nothing running
	StateScanning                 // station scan in progress
	StatePromiscuous              // monitor mode, frames delivered to the handler
	StateAccessPoint              // soft AP running
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScanning:
		return "Scanning"
	case StatePromiscuous:
		return "Promiscuous"
	case StateAccessPoint:
		return "AccessPoint"
	}
	return "Unknown"
}

// Role maps the state to the radio role a mode expects.
func (s State) Role() domain.RadioRole {
	switch s {
	case StateScanning:
		return domain.RoleScan
	case StatePromiscuous:
		return domain.RolePromiscuous
	case StateAccessPoint:
		return domain.RoleAccessPoint
	}
	return domain.RoleIdle
}

// AtomicState wraps atomic operations for State
type AtomicState struct {
	v int32
}

func (a *AtomicState) Set(s State) {
	atomic.StoreInt32(&a.v, int32(s))
}

func (a *AtomicState) Get() State {
	return State(atomic.LoadInt32(&a.v))
}

func (a *AtomicState) CompareAndSwap(old, new State) bool {
	return atomic.CompareAndSwapInt32(&a.v, int32(old), int32(new))
}

// Release returns the radio to idle unless a scan owns it. A running scan
// resets the state itself when it returns.
func (a *AtomicState) Release() {
	for {
		cur := a.Get()
		if cur == StateScanning || cur == StateIdle || a.CompareAndSwap(cur, StateIdle) {
			return
		}
	}
}
