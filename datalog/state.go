package datalog

import "github.com/moffa90/go-c8051flash/sfr"

// State is the operating mode of the logger.
type State int

const (
	// StateUndefined is the state before the power source is known
	StateUndefined State = iota

	// StateLogOnly logs on battery power without any terminal output
	StateLogOnly

	// StateLogUART logs on battery power and reminds the user over the
	// terminal to switch to external power
	StateLogUART

	// StateInteractive runs the terminal demonstration on external power
	StateInteractive
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUndefined:
		return "undefined"
	case StateLogOnly:
		return "log-only"
	case StateLogUART:
		return "log-uart"
	case StateInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// SelectState picks the mode after a reset. External power always means
// interactive. On battery, a pin reset without a power-on reset enables the
// terminal; any other reset logs silently.
func SelectState(onBattery bool, resetSource byte) State {
	if !onBattery {
		return StateInteractive
	}
	if resetSource&(sfr.RSTSRC_PINRSF|sfr.RSTSRC_PORSF) == sfr.RSTSRC_PINRSF {
		return StateLogUART
	}
	return StateLogOnly
}
