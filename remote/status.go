package remote

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/protocol"
)

// statusFor maps an execution error to the status sent back to the client.
func statusFor(err error) byte {
	var pe *protocol.ProtocolError
	switch {
	case err == nil:
		return protocol.StatusSuccess
	case errors.As(err, &pe):
		return pe.StatusCode
	case errors.Is(err, flash.ErrSupplyLow):
		return protocol.ErrSupply
	case errors.Is(err, flashutil.ErrScratchOverlap):
		return protocol.ErrScratch
	case errors.Is(err, flash.ErrDeviceReset):
		return protocol.ErrReset
	case flash.IsAddressError(err), flashutil.IsRangeError(err):
		return protocol.ErrAddress
	case errors.Is(err, protocol.ErrMalformedFrame):
		return protocol.ErrData
	default:
		return protocol.ErrUnknown
	}
}

// statusError is the client-side error for a failure status.
func statusError(op string, status byte) error {
	pe := &protocol.ProtocolError{Operation: op, StatusCode: status}
	switch status {
	case protocol.ErrSupply:
		return fmt.Errorf("%w: %w", pe, flash.ErrSupplyLow)
	case protocol.ErrScratch:
		return fmt.Errorf("%w: %w", pe, flashutil.ErrScratchOverlap)
	case protocol.ErrReset:
		return fmt.Errorf("%w: %w", pe, flash.ErrDeviceReset)
	default:
		return pe
	}
}
