package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformedFrame is wrapped by frame errors other than a checksum mismatch.
var ErrMalformedFrame = errors.New("malformed frame")

// ProtocolError represents an error status returned by the agent.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// StatusCode is the error code from the agent
	StatusCode byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", e.Operation, StatusName(e.StatusCode), e.StatusCode)
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// StatusName returns a human-readable name for a status code.
func StatusName(code byte) string {
	switch code {
	case StatusSuccess:
		return "success"
	case ErrLength:
		return "invalid length"
	case ErrData:
		return "invalid data"
	case ErrCommand:
		return "unrecognized command"
	case ErrChecksum:
		return "checksum mismatch"
	case ErrAddress:
		return "address out of range"
	case ErrSupply:
		return "supply voltage low"
	case ErrScratch:
		return "range overlaps scratch page"
	case ErrReset:
		return "device reset during store"
	case ErrUnknown:
		return "unknown error"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", code)
	}
}

// CommandName returns a human-readable name for a command code.
func CommandName(code byte) string {
	switch code {
	case CmdIdentify:
		return "identify"
	case CmdByteRead:
		return "byte read"
	case CmdByteWrite:
		return "byte write"
	case CmdPageErase:
		return "page erase"
	case CmdRead:
		return "read"
	case CmdWrite:
		return "write"
	case CmdClear:
		return "clear"
	case CmdUpdate:
		return "update"
	case CmdCopy:
		return "copy"
	case CmdFill:
		return "fill"
	default:
		return fmt.Sprintf("command 0x%02X", code)
	}
}
