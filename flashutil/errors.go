package flashutil

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
)

// ErrScratchOverlap is returned when a range overlaps the scratch page.
var ErrScratchOverlap = errors.New("range overlaps the scratch page")

// RangeError indicates a range that leaves the area an operation may touch.
type RangeError struct {
	Op    string
	Addr  device.Addr
	Len   uint32
	Limit device.Addr
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: range 0x%04X+%d out of bounds: limit is 0x%04X",
		e.Op, uint32(e.Addr), e.Len, uint32(e.Limit))
}

// IsRangeError returns true if err is or wraps a RangeError.
func IsRangeError(err error) bool {
	var re *RangeError
	return errors.As(err, &re)
}
