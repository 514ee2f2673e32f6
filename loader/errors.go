package loader

import (
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
)

// PageOutOfRangeError indicates image data outside the user area of the
// device, which includes the scratch page and the lock-byte page.
type PageOutOfRangeError struct {
	Addr  device.Addr
	Len   int
	Limit device.Addr
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("image data 0x%04X+%d is out of range: user Flash ends at 0x%04X",
		uint32(e.Addr), e.Len, uint32(e.Limit))
}

// VerifyMismatchError indicates that a byte read back differs from the image.
type VerifyMismatchError struct {
	Addr     device.Addr
	Expected byte
	Actual   byte
}

func (e *VerifyMismatchError) Error() string {
	return fmt.Sprintf("verify mismatch at 0x%04X: expected 0x%02X, got 0x%02X",
		uint32(e.Addr), e.Expected, e.Actual)
}
