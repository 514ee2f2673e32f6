package flash

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
)

// ErrSupplyLow is returned by ByteWrite and PageErase when the VDD monitor
// reports the supply below the high threshold. Flash is left untouched.
var ErrSupplyLow = errors.New("supply voltage below flash write threshold")

// ErrDeviceReset is returned by ByteWrite and PageErase when the store itself
// reset the device: a brown-out with the VDD monitor armed, or a Flash error
// reset. The target byte or page is not written.
var ErrDeviceReset = errors.New("device reset during flash store")

// AddressError indicates an address outside the device's Flash.
type AddressError struct {
	Op    string
	Addr  device.Addr
	Limit uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%s: address 0x%04X out of range: flash ends at 0x%04X",
		e.Op, uint32(e.Addr), e.Limit)
}

// IsAddressError returns true if err is or wraps an AddressError.
func IsAddressError(err error) bool {
	var ae *AddressError
	return errors.As(err, &ae)
}
