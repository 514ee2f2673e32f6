// Package sfr names the special-function registers and bit fields that the
// Flash primitives drive.
//
// Addresses follow the C8051F38x register map. The C8051F93x and EFM8BB3
// parts place the same registers at the same addresses in the legacy SFR
// page, which is the only page the primitives touch.
package sfr

import "fmt"

// Addr is a special-function-register address in the 0x80-0xFF direct space.
type Addr byte

// Registers used by the Flash primitives.
const (
	PSCTL   Addr = 0x8F // Program Store R/W Control
	IE      Addr = 0xA8 // Interrupt Enable
	FLSCL   Addr = 0xB6 // Flash Scale
	FLKEY   Addr = 0xB7 // Flash Lock and Key
	SFRPAGE Addr = 0xBF // SFR Page Select
	RSTSRC  Addr = 0xEF // Reset Source Configuration/Status
	VDM0CN  Addr = 0xFF // VDD Monitor Control
)

// IE bits.
const (
	IE_EA = 0x80 // global interrupt enable
)

// PSCTL bits.
const (
	PSCTL_PSWE = 0x01 // program store write enable
	PSCTL_PSEE = 0x02 // program store erase enable
)

// FLKEY write values and read-back states.
const (
	FLKEY_KEY1 = 0xA5
	FLKEY_KEY2 = 0xF1

	FLKEY_LOCKED   = 0x00 // no key written
	FLKEY_FIRST    = 0x01 // first key written
	FLKEY_UNLOCKED = 0x02 // one write or erase is armed
	FLKEY_DISABLED = 0x03 // locked until the next reset
)

// RSTSRC bits.
const (
	RSTSRC_PINRSF = 0x01 // pin reset flag
	RSTSRC_PORSF  = 0x02 // power-on / VDD monitor reset flag and enable
	RSTSRC_MCDRSF = 0x04 // missing clock detector
	RSTSRC_WDTRSF = 0x08 // watchdog
	RSTSRC_SWRSF  = 0x10 // software reset
	RSTSRC_C0RSEF = 0x20 // comparator 0
	RSTSRC_FERROR = 0x40 // Flash error
)

// VDM0CN bits.
const (
	VDM0CN_VDMEN   = 0x80 // VDD monitor enable
	VDM0CN_VDDSTAT = 0x40 // VDD above monitor threshold (read only)
	VDM0CN_VDMLVL  = 0x20 // high threshold select
)

// LegacyPage is the SFR page holding the Flash-control registers.
const LegacyPage = 0x00

var names = map[Addr]string{
	PSCTL:   "PSCTL",
	IE:      "IE",
	FLSCL:   "FLSCL",
	FLKEY:   "FLKEY",
	SFRPAGE: "SFRPAGE",
	RSTSRC:  "RSTSRC",
	VDM0CN:  "VDM0CN",
}

// Name returns the register mnemonic, or its address for unknown registers.
func Name(a Addr) string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("SFR(0x%02X)", byte(a))
}

func (a Addr) String() string {
	return Name(a)
}
