// Package sim simulates the Flash controller of an 8051-family part at the
// register level.
//
// MCU implements flash.Bus. It models the behaviour the Flash primitives
// depend on: the FLKEY unlock state machine, the PSWE/PSEE latches, bit
// clearing writes, page erase, lock-byte page protection, the VDD monitor
// and the resets it triggers, and interrupts firing between instructions
// while EA is set.
//
// MCU is not safe for concurrent use.
package sim

import (
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/sfr"
)

// Supply thresholds of the VDD monitor in millivolts.
const (
	ThresholdLow  = 1800
	ThresholdHigh = 2600

	// DefaultSupply is the supply voltage of a new MCU
	DefaultSupply = 3300
)

// Stats counts Flash activity since the MCU was created.
type Stats struct {
	// ByteWrites is the number of bytes programmed
	ByteWrites int

	// PageErases is the number of pages erased
	PageErases int

	// IgnoredOps is the number of writes or erases the controller refused
	IgnoredOps int

	// Resets is the number of device resets
	Resets int
}

// MCU is a simulated Flash controller.
type MCU struct {
	def  *device.Definition
	code []byte
	regs [256]byte

	key       byte
	psctl     byte
	ie        byte
	sfrPage   byte
	rstEnable byte
	rstFlags  byte
	vdm0cn    byte

	supply int

	isr     func(*MCU)
	inISR   bool
	onStore func(*MCU, device.Addr)

	stats Stats
}

// New creates an MCU with erased Flash for the given part.
// It panics if def is nil.
func New(def *device.Definition) *MCU {
	if def == nil {
		panic("device definition cannot be nil")
	}
	m := &MCU{
		def:    def,
		code:   make([]byte, def.FlashSize),
		supply: DefaultSupply,
	}
	for i := range m.code {
		m.code[i] = 0xFF
	}
	m.powerOn()
	return m
}

// Definition returns the simulated part.
func (m *MCU) Definition() *device.Definition {
	return m.def
}

// Stats returns the activity counters.
func (m *MCU) Stats() Stats {
	return m.stats
}

// ResetSource returns the reset flags latched by the last reset, as read
// from RSTSRC.
func (m *MCU) ResetSource() byte {
	return m.rstFlags
}

// SetSupply sets the supply voltage in millivolts.
func (m *MCU) SetSupply(mV int) {
	m.supply = mV
}

// OnInterrupt installs an interrupt handler. It runs after every register
// or code-space access made while EA is set.
func (m *MCU) OnInterrupt(fn func(*MCU)) {
	m.isr = fn
}

// OnStore installs a hook that runs before every code-space store reaches
// the controller. Tests use it to change the supply mid-operation.
func (m *MCU) OnStore(fn func(*MCU, device.Addr)) {
	m.onStore = fn
}

// Reset performs a pin reset.
func (m *MCU) Reset() {
	m.reset(sfr.RSTSRC_PINRSF)
}

func (m *MCU) powerOn() {
	m.reset(sfr.RSTSRC_PORSF)
	m.stats.Resets = 0
}

// reset returns the controller registers to their reset state and latches
// cause as the reset source. Flash contents survive.
func (m *MCU) reset(cause byte) {
	m.key = sfr.FLKEY_LOCKED
	m.psctl = 0
	m.ie = 0
	m.sfrPage = sfr.LegacyPage
	m.rstEnable = sfr.RSTSRC_PORSF
	m.rstFlags = cause
	m.vdm0cn = sfr.VDM0CN_VDMEN
	m.stats.Resets++
}

// ReadSFR reads a special-function register.
func (m *MCU) ReadSFR(r sfr.Addr) byte {
	var v byte
	switch r {
	case sfr.FLKEY:
		v = m.key
	case sfr.PSCTL:
		v = m.psctl
	case sfr.IE:
		v = m.ie
	case sfr.SFRPAGE:
		v = m.sfrPage
	case sfr.RSTSRC:
		v = m.rstFlags
	case sfr.VDM0CN:
		v = m.vdm0cn
		if m.vdm0cn&sfr.VDM0CN_VDMEN != 0 && m.supply >= m.threshold() {
			v |= sfr.VDM0CN_VDDSTAT
		}
	default:
		v = m.regs[r]
	}
	m.interrupt()
	return v
}

// WriteSFR writes a special-function register.
func (m *MCU) WriteSFR(r sfr.Addr, v byte) {
	switch r {
	case sfr.FLKEY:
		m.writeKey(v)
	case sfr.PSCTL:
		m.psctl = v & (sfr.PSCTL_PSWE | sfr.PSCTL_PSEE)
	case sfr.IE:
		m.ie = v
	case sfr.SFRPAGE:
		m.sfrPage = v
	case sfr.RSTSRC:
		if v&sfr.RSTSRC_SWRSF != 0 {
			m.reset(sfr.RSTSRC_SWRSF)
			return
		}
		m.rstEnable = v
	case sfr.VDM0CN:
		m.vdm0cn = v & (sfr.VDM0CN_VDMEN | sfr.VDM0CN_VDMLVL)
	default:
		m.regs[r] = v
	}
	m.interrupt()
}

// writeKey advances the FLKEY state machine. Any write out of sequence
// disables Flash writes until the next reset.
func (m *MCU) writeKey(v byte) {
	switch {
	case m.key == sfr.FLKEY_LOCKED && v == sfr.FLKEY_KEY1:
		m.key = sfr.FLKEY_FIRST
	case m.key == sfr.FLKEY_FIRST && v == sfr.FLKEY_KEY2:
		m.key = sfr.FLKEY_UNLOCKED
	default:
		m.key = sfr.FLKEY_DISABLED
	}
}

// Store performs a MOVX write. With PSWE clear it addresses XRAM and leaves
// Flash alone.
func (m *MCU) Store(a device.Addr, v byte) {
	if m.psctl&sfr.PSCTL_PSWE == 0 {
		m.interrupt()
		return
	}
	if m.onStore != nil {
		m.onStore(m, a)
	}

	if m.key != sfr.FLKEY_UNLOCKED {
		// Flash Error Device Reset
		m.stats.IgnoredOps++
		m.reset(sfr.RSTSRC_FERROR)
		return
	}
	m.key = sfr.FLKEY_LOCKED

	if m.rstEnable&sfr.RSTSRC_PORSF != 0 && m.supply < m.threshold() {
		m.stats.IgnoredOps++
		m.reset(sfr.RSTSRC_PORSF)
		return
	}

	if uint32(a) >= m.def.FlashSize {
		m.stats.IgnoredOps++
		m.reset(sfr.RSTSRC_FERROR)
		return
	}

	if m.psctl&sfr.PSCTL_PSEE != 0 {
		m.erase(a)
	} else {
		m.code[a] &= v
		m.stats.ByteWrites++
	}
	m.interrupt()
}

func (m *MCU) erase(a device.Addr) {
	start := m.def.PageStart(a)
	if start == m.def.LockPage() && m.code[m.def.LockByte] != 0xFF {
		m.stats.IgnoredOps++
		return
	}
	end := start + device.Addr(m.def.PageSize)
	for i := start; i < end; i++ {
		m.code[i] = 0xFF
	}
	m.stats.PageErases++
}

// Load performs a MOVC read from code space.
func (m *MCU) Load(a device.Addr) byte {
	var v byte = 0xFF
	if uint32(a) < m.def.FlashSize {
		v = m.code[a]
	}
	m.interrupt()
	return v
}

func (m *MCU) threshold() int {
	if m.vdm0cn&sfr.VDM0CN_VDMLVL != 0 {
		return ThresholdHigh
	}
	return ThresholdLow
}

func (m *MCU) interrupt() {
	if m.isr == nil || m.inISR || m.ie&sfr.IE_EA == 0 {
		return
	}
	m.inISR = true
	m.isr(m)
	m.inISR = false
}

// Peek returns a copy of n bytes of Flash starting at a, bypassing the
// controller.
func (m *MCU) Peek(a device.Addr, n int) []byte {
	out := make([]byte, n)
	copy(out, m.code[a:])
	return out
}

// Snapshot returns a copy of the whole Flash array.
func (m *MCU) Snapshot() []byte {
	return m.Peek(0, len(m.code))
}

// LoadImage places data at a directly, as a debug-interface programmer would.
func (m *MCU) LoadImage(a device.Addr, data []byte) error {
	if !m.def.InFlash(a, uint32(len(data))) {
		return fmt.Errorf("image of %d bytes at 0x%04X exceeds flash size 0x%X",
			len(data), uint32(a), m.def.FlashSize)
	}
	copy(m.code[a:], data)
	return nil
}
