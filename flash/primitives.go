package flash

import (
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/sfr"
)

// Primitives performs byte read, byte write and page erase through the
// Flash-control registers of a Bus.
//
// Primitives is not safe for concurrent use: like the firmware it mirrors,
// it assumes a single thread of control.
type Primitives struct {
	bus    Bus
	def    *device.Definition
	config Config
}

// New creates Primitives for the device described by def on bus.
//
// Example:
//
//	mcu := sim.New(device.ByName("EFM8BB31F64G"))
//	dev := flash.New(mcu, mcu.Definition(), flash.WithLogger(myLogger))
func New(bus Bus, def *device.Definition, opts ...Option) *Primitives {
	if bus == nil {
		panic("bus cannot be nil")
	}
	if def == nil {
		panic("device definition cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Primitives{
		bus:    bus,
		def:    def,
		config: cfg,
	}
}

// Definition returns the device geometry.
func (p *Primitives) Definition() *device.Definition {
	return p.def
}

// ByteRead reads the byte at a with interrupts disabled.
func (p *Primitives) ByteRead(a device.Addr) (byte, error) {
	if err := p.checkAddr("byte read", a); err != nil {
		return 0, err
	}

	defer p.enterCritical()()

	return p.bus.Load(a), nil
}

// ByteWrite programs v at a.
//
// The target byte must already be erased in every bit position where v has
// a one; otherwise Flash ends up holding the AND of old and new value.
func (p *Primitives) ByteWrite(a device.Addr, v byte) error {
	if err := p.checkAddr("byte write", a); err != nil {
		return err
	}

	defer p.enterCritical()()

	if err := p.armSupplyMonitor(); err != nil {
		p.logError("byte write refused", "addr", fmt.Sprintf("0x%04X", uint32(a)), "error", err)
		return fmt.Errorf("byte write 0x%04X: %w", uint32(a), err)
	}
	defer p.releaseSupplyMonitor()

	p.unlock(sfr.PSCTL_PSWE)
	defer p.lock()

	p.bus.Store(a, v)
	if err := p.checkReset("byte write", a); err != nil {
		return err
	}

	p.logDebug("byte write", "addr", fmt.Sprintf("0x%04X", uint32(a)), "value", fmt.Sprintf("0x%02X", v))
	return nil
}

// PageErase sets every byte of the page containing a to 0xFF.
//
// Erasing the page that holds a programmed lock byte is denied by the
// hardware and has no effect; no error is reported.
func (p *Primitives) PageErase(a device.Addr) error {
	if err := p.checkAddr("page erase", a); err != nil {
		return err
	}

	defer p.enterCritical()()

	if err := p.armSupplyMonitor(); err != nil {
		p.logError("page erase refused", "addr", fmt.Sprintf("0x%04X", uint32(a)), "error", err)
		return fmt.Errorf("page erase 0x%04X: %w", uint32(a), err)
	}
	defer p.releaseSupplyMonitor()

	p.unlock(sfr.PSCTL_PSWE | sfr.PSCTL_PSEE)
	defer p.lock()

	// Any value written anywhere in the page triggers the erase.
	p.bus.Store(a, 0)
	if err := p.checkReset("page erase", a); err != nil {
		return err
	}

	p.logDebug("page erase", "page", fmt.Sprintf("0x%04X", uint32(p.def.PageStart(a))))
	return nil
}

// checkReset reports a reset triggered by the last store. A reset clears
// PSCTL, so PSWE reading back clear means the store never completed.
func (p *Primitives) checkReset(op string, a device.Addr) error {
	if p.bus.ReadSFR(sfr.PSCTL)&sfr.PSCTL_PSWE != 0 {
		return nil
	}
	src := p.bus.ReadSFR(sfr.RSTSRC)
	p.logError(op+" reset the device", "addr", fmt.Sprintf("0x%04X", uint32(a)),
		"reset_source", fmt.Sprintf("0x%02X", src))
	return fmt.Errorf("%s 0x%04X: %w (RSTSRC 0x%02X)", op, uint32(a), ErrDeviceReset, src)
}

func (p *Primitives) checkAddr(op string, a device.Addr) error {
	if !p.def.InFlash(a, 1) {
		return &AddressError{Op: op, Addr: a, Limit: p.def.FlashSize}
	}
	return nil
}

// armSupplyMonitor selects the high VDD monitor threshold and enables the
// monitor as a reset source, so that a brown-out during the store resets the
// device rather than corrupting Flash.
func (p *Primitives) armSupplyMonitor() error {
	p.bus.WriteSFR(sfr.RSTSRC, 0x00)
	p.bus.WriteSFR(sfr.VDM0CN, sfr.VDM0CN_VDMEN|sfr.VDM0CN_VDMLVL)

	for i := 0; i < p.config.SettleCycles; i++ {
		_ = p.bus.ReadSFR(sfr.VDM0CN)
	}

	if p.bus.ReadSFR(sfr.VDM0CN)&sfr.VDM0CN_VDDSTAT == 0 {
		p.releaseSupplyMonitor()
		return ErrSupplyLow
	}

	p.bus.WriteSFR(sfr.RSTSRC, sfr.RSTSRC_PORSF)
	return nil
}

// releaseSupplyMonitor returns the VDD monitor to the low threshold and
// leaves it enabled as a reset source.
func (p *Primitives) releaseSupplyMonitor() {
	p.bus.WriteSFR(sfr.RSTSRC, 0x00)
	p.bus.WriteSFR(sfr.VDM0CN, sfr.VDM0CN_VDMEN)
	p.bus.WriteSFR(sfr.RSTSRC, sfr.RSTSRC_PORSF)
}

// unlock writes the key sequence and sets the requested PSCTL latches.
func (p *Primitives) unlock(latches byte) {
	p.bus.WriteSFR(sfr.FLKEY, sfr.FLKEY_KEY1)
	p.bus.WriteSFR(sfr.FLKEY, sfr.FLKEY_KEY2)
	p.bus.WriteSFR(sfr.PSCTL, p.bus.ReadSFR(sfr.PSCTL)|latches)
}

func (p *Primitives) lock() {
	p.bus.WriteSFR(sfr.PSCTL, p.bus.ReadSFR(sfr.PSCTL)&^(sfr.PSCTL_PSWE|sfr.PSCTL_PSEE))
}

// logDebug logs a debug message if a logger is configured.
func (p *Primitives) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Primitives) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
