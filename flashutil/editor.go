package flashutil

import (
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
)

// Editor performs byte-range operations on a Flash device.
//
// Editor is not safe for concurrent use.
type Editor struct {
	dev    flash.Device
	def    *device.Definition
	config Config
}

// New creates an Editor for dev.
// It panics if dev is nil.
func New(dev flash.Device, opts ...Option) *Editor {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Editor{
		dev:    dev,
		def:    dev.Definition(),
		config: cfg,
	}
}

// Device returns the underlying Flash device.
func (e *Editor) Device() flash.Device {
	return e.dev
}

// Write programs src at dest. The destination must be erased.
func (e *Editor) Write(dest device.Addr, src []byte) error {
	n := uint32(len(src))
	if err := e.checkDest("write", dest, n); err != nil {
		return err
	}

	for i, b := range src {
		a := dest + device.Addr(i)
		if err := e.dev.ByteWrite(a, b); err != nil {
			return fmt.Errorf("write 0x%04X: %w", uint32(a), err)
		}
	}
	return nil
}

// Read fills dst with the bytes starting at src.
func (e *Editor) Read(dst []byte, src device.Addr) error {
	n := uint32(len(dst))
	if !e.def.InFlash(src, n) {
		return &RangeError{Op: "read", Addr: src, Len: n, Limit: device.Addr(e.def.FlashSize)}
	}

	for i := range dst {
		a := src + device.Addr(i)
		b, err := e.dev.ByteRead(a)
		if err != nil {
			return fmt.Errorf("read 0x%04X: %w", uint32(a), err)
		}
		dst[i] = b
	}
	return nil
}

// Copy programs n bytes read from src at dest. The destination must be
// erased. Ranges are copied upwards one byte at a time, so an overlapping
// destination above src sees bytes already copied.
func (e *Editor) Copy(dest, src device.Addr, n uint32) error {
	if err := e.checkDest("copy", dest, n); err != nil {
		return err
	}
	if !e.def.InFlash(src, n) {
		return &RangeError{Op: "copy", Addr: src, Len: n, Limit: device.Addr(e.def.FlashSize)}
	}

	for i := uint32(0); i < n; i++ {
		from, to := src+device.Addr(i), dest+device.Addr(i)
		b, err := e.dev.ByteRead(from)
		if err != nil {
			return fmt.Errorf("copy 0x%04X: %w", uint32(from), err)
		}
		if err := e.dev.ByteWrite(to, b); err != nil {
			return fmt.Errorf("copy to 0x%04X: %w", uint32(to), err)
		}
	}
	return nil
}

// Fill programs n copies of v at addr. The destination must be erased.
func (e *Editor) Fill(addr device.Addr, n uint32, v byte) error {
	if err := e.checkDest("fill", addr, n); err != nil {
		return err
	}

	for i := uint32(0); i < n; i++ {
		a := addr + device.Addr(i)
		if err := e.dev.ByteWrite(a, v); err != nil {
			return fmt.Errorf("fill 0x%04X: %w", uint32(a), err)
		}
	}
	return nil
}

// Clear sets the n bytes at dest to 0xFF. Every other byte of the pages the
// range touches keeps its value.
func (e *Editor) Clear(dest device.Addr, n uint32) error {
	if err := e.checkDest("clear", dest, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	end := dest + device.Addr(n)
	first, last := e.def.PageStart(dest), e.def.PageStart(end-1)
	for page := first; page <= last; page += device.Addr(e.def.PageSize) {
		lo, hi := dest, end
		if lo < page {
			lo = page
		}
		if pageEnd := page + device.Addr(e.def.PageSize); hi > pageEnd {
			hi = pageEnd
		}
		if err := e.rewritePage(page, func(a device.Addr) bool { return a >= lo && a < hi }); err != nil {
			return fmt.Errorf("clear 0x%04X+%d: %w", uint32(dest), n, err)
		}
	}

	e.logDebug("cleared range", "addr", fmt.Sprintf("0x%04X", uint32(dest)), "len", n,
		"pages", e.def.PageOf(last)-e.def.PageOf(first)+1)
	return nil
}

// ClearMask sets the bytes of the page starting at page to 0xFF wherever
// mask is true, in a single rewrite cycle. mask holds one entry per byte of
// the page; bytes with a false entry keep their value.
func (e *Editor) ClearMask(page device.Addr, mask []bool) error {
	if page != e.def.PageStart(page) || len(mask) != int(e.def.PageSize) {
		return fmt.Errorf("clear mask 0x%04X: need a page start and %d mask entries, got %d",
			uint32(page), e.def.PageSize, len(mask))
	}
	if err := e.checkDest("clear mask", page, e.def.PageSize); err != nil {
		return err
	}

	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	if n == 0 {
		return nil
	}

	if err := e.rewritePage(page, func(a device.Addr) bool { return mask[a-page] }); err != nil {
		return fmt.Errorf("clear mask 0x%04X: %w", uint32(page), err)
	}
	e.logDebug("cleared masked bytes", "page", fmt.Sprintf("0x%04X", uint32(page)), "bytes", n)
	return nil
}

// Update replaces the bytes at dest with src.
//
// The range reads 0xFF between the two steps; a reset there loses both the
// old and the new contents.
func (e *Editor) Update(dest device.Addr, src []byte) error {
	if err := e.Clear(dest, uint32(len(src))); err != nil {
		return err
	}
	return e.Write(dest, src)
}

// rewritePage erases the bytes of the page starting at page for which drop
// reports true.
func (e *Editor) rewritePage(page device.Addr, drop func(device.Addr) bool) error {
	size := device.Addr(e.def.PageSize)
	scratch := e.def.ScratchPage

	full := true
	for off := device.Addr(0); off < size && full; off++ {
		full = drop(page + off)
	}
	if full {
		if err := e.phase(PhaseErase, page); err != nil {
			return err
		}
		return e.dev.PageErase(page)
	}

	if err := e.phase(PhaseStage, page); err != nil {
		return err
	}
	if err := e.dev.PageErase(scratch); err != nil {
		return err
	}
	for off := device.Addr(0); off < size; off++ {
		if drop(page + off) {
			continue
		}
		b, err := e.dev.ByteRead(page + off)
		if err != nil {
			return err
		}
		if err := e.dev.ByteWrite(scratch+off, b); err != nil {
			return err
		}
	}

	if err := e.phase(PhaseErase, page); err != nil {
		return err
	}
	if err := e.dev.PageErase(page); err != nil {
		return err
	}

	if err := e.phase(PhaseRestore, page); err != nil {
		return err
	}
	for off := device.Addr(0); off < size; off++ {
		b, err := e.dev.ByteRead(scratch + off)
		if err != nil {
			return err
		}
		if err := e.dev.ByteWrite(page+off, b); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) phase(p Phase, page device.Addr) error {
	e.logDebug("page rewrite", "phase", p.String(), "page", fmt.Sprintf("0x%04X", uint32(page)))
	if e.config.PhaseHook == nil {
		return nil
	}
	if err := e.config.PhaseHook(p, page); err != nil {
		e.logError("page rewrite aborted", "phase", p.String(),
			"page", fmt.Sprintf("0x%04X", uint32(page)), "error", err)
		return fmt.Errorf("%s 0x%04X: %w", p, uint32(page), err)
	}
	return nil
}

// checkDest validates a range that will be programmed or erased.
func (e *Editor) checkDest(op string, a device.Addr, n uint32) error {
	if e.def.InScratch(a, n) {
		return fmt.Errorf("%s 0x%04X+%d: %w", op, uint32(a), n, ErrScratchOverlap)
	}
	if !e.def.InUser(a, n) {
		return &RangeError{Op: op, Addr: a, Len: n, Limit: e.def.UserLimit()}
	}
	return nil
}

// logDebug logs a debug message if a logger is configured.
func (e *Editor) logDebug(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (e *Editor) logError(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Error(msg, keysAndValues...)
	}
}
