// Package device describes the Flash geometry of supported 8051-family parts.
//
// The values here replace the compile-time FLASH_PAGESIZE, FLASH_TEMP and
// FLASH_LAST definitions of vendor firmware. Definitions are registered by
// name and looked up at run time.
package device

import (
	"fmt"
	"sort"
	"strings"
)

// Addr is a linear Flash address.
type Addr uint32

// Family identifies a device family sharing a Flash controller design.
type Family string

// Supported families.
const (
	FamilyC8051F38x Family = "C8051F38x"
	FamilyC8051F93x Family = "C8051F93x"
	FamilyEFM8BB3   Family = "EFM8BB3"
)

// Definition describes one part.
type Definition struct {
	// Name of the part, e.g. "C8051F380"
	Name string

	// Family of the part
	Family Family

	// FlashSize is the number of bytes of code Flash starting at address 0
	FlashSize uint32

	// PageSize is the erase granularity in bytes (power of two)
	PageSize uint32

	// ScratchPage is the first address of the page reserved for
	// partial-page erase (FLASH_TEMP)
	ScratchPage Addr

	// LastPage is the first address of the highest page available to
	// applications (FLASH_LAST)
	LastPage Addr

	// LockByte is the address of the Flash security lock byte
	LockByte Addr

	// HasSFRPage reports whether the part pages its SFR space, in which case
	// the primitives save and restore SFRPAGE
	HasSFRPage bool
}

// PageStart returns the first address of the page containing a.
func (d *Definition) PageStart(a Addr) Addr {
	return a &^ Addr(d.PageSize-1)
}

// PageEnd returns the last address of the page containing a.
func (d *Definition) PageEnd(a Addr) Addr {
	return d.PageStart(a) + Addr(d.PageSize) - 1
}

// PageOf returns the page index of a.
func (d *Definition) PageOf(a Addr) uint32 {
	return uint32(a) / d.PageSize
}

// Pages returns the number of pages in Flash.
func (d *Definition) Pages() uint32 {
	return d.FlashSize / d.PageSize
}

// LockPage returns the first address of the page holding the lock byte.
func (d *Definition) LockPage() Addr {
	return d.PageStart(d.LockByte)
}

// UserLimit returns the first address that application ranges may not reach.
// Everything from the scratch page up is reserved.
func (d *Definition) UserLimit() Addr {
	return d.ScratchPage
}

// InFlash reports whether [a, a+n) lies inside Flash.
func (d *Definition) InFlash(a Addr, n uint32) bool {
	return uint64(a)+uint64(n) <= uint64(d.FlashSize)
}

// InUser reports whether [a, a+n) lies below the reserved area.
func (d *Definition) InUser(a Addr, n uint32) bool {
	return uint64(a)+uint64(n) <= uint64(d.UserLimit())
}

// InScratch reports whether [a, a+n) overlaps the scratch page.
func (d *Definition) InScratch(a Addr, n uint32) bool {
	if n == 0 {
		return false
	}
	lo, hi := uint64(d.ScratchPage), uint64(d.ScratchPage)+uint64(d.PageSize)
	return uint64(a) < hi && uint64(a)+uint64(n) > lo
}

// Validate checks the geometry invariants of a definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("device name cannot be empty")
	}
	if d.PageSize == 0 || d.PageSize&(d.PageSize-1) != 0 {
		return fmt.Errorf("%s: page size %d is not a power of two", d.Name, d.PageSize)
	}
	if d.FlashSize == 0 || d.FlashSize%d.PageSize != 0 {
		return fmt.Errorf("%s: flash size 0x%X is not a multiple of the page size", d.Name, d.FlashSize)
	}
	if uint32(d.LockByte) >= d.FlashSize {
		return fmt.Errorf("%s: lock byte 0x%04X outside flash", d.Name, d.LockByte)
	}
	if d.PageStart(d.ScratchPage) != d.ScratchPage {
		return fmt.Errorf("%s: scratch page 0x%04X is not page aligned", d.Name, d.ScratchPage)
	}
	if d.ScratchPage >= d.LockPage() {
		return fmt.Errorf("%s: scratch page 0x%04X overlaps the lock page", d.Name, d.ScratchPage)
	}
	if d.LastPage >= d.ScratchPage {
		return fmt.Errorf("%s: last page 0x%04X is not below the scratch page", d.Name, d.LastPage)
	}
	return nil
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s (%s, %dK, %d-byte pages)", d.Name, d.Family, d.FlashSize/1024, d.PageSize)
}

var registry = map[string]*Definition{}

// Register adds a definition to the registry.
// It panics if the definition is invalid or the name is taken.
func Register(d *Definition) {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	name := strings.ToLower(d.Name)
	if _, ok := registry[name]; ok {
		panic("device already registered with name " + d.Name)
	}
	registry[name] = d
}

// ByName returns the definition registered under name (case-insensitive),
// or nil.
func ByName(name string) *Definition {
	return registry[strings.ToLower(name)]
}

// All returns every registered definition sorted by name.
func All() []*Definition {
	defs := make([]*Definition, 0, len(registry))
	for _, d := range registry {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
