package hexfile

import (
	"sort"

	"github.com/moffa90/go-c8051flash/device"
)

// Page is the part of an image that falls in one Flash page.
type Page struct {
	// Start is the first address of the page
	Start device.Addr

	// Data holds the page contents, 0xFF where the image is silent
	Data []byte

	// Mask marks the bytes the image defines
	Mask []bool
}

// Full reports whether the image defines every byte of the page.
func (p Page) Full() bool {
	for _, m := range p.Mask {
		if !m {
			return false
		}
	}
	return true
}

// Runs returns the defined bytes of the page as contiguous segments.
func (p Page) Runs() []Segment {
	var runs []Segment
	for i := 0; i < len(p.Mask); {
		if !p.Mask[i] {
			i++
			continue
		}
		j := i
		for j < len(p.Mask) && p.Mask[j] {
			j++
		}
		runs = append(runs, Segment{Addr: p.Start + device.Addr(i), Data: p.Data[i:j]})
		i = j
	}
	return runs
}

// Pages splits the image along the page boundaries of def, in address order.
func (img *Image) Pages(def *device.Definition) []Page {
	byStart := map[device.Addr]*Page{}
	for _, s := range img.Segments {
		for i, b := range s.Data {
			a := s.Addr + device.Addr(i)
			start := def.PageStart(a)
			p, ok := byStart[start]
			if !ok {
				p = &Page{
					Start: start,
					Data:  make([]byte, def.PageSize),
					Mask:  make([]bool, def.PageSize),
				}
				for k := range p.Data {
					p.Data[k] = 0xFF
				}
				byStart[start] = p
			}
			p.Data[a-start] = b
			p.Mask[a-start] = true
		}
	}

	pages := make([]Page, 0, len(byStart))
	for _, p := range byStart {
		pages = append(pages, *p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Start < pages[j].Start })
	return pages
}
