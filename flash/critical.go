package flash

import "github.com/moffa90/go-c8051flash/sfr"

// enterCritical clears the global interrupt enable and, on parts with SFR
// paging, selects the legacy page. The returned func restores both to their
// previous state and must run on every exit path:
//
//	defer p.enterCritical()()
func (p *Primitives) enterCritical() func() {
	ie := p.bus.ReadSFR(sfr.IE)
	p.bus.WriteSFR(sfr.IE, ie&^sfr.IE_EA)

	var page byte
	if p.def.HasSFRPage {
		page = p.bus.ReadSFR(sfr.SFRPAGE)
		p.bus.WriteSFR(sfr.SFRPAGE, sfr.LegacyPage)
	}

	return func() {
		if p.def.HasSFRPage {
			p.bus.WriteSFR(sfr.SFRPAGE, page)
		}
		// Only EA is ours to restore; other IE bits may have been changed
		// by the caller's own code paths since.
		cur := p.bus.ReadSFR(sfr.IE)
		p.bus.WriteSFR(sfr.IE, cur&^sfr.IE_EA|ie&sfr.IE_EA)
	}
}
