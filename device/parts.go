package device

// layout builds a definition with the lock byte in the last Flash byte, the
// scratch page right below the lock page and the last application page right
// below the scratch page.
func layout(name string, family Family, flashSize, pageSize uint32, sfrPage bool) *Definition {
	lock := Addr(flashSize - 1)
	lockPage := lock &^ Addr(pageSize-1)
	scratch := lockPage - Addr(pageSize)
	return &Definition{
		Name:        name,
		Family:      family,
		FlashSize:   flashSize,
		PageSize:    pageSize,
		ScratchPage: scratch,
		LastPage:    scratch - Addr(pageSize),
		LockByte:    lock,
		HasSFRPage:  sfrPage,
	}
}

func init() {
	// C8051F38x: the top 1K of the 64K parts is reserved.
	Register(layout("C8051F380", FamilyC8051F38x, 0xFC00, 512, false))
	Register(layout("C8051F382", FamilyC8051F38x, 0x8000, 512, false))
	Register(layout("C8051F386", FamilyC8051F38x, 0x4000, 512, false))

	// C8051F93x: 1024-byte pages, SFR paging.
	Register(layout("C8051F930", FamilyC8051F93x, 0xFC00, 1024, true))
	Register(layout("C8051F931", FamilyC8051F93x, 0x8000, 1024, true))

	// EFM8BB3
	Register(layout("EFM8BB31F64G", FamilyEFM8BB3, 0xFC00, 512, true))
	Register(layout("EFM8BB31F32G", FamilyEFM8BB3, 0x8000, 512, true))
}
