// Package flashutil provides byte-range operations on top of the page-granular
// Flash primitives.
//
// # Overview
//
// Flash can only clear bits when written; only a page erase sets them back
// to one. Editor hides that asymmetry behind these operations:
//
//   - Write, Copy and Fill program bytes into an already erased range
//   - Read reads a range
//   - Clear erases exactly the requested bytes and leaves the rest of every
//     touched page as it was
//   - ClearMask erases the bytes of one page picked by a mask, in one cycle
//   - Update is Clear followed by Write
//
// # Clearing part of a page
//
// Clear works page by page. For each page touched by the range it runs three
// phases, using the device's scratch page as temporary storage:
//
//	PhaseStage    erase the scratch page, copy the bytes of the page that
//	              lie outside the range to the same offsets in scratch
//	PhaseErase    erase the target page
//	PhaseRestore  copy the whole scratch page back
//
// A range inside one page costs one cycle, a range straddling a boundary
// costs two, and so on. A page covered entirely by the range is only erased.
//
// # Power loss
//
// Clear and Update are not crash-atomic. A reset after PhaseErase and before
// PhaseRestore completes leaves the target page erased, with the preserved
// bytes only in the scratch page. A reset between the Clear and Write halves
// of Update leaves the range reading 0xFF. A primitive that reports
// flash.ErrDeviceReset stops the operation at that phase. WithPhaseHook lets callers observe
// the phases and, in tests, abort at any of them.
//
// # Usage
//
//	mcu := sim.New(device.ByName("C8051F380"))
//	ed := flashutil.New(flash.New(mcu, mcu.Definition()))
//
//	if err := ed.Write(0x5E00, []byte("ABCDEFG")); err != nil {
//	    log.Fatal(err)
//	}
//	if err := ed.Update(0x5E00, []byte("HIJ")); err != nil {
//	    log.Fatal(err)
//	}
//
// Ranges must stay below the scratch page. A range that overlaps it fails
// with ErrScratchOverlap; any other range beyond the user area fails with a
// *RangeError. Validation happens before Flash is touched.
package flashutil
