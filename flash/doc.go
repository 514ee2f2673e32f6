// Package flash implements the Flash primitives of Silicon Labs 8051-family
// parts: byte read, byte write and page erase.
//
// # Overview
//
// The primitives drive the Flash controller through its special-function
// registers. Every operation runs inside a critical section that clears the
// global interrupt enable and restores it on exit, since an interrupt that
// touches the Flash-control registers between the two key writes disarms
// the unlock sequence.
//
// Write and erase follow the supply-monitor interlock sequence:
//  1. Disable the VDD monitor as a reset source
//  2. Enable the VDD monitor at the high threshold and let it settle
//  3. Refuse the operation with ErrSupplyLow if VDD is below the threshold
//  4. Enable the VDD monitor as a reset source
//  5. Write the two-byte key to FLKEY and set PSWE (and PSEE for erase)
//  6. Store to the target address
//  7. Clear the latches and return the VDD monitor to the low threshold
//
// A store that resets the device, by a brown-out or a Flash error, leaves
// PSCTL cleared. The primitive checks for that after step 6 and returns
// ErrDeviceReset.
//
// # Hardware Independence
//
// The register file is reached through the Bus interface. The sim package
// provides a simulated controller; a target-resident implementation would
// map Bus onto real SFR accesses.
//
//	mcu := sim.New(device.ByName("C8051F380"))
//	dev := flash.New(mcu, mcu.Definition())
//
//	if err := dev.PageErase(0x5E00); err != nil {
//	    log.Fatal(err)
//	}
//	if err := dev.ByteWrite(0x5E00, 0xA5); err != nil {
//	    log.Fatal(err)
//	}
//
// # Failure Semantics
//
// Conditions the hardware does not report stay silent: writing a byte that is
// not erased stores the AND of old and new value, and erasing the page that
// holds a programmed lock byte has no effect. Only the supply check and the
// address range are reported as errors.
package flash
