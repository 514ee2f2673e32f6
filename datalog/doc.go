// Package datalog stores battery-voltage and temperature readings as a ring
// of fixed-size records in Flash.
//
// # Record layout
//
// Each record is four bytes: the timestamp in hours (big-endian uint16), the
// supply voltage in hundredths of a volt, and the temperature in degrees
// Celsius as a signed byte. A record whose timestamp reads 0xFFFF is blank.
//
// # Log region
//
// Records are written upwards from Region.Start. When the next slot would pass
// Region.End the log wraps to Region.Start; a slot that is not blank has its
// whole page erased before the record is written, which drops the oldest
// page of records.
//
// The position of the newest record is not stored anywhere. Open recovers it
// by scanning for the first blank page, stepping back one page, and scanning
// that page record by record.
//
// # Statistics
//
// Maximum and minimum voltage and temperature, and the first voltage ever
// logged, are kept in a five-byte block outside the region and rewritten with
// flashutil.Editor.Update when any of them changes.
//
// # Usage
//
//	mcu := sim.New(device.ByName("C8051F380"))
//	lg, err := datalog.Open(flash.New(mcu, mcu.Definition()), datalog.DefaultRegion)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, err := lg.Append(datalog.VoltageFromADC(code, datalog.VREF), 24)
package datalog
