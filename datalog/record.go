package datalog

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the size of a log record in bytes.
const RecordSize = 4

// Record is one log entry.
type Record struct {
	// Time is the number of hours since the log was started
	Time uint16

	// Voltage is the supply voltage in hundredths of a volt. Zero means the
	// reading was taken on external power.
	Voltage uint8

	// Temperature in degrees Celsius
	Temperature int8
}

// Blank reports whether r is an erased slot.
func (r Record) Blank() bool {
	return r.Time == 0xFFFF
}

// MarshalBinary encodes r in its Flash layout.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	binary.BigEndian.PutUint16(b, r.Time)
	b[2] = r.Voltage
	b[3] = byte(r.Temperature)
	return b, nil
}

// UnmarshalBinary decodes a record from its Flash layout.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) != RecordSize {
		return fmt.Errorf("record must be %d bytes, got %d", RecordSize, len(b))
	}
	r.Time = binary.BigEndian.Uint16(b)
	r.Voltage = b[2]
	r.Temperature = int8(b[3])
	return nil
}

// VoltageString formats the voltage as volts with two decimals.
func (r Record) VoltageString() string {
	return fmt.Sprintf("%d.%02d", r.Voltage/100, r.Voltage%100)
}

func (r Record) String() string {
	return fmt.Sprintf("%d, %s, %d", r.Time, r.VoltageString(), r.Temperature)
}
