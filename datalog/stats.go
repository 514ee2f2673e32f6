package datalog

import (
	"fmt"
)

const statsSize = 5

// Stats are the running extremes kept outside the log region. A field
// reading 0xFF has never been set; for the temperatures that is -1 degC,
// which therefore cannot be recorded as an extreme.
type Stats struct {
	MaxVoltage     uint8
	MinVoltage     uint8
	MaxTemperature int8
	MinTemperature int8

	// VoltageAtMfg is the first battery voltage ever logged
	VoltageAtMfg uint8
}

// HasVoltage reports whether a battery voltage has been recorded.
func (s Stats) HasVoltage() bool {
	return s.MaxVoltage != 0xFF
}

// HasTemperature reports whether a temperature has been recorded.
func (s Stats) HasTemperature() bool {
	return s.MaxTemperature != -1
}

// Apply folds r into s and reports whether any field changed. Zero readings
// are skipped: a zero voltage was taken on external power.
func (s Stats) Apply(r Record) (Stats, bool) {
	changed := false

	if r.Voltage != 0 {
		if s.MaxVoltage == 0xFF || s.MaxVoltage < r.Voltage {
			s.MaxVoltage = r.Voltage
			changed = true
		}
		if s.MinVoltage == 0xFF || s.MinVoltage > r.Voltage {
			s.MinVoltage = r.Voltage
			changed = true
		}
		if s.VoltageAtMfg == 0xFF {
			s.VoltageAtMfg = r.Voltage
			changed = true
		}
	}

	if r.Temperature != 0 {
		if s.MaxTemperature == -1 || s.MaxTemperature < r.Temperature {
			s.MaxTemperature = r.Temperature
			changed = true
		}
		if s.MinTemperature == -1 || s.MinTemperature > r.Temperature {
			s.MinTemperature = r.Temperature
			changed = true
		}
	}

	return s, changed
}

// MarshalBinary encodes s in its Flash layout.
func (s Stats) MarshalBinary() ([]byte, error) {
	return []byte{
		s.MaxVoltage,
		s.MinVoltage,
		byte(s.MaxTemperature),
		byte(s.MinTemperature),
		s.VoltageAtMfg,
	}, nil
}

// UnmarshalBinary decodes s from its Flash layout.
func (s *Stats) UnmarshalBinary(b []byte) error {
	if len(b) != statsSize {
		return fmt.Errorf("stats must be %d bytes, got %d", statsSize, len(b))
	}
	s.MaxVoltage = b[0]
	s.MinVoltage = b[1]
	s.MaxTemperature = int8(b[2])
	s.MinTemperature = int8(b[3])
	s.VoltageAtMfg = b[4]
	return nil
}

// LoadStats reads the statistics block.
func (l *Log) LoadStats() (Stats, error) {
	buf := make([]byte, statsSize)
	if err := l.ed.Read(buf, l.config.StatsAddr); err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}
	var s Stats
	err := s.UnmarshalBinary(buf)
	return s, err
}

// UpdateStats folds r into the statistics block and rewrites it when a field
// changes.
func (l *Log) UpdateStats(r Record) error {
	s, err := l.LoadStats()
	if err != nil {
		return err
	}
	s, changed := s.Apply(r)
	if !changed {
		return nil
	}

	b, _ := s.MarshalBinary()
	if err := l.ed.Update(l.config.StatsAddr, b); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	l.logDebug("stats updated", "max_voltage", s.MaxVoltage, "min_voltage", s.MinVoltage,
		"max_temperature", s.MaxTemperature, "min_temperature", s.MinTemperature)
	return nil
}
