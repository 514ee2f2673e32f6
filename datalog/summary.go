package datalog

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series describes one measured quantity over a set of records.
type Series struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary describes a set of records.
type Summary struct {
	// Count is the number of records
	Count int

	// First and Last are the timestamps of the oldest and newest record
	First uint16
	Last  uint16

	// Voltage in volts, over battery readings only
	Voltage Series

	// Temperature in degrees Celsius
	Temperature Series
}

// Summarize computes statistics over records given newest first, as
// returned by Log.Records.
func Summarize(records []Record) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}
	s.Last = records[0].Time
	s.First = records[len(records)-1].Time

	var volts, temps []float64
	for _, r := range records {
		if r.Voltage != 0 {
			volts = append(volts, float64(r.Voltage)/100)
		}
		temps = append(temps, float64(r.Temperature))
	}
	s.Voltage = series(volts)
	s.Temperature = series(temps)
	return s
}

func series(x []float64) Series {
	if len(x) == 0 {
		return Series{}
	}
	s := Series{
		N:   len(x),
		Min: floats.Min(x),
		Max: floats.Max(x),
	}
	if len(x) == 1 {
		s.Mean = x[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	return s
}
