package datalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var unset = Stats{
	MaxVoltage:     0xFF,
	MinVoltage:     0xFF,
	MaxTemperature: -1,
	MinTemperature: -1,
	VoltageAtMfg:   0xFF,
}

func TestStatsApply(t *testing.T) {
	tests := []struct {
		name    string
		start   Stats
		rec     Record
		want    Stats
		changed bool
	}{
		{
			name:    "first record sets everything",
			start:   unset,
			rec:     Record{Voltage: 240, Temperature: 25},
			want:    Stats{MaxVoltage: 240, MinVoltage: 240, MaxTemperature: 25, MinTemperature: 25, VoltageAtMfg: 240},
			changed: true,
		},
		{
			name:    "external power leaves voltages",
			start:   unset,
			rec:     Record{Voltage: 0, Temperature: 25},
			want:    Stats{MaxVoltage: 0xFF, MinVoltage: 0xFF, MaxTemperature: 25, MinTemperature: 25, VoltageAtMfg: 0xFF},
			changed: true,
		},
		{
			name:    "new minimum",
			start:   Stats{MaxVoltage: 240, MinVoltage: 230, MaxTemperature: 25, MinTemperature: 20, VoltageAtMfg: 240},
			rec:     Record{Voltage: 220, Temperature: -8},
			want:    Stats{MaxVoltage: 240, MinVoltage: 220, MaxTemperature: 25, MinTemperature: -8, VoltageAtMfg: 240},
			changed: true,
		},
		{
			name:  "inside range",
			start: Stats{MaxVoltage: 240, MinVoltage: 230, MaxTemperature: 25, MinTemperature: 20, VoltageAtMfg: 240},
			rec:   Record{Voltage: 235, Temperature: 21},
			want:  Stats{MaxVoltage: 240, MinVoltage: 230, MaxTemperature: 25, MinTemperature: 20, VoltageAtMfg: 240},
		},
		{
			name:  "zero temperature skipped",
			start: Stats{MaxVoltage: 240, MinVoltage: 230, MaxTemperature: 25, MinTemperature: 20, VoltageAtMfg: 240},
			rec:   Record{Voltage: 235, Temperature: 0},
			want:  Stats{MaxVoltage: 240, MinVoltage: 230, MaxTemperature: 25, MinTemperature: 20, VoltageAtMfg: 240},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.start.Apply(tt.rec)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.changed, changed)
		})
	}
}

func TestStatsOnFlash(t *testing.T) {
	dev, mcu := newDevice(t)
	statsAddr := smallRegion.End + 1

	// a neighbour in the same page must survive stats rewrites
	require.NoError(t, mcu.LoadImage(statsAddr+8, []byte{0x42}))

	l, err := Open(dev, smallRegion)
	require.NoError(t, err)

	s, err := l.LoadStats()
	require.NoError(t, err)
	require.Equal(t, unset, s)
	require.False(t, s.HasVoltage())
	require.False(t, s.HasTemperature())

	for _, r := range []Record{
		{Voltage: 0, Temperature: 24},
		{Voltage: 245, Temperature: 26},
		{Voltage: 238, Temperature: 19},
		{Voltage: 241, Temperature: 22},
	} {
		_, err := l.Append(r.Voltage, r.Temperature)
		require.NoError(t, err)
	}

	s, err = l.LoadStats()
	require.NoError(t, err)
	require.Equal(t, Stats{
		MaxVoltage:     245,
		MinVoltage:     238,
		MaxTemperature: 26,
		MinTemperature: 19,
		VoltageAtMfg:   245,
	}, s)
	require.True(t, s.HasVoltage())

	require.Equal(t, []byte{245, 238, 26, 19, 245}, mcu.Peek(statsAddr, 5))
	require.Equal(t, []byte{0x42}, mcu.Peek(statsAddr+8, 1))

	// unchanged stats cost no erase
	erases := mcu.Stats().PageErases
	require.NoError(t, l.UpdateStats(Record{Voltage: 240, Temperature: 20}))
	require.Equal(t, erases, mcu.Stats().PageErases)
}

func TestStatsCustomAddr(t *testing.T) {
	dev, mcu := newDevice(t)

	l, err := Open(dev, smallRegion, WithStatsAddr(0x2010))
	require.NoError(t, err)
	_, err = l.Append(200, 30)
	require.NoError(t, err)

	require.Equal(t, []byte{200, 200, 30, 30, 200}, mcu.Peek(0x2010, 5))
}
