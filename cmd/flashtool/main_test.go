package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-c8051flash/datalog"
	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/sim"
)

func newTestLogger(t *testing.T, onBattery, pinReset bool) *loggerState {
	t.Helper()
	def := device.ByName(defaultDevice)
	mcu := sim.New(def)
	if pinReset {
		mcu.Reset()
	}
	s, err := newLoggerState(mcu, flash.New(mcu, def, flash.WithSettleCycles(0)), onBattery)
	require.NoError(t, err)
	return s
}

func TestTools(t *testing.T) {
	for _, name := range []string{"selftest", "hex", "program", "logger", "serve"} {
		tl, ok := tools[name]
		require.True(t, ok, name)
		require.NotEmpty(t, tl.descr)
		require.NotNil(t, tl.main)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		msg  string
		kv   []interface{}
		want string
	}{
		{"page erase", nil, "page erase"},
		{"page erase", []interface{}{"addr", "0x5E00"}, "page erase addr=0x5E00"},
		{"connected", []interface{}{"device", "C8051F380", "page_size", 512}, "connected device=C8051F380 page_size=512"},
		{"odd", []interface{}{"key"}, "odd key"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, format(tt.msg, tt.kv))
	}
}

func TestAddrFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	a := addrFlag(0x5FFE)
	fs.Var(&a, "addr", "")
	require.Equal(t, "0x5ffe", a.String())

	require.NoError(t, fs.Parse([]string{"-addr", "0x1000"}))
	require.Equal(t, addrFlag(0x1000), a)

	require.NoError(t, fs.Parse([]string{"-addr", "512"}))
	require.Equal(t, addrFlag(512), a)

	fs.SetOutput(&bytes.Buffer{})
	require.Error(t, fs.Parse([]string{"-addr", "ABCDEFG"}))
}

func TestLoggerStateSelection(t *testing.T) {
	tests := []struct {
		name      string
		onBattery bool
		pinReset  bool
		want      datalog.State
	}{
		{"external power", false, false, datalog.StateInteractive},
		{"external power after pin reset", false, true, datalog.StateInteractive},
		{"battery after power-on", true, false, datalog.StateLogOnly},
		{"battery after pin reset", true, true, datalog.StateLogUART},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, newTestLogger(t, tt.onBattery, tt.pinReset).state)
		})
	}
}

func TestLoggerSample(t *testing.T) {
	s := newTestLogger(t, true, false)
	for i := 0; i < 40; i++ {
		_, err := s.tick()
		require.NoError(t, err)
	}
	n, err := s.log.Len()
	require.NoError(t, err)
	require.Equal(t, 40, n)

	last, err := s.log.Last()
	require.NoError(t, err)
	require.Equal(t, uint16(39), last.Time)
	require.Equal(t, datalog.VoltageFromADC(1000-39/8, datalog.VREF), last.Voltage)

	st, err := s.log.LoadStats()
	require.NoError(t, err)
	require.Equal(t, datalog.VoltageFromADC(1000, datalog.VREF), st.VoltageAtMfg)
}

func TestLoggerInteractiveSkipsBattery(t *testing.T) {
	s := newTestLogger(t, false, false)
	r, err := s.tick()
	require.NoError(t, err)
	require.Zero(t, r.Voltage)
	require.NotZero(t, r.Temperature)
}

func TestLoggerAdd(t *testing.T) {
	s := newTestLogger(t, false, false)

	r, err := s.add([]string{"250", "21"})
	require.NoError(t, err)
	require.Equal(t, datalog.Record{Time: 0, Voltage: 250, Temperature: 21}, r)

	r, err = s.add([]string{"245", "-5"})
	require.NoError(t, err)
	require.Equal(t, datalog.Record{Time: 1, Voltage: 245, Temperature: -5}, r)

	for _, args := range [][]string{nil, {"250"}, {"256", "0"}, {"250", "128"}, {"x", "1"}} {
		_, err := s.add(args)
		require.Error(t, err, "%q", args)
	}
}

func TestLoggerOutput(t *testing.T) {
	s := newTestLogger(t, false, false)

	var buf bytes.Buffer
	require.NoError(t, s.print(&buf, 0))
	require.Equal(t, "log is empty\n", buf.String())

	buf.Reset()
	require.NoError(t, s.stats(&buf))
	require.Equal(t, "voltage: none recorded\ntemperature: none recorded\n", buf.String())

	for _, args := range [][]string{{"250", "21"}, {"240", "23"}, {"245", "22"}} {
		_, err := s.add(args)
		require.NoError(t, err)
	}

	buf.Reset()
	require.NoError(t, s.print(&buf, 2))
	require.Equal(t, "time, voltage, temperature\n2, 2.45, 22\n1, 2.40, 23\n", buf.String())

	buf.Reset()
	require.NoError(t, s.stats(&buf))
	require.Equal(t, "voltage: max 2.50 V, min 2.40 V, at manufacture 2.50 V\ntemperature: max 23 C, min 21 C\n", buf.String())

	buf.Reset()
	require.NoError(t, s.summary(&buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "records: 3 (t=0..2)\n"), out)
	require.Contains(t, out, "voltage: mean 2.45 V")
	require.Contains(t, out, "min 2.40, max 2.50 (3 readings)")
	require.Contains(t, out, "temperature: mean 22.0 C, stddev 1.00, min 21, max 23")
}
