package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/moffa90/go-c8051flash/datalog"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/sim"
)

const loggerDescr = "run the data logger on a simulated part"

const stateKey = "$logger"

// loggerState is the state of the logger board: its operating mode, the
// record log and the simulated sensors.
type loggerState struct {
	state   datalog.State
	mcu     *sim.MCU
	log     *datalog.Log
	samples int
}

func newLoggerState(mcu *sim.MCU, dev flash.Device, onBattery bool) (*loggerState, error) {
	l, err := datalog.Open(dev, datalog.DefaultRegion, datalog.WithLogger(glogger{}))
	if err != nil {
		return nil, err
	}
	return &loggerState{
		state: datalog.SelectState(onBattery, mcu.ResetSource()),
		mcu:   mcu,
		log:   l,
	}, nil
}

// sample reads the simulated battery and temperature sensor. The battery
// discharges slowly and the temperature swings over a 16-sample cycle.
func (s *loggerState) sample() (uint8, int8) {
	n := s.samples
	s.samples++
	if s.state == datalog.StateInteractive {
		// external power: the battery is not measured
		return 0, datalog.TemperatureFromADC(uint16(620+n%16*3), datalog.VREF)
	}
	vcode := 1000 - n/8
	if vcode < 600 {
		vcode = 600
	}
	return datalog.VoltageFromADC(uint16(vcode), datalog.VREF),
		datalog.TemperatureFromADC(uint16(620+n%16*3), datalog.VREF)
}

// tick takes one sample and logs it.
func (s *loggerState) tick() (datalog.Record, error) {
	v, t := s.sample()
	return s.log.Append(v, t)
}

func (s *loggerState) add(args []string) (datalog.Record, error) {
	if len(args) != 2 {
		return datalog.Record{}, fmt.Errorf("VOLTAGE and TEMPERATURE required")
	}
	v, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return datalog.Record{}, fmt.Errorf("invalid VOLTAGE: %v", err)
	}
	t, err := strconv.ParseInt(args[1], 10, 8)
	if err != nil {
		return datalog.Record{}, fmt.Errorf("invalid TEMPERATURE: %v", err)
	}
	return s.log.Append(uint8(v), int8(t))
}

// print writes up to n records newest first, or all of them when n <= 0.
func (s *loggerState) print(w io.Writer, n int) error {
	recs, err := s.log.Records()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "log is empty")
		return nil
	}
	if n > 0 && n < len(recs) {
		recs = recs[:n]
	}
	fmt.Fprintln(w, "time, voltage, temperature")
	for _, r := range recs {
		fmt.Fprintln(w, r)
	}
	return nil
}

func (s *loggerState) summary(w io.Writer) error {
	recs, err := s.log.Records()
	if err != nil {
		return err
	}
	sum := datalog.Summarize(recs)
	fmt.Fprintf(w, "records: %d (t=%d..%d)\n", sum.Count, sum.First, sum.Last)
	if sum.Voltage.N > 0 {
		fmt.Fprintf(w, "voltage: mean %.2f V, stddev %.3f, min %.2f, max %.2f (%d readings)\n",
			sum.Voltage.Mean, sum.Voltage.StdDev, sum.Voltage.Min, sum.Voltage.Max, sum.Voltage.N)
	}
	if sum.Temperature.N > 0 {
		fmt.Fprintf(w, "temperature: mean %.1f C, stddev %.2f, min %.0f, max %.0f\n",
			sum.Temperature.Mean, sum.Temperature.StdDev, sum.Temperature.Min, sum.Temperature.Max)
	}
	return nil
}

func (s *loggerState) stats(w io.Writer) error {
	st, err := s.log.LoadStats()
	if err != nil {
		return err
	}
	if st.HasVoltage() {
		fmt.Fprintf(w, "voltage: max %d.%02d V, min %d.%02d V, at manufacture %d.%02d V\n",
			st.MaxVoltage/100, st.MaxVoltage%100,
			st.MinVoltage/100, st.MinVoltage%100,
			st.VoltageAtMfg/100, st.VoltageAtMfg%100)
	} else {
		fmt.Fprintln(w, "voltage: none recorded")
	}
	if st.HasTemperature() {
		fmt.Fprintf(w, "temperature: max %d C, min %d C\n", st.MaxTemperature, st.MinTemperature)
	} else {
		fmt.Fprintln(w, "temperature: none recorded")
	}
	return nil
}

func loggerFrom(c *ishell.Context) *loggerState {
	return c.Get(stateKey).(*loggerState)
}

var loggerCmds = []*ishell.Cmd{
	{
		Name: "add",
		Help: "VOLTAGE(1/100 V) TEMPERATURE(C)",
		Func: func(c *ishell.Context) {
			r, err := loggerFrom(c).add(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(r)
		},
	},
	{
		Name: "sample",
		Help: "log one reading of the simulated sensors",
		Func: func(c *ishell.Context) {
			r, err := loggerFrom(c).tick()
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(r)
		},
	},
	{
		Name:    "print",
		Aliases: []string{"p"},
		Help:    "[N] print the newest N records, or all",
		Func: func(c *ishell.Context) {
			n := 0
			if len(c.Args) > 0 {
				v, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid N: %v", err))
					return
				}
				n = v
			}
			if err := loggerFrom(c).print(os.Stdout, n); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name: "summary",
		Help: "statistics over the logged records",
		Func: func(c *ishell.Context) {
			if err := loggerFrom(c).summary(os.Stdout); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name: "stats",
		Help: "extremes kept in Flash since manufacture",
		Func: func(c *ishell.Context) {
			if err := loggerFrom(c).stats(os.Stdout); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name: "state",
		Help: "operating mode and log position",
		Func: func(c *ishell.Context) {
			s := loggerFrom(c)
			n, err := s.log.Len()
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s, %d records, next time %d, cursor 0x%04X\n",
				s.state, n, s.log.Time(), uint32(s.log.Cursor()))
		},
	},
}

func loggerMain(args []string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage:\n  logger [OPTIONS] [COMMAND [ARGS]]\nOptions:\n")
		fs.PrintDefaults()
	}
	dev := deviceFlag(fs)
	n := fs.Int("n", 64, "records logged before the terminal starts")
	battery := fs.Bool("battery", false, "run on battery power")
	pin := fs.Bool("pin", false, "start after a pin reset rather than power-on")
	fs.Parse(args[1:])

	mcu, d := newDevice(*dev)
	if *pin {
		mcu.Reset()
	}
	s, err := newLoggerState(mcu, d, *battery)
	fatalErr("open log", err)

	for i := 0; i < *n; i++ {
		_, err := s.tick()
		fatalErr("log", err)
	}

	switch s.state {
	case datalog.StateLogOnly:
		cnt, err := s.log.Len()
		fatalErr("log", err)
		fmt.Printf("%s: %d records\n", s.state, cnt)
		return
	case datalog.StateLogUART:
		fmt.Println("Connect external power to use the terminal.")
		fatalErr("print", s.print(os.Stdout, 1))
		return
	}

	shell := ishell.New()
	shell.Set(stateKey, s)
	shell.SetPrompt("logger > ")
	for _, cmd := range loggerCmds {
		shell.AddCmd(cmd)
	}
	if fs.NArg() > 0 {
		fatalErr("", shell.Process(fs.Args()...))
		return
	}
	shell.Printf("%s data logger, %d records\n", mcu.Definition().Name, *n)
	shell.Run()
}
