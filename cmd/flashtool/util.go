package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/sim"
)

const defaultDevice = "C8051F380"

// exit flushes the log before leaving.
func exit(code int) {
	glog.Flush()
	os.Exit(code)
}

func fatal(f string, args ...any) {
	glog.Errorf(f, args...)
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	exit(1)
}

// fatalErr prints an error description and exits the program if the
// err != nil.
func fatalErr(what string, err error) {
	if err == nil {
		return
	}
	s := err.Error()
	if what != "" {
		s = what + ": " + s
	}
	fatal("%s", s)
}

// addrFlag is a flag.Value holding a Flash address in any base strconv
// accepts, e.g. 0x5FFE.
type addrFlag device.Addr

func (a *addrFlag) String() string {
	return "0x" + strconv.FormatUint(uint64(*a), 16)
}

func (a *addrFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return err
	}
	*a = addrFlag(v)
	return nil
}

func deviceFlag(fs *flag.FlagSet) *string {
	return fs.String("dev", defaultDevice, "part name, one of "+partNames())
}

func partNames() string {
	s := ""
	for i, d := range device.All() {
		if i > 0 {
			s += ", "
		}
		s += d.Name
	}
	return s
}

// newDevice creates a simulated part and its Flash primitives.
func newDevice(name string) (*sim.MCU, flash.Device) {
	def := device.ByName(name)
	if def == nil {
		fatal("unknown part %q, want one of %s", name, partNames())
	}
	mcu := sim.New(def)
	return mcu, flash.New(mcu, def, flash.WithLogger(glogger{}))
}
