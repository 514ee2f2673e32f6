package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/selftest"
)

const selftestDescr = "run the Flash self-test on a simulated part"

func selftestMain(args []string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage:\n  selftest [OPTIONS]\nOptions:\n")
		fs.PrintDefaults()
	}
	dev := deviceFlag(fs)
	addr := addrFlag(selftest.DefaultBase)
	fs.Var(&addr, "addr", "first address of the test area")
	fs.Parse(args[1:])
	if fs.NArg() != 0 {
		fs.Usage()
		exit(1)
	}

	_, d := newDevice(*dev)
	r, err := selftest.Run(flashutil.New(d, flashutil.WithLogger(glogger{})), device.Addr(addr))
	fatalErr("selftest", err)
	fmt.Print(r)
	if !r.Passed() {
		exit(1)
	}
}
