package main

import (
	"flag"
	"io"
	"os"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/hexfile"
	"github.com/moffa90/go-c8051flash/selftest"
)

const hexDescr = "run the self-test and dump the user Flash as Intel HEX"

func hexMain(args []string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage:\n  hex [OPTIONS]\nOptions:\n")
		fs.PrintDefaults()
	}
	dev := deviceFlag(fs)
	addr := addrFlag(selftest.DefaultBase)
	fs.Var(&addr, "addr", "first address of the test area")
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args[1:])
	if fs.NArg() != 0 {
		fs.Usage()
		exit(1)
	}

	_, d := newDevice(*dev)
	r, err := selftest.Run(flashutil.New(d), device.Addr(addr))
	fatalErr("selftest", err)
	if !r.Passed() {
		os.Stderr.WriteString(r.String())
		exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		fatalErr("", err)
		defer f.Close()
		w = f
	}
	fatalErr("dump", hexfile.Dump(d, w))
}
