package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/hexfile"
	"github.com/moffa90/go-c8051flash/loader"
	"github.com/moffa90/go-c8051flash/remote"
)

const programDescr = "program an Intel HEX image into a simulated part"

func programMain(args []string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage:\n  program [OPTIONS] HEX\nOptions:\n")
		fs.PrintDefaults()
	}
	dev := deviceFlag(fs)
	erase := fs.Bool("erase", false, "erase user pages the image does not touch")
	verify := fs.Bool("verify", true, "read back and compare after programming")
	viaAgent := fs.Bool("remote", false, "program through an in-process agent over the serial protocol")
	quiet := fs.Bool("q", false, "do not report progress")
	fs.Parse(args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		exit(1)
	}

	img, err := hexfile.LoadFile(fs.Arg(0))
	fatalErr("load", err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcu, d := newDevice(*dev)
	var target flash.Device = d
	if *viaAgent {
		host, part := net.Pipe()
		defer host.Close()
		go remote.NewAgent(part, d, remote.WithLogger(glogger{})).Serve(ctx)
		target, err = remote.Dial(ctx, host, remote.WithLogger(glogger{}))
		fatalErr("dial", err)
	}

	opts := []loader.Option{
		loader.WithLogger(glogger{}),
		loader.WithVerifyAfterProgram(*verify),
		loader.WithEraseUnusedPages(*erase),
	}
	if !*quiet {
		opts = append(opts, loader.WithProgressCallback(func(p loader.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%-11s] %5.1f%%  page %d/%d  %d bytes",
				p.Phase, p.Percentage, p.CurrentPage, p.TotalPages, p.BytesWritten)
			if p.Phase == loader.PhaseComplete {
				os.Stderr.WriteString("\n")
			}
		}))
	}

	err = loader.New(target, opts...).Program(ctx, img)
	if !*quiet && err != nil {
		os.Stderr.WriteString("\n")
	}
	fatalErr("program", err)

	st := mcu.Stats()
	fmt.Printf("%s: %d bytes in %d segments, %d byte writes, %d page erases\n",
		mcu.Definition().Name, img.Size(), len(img.Segments), st.ByteWrites, st.PageErases)
}
