package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/moffa90/go-c8051flash/hexfile"
	"github.com/moffa90/go-c8051flash/remote"
)

const serveDescr = "serve a simulated part on stdin/stdout"

// stdio joins stdin and stdout into one link.
type stdio struct {
	io.Reader
	io.Writer
}

func serveMain(args []string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() {
		os.Stderr.WriteString("Usage:\n  serve [OPTIONS]\nOptions:\n")
		fs.PrintDefaults()
	}
	dev := deviceFlag(fs)
	image := fs.String("load", "", "Intel HEX image placed in Flash before serving")
	fs.Parse(args[1:])
	if fs.NArg() != 0 {
		fs.Usage()
		exit(1)
	}

	mcu, d := newDevice(*dev)
	if *image != "" {
		img, err := hexfile.LoadFile(*image)
		fatalErr("load", err)
		for _, s := range img.Segments {
			fatalErr("load", mcu.LoadImage(s.Addr, s.Data))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := remote.NewAgent(stdio{os.Stdin, os.Stdout}, d, remote.WithLogger(glogger{})).Serve(ctx)
	if err != nil && ctx.Err() == nil {
		fatalErr("serve", err)
	}
}
