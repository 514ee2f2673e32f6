// Package remote edits the Flash of a part over a serial link.
//
// An Agent runs next to the part. It reads command frames from an
// io.ReadWriter, executes them against a flash.Device and writes one response
// frame per command. A Client on the host speaks the other side of the link
// and implements flash.Device itself, so the range utilities, the data
// logger and the image loader work unchanged against a remote part.
//
// Range operations (Read, Write, Clear, Update, Copy, Fill) are also
// available on the Client. They run on the agent's Editor, which keeps the
// scratch-page sequence of Clear and Update local to the part.
//
// # Basic Usage
//
//	// Part side
//	agent := remote.NewAgent(uart, flash.New(bus, def))
//	go agent.Serve(ctx)
//
//	// Host side
//	client, err := remote.Dial(ctx, port, remote.WithTimeout(2*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.Update(0x5E00, []byte("HIJ"))
//
// # Errors
//
// Failures reported by the agent come back as *protocol.ProtocolError. The
// statuses for a low supply and a scratch-page overlap also wrap
// flash.ErrSupplyLow and flashutil.ErrScratchOverlap, so errors.Is works the
// same for local and remote devices.
package remote
