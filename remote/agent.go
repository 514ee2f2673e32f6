package remote

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/protocol"
)

// Agent serves Flash commands read from a link against a device.
type Agent struct {
	rw     io.ReadWriter
	dev    flash.Device
	ed     *flashutil.Editor
	config Config
}

// NewAgent creates an agent serving dev over rw.
//
// Example:
//
//	agent := remote.NewAgent(uart, flash.New(bus, def))
//	err := agent.Serve(ctx)
func NewAgent(rw io.ReadWriter, dev flash.Device, opts ...Option) *Agent {
	if rw == nil {
		panic("link cannot be nil")
	}
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Agent{
		rw:     rw,
		dev:    dev,
		ed:     flashutil.New(dev, flashutil.WithLogger(cfg.Logger)),
		config: cfg,
	}
}

// Serve answers commands until the link reaches EOF, ctx is cancelled or
// the link fails. It returns nil on a clean EOF.
//
// A link that implements io.Closer is closed when ctx is cancelled so that a
// blocked read returns.
func (a *Agent) Serve(ctx context.Context) error {
	if c, ok := a.rw.(io.Closer); ok {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-stop:
			}
		}()
	}

	a.logInfo("agent serving", "device", a.dev.Definition().Name)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := protocol.ReadFrame(a.rw)
		switch {
		case err == nil:
		case errors.Is(err, protocol.ErrMalformedFrame):
			a.logError("bad frame", "error", err)
			if err := a.respond(protocol.ErrData, nil); err != nil {
				return err
			}
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			a.logInfo("link closed")
			return nil
		default:
			return fmt.Errorf("read command: %w", err)
		}

		status, data := a.handleFrame(frame)
		if err := a.respond(status, data); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// handleFrame executes one command frame and returns the response.
func (a *Agent) handleFrame(frame []byte) (byte, []byte) {
	cmd, payload, err := protocol.ParseFrame(frame)
	if err != nil {
		a.logError("bad frame", "error", err)
		return statusFor(err), nil
	}

	req, err := protocol.ParseRequest(cmd, payload)
	if err != nil {
		a.logError("bad request", "command", protocol.CommandName(cmd), "error", err)
		return statusFor(err), nil
	}

	data, err := a.execute(req)
	if err != nil {
		a.logError("command failed",
			"command", protocol.CommandName(cmd),
			"addr", fmt.Sprintf("0x%04X", req.Addr),
			"error", err,
		)
		return statusFor(err), nil
	}

	a.logDebug("command done",
		"command", protocol.CommandName(cmd),
		"addr", fmt.Sprintf("0x%04X", req.Addr),
		"len", req.Len+uint32(len(req.Data)),
	)
	return protocol.StatusSuccess, data
}

// execute runs a decoded request and returns the response data.
func (a *Agent) execute(req *protocol.Request) ([]byte, error) {
	addr := device.Addr(req.Addr)

	switch req.Cmd {
	case protocol.CmdIdentify:
		def := a.dev.Definition()
		return protocol.BuildIdentifyResponse(&protocol.DeviceInfo{
			Name:      def.Name,
			FlashSize: def.FlashSize,
			PageSize:  uint16(def.PageSize),
		})

	case protocol.CmdByteRead:
		v, err := a.dev.ByteRead(addr)
		if err != nil {
			return nil, err
		}
		return []byte{v}, nil

	case protocol.CmdByteWrite:
		return nil, a.dev.ByteWrite(addr, req.Value)

	case protocol.CmdPageErase:
		return nil, a.dev.PageErase(addr)

	case protocol.CmdRead:
		buf := make([]byte, req.Len)
		if err := a.ed.Read(buf, addr); err != nil {
			return nil, err
		}
		return buf, nil

	case protocol.CmdWrite:
		return nil, a.ed.Write(addr, req.Data)

	case protocol.CmdClear:
		return nil, a.ed.Clear(addr, req.Len)

	case protocol.CmdUpdate:
		return nil, a.ed.Update(addr, req.Data)

	case protocol.CmdCopy:
		return nil, a.ed.Copy(addr, device.Addr(req.Src), req.Len)

	case protocol.CmdFill:
		return nil, a.ed.Fill(addr, req.Len, req.Value)
	}

	return nil, &protocol.ProtocolError{Operation: protocol.CommandName(req.Cmd), StatusCode: protocol.ErrCommand}
}

func (a *Agent) respond(status byte, data []byte) error {
	frame, err := protocol.BuildFrame(status, data)
	if err != nil {
		return err
	}
	if _, err := a.rw.Write(frame); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (a *Agent) logDebug(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (a *Agent) logInfo(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Info(msg, keysAndValues...)
	}
}

func (a *Agent) logError(msg string, keysAndValues ...interface{}) {
	if a.config.Logger != nil {
		a.config.Logger.Error(msg, keysAndValues...)
	}
}
