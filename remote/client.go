package remote

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/protocol"
)

// Client accesses the Flash of a remote part through an Agent.
// It implements flash.Device.
//
// Client is safe for concurrent use; commands are serialized on the link.
type Client struct {
	mu     sync.Mutex
	rw     io.ReadWriter
	def    *device.Definition
	config Config
}

// deadliner is implemented by links such as net.Conn.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Dial identifies the part behind rw and returns a client for it.
// The part must be registered in the device package and report the same
// geometry as its definition.
//
// Example:
//
//	client, err := remote.Dial(ctx, conn)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(client.Definition())
func Dial(ctx context.Context, rw io.ReadWriter, opts ...Option) (*Client, error) {
	if rw == nil {
		panic("link cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{rw: rw, config: cfg}

	info, err := c.Identify(ctx)
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	def := device.ByName(info.Name)
	if def == nil {
		return nil, fmt.Errorf("identify: unknown part %q", info.Name)
	}
	if def.FlashSize != info.FlashSize || def.PageSize != uint32(info.PageSize) {
		return nil, fmt.Errorf("identify: %s reports %d bytes in %d-byte pages, definition has %d in %d",
			info.Name, info.FlashSize, info.PageSize, def.FlashSize, def.PageSize)
	}
	c.def = def

	c.logInfo("connected",
		"device", def.Name,
		"flash_size", fmt.Sprintf("0x%04X", def.FlashSize),
		"page_size", def.PageSize,
	)
	return c, nil
}

// Definition returns the definition of the remote part.
func (c *Client) Definition() *device.Definition {
	return c.def
}

// Identify asks the agent for the part name and geometry.
func (c *Client) Identify(ctx context.Context) (*protocol.DeviceInfo, error) {
	cmd, err := protocol.BuildIdentifyCmd()
	if err != nil {
		return nil, err
	}
	data, err := c.roundTrip(ctx, "identify", cmd)
	if err != nil {
		return nil, err
	}
	return protocol.ParseIdentifyResponse(data)
}

// ByteRead returns the byte at a.
func (c *Client) ByteRead(a device.Addr) (byte, error) {
	cmd, err := protocol.BuildByteReadCmd(uint32(a))
	if err != nil {
		return 0, err
	}
	data, err := c.roundTrip(context.Background(), "byte read", cmd)
	if err != nil {
		return 0, err
	}
	return protocol.ParseByteReadResponse(data)
}

// ByteWrite programs v at a.
func (c *Client) ByteWrite(a device.Addr, v byte) error {
	cmd, err := protocol.BuildByteWriteCmd(uint32(a), v)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(context.Background(), "byte write", cmd)
	return err
}

// PageErase erases the page containing a.
func (c *Client) PageErase(a device.Addr) error {
	cmd, err := protocol.BuildPageEraseCmd(uint32(a))
	if err != nil {
		return err
	}
	_, err = c.roundTrip(context.Background(), "page erase", cmd)
	return err
}

// Read fills dst from Flash starting at src.
func (c *Client) Read(dst []byte, src device.Addr) error {
	for off := 0; off < len(dst); off += c.config.MaxChunk {
		n := min(c.config.MaxChunk, len(dst)-off)
		cmd, err := protocol.BuildReadCmd(uint32(src)+uint32(off), uint16(n))
		if err != nil {
			return err
		}
		data, err := c.roundTrip(context.Background(), "read", cmd)
		if err != nil {
			return fmt.Errorf("read 0x%04X: %w", uint32(src)+uint32(off), err)
		}
		if _, err := protocol.ParseReadResponse(data, n); err != nil {
			return err
		}
		copy(dst[off:], data)
	}
	return nil
}

// Write programs src at dest. The destination must be erased.
func (c *Client) Write(dest device.Addr, src []byte) error {
	return c.chunked("write", dest, src, protocol.BuildWriteCmd)
}

// Update replaces the bytes at dest with src, preserving the rest of the
// affected pages. Transfers larger than the chunk size are applied one
// chunk at a time.
func (c *Client) Update(dest device.Addr, src []byte) error {
	return c.chunked("update", dest, src, protocol.BuildUpdateCmd)
}

// Clear erases n bytes at dest, preserving the rest of the affected pages.
func (c *Client) Clear(dest device.Addr, n uint32) error {
	cmd, err := protocol.BuildClearCmd(uint32(dest), n)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(context.Background(), "clear", cmd)
	return err
}

// Copy copies n bytes from src to dest on the part. The destination must be
// erased.
func (c *Client) Copy(dest, src device.Addr, n uint32) error {
	cmd, err := protocol.BuildCopyCmd(uint32(dest), uint32(src), n)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(context.Background(), "copy", cmd)
	return err
}

// Fill programs n bytes at addr with v. The destination must be erased.
func (c *Client) Fill(addr device.Addr, n uint32, v byte) error {
	cmd, err := protocol.BuildFillCmd(uint32(addr), n, v)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(context.Background(), "fill", cmd)
	return err
}

func (c *Client) chunked(op string, dest device.Addr, src []byte, build func(uint32, []byte) ([]byte, error)) error {
	for off := 0; off < len(src); off += c.config.MaxChunk {
		end := min(off+c.config.MaxChunk, len(src))
		addr := uint32(dest) + uint32(off)
		cmd, err := build(addr, src[off:end])
		if err != nil {
			return err
		}
		if _, err := c.roundTrip(context.Background(), op, cmd); err != nil {
			return fmt.Errorf("%s 0x%04X: %w", op, addr, err)
		}
	}
	return nil
}

// roundTrip sends a command and returns the data of a successful response.
func (c *Client) roundTrip(ctx context.Context, op string, cmd []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.rw.(deadliner); ok {
		deadline, set := ctx.Deadline()
		if c.config.Timeout > 0 {
			if t := time.Now().Add(c.config.Timeout); !set || t.Before(deadline) {
				deadline, set = t, true
			}
		}
		if set {
			_ = d.SetDeadline(deadline)
			defer d.SetDeadline(time.Time{})
		}
	}

	if _, err := c.rw.Write(cmd); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	frame, err := protocol.ReadFrame(c.rw)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	status, data, err := protocol.ParseFrame(frame)
	if err != nil {
		return nil, err
	}

	if status != protocol.StatusSuccess {
		c.logDebug("command refused", "op", op, "status", protocol.StatusName(status))
		return nil, statusError(op, status)
	}
	return data, nil
}

func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}
