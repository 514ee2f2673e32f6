package remote

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/protocol"
	"github.com/moffa90/go-c8051flash/sim"
)

var _ flash.Device = (*Client)(nil)

// serve starts an agent for a simulated part on one end of a pipe and
// returns the other end.
func serve(t *testing.T, name string) (net.Conn, *sim.MCU) {
	t.Helper()
	def := device.ByName(name)
	require.NotNil(t, def, name)
	mcu := sim.New(def)
	dev := flash.New(mcu, def, flash.WithSettleCycles(0))

	host, part := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewAgent(part, dev).Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		host.Close()
		<-done
	})
	return host, mcu
}

func dial(t *testing.T, name string, opts ...Option) (*Client, *sim.MCU) {
	t.Helper()
	host, mcu := serve(t, name)
	c, err := Dial(context.Background(), host, opts...)
	require.NoError(t, err)
	return c, mcu
}

// link is an in-memory half-duplex link for tests without an agent.
type link struct {
	in  io.Reader
	out bytes.Buffer
}

func (l *link) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *link) Write(p []byte) (int, error) { return l.out.Write(p) }

func frames(t *testing.T, fs ...[]byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range fs {
		buf.Write(f)
	}
	return bytes.NewReader(buf.Bytes())
}

func mustFrame(t *testing.T, code byte, data []byte) []byte {
	t.Helper()
	f, err := protocol.BuildFrame(code, data)
	require.NoError(t, err)
	return f
}

func TestDial(t *testing.T) {
	for _, name := range []string{"C8051F380", "C8051F931", "EFM8BB31F64G"} {
		t.Run(name, func(t *testing.T) {
			c, _ := dial(t, name)
			require.Same(t, device.ByName(name), c.Definition())
		})
	}
}

func TestDialRejectsUnknownPart(t *testing.T) {
	tests := []struct {
		name   string
		info   protocol.DeviceInfo
		errMsg string
	}{
		{"unregistered", protocol.DeviceInfo{Name: "C8051F999", FlashSize: 0x8000, PageSize: 512}, "unknown part"},
		{"geometry mismatch", protocol.DeviceInfo{Name: "C8051F380", FlashSize: 0xFC00, PageSize: 1024}, "definition has"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := protocol.BuildIdentifyResponse(&tt.info)
			require.NoError(t, err)
			l := &link{in: frames(t, mustFrame(t, protocol.StatusSuccess, data))}

			_, err = Dial(context.Background(), l)
			require.ErrorContains(t, err, tt.errMsg)

			cmd, err := protocol.BuildIdentifyCmd()
			require.NoError(t, err)
			require.Equal(t, cmd, l.out.Bytes())
		})
	}
}

func TestDialTimeout(t *testing.T) {
	host, part := net.Pipe()
	defer host.Close()
	defer part.Close()

	_, err := Dial(context.Background(), host, WithTimeout(20*time.Millisecond))
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestDialCancelled(t *testing.T) {
	host, part := net.Pipe()
	defer host.Close()
	defer part.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dial(ctx, host)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPrimitives(t *testing.T) {
	c, mcu := dial(t, "C8051F380")

	require.NoError(t, c.PageErase(0x5E00))
	require.NoError(t, c.ByteWrite(0x5E00, 0xA5))
	v, err := c.ByteRead(0x5E00)
	require.NoError(t, err)
	require.Equal(t, byte(0xA5), v)
	require.Equal(t, []byte{0xA5}, mcu.Peek(0x5E00, 1))

	require.NoError(t, c.PageErase(0x5E00))
	v, err = c.ByteRead(0x5E00)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), v)
}

func TestRangeSequence(t *testing.T) {
	c, mcu := dial(t, "C8051F380", WithMaxChunk(5))
	const base = 0x5E00

	require.NoError(t, c.Write(base, []byte("ABCDEFG\x00")))
	got := make([]byte, 8)
	require.NoError(t, c.Read(got, base))
	require.Equal(t, []byte("ABCDEFG\x00"), got)

	require.NoError(t, c.Clear(base, 3))
	require.NoError(t, c.Update(base, []byte("HIJ")))
	require.NoError(t, c.Copy(base+8, base, 8))
	require.NoError(t, c.Fill(base+16, 8, 0x5A))

	want := append([]byte("HIJDEFG\x00HIJDEFG\x00"), bytes.Repeat([]byte{0x5A}, 8)...)
	require.Equal(t, want, mcu.Peek(base, 24))
}

func TestChunkedTransfer(t *testing.T) {
	c, mcu := dial(t, "C8051F931", WithMaxChunk(7))
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i * 3)
	}

	require.NoError(t, c.Write(0x2000, data))
	require.Equal(t, data, mcu.Peek(0x2000, len(data)))

	got := make([]byte, len(data))
	require.NoError(t, c.Read(got, 0x2000))
	require.Equal(t, data, got)
}

func TestEditorOverClient(t *testing.T) {
	c, mcu := dial(t, "C8051F380")
	ed := flashutil.New(c)

	require.NoError(t, ed.Write(0x1000, []byte("0123456789")))
	require.NoError(t, ed.Clear(0x1002, 4))
	require.Equal(t, []byte("01\xff\xff\xff\xff6789"), mcu.Peek(0x1000, 10))
}

func TestErrors(t *testing.T) {
	c, mcu := dial(t, "C8051F380")
	def := c.Definition()

	err := c.ByteWrite(device.Addr(def.FlashSize), 0x00)
	require.True(t, protocol.IsProtocolError(err))
	var pe *protocol.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, byte(protocol.ErrAddress), pe.StatusCode)

	err = c.Write(def.ScratchPage-2, []byte{1, 2, 3, 4})
	require.ErrorIs(t, err, flashutil.ErrScratchOverlap)

	err = c.Clear(def.UserLimit()-1, 1)
	require.NoError(t, err)

	mcu.SetSupply(2400)
	err = c.ByteWrite(0x1000, 0x00)
	require.ErrorIs(t, err, flash.ErrSupplyLow)
	require.True(t, protocol.IsProtocolError(err))

	mcu.SetSupply(sim.DefaultSupply)
	require.NoError(t, c.ByteWrite(0x1000, 0x00))

	mcu.OnStore(func(m *sim.MCU, a device.Addr) { m.SetSupply(2400) })
	err = c.PageErase(0x1000)
	require.ErrorIs(t, err, flash.ErrDeviceReset)
	require.ErrorAs(t, err, &pe)
	require.Equal(t, byte(protocol.ErrReset), pe.StatusCode)
	require.Equal(t, []byte{0x00}, mcu.Peek(0x1000, 1))

	mcu.OnStore(nil)
	mcu.SetSupply(sim.DefaultSupply)
	require.NoError(t, c.PageErase(0x1000))
	require.Equal(t, []byte{0xFF}, mcu.Peek(0x1000, 1))
}

func TestAgentStatuses(t *testing.T) {
	corrupt := mustFrame(t, protocol.CmdByteRead, []byte{0, 0x10, 0, 0})
	corrupt[4] ^= 0xFF

	tests := []struct {
		name   string
		input  []byte
		status byte
	}{
		{"unknown command", mustFrame(t, 0x50, nil), protocol.ErrCommand},
		{"checksum mismatch", corrupt, protocol.ErrChecksum},
		{"bad start marker", []byte{0x00, 0x00, 0x00, 0x00}, protocol.ErrData},
		{"short payload", mustFrame(t, protocol.CmdFill, []byte{0, 0x10}), protocol.ErrLength},
		{"read beyond flash", mustFrame(t, protocol.CmdRead, []byte{0xFF, 0xFF, 0, 0, 2, 0}), protocol.ErrAddress},
		{"identify", mustFrame(t, protocol.CmdIdentify, nil), protocol.StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, _ := serve(t, "C8051F380")
			require.NoError(t, host.SetDeadline(time.Now().Add(5*time.Second)))

			_, err := host.Write(tt.input)
			require.NoError(t, err)

			frame, err := protocol.ReadFrame(host)
			require.NoError(t, err)
			status, _, err := protocol.ParseFrame(frame)
			require.NoError(t, err)
			require.Equal(t, tt.status, status, protocol.StatusName(status))
		})
	}
}

func TestServeEOF(t *testing.T) {
	def := device.ByName("C8051F380")
	dev := flash.New(sim.New(def), def, flash.WithSettleCycles(0))

	identify, err := protocol.BuildIdentifyCmd()
	require.NoError(t, err)
	read, err := protocol.BuildByteReadCmd(0x0000)
	require.NoError(t, err)
	l := &link{in: frames(t, identify, read)}

	require.NoError(t, NewAgent(l, dev).Serve(context.Background()))

	status, data, err := protocol.ParseFrame(mustRead(t, &l.out))
	require.NoError(t, err)
	require.Equal(t, byte(protocol.StatusSuccess), status)
	info, err := protocol.ParseIdentifyResponse(data)
	require.NoError(t, err)
	require.Equal(t, "C8051F380", info.Name)

	status, data, err = protocol.ParseFrame(mustRead(t, &l.out))
	require.NoError(t, err)
	require.Equal(t, byte(protocol.StatusSuccess), status)
	require.Equal(t, []byte{0xFF}, data)

	require.Zero(t, l.out.Len())
}

func TestServeTruncated(t *testing.T) {
	def := device.ByName("C8051F380")
	dev := flash.New(sim.New(def), def)

	frame, err := protocol.BuildByteReadCmd(0x0000)
	require.NoError(t, err)
	l := &link{in: bytes.NewReader(frame[:6])}

	err = NewAgent(l, dev).Serve(context.Background())
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestServeCancelled(t *testing.T) {
	def := device.ByName("C8051F380")
	dev := flash.New(sim.New(def), def)
	host, part := net.Pipe()
	defer host.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewAgent(part, dev).Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestNewAgentPanics(t *testing.T) {
	def := device.ByName("C8051F380")
	dev := flash.New(sim.New(def), def)
	require.Panics(t, func() { NewAgent(nil, dev) })
	require.Panics(t, func() { NewAgent(&link{}, nil) })
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{WithMaxChunk(0), WithMaxChunk(protocol.MaxDataSize), WithTimeout(-1)} {
		opt(&cfg)
	}
	require.Equal(t, protocol.DefaultChunkSize, cfg.MaxChunk)
	require.Equal(t, 5*time.Second, cfg.Timeout)

	WithMaxChunk(protocol.MaxDataSize - protocol.AddrSize)(&cfg)
	require.Equal(t, protocol.MaxDataSize-protocol.AddrSize, cfg.MaxChunk)
}

func mustRead(t *testing.T, r io.Reader) []byte {
	t.Helper()
	f, err := protocol.ReadFrame(r)
	require.NoError(t, err)
	return f
}
