package flashutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/sim"
)

var errPowerLoss = errors.New("power lost")

func newEditor(t *testing.T, name string, opts ...Option) (*Editor, *sim.MCU) {
	t.Helper()
	def := device.ByName(name)
	require.NotNil(t, def, name)
	mcu := sim.New(def)
	return New(flash.New(mcu, def, flash.WithSettleCycles(0)), opts...), mcu
}

// pattern returns n bytes that are never 0xFF.
func pattern(seed, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((seed + i*7) % 0xFF)
	}
	return out
}

func TestNewPanics(t *testing.T) {
	require.Panics(t, func() { New(nil) })
}

func TestWriteRead(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F380")
	data := pattern(1, 40)

	require.NoError(t, ed.Write(0x1F00, data))
	require.Equal(t, data, mcu.Peek(0x1F00, 40))

	got := make([]byte, 40)
	require.NoError(t, ed.Read(got, 0x1F00))
	require.Equal(t, data, got)
}

func TestClear(t *testing.T) {
	tests := []struct {
		name       string
		dest       device.Addr
		n          uint32
		pageErases int
	}{
		{"inside one page", 0x1010, 8, 2},
		{"page start", 0x1000, 3, 2},
		{"page end", 0x11FD, 3, 2},
		{"straddles boundary", 510, 4, 4},
		{"whole page", 0x1200, 512, 1},
		{"three pages", 0x1100, 1024, 5},
		{"single byte", 0x13FF, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, mcu := newEditor(t, "C8051F380")
			def := mcu.Definition()

			first := def.PageStart(tt.dest)
			last := def.PageEnd(tt.dest + device.Addr(tt.n) - 1)
			span := int(last-first) + 1
			before := pattern(int(tt.dest), span)
			require.NoError(t, mcu.LoadImage(first, before))
			erases := mcu.Stats().PageErases

			require.NoError(t, ed.Clear(tt.dest, tt.n))

			after := mcu.Peek(first, span)
			for i := range after {
				a := first + device.Addr(i)
				if a >= tt.dest && a < tt.dest+device.Addr(tt.n) {
					require.Equal(t, byte(0xFF), after[i], "0x%04X inside range", a)
				} else {
					require.Equal(t, before[i], after[i], "0x%04X outside range", a)
				}
			}
			require.Equal(t, tt.pageErases, mcu.Stats().PageErases-erases)
		})
	}
}

func TestClearPhases(t *testing.T) {
	var got []string
	ed, _ := newEditor(t, "C8051F380", WithPhaseHook(func(p Phase, page device.Addr) error {
		got = append(got, fmt.Sprintf("%s@%04X", p, uint32(page)))
		return nil
	}))

	require.NoError(t, ed.Clear(0x100, 1024))

	require.Equal(t, []string{
		"stage-to-scratch@0000",
		"erase-target@0000",
		"restore-from-scratch@0000",
		"erase-target@0200",
		"stage-to-scratch@0400",
		"erase-target@0400",
		"restore-from-scratch@0400",
	}, got)
}

func TestClearMask(t *testing.T) {
	var phases []Phase
	ed, mcu := newEditor(t, "C8051F380", WithPhaseHook(func(p Phase, page device.Addr) error {
		phases = append(phases, p)
		return nil
	}))
	before := pattern(11, 512)
	require.NoError(t, mcu.LoadImage(0x400, before))

	mask := make([]bool, 512)
	for _, i := range []int{0x10, 0x11, 0x12, 0x100, 0x1FF} {
		mask[i] = true
	}
	require.NoError(t, ed.ClearMask(0x400, mask))

	got := mcu.Peek(0x400, 512)
	for i := range got {
		if mask[i] {
			require.Equal(t, byte(0xFF), got[i], "offset 0x%03X", i)
		} else {
			require.Equal(t, before[i], got[i], "offset 0x%03X", i)
		}
	}
	require.Equal(t, []Phase{PhaseStage, PhaseErase, PhaseRestore}, phases)
	require.Equal(t, 2, mcu.Stats().PageErases)
}

func TestClearMaskEdges(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F380")
	def := mcu.Definition()
	require.NoError(t, mcu.LoadImage(0x400, pattern(2, 512)))

	none := make([]bool, 512)
	require.NoError(t, ed.ClearMask(0x400, none))
	require.Zero(t, mcu.Stats().PageErases)

	all := make([]bool, 512)
	for i := range all {
		all[i] = true
	}
	require.NoError(t, ed.ClearMask(0x400, all))
	require.Equal(t, erased(512), mcu.Peek(0x400, 512))
	require.Equal(t, 1, mcu.Stats().PageErases)

	require.Error(t, ed.ClearMask(0x410, all))
	require.Error(t, ed.ClearMask(0x400, all[:100]))
	require.ErrorIs(t, ed.ClearMask(def.ScratchPage, all), ErrScratchOverlap)
	require.True(t, IsRangeError(ed.ClearMask(def.LockPage(), all)))
}

func TestClearZeroLength(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F380")
	require.NoError(t, ed.Clear(0x200, 0))
	require.Zero(t, mcu.Stats().PageErases)
}

// Mirrors the on-target Flash test: every step checks the 24 bytes starting
// at base.
func TestRangeSequence(t *testing.T) {
	for _, base := range []device.Addr{0x5E00, 0x5FFE} {
		t.Run(fmt.Sprintf("0x%04X", uint32(base)), func(t *testing.T) {
			ed, mcu := newEditor(t, "C8051F380")
			buf := make([]byte, 8)

			require.NoError(t, ed.Write(base, []byte("ABCDEFG\x00")))
			require.NoError(t, ed.Read(buf, base))
			require.Equal(t, []byte("ABCDEFG\x00"), buf)

			require.NoError(t, ed.Clear(base, 2))
			require.NoError(t, ed.Read(buf, base))
			require.Equal(t, []byte{0xFF, 0xFF, 'C', 'D', 'E', 'F', 'G', 0}, buf)

			require.NoError(t, ed.Update(base, []byte("HIJ")))
			require.NoError(t, ed.Read(buf, base))
			require.Equal(t, []byte("HIJDEFG\x00"), buf)

			require.NoError(t, ed.Copy(base+8, base, 8))
			require.NoError(t, ed.Fill(base+16, 8, 0x5A))

			require.Equal(t, []byte{
				0x48, 0x49, 0x4A, 0x44, 0x45, 0x46, 0x47, 0x00,
				0x48, 0x49, 0x4A, 0x44, 0x45, 0x46, 0x47, 0x00,
				0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A,
			}, mcu.Peek(base, 24))
		})
	}
}

func TestUpdateOverwrites(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F931")
	require.NoError(t, mcu.LoadImage(0x3FE, []byte{0x00, 0x00, 0x00, 0x00}))

	require.NoError(t, ed.Update(0x3FF, []byte{0xA5, 0x5A}))

	require.Equal(t, []byte{0x00, 0xA5, 0x5A, 0x00}, mcu.Peek(0x3FE, 4))
}

func TestCopy(t *testing.T) {
	ed, mcu := newEditor(t, "EFM8BB31F64G")
	src := pattern(3, 100)
	require.NoError(t, mcu.LoadImage(0x2000, src))

	require.NoError(t, ed.Copy(0x21C0, 0x2000, 100))

	got := make([]byte, 100)
	require.NoError(t, ed.Read(got, 0x21C0))
	require.Equal(t, src, got)
}

func TestValidation(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F380")
	def := mcu.Definition()

	tests := []struct {
		name    string
		op      func() error
		scratch bool
	}{
		{"write into scratch", func() error { return ed.Write(def.ScratchPage, []byte{0}) }, true},
		{"write across into scratch", func() error { return ed.Write(def.ScratchPage-1, []byte{0, 0}) }, true},
		{"clear scratch", func() error { return ed.Clear(def.ScratchPage+4, 4) }, true},
		{"fill scratch", func() error { return ed.Fill(def.ScratchPage-2, 8, 0) }, true},
		{"write lock page", func() error { return ed.Write(def.LockPage(), []byte{0}) }, false},
		{"clear past flash", func() error { return ed.Clear(device.Addr(def.FlashSize), 1) }, false},
		{"copy from past flash", func() error { return ed.Copy(0, device.Addr(def.FlashSize-1), 2) }, false},
		{"read past flash", func() error { return ed.Read(make([]byte, 2), device.Addr(def.FlashSize-1)) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			if tt.scratch {
				require.ErrorIs(t, err, ErrScratchOverlap)
			} else {
				require.True(t, IsRangeError(err), "got %v", err)
			}
		})
	}

	stats := mcu.Stats()
	require.Zero(t, stats.ByteWrites)
	require.Zero(t, stats.PageErases)

	// reading the reserved pages is allowed
	require.NoError(t, ed.Read(make([]byte, 4), def.ScratchPage))
}

func TestInterruptedClear(t *testing.T) {
	tests := []struct {
		name      string
		abortAt   Phase
		wantPage  func(before []byte) []byte
		wantSaved bool
	}{
		{
			name:     "before staging",
			abortAt:  PhaseStage,
			wantPage: func(before []byte) []byte { return before },
		},
		{
			name:      "before erase",
			abortAt:   PhaseErase,
			wantPage:  func(before []byte) []byte { return before },
			wantSaved: true,
		},
		{
			name:    "before restore",
			abortAt: PhaseRestore,
			wantPage: func(before []byte) []byte {
				return erased(len(before))
			},
			wantSaved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, mcu := newEditor(t, "C8051F380", WithPhaseHook(func(p Phase, page device.Addr) error {
				if p == tt.abortAt {
					return errPowerLoss
				}
				return nil
			}))
			def := mcu.Definition()
			before := pattern(9, 512)
			require.NoError(t, mcu.LoadImage(0x800, before))

			err := ed.Update(0x810, []byte("new"))
			require.ErrorIs(t, err, errPowerLoss)
			require.Contains(t, err.Error(), tt.abortAt.String())

			require.Equal(t, tt.wantPage(before), mcu.Peek(0x800, 512))

			if tt.wantSaved {
				saved := mcu.Peek(def.ScratchPage, 512)
				require.Equal(t, before[:0x10], saved[:0x10])
				require.Equal(t, erased(3), saved[0x10:0x13])
				require.Equal(t, before[0x13:], saved[0x13:])
			}
		})
	}
}

func TestSupplyLowAbortsClear(t *testing.T) {
	ed, mcu := newEditor(t, "C8051F380")
	before := pattern(5, 512)
	require.NoError(t, mcu.LoadImage(0x400, before))
	mcu.SetSupply(2000)

	err := ed.Clear(0x420, 16)
	require.ErrorIs(t, err, flash.ErrSupplyLow)
	require.Equal(t, before, mcu.Peek(0x400, 512))
}

func TestResetDuringClear(t *testing.T) {
	dip := false
	ed, mcu := newEditor(t, "C8051F380", WithPhaseHook(func(p Phase, page device.Addr) error {
		dip = p == PhaseErase
		return nil
	}))
	// the supply sags only while the target page is being erased
	mcu.OnStore(func(m *sim.MCU, a device.Addr) {
		if dip {
			m.SetSupply(2400)
			dip = false
		}
	})
	before := pattern(5, 512)
	require.NoError(t, mcu.LoadImage(0x400, before))

	err := ed.Clear(0x420, 16)
	require.ErrorIs(t, err, flash.ErrDeviceReset)
	require.Contains(t, err.Error(), "clear 0x0420+16")
	require.Equal(t, 1, mcu.Stats().Resets)
	require.Equal(t, before, mcu.Peek(0x400, 512))

	mcu.OnStore(nil)
	mcu.SetSupply(sim.DefaultSupply)
	require.NoError(t, ed.Clear(0x420, 16))
	require.Equal(t, erased(16), mcu.Peek(0x420, 16))
	require.Equal(t, before[:0x20], mcu.Peek(0x400, 0x20))
	require.Equal(t, before[0x30:], mcu.Peek(0x430, 512-0x30))
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseStage, "stage-to-scratch"},
		{PhaseErase, "erase-target"},
		{PhaseRestore, "restore-from-scratch"},
		{Phase(9), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.phase.String())
		})
	}
}

func erased(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 0xFF
	}
	return out
}
