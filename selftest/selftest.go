// Package selftest exercises every Flash primitive and range operation on a
// small test area and reports which of them behave.
//
// The sequence writes and reads one byte, erases its page, writes the string
// "ABCDEFG\x00", clears its first two bytes, updates its first three bytes
// to "HIJ", copies the result to the next eight bytes and fills the eight
// after that with 0x5A. Every step is checked by reading Flash back. A failed
// step does not stop the run.
package selftest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flashutil"
)

// AreaSize is the number of bytes the test uses from its base address.
const AreaSize = 24

// DefaultBase is the test address of the C8051F38x demonstration. The area
// straddles the page boundary at 0x6000.
const DefaultBase device.Addr = 0x5FFE

// Step is the outcome of one test step.
type Step struct {
	Name string

	// Err is the error returned by a Flash operation, if any
	Err error

	// Want and Got are the expected and read-back bytes
	Want []byte
	Got  []byte
}

// Passed reports whether the step ran without error and read back what it
// expected.
func (s Step) Passed() bool {
	return s.Err == nil && bytes.Equal(s.Want, s.Got)
}

func (s Step) String() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("FAIL %-8s %v", s.Name, s.Err)
	case !s.Passed():
		return fmt.Sprintf("FAIL %-8s got % X, want % X", s.Name, s.Got, s.Want)
	default:
		return fmt.Sprintf("PASS %-8s", s.Name)
	}
}

// Report is the result of a self-test run.
type Report struct {
	Device string
	Base   device.Addr
	Steps  []Step
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return len(r.Steps) > 0
}

// Failed returns the steps that did not pass.
func (r *Report) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if !s.Passed() {
			out = append(out, s)
		}
	}
	return out
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s flash self-test at 0x%04X\n", r.Device, uint32(r.Base))
	for _, s := range r.Steps {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	if r.Passed() {
		b.WriteString("PASS\n")
	} else {
		fmt.Fprintf(&b, "FAIL (%d of %d steps)\n", len(r.Failed()), len(r.Steps))
	}
	return b.String()
}

// Run executes the self-test on the AreaSize bytes at base, which must lie in
// user Flash. Every page the area touches is erased first; other data on
// those pages is lost.
func Run(ed *flashutil.Editor, base device.Addr) (*Report, error) {
	dev := ed.Device()
	def := dev.Definition()
	if !def.InUser(base, AreaSize) {
		return nil, &flashutil.RangeError{Op: "selftest", Addr: base, Len: AreaSize, Limit: def.UserLimit()}
	}

	r := &Report{Device: def.Name, Base: base}
	record := func(name string, want []byte, addr device.Addr, err error) {
		s := Step{Name: name, Err: err, Want: want}
		if err == nil {
			s.Got = make([]byte, len(want))
			s.Err = ed.Read(s.Got, addr)
		}
		r.Steps = append(r.Steps, s)
	}

	var err error
	for p := def.PageStart(base); p <= def.PageStart(base+AreaSize-1); p += device.Addr(def.PageSize) {
		if err = dev.PageErase(p); err != nil {
			break
		}
	}
	record("prepare", bytes.Repeat([]byte{0xFF}, AreaSize), base, err)

	record("byte", []byte{0xA5}, base, dev.ByteWrite(base, 0xA5))

	record("erase", []byte{0xFF}, base, dev.PageErase(base))

	text := []byte("ABCDEFG\x00")
	record("write", text, base, ed.Write(base, text))

	want := append([]byte{0xFF, 0xFF}, text[2:]...)
	record("clear", want, base, ed.Clear(base, 2))

	want = append([]byte("HIJ"), text[3:]...)
	record("update", want, base, ed.Update(base, []byte("HIJ")))

	record("copy", want, base+8, ed.Copy(base+8, base, 8))

	record("fill", bytes.Repeat([]byte{0x5A}, 8), base+16, ed.Fill(base+16, 8, 0x5A))

	return r, nil
}
