// Package hexfile converts between Intel HEX files and Flash contents.
package hexfile

import (
	"io"
	"os"
	"sort"

	"github.com/juju/errors"
	"github.com/marcinbor85/gohex"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
)

// lineLength is the number of data bytes per record in written files.
const lineLength = 16

// minGap is the shortest run of erased bytes that splits a segment when
// reading a device.
const minGap = 16

// Segment is a contiguous run of bytes.
type Segment struct {
	Addr device.Addr
	Data []byte
}

// End returns the address just past the segment.
func (s Segment) End() device.Addr {
	return s.Addr + device.Addr(len(s.Data))
}

// Image is a sparse Flash image. Segments are sorted by address and do not
// overlap.
type Image struct {
	Segments []Segment
}

// Size returns the number of bytes the image defines.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// Load parses an Intel HEX stream.
func Load(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, errors.Annotate(err, "parse intel hex")
	}

	img := &Image{}
	for _, ds := range mem.GetDataSegments() {
		data := make([]byte, len(ds.Data))
		copy(data, ds.Data)
		img.Segments = append(img.Segments, Segment{Addr: device.Addr(ds.Address), Data: data})
	}
	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].Addr < img.Segments[j].Addr
	})
	return img, nil
}

// LoadFile parses the Intel HEX file at path.
func LoadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s", path)
	}
	defer f.Close()

	img, err := Load(f)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	return img, nil
}

// Dump writes the image as Intel HEX.
func (img *Image) Dump(w io.Writer) error {
	mem := gohex.NewMemory()
	for _, s := range img.Segments {
		if err := mem.AddBinary(uint32(s.Addr), s.Data); err != nil {
			return errors.Annotatef(err, "add segment 0x%04X", uint32(s.Addr))
		}
	}
	return errors.Annotate(mem.DumpIntelHex(w, lineLength), "dump intel hex")
}

// Read captures the user area of dev. Runs of erased bytes shorter than
// sixteen bytes stay inside the surrounding segment.
func Read(dev flash.Device) (*Image, error) {
	def := dev.Definition()
	buf := make([]byte, def.UserLimit())
	if err := flashutil.New(dev).Read(buf, 0); err != nil {
		return nil, errors.Annotate(err, "read flash")
	}

	img := &Image{}
	start, gap := -1, 0
	flush := func(end int) {
		data := make([]byte, end-start)
		copy(data, buf[start:end])
		img.Segments = append(img.Segments, Segment{Addr: device.Addr(start), Data: data})
		start = -1
	}
	for i, b := range buf {
		if b != 0xFF {
			if start < 0 {
				start = i
			}
			gap = 0
			continue
		}
		if start < 0 {
			continue
		}
		gap++
		if gap == minGap {
			flush(i - minGap + 1)
		}
	}
	if start >= 0 {
		flush(len(buf) - gap)
	}
	return img, nil
}

// Dump writes the user area of dev as Intel HEX.
func Dump(dev flash.Device, w io.Writer) error {
	img, err := Read(dev)
	if err != nil {
		return err
	}
	return img.Dump(w)
}
