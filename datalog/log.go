package datalog

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
)

// ErrEmpty is returned by Last when the log holds no record.
var ErrEmpty = errors.New("log is empty")

// Region is the Flash area holding the records. End is the last byte of the
// region.
type Region struct {
	Start device.Addr
	End   device.Addr
}

// DefaultRegion is the log area of the logger board firmware.
var DefaultRegion = Region{Start: 0x1800, End: 0x39FF}

// Slots returns the number of records the region holds.
func (r Region) Slots() int {
	return int(r.End+1-r.Start) / RecordSize
}

// Validate checks that r is a whole number of pages of user Flash on def.
func (r Region) Validate(def *device.Definition) error {
	if r.End <= r.Start {
		return fmt.Errorf("log region 0x%04X-0x%04X is empty", uint32(r.Start), uint32(r.End))
	}
	if def.PageStart(r.Start) != r.Start || def.PageStart(r.End+1) != r.End+1 {
		return fmt.Errorf("log region 0x%04X-0x%04X is not page aligned", uint32(r.Start), uint32(r.End))
	}
	size := uint32(r.End + 1 - r.Start)
	if !def.InUser(r.Start, size) {
		return fmt.Errorf("log region 0x%04X-0x%04X exceeds user flash (limit 0x%04X)",
			uint32(r.Start), uint32(r.End), uint32(def.UserLimit()))
	}
	return nil
}

// Log is a record ring in Flash together with the position of its newest
// record.
//
// Log is not safe for concurrent use.
type Log struct {
	dev    flash.Device
	def    *device.Definition
	ed     *flashutil.Editor
	region Region
	config Config

	cursor device.Addr
	time   uint16
	empty  bool
}

// Open locates the newest record in region and returns a Log positioned
// after it.
// It panics if dev is nil.
func Open(dev flash.Device, region Region, opts ...Option) (*Log, error) {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	def := dev.Definition()
	if err := region.Validate(def); err != nil {
		return nil, err
	}
	if cfg.StatsAddr == 0 {
		cfg.StatsAddr = region.End + 1
	}
	if cfg.StatsAddr+statsSize > region.Start && cfg.StatsAddr <= region.End {
		return nil, fmt.Errorf("stats block 0x%04X overlaps the log region", uint32(cfg.StatsAddr))
	}
	if !def.InUser(cfg.StatsAddr, statsSize) {
		return nil, fmt.Errorf("stats block 0x%04X exceeds user flash (limit 0x%04X)",
			uint32(cfg.StatsAddr), uint32(def.UserLimit()))
	}

	l := &Log{
		dev:    dev,
		def:    def,
		ed:     flashutil.New(dev, flashutil.WithLogger(cfg.Logger)),
		region: region,
		config: cfg,
	}
	if err := l.findLast(); err != nil {
		return nil, fmt.Errorf("find last record: %w", err)
	}

	l.logInfo("log opened", "cursor", fmt.Sprintf("0x%04X", uint32(l.cursor)),
		"time", l.time, "empty", l.empty)
	return l, nil
}

// Region returns the log area.
func (l *Log) Region() Region {
	return l.region
}

// Empty reports whether the log holds no record.
func (l *Log) Empty() bool {
	return l.empty
}

// Cursor returns the address of the newest record. It is meaningless while
// the log is empty.
func (l *Log) Cursor() device.Addr {
	return l.cursor
}

// Time returns the timestamp of the newest record.
func (l *Log) Time() uint16 {
	return l.time
}

// findLast scans for the first blank page, steps back one page and scans
// from there record by record. A blank first slot means either an empty log
// or a log that wrapped and had its first page erased before the next record
// was written; the last slot of the region tells the two apart.
func (l *Log) findLast() error {
	r := l.region
	page := device.Addr(l.def.PageSize)

	a := r.Start
	for ; a < r.End; a += page {
		blank, err := l.blankAt(a)
		if err != nil {
			return err
		}
		if blank {
			break
		}
	}
	if a >= r.End {
		a = r.Start
	}
	if a != r.Start {
		a -= page
	}

	// A break in the time sequence also ends the scan: once the ring has
	// wrapped, a fully rewritten page is followed by the older records of
	// the next page rather than by a blank slot.
	var prev Record
	for i := 0; a < r.End; a, i = a+RecordSize, i+1 {
		rec, err := l.readRecord(a)
		if err != nil {
			return err
		}
		if rec.Blank() || (i > 0 && rec.Time != prev.Time+1) {
			break
		}
		prev = rec
	}

	if a != r.Start {
		a -= RecordSize
	} else {
		last := r.End + 1 - RecordSize
		blank, err := l.blankAt(last)
		if err != nil {
			return err
		}
		if blank {
			l.cursor, l.time, l.empty = r.Start, 0, true
			return nil
		}
		a = last
	}

	rec, err := l.readRecord(a)
	if err != nil {
		return err
	}
	l.cursor, l.time, l.empty = a, rec.Time, false
	return nil
}

// Append writes a record for the next hour and updates the statistics.
// The first record of an empty log gets time zero.
func (l *Log) Append(voltage uint8, temperature int8) (Record, error) {
	next, t := l.region.Start, uint16(0)
	if !l.empty {
		next, t = l.cursor+RecordSize, l.time+1
	}
	if next+RecordSize-1 > l.region.End {
		next = l.region.Start
	}

	raw := make([]byte, RecordSize)
	if err := l.ed.Read(raw, next); err != nil {
		return Record{}, err
	}
	if !erased(raw) {
		if err := l.dev.PageErase(next); err != nil {
			return Record{}, fmt.Errorf("erase oldest page: %w", err)
		}
		l.logDebug("erased oldest page", "page", fmt.Sprintf("0x%04X", uint32(l.def.PageStart(next))))
	}

	rec := Record{Time: t, Voltage: voltage, Temperature: temperature}
	b, _ := rec.MarshalBinary()
	if err := l.ed.Write(next, b); err != nil {
		return Record{}, fmt.Errorf("write record: %w", err)
	}
	l.cursor, l.time, l.empty = next, t, false

	if err := l.UpdateStats(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Last returns the newest record.
func (l *Log) Last() (Record, error) {
	if l.empty {
		return Record{}, ErrEmpty
	}
	return l.readRecord(l.cursor)
}

// Records returns every record, newest first. After a wrap the walk
// continues from the end of the region down to the slot after the newest
// record.
func (l *Log) Records() ([]Record, error) {
	if l.empty {
		return nil, nil
	}

	var out []Record
	collect := func(a device.Addr) error {
		rec, err := l.readRecord(a)
		if err != nil {
			return err
		}
		if !rec.Blank() {
			out = append(out, rec)
		}
		return nil
	}

	r := l.region
	for a := l.cursor; ; a -= RecordSize {
		if err := collect(a); err != nil {
			return nil, err
		}
		if a == r.Start {
			break
		}
	}

	last := r.End + 1 - RecordSize
	wrapped := false
	for _, a := range []device.Addr{last - RecordSize, last} {
		blank, err := l.blankAt(a)
		if err != nil {
			return nil, err
		}
		wrapped = wrapped || !blank
	}
	if wrapped {
		for a := last; a > l.cursor; a -= RecordSize {
			if err := collect(a); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Len returns the number of records in the log.
func (l *Log) Len() (int, error) {
	recs, err := l.Records()
	return len(recs), err
}

func (l *Log) readRecord(a device.Addr) (Record, error) {
	buf := make([]byte, RecordSize)
	if err := l.ed.Read(buf, a); err != nil {
		return Record{}, err
	}
	var rec Record
	err := rec.UnmarshalBinary(buf)
	return rec, err
}

func (l *Log) blankAt(a device.Addr) (bool, error) {
	rec, err := l.readRecord(a)
	return rec.Blank(), err
}

func erased(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

// logDebug logs a debug message if a logger is configured.
func (l *Log) logDebug(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (l *Log) logInfo(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Info(msg, keysAndValues...)
	}
}
