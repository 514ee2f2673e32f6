package loader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-c8051flash/device"
	"github.com/moffa90/go-c8051flash/flash"
	"github.com/moffa90/go-c8051flash/flashutil"
	"github.com/moffa90/go-c8051flash/hexfile"
)

// Loader programs Flash images into a device.
type Loader struct {
	dev    flash.Device
	ed     *flashutil.Editor
	config Config
}

// New creates a Loader for dev with the given options.
//
// Example:
//
//	ld := loader.New(flash.New(bus, def),
//	    loader.WithProgressCallback(progressFunc),
//	    loader.WithEraseUnusedPages(true),
//	)
func New(dev flash.Device, opts ...Option) *Loader {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Loader{
		dev:    dev,
		ed:     flashutil.New(dev, flashutil.WithLogger(cfg.Logger)),
		config: cfg,
	}
}

// Program performs the complete programming sequence:
//  1. Validate that every image byte lies in user Flash
//  2. Program each page the image touches
//  3. Erase untouched user pages, if enabled
//  4. Read back and compare, if enabled
//
// A page the image covers completely is erased and written. A partially
// covered page keeps the bytes the image does not define; each run of image
// bytes is applied with a page-preserving update.
//
// The operation can be cancelled via context between pages.
//
// Example:
//
//	img, _ := hexfile.LoadFile("logger.hex")
//	err := ld.Program(context.Background(), img)
func (l *Loader) Program(ctx context.Context, img *hexfile.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	def := l.dev.Definition()
	startTime := time.Now()
	pages := img.Pages(def)

	// Phase 1: Validate
	l.reportProgress(Progress{
		Phase:      PhaseValidating,
		TotalPages: len(pages),
	})

	for _, s := range img.Segments {
		if !def.InUser(s.Addr, uint32(len(s.Data))) {
			return &PageOutOfRangeError{Addr: s.Addr, Len: len(s.Data), Limit: def.UserLimit()}
		}
	}

	l.logDebug("image validated",
		"device", def.Name,
		"segments", len(img.Segments),
		"pages", len(pages),
		"bytes", img.Size(),
	)

	// Phase 2: Program pages
	bytesWritten := 0
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		n, err := l.programPage(page)
		if err != nil {
			return fmt.Errorf("program page 0x%04X: %w", uint32(page.Start), err)
		}
		bytesWritten += n

		// Report progress (2% to 80%)
		l.reportProgress(Progress{
			Phase:        PhaseProgramming,
			CurrentPage:  i + 1,
			TotalPages:   len(pages),
			Percentage:   2 + float64(i+1)/float64(len(pages))*78,
			BytesWritten: bytesWritten,
			ElapsedTime:  time.Since(startTime),
		})
	}

	// Phase 3: Erase untouched pages
	if l.config.EraseUnusedPages {
		if err := l.eraseUnused(ctx, pages); err != nil {
			return err
		}
		l.reportProgress(Progress{
			Phase:        PhaseErasing,
			CurrentPage:  len(pages),
			TotalPages:   len(pages),
			Percentage:   85,
			BytesWritten: bytesWritten,
			ElapsedTime:  time.Since(startTime),
		})
	}

	// Phase 4: Verify
	if l.config.VerifyAfterProgram {
		for i, page := range pages {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("cancelled: %w", err)
			}
			if err := l.verifyPage(page); err != nil {
				return fmt.Errorf("verify page 0x%04X: %w", uint32(page.Start), err)
			}

			// Report progress (85% to 99%)
			l.reportProgress(Progress{
				Phase:        PhaseVerifying,
				CurrentPage:  i + 1,
				TotalPages:   len(pages),
				Percentage:   85 + float64(i+1)/float64(len(pages))*14,
				BytesWritten: bytesWritten,
				ElapsedTime:  time.Since(startTime),
			})
		}
	}

	// Complete
	l.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentPage:  len(pages),
		TotalPages:   len(pages),
		Percentage:   100,
		BytesWritten: bytesWritten,
		ElapsedTime:  time.Since(startTime),
	})

	l.logInfo("programming complete",
		"pages", len(pages),
		"bytes", bytesWritten,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// programPage writes one page of the image and returns the number of image
// bytes written.
func (l *Loader) programPage(page hexfile.Page) (int, error) {
	if page.Full() {
		if err := l.dev.PageErase(page.Start); err != nil {
			return 0, err
		}
		if err := l.ed.Write(page.Start, page.Data); err != nil {
			return 0, err
		}
		l.logDebug("page written", "page", fmt.Sprintf("0x%04X", uint32(page.Start)))
		return len(page.Data), nil
	}

	// one rewrite cycle clears every defined byte, then the runs are written
	if err := l.ed.ClearMask(page.Start, page.Mask); err != nil {
		return 0, err
	}
	n := 0
	for _, run := range page.Runs() {
		if err := l.ed.Write(run.Addr, run.Data); err != nil {
			return n, err
		}
		n += len(run.Data)
	}
	l.logDebug("page updated",
		"page", fmt.Sprintf("0x%04X", uint32(page.Start)),
		"bytes", n,
	)
	return n, nil
}

// eraseUnused erases every user page that is not in pages and not already
// erased.
func (l *Loader) eraseUnused(ctx context.Context, pages []hexfile.Page) error {
	def := l.dev.Definition()
	used := make(map[device.Addr]bool, len(pages))
	for _, p := range pages {
		used[p.Start] = true
	}

	buf := make([]byte, def.PageSize)
	erased := 0
	for a := device.Addr(0); a < def.UserLimit(); a += device.Addr(def.PageSize) {
		if used[a] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if err := l.ed.Read(buf, a); err != nil {
			return fmt.Errorf("read page 0x%04X: %w", uint32(a), err)
		}
		if isErased(buf) {
			continue
		}
		if err := l.dev.PageErase(a); err != nil {
			return fmt.Errorf("erase page 0x%04X: %w", uint32(a), err)
		}
		erased++
	}

	l.logDebug("unused pages erased", "pages", erased)
	return nil
}

// verifyPage reads back the bytes the image defines in page.
func (l *Loader) verifyPage(page hexfile.Page) error {
	for _, run := range page.Runs() {
		got := make([]byte, len(run.Data))
		if err := l.ed.Read(got, run.Addr); err != nil {
			return err
		}
		if bytes.Equal(got, run.Data) {
			continue
		}
		for i := range got {
			if got[i] != run.Data[i] {
				return &VerifyMismatchError{
					Addr:     run.Addr + device.Addr(i),
					Expected: run.Data[i],
					Actual:   got[i],
				}
			}
		}
	}
	return nil
}

func isErased(b []byte) bool {
	for _, v := range b {
		if v != 0xFF {
			return false
		}
	}
	return true
}

// reportProgress calls the progress callback if configured.
func (l *Loader) reportProgress(progress Progress) {
	if l.config.ProgressCallback != nil {
		l.config.ProgressCallback(progress)
	}
}

func (l *Loader) logDebug(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (l *Loader) logInfo(msg string, keysAndValues ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Info(msg, keysAndValues...)
	}
}
