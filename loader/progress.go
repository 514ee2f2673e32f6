package loader

import "time"

// Programming phases reported in Progress.Phase.
const (
	PhaseValidating  = "validating"
	PhaseProgramming = "programming"
	PhaseErasing     = "erasing"
	PhaseVerifying   = "verifying"
	PhaseComplete    = "complete"
)

// Progress contains information about the programming progress.
// Passed to ProgressCallback during programming operations.
type Progress struct {
	// Phase describes the current operation phase:
	//   "validating"  - Checking the image against the device
	//   "programming" - Programming Flash pages
	//   "erasing"     - Erasing user pages the image does not cover
	//   "verifying"   - Reading back and comparing
	//   "complete"    - Operation completed successfully
	Phase string

	// CurrentPage is the number of pages handled in this phase
	CurrentPage int

	// TotalPages is the number of pages the image touches
	TotalPages int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the total number of image bytes written so far
	BytesWritten int

	// ElapsedTime is the time elapsed since programming started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during programming to report progress.
// Implementations should return quickly to avoid blocking the programming operation.
//
// Example:
//
//	ld := loader.New(dev,
//	    loader.WithProgressCallback(func(p loader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)
