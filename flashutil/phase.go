package flashutil

// Phase is a step of a page rewrite.
type Phase int

const (
	// PhaseStage erases the scratch page and copies the bytes to keep into it
	PhaseStage Phase = iota

	// PhaseErase erases the target page
	PhaseErase

	// PhaseRestore copies the scratch page back over the target page
	PhaseRestore
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStage:
		return "stage-to-scratch"
	case PhaseErase:
		return "erase-target"
	case PhaseRestore:
		return "restore-from-scratch"
	default:
		return "unknown"
	}
}
