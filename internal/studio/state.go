package studio

import "github.com/pualine/Ellah-art-studio/internal/providers/image"

// Phase is the tagged lifecycle state of a session. It replaces the
// stage+isLoading+error triple of the original page logic with a single
// variant; the legacy four-stage view is derived for the wire format.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseComplete
	PhaseFailed
)

// LoadKind distinguishes the two suspension points of a session.
type LoadKind string

const (
	LoadUpload   LoadKind = "upload"
	LoadGenerate LoadKind = "generate"
)

// State is the orchestrator state of one session. Result survives failed
// attempts: a rejected generation leaves the previous result untouched.
type State struct {
	Phase   Phase
	Loading LoadKind
	Result  *image.Result
	Message string
}

// Stage renders the legacy four-valued lifecycle marker. Failed states map
// to idle, matching the original contract where an error always returned the
// page to its idle view.
func (s State) Stage() string {
	switch s.Phase {
	case PhaseLoading:
		if s.Loading == LoadGenerate {
			return "processing"
		}
		return "uploading"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// IsLoading reports whether a remote call is in flight.
func (s State) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// Error returns the failure message, empty unless the state is Failed.
func (s State) Error() string {
	if s.Phase == PhaseFailed {
		return s.Message
	}
	return ""
}
