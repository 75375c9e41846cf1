package studio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pualine/Ellah-art-studio/internal/providers/image"
)

// Session holds the orchestrator state for one browser: the selected source
// image, the prompt, the generated result and the lifecycle state. All
// mutation goes through Manager actions.
type Session struct {
	id        string
	createdAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	prompt   string
	source   *image.SourceImage
	state    State

	// cancel aborts the in-flight remote call, if any. seq fences stale
	// completions: an action bumps it, and a call finishing under an older
	// value must not touch the session.
	cancel context.CancelFunc
	seq    uint64
}

func newSession(defaultPrompt string) *Session {
	now := time.Now()
	return &Session{
		id:        uuid.NewString(),
		createdAt: now,
		lastSeen:  now,
		prompt:    defaultPrompt,
		state:     State{Phase: PhaseIdle},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot is the wire view of a session, shaped after the original page
// state: stage, loading flag, error and the two data URIs.
type Snapshot struct {
	SessionID  string `json:"session_id"`
	Stage      string `json:"stage"`
	IsLoading  bool   `json:"is_loading"`
	Error      string `json:"error,omitempty"`
	Prompt     string `json:"prompt"`
	SourceURI  string `json:"source_uri,omitempty"`
	SourceMIME string `json:"source_mime,omitempty"`
	ResultURI  string `json:"result_uri,omitempty"`
	ResultMIME string `json:"result_mime,omitempty"`
}

// Snapshot returns a consistent wire view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		Stage:     s.state.Stage(),
		IsLoading: s.state.IsLoading(),
		Error:     s.state.Error(),
		Prompt:    s.prompt,
	}
	if s.source != nil {
		snap.SourceURI = s.source.DataURI()
		snap.SourceMIME = s.source.MIME
	}
	if s.state.Result != nil {
		snap.ResultURI = s.state.Result.DataURI()
		snap.ResultMIME = s.state.Result.MIME
	}
	return snap
}

// Result returns the generated image, or nil when none exists.
func (s *Session) Result() *image.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Result
}

// Source returns the selected source image, or nil when none exists.
func (s *Session) Source() *image.SourceImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Prompt returns the current prompt text.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

func (s *Session) touchLocked() {
	s.lastSeen = time.Now()
}

// supersedeLocked cancels any in-flight call and fences its completion.
func (s *Session) supersedeLocked() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
