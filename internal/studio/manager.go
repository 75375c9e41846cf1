package studio

import (
	"context"
	"errors"
	"strings"

	"github.com/pualine/Ellah-art-studio/internal/infra"
	"github.com/pualine/Ellah-art-studio/internal/providers/genai"
	"github.com/pualine/Ellah-art-studio/internal/providers/image"
)

// Manager drives session state transitions. The generator and example
// fetcher are injected so tests can run against fakes; there is no package
// level client.
type Manager struct {
	generator     image.Generator
	examples      ExampleFetcher
	defaultPrompt string
	logger        infra.Logger
}

func NewManager(generator image.Generator, examples ExampleFetcher, defaultPrompt string, logger infra.Logger) *Manager {
	if defaultPrompt == "" {
		defaultPrompt = infra.DefaultPromptText
	}
	return &Manager{
		generator:     generator,
		examples:      examples,
		defaultPrompt: defaultPrompt,
		logger:        logger,
	}
}

// NewSession creates an idle session seeded with the default prompt.
func (m *Manager) NewSession() *Session {
	return newSession(m.defaultPrompt)
}

// DefaultPrompt returns the prompt a cleared session resets to.
func (m *Manager) DefaultPrompt() string {
	return m.defaultPrompt
}

// SelectImage installs a new source image. Any prior result and error are
// cleared and an in-flight call is superseded, so a late completion cannot
// overwrite the fresh state.
func (m *Manager) SelectImage(s *Session, src image.SourceImage) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.supersedeLocked()
	s.source = &src
	s.state = State{Phase: PhaseIdle}
	return s.snapshotLocked()
}

// LoadExample fetches the fixed example image and installs it like a user
// upload. The session shows the uploading stage while the fetch is in
// flight and always settles back with loading cleared.
func (m *Manager) LoadExample(ctx context.Context, s *Session, locale string) Snapshot {
	s.mu.Lock()
	s.touchLocked()
	s.supersedeLocked()
	seq := s.seq
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = State{Phase: PhaseLoading, Loading: LoadUpload, Result: s.state.Result}
	s.mu.Unlock()

	src, err := m.examples.Fetch(callCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return s.snapshotLocked()
	}
	s.cancel = nil
	if err != nil {
		m.logger.Warn().Err(err).Str("session_id", s.id).Msg("studio: example image fetch failed")
		s.state = State{Phase: PhaseFailed, Result: s.state.Result, Message: message(locale, msgExampleFailed)}
		return s.snapshotLocked()
	}
	s.source = &src
	s.state = State{Phase: PhaseIdle}
	return s.snapshotLocked()
}

// SetPrompt stores the user's prompt text as typed, trimmed. Blanking the
// field is allowed; the generate precondition catches it.
func (m *Manager) SetPrompt(s *Session, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.prompt = strings.TrimSpace(prompt)
}

// Generate runs one generation attempt with the session's current prompt.
// Preconditions are checked before any remote call; a failed attempt leaves
// the prior result untouched. A newer action supersedes the call, and its
// late completion is discarded.
func (m *Manager) Generate(ctx context.Context, s *Session, locale, requestID string) Snapshot {
	s.mu.Lock()
	s.touchLocked()
	if s.source == nil {
		s.state = State{Phase: PhaseFailed, Result: s.state.Result, Message: message(locale, msgNoImage)}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	if strings.TrimSpace(s.prompt) == "" {
		s.state = State{Phase: PhaseFailed, Result: s.state.Result, Message: message(locale, msgNoPrompt)}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}

	s.supersedeLocked()
	seq := s.seq
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	req := image.GenerateRequest{
		Prompt:    s.prompt,
		Source:    *s.source,
		RequestID: requestID,
		Locale:    locale,
	}
	s.state = State{Phase: PhaseLoading, Loading: LoadGenerate, Result: s.state.Result}
	s.mu.Unlock()

	result, err := m.generator.Generate(callCtx, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return s.snapshotLocked()
	}
	s.cancel = nil
	if err != nil {
		m.logger.Warn().Err(err).Str("session_id", s.id).Str("request_id", requestID).Msg("studio: generation failed")
		s.state = State{Phase: PhaseFailed, Result: s.state.Result, Message: failureMessage(err, locale)}
		return s.snapshotLocked()
	}
	s.state = State{Phase: PhaseComplete, Result: result}
	return s.snapshotLocked()
}

// Clear resets the session: source, result and error are dropped and the
// prompt returns to the default string. An in-flight call is superseded.
func (m *Manager) Clear(s *Session) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.supersedeLocked()
	s.source = nil
	s.prompt = m.defaultPrompt
	s.state = State{Phase: PhaseIdle}
	return s.snapshotLocked()
}

func failureMessage(err error, locale string) string {
	var refusal *genai.RefusalError
	if errors.As(err, &refusal) {
		return refusal.Error()
	}
	if errors.Is(err, genai.ErrNoImageData) {
		return message(locale, msgNoImageData)
	}
	return err.Error()
}
