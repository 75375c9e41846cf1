package studio

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pualine/Ellah-art-studio/internal/infra"
	"github.com/pualine/Ellah-art-studio/internal/providers/genai"
	"github.com/pualine/Ellah-art-studio/internal/providers/image"
)

type stubGenerator struct {
	mu      sync.Mutex
	result  *image.Result
	err     error
	calls   int
	lastReq image.GenerateRequest
	block   chan struct{}
}

func (s *stubGenerator) Generate(ctx context.Context, req image.GenerateRequest) (*image.Result, error) {
	s.mu.Lock()
	s.calls++
	s.lastReq = req
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubExamples struct {
	src   image.SourceImage
	err   error
	calls int
}

func (s *stubExamples) Fetch(ctx context.Context) (image.SourceImage, error) {
	s.calls++
	if s.err != nil {
		return image.SourceImage{}, s.err
	}
	return s.src, nil
}

func testLogger() infra.Logger {
	return zerolog.New(io.Discard)
}

func testSource() image.SourceImage {
	return image.SourceImage{Data: []byte("source"), MIME: "image/jpeg", Filename: "photo.jpg"}
}

func newTestManager(gen image.Generator, examples ExampleFetcher) *Manager {
	return NewManager(gen, examples, "default prompt", testLogger())
}

func TestGenerateWithoutImage(t *testing.T) {
	gen := &stubGenerator{}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()

	snap := m.Generate(context.Background(), sess, "en", "req-1")
	if snap.Stage != "idle" {
		t.Fatalf("stage = %q, want idle", snap.Stage)
	}
	if snap.IsLoading {
		t.Fatalf("is_loading should be false")
	}
	if snap.Error != "Please upload an image first." {
		t.Fatalf("error = %q", snap.Error)
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be invoked without an image")
	}
}

func TestGenerateWithoutPrompt(t *testing.T) {
	gen := &stubGenerator{}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())
	m.SetPrompt(sess, "   ")

	snap := m.Generate(context.Background(), sess, "en", "req-1")
	if snap.Stage != "idle" || snap.Error != "Please enter a prompt." {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if gen.calls != 0 {
		t.Fatalf("generator should not be invoked without a prompt")
	}
}

func TestGenerateSuccess(t *testing.T) {
	gen := &stubGenerator{result: &image.Result{Data: []byte("AAAA"), MIME: "image/png"}}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())
	m.SetPrompt(sess, "make it watercolor")

	snap := m.Generate(context.Background(), sess, "en", "req-1")
	if snap.Stage != "complete" {
		t.Fatalf("stage = %q, want complete", snap.Stage)
	}
	if snap.Error != "" || snap.IsLoading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ResultURI != "data:image/png;base64,QUFBQQ==" {
		t.Fatalf("result uri = %q", snap.ResultURI)
	}
	if gen.lastReq.Prompt != "make it watercolor" {
		t.Fatalf("prompt = %q", gen.lastReq.Prompt)
	}
	if gen.lastReq.RequestID != "req-1" {
		t.Fatalf("request id = %q", gen.lastReq.RequestID)
	}
}

func TestGenerateFailureKeepsPriorResult(t *testing.T) {
	gen := &stubGenerator{result: &image.Result{Data: []byte("AAAA"), MIME: "image/png"}}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())

	if snap := m.Generate(context.Background(), sess, "en", "req-1"); snap.Stage != "complete" {
		t.Fatalf("setup generate failed: %+v", snap)
	}

	gen.err = errors.New("service unavailable")
	snap := m.Generate(context.Background(), sess, "en", "req-2")
	if snap.Stage != "idle" || snap.IsLoading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Error != "service unavailable" {
		t.Fatalf("error = %q", snap.Error)
	}
	if snap.ResultURI == "" {
		t.Fatalf("prior result should survive a failed attempt")
	}
}

func TestGenerateFailureWithoutPriorResult(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())

	snap := m.Generate(context.Background(), sess, "en", "req-1")
	if snap.Stage != "idle" || snap.Error != "boom" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ResultURI != "" {
		t.Fatalf("result should stay empty when none existed")
	}
}

func TestGenerateSurfacesRefusal(t *testing.T) {
	gen := &stubGenerator{err: &genai.RefusalError{Text: "Sorry, cannot comply"}}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())

	snap := m.Generate(context.Background(), sess, "en", "req-1")
	if !strings.Contains(snap.Error, "Sorry, cannot comply") {
		t.Fatalf("error = %q", snap.Error)
	}
}

func TestGenerateNoImageDataIsLocalized(t *testing.T) {
	gen := &stubGenerator{err: genai.ErrNoImageData}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())

	snap := m.Generate(context.Background(), sess, "id", "req-1")
	if snap.Error != "Tidak ada data gambar dari model." {
		t.Fatalf("error = %q", snap.Error)
	}
}

func TestClearResetsEverything(t *testing.T) {
	gen := &stubGenerator{result: &image.Result{Data: []byte("AAAA"), MIME: "image/png"}}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())
	m.SetPrompt(sess, "custom prompt")
	if snap := m.Generate(context.Background(), sess, "en", "req-1"); snap.Stage != "complete" {
		t.Fatalf("setup generate failed: %+v", snap)
	}

	snap := m.Clear(sess)
	if snap.Stage != "idle" || snap.Error != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Prompt != "default prompt" {
		t.Fatalf("prompt = %q, want default", snap.Prompt)
	}
	if snap.SourceURI != "" || snap.ResultURI != "" {
		t.Fatalf("source and result should be cleared")
	}
}

func TestSelectImageClearsResultAndError(t *testing.T) {
	gen := &stubGenerator{result: &image.Result{Data: []byte("AAAA"), MIME: "image/png"}}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())
	if snap := m.Generate(context.Background(), sess, "en", "req-1"); snap.Stage != "complete" {
		t.Fatalf("setup generate failed: %+v", snap)
	}

	snap := m.SelectImage(sess, image.SourceImage{Data: []byte("other"), MIME: "image/png"})
	if snap.Stage != "idle" || snap.Error != "" || snap.ResultURI != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.SourceURI == "" {
		t.Fatalf("new source should be installed")
	}
}

func TestClearSupersedesInFlightGeneration(t *testing.T) {
	gen := &stubGenerator{
		result: &image.Result{Data: []byte("AAAA"), MIME: "image/png"},
		block:  make(chan struct{}),
	}
	m := newTestManager(gen, &stubExamples{})
	sess := m.NewSession()
	m.SelectImage(sess, testSource())

	done := make(chan Snapshot, 1)
	go func() {
		done <- m.Generate(context.Background(), sess, "en", "req-1")
	}()

	waitForStage(t, sess, "processing")
	m.Clear(sess)
	close(gen.block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("generate did not return")
	}

	snap := sess.Snapshot()
	if snap.Stage != "idle" || snap.Error != "" || snap.ResultURI != "" {
		t.Fatalf("stale completion leaked into state: %+v", snap)
	}
	if snap.Prompt != "default prompt" {
		t.Fatalf("prompt = %q, want default", snap.Prompt)
	}
}

func TestLoadExampleInstallsSource(t *testing.T) {
	examples := &stubExamples{src: testSource()}
	m := newTestManager(&stubGenerator{}, examples)
	sess := m.NewSession()

	snap := m.LoadExample(context.Background(), sess, "en")
	if snap.Stage != "idle" || snap.Error != "" || snap.IsLoading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.SourceURI == "" {
		t.Fatalf("example image should be installed as source")
	}
	if examples.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", examples.calls)
	}
}

func TestLoadExampleFailureSettlesWithError(t *testing.T) {
	examples := &stubExamples{err: errors.New("network down")}
	m := newTestManager(&stubGenerator{}, examples)
	sess := m.NewSession()

	snap := m.LoadExample(context.Background(), sess, "en")
	if snap.Stage != "idle" || snap.IsLoading {
		t.Fatalf("loading must settle: %+v", snap)
	}
	if snap.Error != "Could not load the example image." {
		t.Fatalf("error = %q", snap.Error)
	}
}

func waitForStage(t *testing.T, sess *Session, stage string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Snapshot().Stage == stage {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached stage %q", stage)
}
