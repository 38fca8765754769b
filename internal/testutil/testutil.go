package testutil

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/stream"
	"github.com/leonardotrapani/memoscribe/internal/transcriber"
)

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return configPath
}

// TestContext returns a context with a timeout suitable for tests
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Condition not met within %v", timeout)
}

// CaptureOutput captures log output during test execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fn()
	return buf.String()
}

// TestAudio returns 100ms of silence as a WAV source
func TestAudio() media.AudioSource {
	data, err := media.EncodeWAV(make([]byte, 3200), 16000, 1)
	if err != nil {
		panic(err)
	}
	return media.AudioSource{Data: data, MIMEType: "audio/wav", Name: "lesson.wav"}
}

// MockTranscriber replays a fixed list of chunks
type MockTranscriber struct {
	Chunks   []string
	Err      error // returned after the chunks
	StartErr error // returned by Transcribe itself
	Delay    time.Duration

	mu    sync.Mutex
	calls []transcriber.Options
}

func NewMockTranscriber(chunks ...string) *MockTranscriber {
	return &MockTranscriber{Chunks: chunks}
}

func (m *MockTranscriber) Transcribe(ctx context.Context, src media.AudioSource, opts transcriber.Options) (stream.ChunkStream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()

	if m.StartErr != nil {
		return nil, m.StartErr
	}
	chunks, failure, delay := m.Chunks, m.Err, m.Delay
	return stream.FromSeq(func(yield func(string, error) bool) {
		for _, c := range chunks {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				}
			}
			if !yield(c, nil) {
				return
			}
		}
		if failure != nil {
			yield("", failure)
		}
	}), nil
}

// Calls returns the options of every Transcribe call
func (m *MockTranscriber) Calls() []transcriber.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcriber.Options(nil), m.calls...)
}

// MockTranslator "translates" by upper-casing each segment and streaming it
// back word by word. Segments in Fail fail before producing output; segments
// in Gates stream their first word and then wait for the gate to close.
type MockTranslator struct {
	Fail  map[string]error         // segment text -> stream error
	Gates map[string]chan struct{} // segment text -> closed to let it finish

	mu       sync.Mutex
	requests []string
}

func NewMockTranslator() *MockTranslator {
	return &MockTranslator{
		Fail:  make(map[string]error),
		Gates: make(map[string]chan struct{}),
	}
}

// Translated is the output MockTranslator produces for text
func Translated(text string) string {
	return strings.ToUpper(text)
}

func (m *MockTranslator) Translate(ctx context.Context, text, targetLanguage string) (stream.ChunkStream, error) {
	m.mu.Lock()
	m.requests = append(m.requests, text)
	failure := m.Fail[text]
	gate := m.Gates[text]
	m.mu.Unlock()

	words := strings.SplitAfter(Translated(text), " ")
	return stream.FromSeq(func(yield func(string, error) bool) {
		if failure != nil {
			yield("", failure)
			return
		}
		// first word streams immediately, the rest waits on the gate
		if !yield(words[0], nil) {
			return
		}
		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
		for _, w := range words[1:] {
			if !yield(w, nil) {
				return
			}
		}
	}), nil
}

// Requests returns every segment submitted, in call order
func (m *MockTranslator) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// MockExpander returns a fixed document
type MockExpander struct {
	Doc *document.AcademicDocument
	Err error

	mu       sync.Mutex
	Received []string
	Language string
}

func NewMockExpander() *MockExpander {
	return &MockExpander{Doc: SampleDocument()}
}

func (m *MockExpander) Expand(ctx context.Context, transcript, language string) (*document.AcademicDocument, error) {
	m.mu.Lock()
	m.Received = append(m.Received, transcript)
	m.Language = language
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}

// SampleDocument returns a small valid lesson
func SampleDocument() *document.AcademicDocument {
	return &document.AcademicDocument{
		Title:        "Introduzione alla termodinamica",
		Introduction: "Questa lezione presenta i principi fondamentali della termodinamica.",
		Sections: []document.Section{
			{
				Heading: "Il primo principio",
				Content: []string{
					"L'energia interna di un sistema isolato si conserva.",
					"Il calore e il lavoro sono forme di trasferimento di energia.",
				},
			},
			{
				Heading: "Il secondo principio",
				Content: []string{"L'entropia di un sistema isolato non diminuisce mai."},
			},
		},
		Conclusion: "I due principi descrivono i limiti di ogni trasformazione energetica.",
	}
}
