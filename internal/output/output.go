package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/pdf"
)

const (
	TranscriptFile  = "transcript.txt"
	TranslationFile = "translation.txt"
	DocumentFile    = "lesson.json"
	PDFFile         = "lesson.pdf"
)

type Config struct {
	Dir              string
	OpenPDF          bool
	Clipboard        bool          // copy the transcript once a session ends
	OpenTimeout      time.Duration // for xdg-open
	ClipboardTimeout time.Duration // for wl-copy
}

func DefaultConfig() Config {
	return Config{
		OpenPDF:          true,
		OpenTimeout:      10 * time.Second,
		ClipboardTimeout: 3 * time.Second,
	}
}

// Session is the directory holding the artifacts of one session.
type Session struct {
	Dir string
}

// NewSession creates base/<timestamp>-<id>.
func NewSession(base string, started time.Time, id string) (*Session, error) {
	if len(id) > 8 {
		id = id[:8]
	}
	dir := filepath.Join(base, started.Format("20060102-150405")+"-"+id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Session{Dir: dir}, nil
}

func (s *Session) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *Session) WriteTranscript(text string) (string, error) {
	path := s.Path(TranscriptFile)
	return path, WriteFileAtomic(path, []byte(text), 0644)
}

func (s *Session) WriteTranslation(text string) (string, error) {
	path := s.Path(TranslationFile)
	return path, WriteFileAtomic(path, []byte(text), 0644)
}

// WriteDocument stores doc both as JSON and as the rendered PDF, and
// returns the PDF path.
func (s *Session) WriteDocument(doc *document.AcademicDocument, lang string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	if err := WriteFileAtomic(s.Path(DocumentFile), data, 0644); err != nil {
		return "", err
	}
	path := s.Path(PDFFile)
	return path, WritePDF(path, doc, lang)
}

// WritePDF renders doc in memory and writes it to path. A failed render
// leaves no file behind.
func WritePDF(path string, doc *document.AcademicDocument, lang string) error {
	var buf bytes.Buffer
	if err := pdf.Render(doc, &buf, pdf.Options{Language: lang}); err != nil {
		return err
	}
	if err := WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	log.Printf("Output: wrote %s (%d bytes)", path, buf.Len())
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// ReadDocument loads a document written by WriteDocument.
func ReadDocument(path string) (*document.AcademicDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Open hands path to the desktop's default viewer.
func Open(ctx context.Context, path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err != nil {
		return apierr.New(apierr.Display, apierr.OpOpen, err)
	}
	if err := run(ctx, timeout, nil, "xdg-open", path); err != nil {
		return apierr.New(apierr.Display, apierr.OpOpen, err)
	}
	return nil
}
