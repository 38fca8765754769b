package output

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/testutil"
)

func TestNewSession(t *testing.T) {
	base := t.TempDir()
	started := time.Date(2026, 3, 14, 9, 30, 5, 0, time.UTC)

	s, err := NewSession(base, started, "3f1c2a9e-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if want := filepath.Join(base, "20260314-093005-3f1c2a9e"); s.Dir != want {
		t.Errorf("Dir = %q, want %q", s.Dir, want)
	}
	if info, err := os.Stat(s.Dir); err != nil || !info.IsDir() {
		t.Errorf("session directory not created: %v", err)
	}
}

func TestSession_WriteTexts(t *testing.T) {
	s := &Session{Dir: t.TempDir()}

	path, err := s.WriteTranscript("[00:00:01]Ciao a tutti.")
	if err != nil {
		t.Fatalf("WriteTranscript() error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "[00:00:01]Ciao a tutti." {
		t.Errorf("transcript = %q", data)
	}

	path, err = s.WriteTranslation("Hello everyone.")
	if err != nil {
		t.Fatalf("WriteTranslation() error = %v", err)
	}
	if filepath.Base(path) != TranslationFile {
		t.Errorf("path = %q", path)
	}

	entries, _ := os.ReadDir(s.Dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file %q left behind", e.Name())
		}
	}
}

func TestSession_WriteDocument(t *testing.T) {
	s := &Session{Dir: t.TempDir()}
	doc := testutil.SampleDocument()

	path, err := s.WriteDocument(doc, "it")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("PDF not written: %v", err)
	}

	back, err := ReadDocument(s.Path(DocumentFile))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if back.Title != doc.Title || len(back.Sections) != len(doc.Sections) {
		t.Errorf("document = %+v", back)
	}
}

func TestWritePDF_InvalidLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.pdf")
	err := WritePDF(path, &document.AcademicDocument{Title: "x"}, "en")
	if apierr.KindOf(err) != apierr.Format {
		t.Fatalf("err = %v, want format error", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("a failed render must not leave a file")
	}
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.txt")
	if err := WriteFileAtomic(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	info, _ := os.Stat(path)
	if string(data) != "new" || info.Mode().Perm() != 0600 {
		t.Errorf("data = %q, mode = %v", data, info.Mode())
	}
}

func TestOpen_NoViewer(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	path := filepath.Join(t.TempDir(), "lesson.pdf")
	os.WriteFile(path, []byte("%PDF-1.3"), 0644)

	err := Open(context.Background(), path, time.Second)
	if apierr.KindOf(err) != apierr.Display {
		t.Errorf("err = %v, want display error", err)
	}
	if msg := apierr.Message(err, "it"); !strings.Contains(msg, "visualizzatore") {
		t.Errorf("message = %q", msg)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), time.Second)
	if apierr.KindOf(err) != apierr.Display {
		t.Errorf("err = %v, want display error", err)
	}
}

func TestOpen_WithViewer(t *testing.T) {
	bin := t.TempDir()
	marker := filepath.Join(t.TempDir(), "opened")
	script := "#!/bin/sh\necho \"$1\" > " + marker + "\n"
	if err := os.WriteFile(filepath.Join(bin, "xdg-open"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)

	path := filepath.Join(t.TempDir(), "lesson.pdf")
	os.WriteFile(path, []byte("%PDF-1.3"), 0644)

	if err := Open(context.Background(), path, 5*time.Second); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := os.ReadFile(marker)
	if strings.TrimSpace(string(data)) != path {
		t.Errorf("viewer received %q", data)
	}
}

func TestCopyToClipboard(t *testing.T) {
	if err := CopyToClipboard(context.Background(), "", time.Second); err == nil {
		t.Error("expected error for empty text")
	}

	t.Setenv("PATH", t.TempDir())
	if err := CopyToClipboard(context.Background(), "testo", time.Second); err == nil {
		t.Error("expected error without wl-copy")
	}
}
