package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leonardotrapani/memoscribe/internal/pipeline"
)

func TestLiveModel_Snapshots(t *testing.T) {
	m := NewLiveModel("lesson.wav", true, nil)

	next, _ := m.Update(SnapshotMsg(pipeline.Snapshot{
		Phase:       pipeline.PhaseTranslating,
		Status:      "Consulting the dictionary...",
		Transcript:  "Buongiorno a tutti.",
		Translation: "Good morning everyone.",
		Translate:   true,
		Running:     1,
	}))
	view := next.View()
	for _, want := range []string{"lesson.wav", "Consulting the dictionary...", "Buongiorno a tutti.", "Good morning everyone.", "q to cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLiveModel_Done(t *testing.T) {
	m := NewLiveModel("x", false, nil)
	next, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	if cmd == nil {
		t.Fatal("DoneMsg should quit")
	}
	lm := next.(LiveModel)
	if !lm.done || lm.err == nil || lm.Cancelled() {
		t.Errorf("model = %+v", lm)
	}
	if strings.Contains(lm.View(), "q to cancel") {
		t.Error("finished view still offers cancel")
	}
}

func TestLiveModel_QuitCancels(t *testing.T) {
	called := false
	m := NewLiveModel("x", false, func() { called = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !called || !next.(LiveModel).Cancelled() {
		t.Errorf("quit: cmd=%v called=%v", cmd != nil, called)
	}
}

func TestRenderSnapshot(t *testing.T) {
	s := pipeline.Snapshot{
		Transcript: "Uno due tre.",
		Warning:    "Translation partially available",
		Error:      "Network error.",
	}
	out := RenderSnapshot(s, 60, 0)
	if strings.Contains(out, "Translation\n") {
		t.Error("translation panel shown without translation")
	}
	for _, want := range []string{"Uno due tre.", "Translation partially available", "Network error."} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestTail(t *testing.T) {
	text := "a\nb\nc\nd"
	if got := tail(text, 2); got != "c\nd" {
		t.Errorf("tail(2) = %q", got)
	}
	if got := tail(text, 0); got != text {
		t.Errorf("tail(0) = %q", got)
	}
	if got := tail(text, 10); got != text {
		t.Errorf("tail(10) = %q", got)
	}
}

func TestWrap(t *testing.T) {
	for _, line := range strings.Split(wrap(strings.Repeat("parola ", 30), 20), "\n") {
		if len(strings.TrimRight(line, " ")) > 20 {
			t.Errorf("line %q wider than 20", line)
		}
	}
}
