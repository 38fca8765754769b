package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
)

func TestSplitSegment(t *testing.T) {
	tests := []struct {
		in, head, tail string
	}{
		{"Ciao. ", "Ciao. ", ""},
		{"Ciao. Come", "Ciao. ", "Come"},
		{"Uno. Due! Tre? Quattro", "Uno. Due! Tre? ", "Quattro"},
		{"riga uno\nriga due", "riga uno\n", "riga due"},
		{"Fine.\nAncora. altro", "Fine.\nAncora. ", "altro"},
		{"3.14 e 2.71", "", "3.14 e 2.71"},
		{"Davvero?", "", "Davvero?"},
		{"", "", ""},
	}
	for _, tt := range tests {
		head, tail := SplitSegment(tt.in)
		if head != tt.head || tail != tt.tail {
			t.Errorf("SplitSegment(%q) = (%q, %q), want (%q, %q)", tt.in, head, tail, tt.head, tt.tail)
		}
	}
}

// feed applies Started, every chunk and TranscriptEnded, returning the texts
// of all dispatched jobs in dispatch order.
func feed(s *State, translate bool, chunks []string) []string {
	var dispatched []string
	collect := func(ds []Dispatch) {
		for _, d := range ds {
			dispatched = append(dispatched, d.Text)
		}
	}
	collect(s.Apply(Started{Translate: translate}))
	for _, c := range chunks {
		collect(s.Apply(ChunkArrived{Text: c}))
	}
	collect(s.Apply(TranscriptEnded{}))
	return dispatched
}

func chunked(text string, size int) []string {
	var out []string
	for len(text) > 0 {
		n := min(size, len(text))
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

func TestApply_ChunkingInvariance(t *testing.T) {
	text := "[00:00:01]Buongiorno a tutti. Oggi parliamo di entropia!\n[00:00:09]Chi sa cos'è? Nessuno. Bene"
	for size := 1; size <= len(text); size++ {
		s := NewState(Strict, "it")
		jobs := feed(s, true, chunked(text, size))

		if got := s.Transcript(); got != text {
			t.Fatalf("size %d: transcript = %q", size, got)
		}
		if joined := strings.Join(jobs, ""); joined != text {
			t.Fatalf("size %d: dispatched segments %q do not cover the transcript", size, jobs)
		}
		for _, j := range jobs {
			if isBlank(j) {
				t.Fatalf("size %d: blank job dispatched", size)
			}
		}
	}
}

func TestApply_OneTerminator(t *testing.T) {
	s := NewState(Strict, "en")
	jobs := feed(s, true, []string{"Oggi parliamo", " di entropia. Poi", " di energia"})
	want := []string{"Oggi parliamo di entropia. ", "Poi di energia"}
	if strings.Join(jobs, "|") != strings.Join(want, "|") {
		t.Errorf("jobs = %q, want %q", jobs, want)
	}

	// blank remainder is not flushed
	s = NewState(Strict, "en")
	jobs = feed(s, true, []string{"Una sola frase. ", "  "})
	if len(jobs) != 1 || jobs[0] != "Una sola frase. " {
		t.Errorf("jobs = %q, want only the first sentence", jobs)
	}
}

func TestApply_NoTerminators(t *testing.T) {
	s := NewState(Strict, "en")
	jobs := feed(s, true, []string{"una lezione ", "senza punteggiatura ", "alcuna"})
	if len(jobs) != 1 || jobs[0] != "una lezione senza punteggiatura alcuna" {
		t.Errorf("jobs = %q, want one job with the whole transcript", jobs)
	}
}

func TestApply_BlankNeverDispatched(t *testing.T) {
	tests := [][]string{
		{"   "},
		{"\n", "\n", " "},
		{" . ", "\n"},
		{},
	}
	for _, chunks := range tests {
		s := NewState(Strict, "en")
		for _, j := range feed(s, true, chunks) {
			if isBlank(j) {
				t.Errorf("chunks %q: blank job %q dispatched", chunks, j)
			}
		}
	}

	s := NewState(Strict, "en")
	if jobs := feed(s, true, []string{"  ", "\n", "  "}); len(jobs) != 0 {
		t.Errorf("whitespace transcript dispatched %q", jobs)
	}
	if s.Phase() != PhaseResults {
		t.Errorf("phase = %s, want results", s.Phase())
	}
}

func TestApply_CiaoScenario(t *testing.T) {
	s := NewState(Strict, "it")
	jobs := feed(s, true, []string{"Ciao. ", "Come stai?"})
	if len(jobs) != 2 || jobs[0] != "Ciao. " || jobs[1] != "Come stai?" {
		t.Errorf("jobs = %q, want [\"Ciao. \" \"Come stai?\"]", jobs)
	}
	if s.Phase() != PhaseTranslating {
		t.Errorf("phase = %s, want translating while jobs run", s.Phase())
	}
}

func TestApply_PassThrough(t *testing.T) {
	s := NewState(Strict, "it")
	jobs := feed(s, false, []string{"Ciao. ", "Come stai?"})
	if len(jobs) != 0 {
		t.Errorf("pass-through dispatched %q", jobs)
	}
	if s.Transcript() != "Ciao. Come stai?" || s.Phase() != PhaseResults || !s.Done() {
		t.Errorf("transcript = %q, phase = %s", s.Transcript(), s.Phase())
	}
}

func TestApply_FailureIsolation(t *testing.T) {
	s := NewState(Strict, "it")
	jobs := feed(s, true, []string{"Uno. Due. ", "Tre."})
	if len(jobs) != 2 {
		t.Fatalf("jobs = %q", jobs)
	}

	s = NewState(Strict, "it")
	s.Apply(Started{Translate: true})
	var ds []Dispatch
	for _, c := range []string{"Uno. ", "Due. ", "Tre. ", "Quattro"} {
		ds = append(ds, s.Apply(ChunkArrived{Text: c})...)
	}
	ds = append(ds, s.Apply(TranscriptEnded{})...)
	if len(ds) != 4 {
		t.Fatalf("dispatched %d jobs, want 4", len(ds))
	}

	s.Apply(JobChunk{Seq: 0, Text: "One. "})
	s.Apply(JobCompleted{Seq: 0})
	s.Apply(JobFailed{Seq: 1, Err: apierr.New(apierr.Quota, apierr.OpTranslate, errors.New("429"))})
	s.Apply(JobChunk{Seq: 2, Text: "Three. "})
	s.Apply(JobCompleted{Seq: 2})

	if s.Warning() != apierr.Text(apierr.MsgPartialTranslation, "it") {
		t.Errorf("warning = %q", s.Warning())
	}

	s.Apply(JobFailed{Seq: 3, Err: errors.New("boom")})
	wantWarning := apierr.Text(apierr.MsgPartialTranslation, "it") + apierr.Text(apierr.MsgPartialTranslationSuffix, "it")
	if s.Warning() != wantWarning {
		t.Errorf("warning = %q, want %q", s.Warning(), wantWarning)
	}

	if s.Translation() != "One. Three. " {
		t.Errorf("translation = %q", s.Translation())
	}
	if s.Transcript() != "Uno. Due. Tre. Quattro" {
		t.Errorf("transcript changed: %q", s.Transcript())
	}
	if s.Phase() != PhaseResults || s.Err() != nil {
		t.Errorf("phase = %s, err = %v; job failures must not fail the session", s.Phase(), s.Err())
	}
}

func TestApply_Ordering(t *testing.T) {
	tests := []struct {
		ordering Ordering
		want     string
	}{
		{Strict, "A1 A2 B1 B2 C1 "},
		{Arrival, "B1 A1 C1 B2 A2 "},
	}

	for _, tt := range tests {
		t.Run(tt.ordering.String(), func(t *testing.T) {
			s := NewState(tt.ordering, "en")
			s.Apply(Started{Translate: true})
			for _, c := range []string{"a. ", "b. ", "c"} {
				s.Apply(ChunkArrived{Text: c})
			}
			s.Apply(TranscriptEnded{})

			steps := []Event{
				JobChunk{Seq: 1, Text: "B1 "},
				JobChunk{Seq: 0, Text: "A1 "},
				JobChunk{Seq: 2, Text: "C1 "},
				JobChunk{Seq: 1, Text: "B2 "},
				JobCompleted{Seq: 1},
				JobCompleted{Seq: 2},
				JobChunk{Seq: 0, Text: "A2 "},
				JobCompleted{Seq: 0},
			}
			for _, ev := range steps {
				s.Apply(ev)
			}
			if s.Translation() != tt.want {
				t.Errorf("translation = %q, want %q", s.Translation(), tt.want)
			}
			if s.Phase() != PhaseResults {
				t.Errorf("phase = %s, want results", s.Phase())
			}
		})
	}
}

func TestApply_StrictStreamsHeadLive(t *testing.T) {
	s := NewState(Strict, "en")
	s.Apply(Started{Translate: true})
	s.Apply(ChunkArrived{Text: "a. "})
	s.Apply(ChunkArrived{Text: "b. "})

	s.Apply(JobChunk{Seq: 0, Text: "A1 "})
	s.Apply(JobChunk{Seq: 1, Text: "B1 "})
	if s.Translation() != "A1 " {
		t.Fatalf("translation = %q, head job should stream live", s.Translation())
	}
	s.Apply(JobCompleted{Seq: 0})
	if s.Translation() != "A1 B1 " {
		t.Fatalf("translation = %q, held output should flush", s.Translation())
	}
	s.Apply(JobChunk{Seq: 1, Text: "B2 "})
	if s.Translation() != "A1 B1 B2 " {
		t.Fatalf("translation = %q, promoted job should stream live", s.Translation())
	}
}

func TestApply_TranscriptFailure(t *testing.T) {
	s := NewState(Strict, "en")
	s.Apply(Started{Translate: true})
	ds := s.Apply(ChunkArrived{Text: "Ciao. Come"})
	if len(ds) != 1 {
		t.Fatalf("dispatched %d jobs", len(ds))
	}

	failure := apierr.New(apierr.Transport, apierr.OpTranscribe, errors.New("connection reset"))
	if ds := s.Apply(TranscriptFailed{Err: failure}); len(ds) != 0 {
		t.Errorf("failure flushed the pending segment: %v", ds)
	}
	if s.Phase() != PhaseError || s.Done() {
		t.Fatalf("phase = %s, done = %v", s.Phase(), s.Done())
	}

	snap := s.Snapshot()
	if snap.Terminal() {
		t.Error("snapshot is terminal while a job is in flight")
	}
	if snap.ErrorKind != "transport" || snap.Error == "" {
		t.Errorf("snapshot error = %q (%s)", snap.Error, snap.ErrorKind)
	}

	// the in-flight job still lands
	s.Apply(JobChunk{Seq: 0, Text: "Hi. "})
	s.Apply(JobCompleted{Seq: 0})
	if !s.Done() || s.Translation() != "Hi. " || s.Phase() != PhaseError {
		t.Errorf("done = %v, translation = %q, phase = %s", s.Done(), s.Translation(), s.Phase())
	}
	if !s.Snapshot().Terminal() {
		t.Error("snapshot should be terminal once jobs settle")
	}
}

func TestApply_StartedResets(t *testing.T) {
	s := NewState(Strict, "en")
	feed(s, true, []string{"Vecchia sessione. "})
	s.Apply(JobFailed{Seq: 0, Err: errors.New("x")})

	s.Apply(Started{Translate: false})
	snap := s.Snapshot()
	if snap.Transcript != "" || snap.Translation != "" || snap.Warning != "" || snap.Jobs != 0 {
		t.Errorf("state not reset: %+v", snap)
	}
	if snap.Phase != PhaseTranscribing {
		t.Errorf("phase = %s", snap.Phase)
	}
}

func TestApply_IgnoresStrayEvents(t *testing.T) {
	s := NewState(Strict, "en")
	s.Apply(ChunkArrived{Text: "prima di Started"})
	if s.Transcript() != "" {
		t.Error("chunk accepted before Started")
	}
	s.Apply(Started{Translate: true})
	s.Apply(JobChunk{Seq: 7, Text: "unknown job"})
	s.Apply(JobCompleted{Seq: 7})
	if s.Translation() != "" {
		t.Errorf("translation = %q", s.Translation())
	}
}

func TestSnapshot_Status(t *testing.T) {
	s := NewState(Strict, "it")
	s.Apply(Started{Translate: true})
	if got := s.Snapshot().Status; got != apierr.Text(apierr.MsgStatusAnalysing, "it") {
		t.Errorf("status = %q", got)
	}
	s.Apply(ChunkArrived{Text: "Ciao. "})
	if got := s.Snapshot().Status; got != apierr.Text(apierr.MsgStatusListening, "it") {
		t.Errorf("status = %q", got)
	}
	s.Apply(TranscriptEnded{})
	if got := s.Snapshot().Status; got != apierr.Text(apierr.MsgStatusTranslating, "it") {
		t.Errorf("status = %q", got)
	}
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in      string
		want    Ordering
		wantErr bool
	}{
		{"", Strict, false},
		{"strict", Strict, false},
		{"Arrival", Arrival, false},
		{"fifo", Strict, true},
	}
	for _, tt := range tests {
		got, err := ParseOrdering(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOrdering(%q) = %v, %v", tt.in, got, err)
		}
	}
}
