package pipeline

import (
	"fmt"
	"log"
	"strings"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
)

type Phase string

const (
	PhaseSetup        Phase = "setup"
	PhaseTranscribing Phase = "transcribing"
	PhaseTranslating  Phase = "translating"
	PhaseResults      Phase = "results"
	PhaseError        Phase = "error"
)

// Ordering decides how translated chunks of concurrent jobs reach the
// translation buffer.
type Ordering int

const (
	// Strict concatenates job output in dispatch order. The earliest
	// unsettled job streams live, later jobs are held until it settles.
	Strict Ordering = iota
	// Arrival appends every chunk as soon as it arrives.
	Arrival
)

func (o Ordering) String() string {
	if o == Arrival {
		return "arrival"
	}
	return "strict"
}

func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "arrival":
		return Arrival, nil
	}
	return Strict, fmt.Errorf("unknown ordering %q (must be strict or arrival)", s)
}

type job struct {
	held    strings.Builder
	settled bool
}

// State is the single container for one session. It is only mutated by
// Apply and must be driven from one goroutine.
type State struct {
	phase      Phase
	ordering   Ordering
	uiLanguage string
	translate  bool

	transcript  strings.Builder
	translation strings.Builder
	pending     string
	warning     string
	failures    int
	err         error

	nextSeq        int
	head           int // earliest job not yet flushed, strict ordering only
	jobs           map[int]*job
	running        int
	transcriptDone bool
}

func NewState(ordering Ordering, uiLanguage string) *State {
	return &State{
		phase:      PhaseSetup,
		ordering:   ordering,
		uiLanguage: uiLanguage,
		jobs:       make(map[int]*job),
	}
}

// Apply performs the transition for ev and returns the jobs to start.
func (s *State) Apply(ev Event) []Dispatch {
	switch ev := ev.(type) {
	case Started:
		s.reset(ev.Translate)
		return nil

	case ChunkArrived:
		if s.phase != PhaseTranscribing {
			log.Printf("Pipeline: ignoring chunk in phase %s", s.phase)
			return nil
		}
		s.transcript.WriteString(ev.Text)
		if !s.translate {
			return nil
		}
		s.pending += ev.Text
		head, tail := SplitSegment(s.pending)
		if isBlank(head) {
			return nil
		}
		s.pending = tail
		return []Dispatch{s.dispatch(head)}

	case TranscriptEnded:
		if s.phase != PhaseTranscribing {
			return nil
		}
		s.transcriptDone = true
		var out []Dispatch
		if s.translate && !isBlank(s.pending) {
			out = append(out, s.dispatch(s.pending))
		}
		s.pending = ""
		s.settle()
		return out

	case TranscriptFailed:
		if s.phase != PhaseTranscribing {
			return nil
		}
		s.transcriptDone = true
		s.pending = ""
		s.err = apierr.Classify(apierr.OpTranscribe, ev.Err)
		s.phase = PhaseError
		return nil

	case JobChunk:
		j, ok := s.jobs[ev.Seq]
		if !ok || j.settled {
			return nil
		}
		if s.ordering == Arrival || ev.Seq == s.head {
			s.translation.WriteString(ev.Text)
		} else {
			j.held.WriteString(ev.Text)
		}
		return nil

	case JobCompleted:
		s.finishJob(ev.Seq)
		return nil

	case JobFailed:
		if _, ok := s.jobs[ev.Seq]; !ok {
			return nil
		}
		log.Printf("Pipeline: translation job %d failed: %v", ev.Seq, ev.Err)
		s.annotateFailure()
		s.finishJob(ev.Seq)
		return nil
	}
	return nil
}

func (s *State) reset(translate bool) {
	s.phase = PhaseTranscribing
	s.translate = translate
	s.transcript.Reset()
	s.translation.Reset()
	s.pending = ""
	s.warning = ""
	s.failures = 0
	s.err = nil
	s.nextSeq = 0
	s.head = 0
	s.jobs = make(map[int]*job)
	s.running = 0
	s.transcriptDone = false
}

func (s *State) dispatch(text string) Dispatch {
	seq := s.nextSeq
	s.nextSeq++
	s.jobs[seq] = &job{}
	s.running++
	return Dispatch{Seq: seq, Text: text}
}

func (s *State) finishJob(seq int) {
	j, ok := s.jobs[seq]
	if !ok || j.settled {
		return
	}
	j.settled = true
	s.running--

	if s.ordering == Arrival {
		delete(s.jobs, seq)
	} else {
		s.flush()
	}
	s.settle()
}

// flush moves settled jobs at the front of the queue into the translation
// buffer and promotes the next unsettled job to live streaming.
func (s *State) flush() {
	for {
		j, ok := s.jobs[s.head]
		if !ok {
			return
		}
		s.translation.WriteString(j.held.String())
		j.held.Reset()
		if !j.settled {
			return
		}
		delete(s.jobs, s.head)
		s.head++
	}
}

// settle moves the session out of its streaming phases once every input
// has ended.
func (s *State) settle() {
	if !s.transcriptDone || s.phase == PhaseError {
		return
	}
	if s.running > 0 {
		s.phase = PhaseTranslating
		return
	}
	s.phase = PhaseResults
}

func (s *State) annotateFailure() {
	s.failures++
	if s.failures == 1 {
		s.warning = apierr.Text(apierr.MsgPartialTranslation, s.uiLanguage)
		return
	}
	s.warning += apierr.Text(apierr.MsgPartialTranslationSuffix, s.uiLanguage)
}

// Done reports whether the transcript has ended and every job has settled.
func (s *State) Done() bool {
	return s.transcriptDone && s.running == 0
}

func (s *State) Phase() Phase       { return s.phase }
func (s *State) Transcript() string { return s.transcript.String() }
func (s *State) Translation() string {
	return s.translation.String()
}
func (s *State) Warning() string { return s.warning }
func (s *State) Err() error      { return s.err }
