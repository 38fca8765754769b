package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/stream"
	"github.com/leonardotrapani/memoscribe/internal/transcriber"
	"github.com/leonardotrapani/memoscribe/internal/translator"
)

// Observer receives a snapshot after every applied event.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Request describes one transcription session.
type Request struct {
	Source         media.AudioSource
	SourceLanguage string // display name sent to the model, e.g. "Italiano"
	TargetLanguage string
	Translate      bool
	Duration       time.Duration
}

type Orchestrator struct {
	transcriber transcriber.Transcriber
	translator  translator.Translator
	ordering    Ordering
	uiLanguage  string
	observer    Observer
}

type Option func(*Orchestrator)

func WithOrdering(o Ordering) Option {
	return func(or *Orchestrator) { or.ordering = o }
}

func WithUILanguage(lang string) Option {
	return func(or *Orchestrator) { or.uiLanguage = lang }
}

func WithObserver(obs Observer) Option {
	return func(or *Orchestrator) { or.observer = obs }
}

// New builds an orchestrator. tr may be nil when translation is never requested.
func New(t transcriber.Transcriber, tr translator.Translator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transcriber: t,
		translator:  tr,
		ordering:    Strict,
		uiLanguage:  "en",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run transcribes req.Source and, when requested, translates the transcript
// segment by segment while it streams. It returns once the transcript has
// ended and every dispatched job has settled. The returned error is the
// classified transcription failure, if any; translation failures only
// show up as the snapshot warning.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Snapshot, error) {
	if req.Translate && o.translator == nil {
		return Snapshot{}, fmt.Errorf("translation requested but no translator configured")
	}

	state := NewState(o.ordering, o.uiLanguage)
	events := make(chan Event, 64)
	var g errgroup.Group

	o.apply(ctx, state, Started{Translate: req.Translate}, &g, events, req)

	start := time.Now()
	log.Printf("Pipeline: starting session (%d bytes, %s, translate=%v, ordering=%s)",
		len(req.Source.Data), req.Source.MIMEType, req.Translate, o.ordering)

	g.Go(func() error {
		o.readTranscript(ctx, req, events)
		return nil
	})

	for !state.Done() {
		ev := <-events
		o.apply(ctx, state, ev, &g, events, req)
	}

	// every producer has sent its final event; this only reaps goroutines
	_ = g.Wait()

	snap := state.Snapshot()
	log.Printf("Pipeline: session finished in %v (phase=%s, transcript=%d bytes, translation=%d bytes, jobs=%d)",
		time.Since(start), snap.Phase, len(snap.Transcript), len(snap.Translation), snap.Jobs)
	return snap, state.Err()
}

func (o *Orchestrator) apply(ctx context.Context, state *State, ev Event, g *errgroup.Group, events chan<- Event, req Request) {
	for _, d := range state.Apply(ev) {
		log.Printf("Pipeline: dispatching translation job %d (%d bytes)", d.Seq, len(d.Text))
		g.Go(func() error {
			o.runJob(ctx, d, req.TargetLanguage, events)
			return nil
		})
	}
	if o.observer != nil {
		o.observer.Observe(state.Snapshot())
	}
}

func (o *Orchestrator) readTranscript(ctx context.Context, req Request, events chan<- Event) {
	s, err := o.transcriber.Transcribe(ctx, req.Source, transcriber.Options{
		Language: req.SourceLanguage,
		Duration: req.Duration,
	})
	if err != nil {
		events <- TranscriptFailed{Err: apierr.Classify(apierr.OpTranscribe, err)}
		return
	}
	defer s.Close()

	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			events <- TranscriptEnded{}
			return
		}
		if err != nil {
			log.Printf("Pipeline: transcription failed: %v", err)
			events <- TranscriptFailed{Err: apierr.Classify(apierr.OpTranscribe, err)}
			return
		}
		if chunk != "" {
			events <- ChunkArrived{Text: chunk}
		}
	}
}

func (o *Orchestrator) runJob(ctx context.Context, d Dispatch, target string, events chan<- Event) {
	s, err := o.translator.Translate(ctx, d.Text, target)
	if err != nil {
		events <- JobFailed{Seq: d.Seq, Err: apierr.Classify(apierr.OpTranslate, err)}
		return
	}
	if err := forward(s, d.Seq, events); err != nil {
		events <- JobFailed{Seq: d.Seq, Err: apierr.Classify(apierr.OpTranslate, err)}
		return
	}
	events <- JobCompleted{Seq: d.Seq}
}

func forward(s stream.ChunkStream, seq int, events chan<- Event) error {
	defer s.Close()
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if chunk != "" {
			events <- JobChunk{Seq: seq, Text: chunk}
		}
	}
}
