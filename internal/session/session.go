package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/llm"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/transcriber"
	"github.com/leonardotrapani/memoscribe/internal/translator"
)

// Clients are the remote services a session talks to.
type Clients struct {
	Transcriber transcriber.Transcriber
	Translator  translator.Translator // nil when translation is off
	Expander    llm.Expander          // nil when no lesson is built
}

type Settings struct {
	ID             string // session id, generated when empty
	SourceLanguage string // as sent to the models, e.g. "Italiano"
	TargetLanguage string
	UILanguage     string
	Translate      bool
	Ordering       pipeline.Ordering
	Expand         bool // build the lesson PDF from the transcript
}

// Result describes a finished session and the files it produced.
type Result struct {
	ID              string
	Started         time.Time
	Snapshot        pipeline.Snapshot
	Dir             string
	TranscriptPath  string
	TranslationPath string
	PDFPath         string
	Document        *document.AcademicDocument
}

// FromConfig builds the clients and settings described by cfg.
func FromConfig(cfg *config.Config) (Clients, Settings, error) {
	settings := Settings{
		SourceLanguage: cfg.SourceLanguage(),
		TargetLanguage: cfg.TargetLanguage(),
		UILanguage:     cfg.UILanguage(),
		Translate:      cfg.Translation.Enabled,
		Ordering:       cfg.Ordering(),
		Expand:         cfg.Expansion.Auto,
	}

	var clients Clients
	var err error
	if clients.Transcriber, err = cfg.NewTranscriber(); err != nil {
		return Clients{}, settings, fmt.Errorf("failed to create transcriber: %w", err)
	}
	if settings.Translate {
		if clients.Translator, err = cfg.NewTranslator(); err != nil {
			return Clients{}, settings, fmt.Errorf("failed to create translator: %w", err)
		}
	}
	if settings.Expand {
		if clients.Expander, err = cfg.NewExpander(); err != nil {
			return Clients{}, settings, fmt.Errorf("failed to create expander: %w", err)
		}
	}
	return clients, settings, nil
}

// Run transcribes src, translating and expanding as configured, and saves
// every artifact under out.Dir. Whatever text was produced is saved even
// when the session fails.
func Run(ctx context.Context, src media.AudioSource, clients Clients, settings Settings, out output.Config, obs pipeline.Observer) (*Result, error) {
	res := &Result{ID: settings.ID, Started: time.Now()}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	dur, err := media.Duration(ctx, src)
	if err != nil {
		if !errors.Is(err, exec.ErrNotFound) {
			return res, err
		}
		log.Printf("Session: %v; timestamps will use the short format", err)
	}

	opts := []pipeline.Option{
		pipeline.WithOrdering(settings.Ordering),
		pipeline.WithUILanguage(settings.UILanguage),
	}
	if obs != nil {
		opts = append(opts, pipeline.WithObserver(obs))
	}
	orch := pipeline.New(clients.Transcriber, clients.Translator, opts...)

	snap, runErr := orch.Run(ctx, pipeline.Request{
		Source:         src,
		SourceLanguage: settings.SourceLanguage,
		TargetLanguage: settings.TargetLanguage,
		Translate:      settings.Translate,
		Duration:       dur,
	})
	res.Snapshot = snap

	if strings.TrimSpace(snap.Transcript) != "" {
		if err := save(res, settings, out); err != nil {
			return res, err
		}
	}
	if runErr != nil {
		return res, runErr
	}
	if strings.TrimSpace(snap.Transcript) == "" {
		return res, apierr.New(apierr.Media, apierr.OpTranscribe, errors.New("the transcription came back empty"))
	}

	if settings.Expand && clients.Expander != nil {
		doc, err := ExpandText(ctx, clients.Expander, snap.Transcript, settings.SourceLanguage)
		if err != nil {
			return res, err
		}
		res.Document = doc
		sess := &output.Session{Dir: res.Dir}
		if res.PDFPath, err = sess.WriteDocument(doc, settings.SourceLanguage); err != nil {
			return res, err
		}
	}

	log.Printf("Session: %s finished in %v (%s)", res.ID, time.Since(res.Started).Round(time.Millisecond), res.Dir)
	return res, nil
}

func save(res *Result, settings Settings, out output.Config) error {
	sess, err := output.NewSession(out.Dir, res.Started, res.ID)
	if err != nil {
		return err
	}
	res.Dir = sess.Dir

	if res.TranscriptPath, err = sess.WriteTranscript(res.Snapshot.Transcript); err != nil {
		return err
	}
	if settings.Translate && res.Snapshot.Translation != "" {
		if res.TranslationPath, err = sess.WriteTranslation(res.Snapshot.Translation); err != nil {
			return err
		}
	}
	return nil
}

// ExpandText turns a finished text into a lesson document. Inline
// timestamps are stripped by the expander.
func ExpandText(ctx context.Context, e llm.Expander, text, language string) (*document.AcademicDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyTranscript
	}
	start := time.Now()
	doc, err := e.Expand(ctx, text, language)
	if err != nil {
		return nil, err
	}
	log.Printf("Session: lesson %q generated in %v", doc.Title, time.Since(start).Round(time.Millisecond))
	return doc, nil
}
