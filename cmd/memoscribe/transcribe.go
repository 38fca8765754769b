package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/session"
	"github.com/leonardotrapani/memoscribe/internal/tui"
)

type transcribeOptions struct {
	source      string
	translateTo string
	ordering    string
	lesson      bool
	outDir      string
	noLive      bool
	open        bool
}

// apply overrides the loaded config with the command line flags
func (o transcribeOptions) apply(cfg *config.Config) {
	if o.source != "" {
		cfg.Transcription.Language = languageCode(o.source)
	}
	if o.translateTo != "" {
		cfg.Translation.Enabled = true
		cfg.Translation.TargetLanguage = languageCode(o.translateTo)
	}
	if o.ordering != "" {
		cfg.Translation.Ordering = o.ordering
	}
	if o.lesson {
		cfg.Expansion.Auto = true
	}
	if o.outDir != "" {
		cfg.Output.Dir = o.outDir
	}
	cfg.Output.OpenPDF = o.open
}

func transcribeCmd() *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a recorded lecture, optionally translating it live",
		Long: `Transcribe an audio or video file, streaming the transcript as it is produced.

With --translate-to every finished sentence is translated while the
transcription continues. With --lesson the transcript is expanded into a
structured lesson and rendered as a PDF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "language", "l", "", "language spoken in the recording (code or name)")
	cmd.Flags().StringVarP(&opts.translateTo, "translate-to", "t", "", "translate into this language while transcribing")
	cmd.Flags().StringVar(&opts.ordering, "ordering", "", "translation ordering: strict or arrival")
	cmd.Flags().BoolVar(&opts.lesson, "lesson", false, "expand the transcript into a lesson PDF")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "directory for the session folder")
	cmd.Flags().BoolVar(&opts.noLive, "no-live", false, "print plain text instead of the live view")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the lesson PDF when it is ready")

	return cmd
}

func runTranscribe(ctx context.Context, w io.Writer, path string, opts transcribeOptions) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	src, err := media.LoadFile(path)
	if err != nil {
		return userError(err, cfg.UILanguage())
	}
	clients, settings, err := session.FromConfig(cfg)
	if err != nil {
		return err
	}
	out, err := cfg.ToOutputConfig()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obs pipeline.Observer
	var live *tui.Live
	if !opts.noLive && tui.IsTerminal() {
		live = tui.StartLive(filepath.Base(path), settings.Translate, cancel)
		obs = live
	} else {
		obs = newDeltaPrinter(w)
	}

	start := time.Now()
	res, runErr := session.Run(ctx, src, clients, settings, out, obs)
	if live != nil {
		live.Finish(runErr)
		if res != nil {
			fmt.Fprint(w, tui.RenderSnapshot(res.Snapshot, 0, 0))
		}
	} else {
		fmt.Fprintln(w)
		if res != nil && settings.Translate && res.Snapshot.Translation != "" {
			fmt.Fprintf(w, "\n%s\n", res.Snapshot.Translation)
		}
		if res != nil && res.Snapshot.Warning != "" {
			fmt.Fprintln(w, tui.StyleWarning.Render(res.Snapshot.Warning))
		}
	}
	if res != nil {
		printArtifacts(w, res)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errors.New("cancelled")
		}
		return userError(runErr, settings.UILanguage)
	}
	log.Printf("Transcribe: done in %v", time.Since(start).Round(time.Millisecond))

	if res.PDFPath != "" && out.OpenPDF {
		if err := output.Open(ctx, res.PDFPath, out.OpenTimeout); err != nil {
			return userError(err, settings.UILanguage)
		}
	}
	return nil
}

func printArtifacts(w io.Writer, res *session.Result) {
	for _, p := range []string{res.TranscriptPath, res.TranslationPath, res.PDFPath} {
		if p != "" {
			fmt.Fprintln(w, tui.StyleMuted.Render("saved "+p))
		}
	}
}

// languageCode accepts "it", "Italian" or "Italiano". Unknown input is kept
// so validation can report it.
func languageCode(s string) string {
	if l, ok := language.Resolve(s); ok {
		return l.Code
	}
	return s
}

// userError pairs the localized message with the underlying cause
func userError(err error, lang string) error {
	if apierr.KindOf(err) == apierr.Unknown && apierr.OpOf(err) == "" {
		return err
	}
	return fmt.Errorf("%s (%w)", apierr.Message(err, lang), err)
}

// deltaPrinter writes the transcript to w as it grows, for pipes and
// terminals without the live view
type deltaPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed int
}

func newDeltaPrinter(w io.Writer) *deltaPrinter {
	return &deltaPrinter{w: w}
}

func (p *deltaPrinter) Observe(s pipeline.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(s.Transcript) < p.printed {
		// a new session started over
		p.printed = 0
	}
	if len(s.Transcript) > p.printed {
		fmt.Fprint(p.w, s.Transcript[p.printed:])
		p.printed = len(s.Transcript)
	}
}

type expandOptions struct {
	language string
	out      string
	open     bool
}

func expandCmd() *cobra.Command {
	var opts expandOptions

	cmd := &cobra.Command{
		Use:   "expand <text-file|->",
		Short: "Turn a transcript into a structured lesson PDF",
		Long: `Expand a pasted or saved transcript into a lesson document with an
introduction, sections and a conclusion, and render it as a PDF.
Use - to read the transcript from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "language of the transcript (default: transcription.language)")
	cmd.Flags().StringVarP(&opts.out, "output", "o", "", "write the PDF to this file instead of a session folder")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the PDF when it is ready")
	return cmd
}

func readText(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

func runExpand(ctx context.Context, stdin io.Reader, w io.Writer, path string, opts expandOptions) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	text, err := readText(stdin, path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return apierr.New(apierr.Media, apierr.OpExpand, errors.New("the transcript is empty"))
	}

	lang := cfg.SourceLanguage()
	if opts.language != "" {
		lang = language.PromptName(opts.language)
	}

	expander, err := cfg.NewExpander()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := session.ExpandText(ctx, expander, text, lang)
	if err != nil {
		return userError(err, cfg.UILanguage())
	}

	pdfPath := opts.out
	if pdfPath != "" {
		if err := output.WritePDF(pdfPath, doc, lang); err != nil {
			return userError(err, cfg.UILanguage())
		}
	} else {
		dir, err := cfg.OutputDir()
		if err != nil {
			return err
		}
		sess, err := output.NewSession(dir, time.Now(), uuid.NewString())
		if err != nil {
			return err
		}
		if _, err := sess.WriteTranscript(text); err != nil {
			return err
		}
		if pdfPath, err = sess.WriteDocument(doc, lang); err != nil {
			return userError(err, cfg.UILanguage())
		}
	}

	fmt.Fprintf(w, "%s\n", tui.StyleHeader.Render(doc.Title))
	fmt.Fprintln(w, tui.StyleMuted.Render("saved "+pdfPath))

	if opts.open {
		return userError(output.Open(ctx, pdfPath, output.DefaultConfig().OpenTimeout), cfg.UILanguage())
	}
	return nil
}

func renderCmd() *cobra.Command {
	var out, lang string

	cmd := &cobra.Command{
		Use:   "render <lesson.json>",
		Short: "Render a saved lesson document to PDF again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := output.ReadDocument(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".pdf"
			}
			if err := output.WritePDF(out, doc, lang); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.StyleMuted.Render("saved "+out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "PDF path (default: next to the document)")
	cmd.Flags().StringVarP(&lang, "language", "l", "", "language of the section labels")
	return cmd
}
