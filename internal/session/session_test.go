package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/llm"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/testutil"
)

func outputConfig(t *testing.T) output.Config {
	oc := output.DefaultConfig()
	oc.Dir = t.TempDir()
	return oc
}

func TestRun_SavesArtifacts(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	exp := testutil.NewMockExpander()
	clients := Clients{
		Transcriber: testutil.NewMockTranscriber("[00:00:01]Ciao a tutti. ", "Oggi parliamo di entropia."),
		Translator:  testutil.NewMockTranslator(),
		Expander:    exp,
	}
	settings := Settings{SourceLanguage: "Italiano", TargetLanguage: "English", UILanguage: "it", Translate: true, Expand: true}

	var observed int
	res, err := Run(ctx, testutil.TestAudio(), clients, settings, outputConfig(t), pipeline.ObserverFunc(func(pipeline.Snapshot) { observed++ }))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if observed == 0 {
		t.Error("observer was never called")
	}

	data, _ := os.ReadFile(res.TranscriptPath)
	if string(data) != "[00:00:01]Ciao a tutti. Oggi parliamo di entropia." {
		t.Errorf("transcript file = %q", data)
	}
	data, _ = os.ReadFile(res.TranslationPath)
	if string(data) != testutil.Translated("[00:00:01]Ciao a tutti. Oggi parliamo di entropia.") {
		t.Errorf("translation file = %q", data)
	}
	if res.PDFPath == "" || res.Document == nil {
		t.Fatal("lesson PDF not produced")
	}
	if _, err := os.Stat(res.PDFPath); err != nil {
		t.Errorf("PDF missing: %v", err)
	}
	if filepath.Dir(res.PDFPath) != res.Dir || !strings.Contains(filepath.Base(res.Dir), res.ID[:8]) {
		t.Errorf("unexpected layout: dir=%s pdf=%s", res.Dir, res.PDFPath)
	}
	if exp.Language != "Italiano" || len(exp.Received) != 1 {
		t.Errorf("expander got language %q, %d calls", exp.Language, len(exp.Received))
	}
}

func TestRun_TranscriptionOnly(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clients := Clients{Transcriber: testutil.NewMockTranscriber("Solo trascrizione.")}
	res, err := Run(ctx, testutil.TestAudio(), clients, Settings{UILanguage: "en"}, outputConfig(t), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.TranslationPath != "" || res.PDFPath != "" {
		t.Errorf("unexpected artifacts: %+v", res)
	}
}

func TestRun_FailureKeepsPartialTranscript(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mt := testutil.NewMockTranscriber("Prima parte. ")
	mt.Err = apierr.New(apierr.Quota, apierr.OpTranscribe, errors.New("429"))
	exp := testutil.NewMockExpander()

	res, err := Run(ctx, testutil.TestAudio(), Clients{Transcriber: mt, Expander: exp}, Settings{Expand: true}, outputConfig(t), nil)
	if apierr.KindOf(err) != apierr.Quota {
		t.Fatalf("err = %v, want quota", err)
	}
	data, _ := os.ReadFile(res.TranscriptPath)
	if string(data) != "Prima parte. " {
		t.Errorf("partial transcript = %q", data)
	}
	if len(exp.Received) != 0 {
		t.Error("a failed session must not be expanded")
	}
}

func TestRun_EmptyTranscript(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := Run(ctx, testutil.TestAudio(), Clients{Transcriber: testutil.NewMockTranscriber("  ")}, Settings{}, outputConfig(t), nil)
	if apierr.KindOf(err) != apierr.Media {
		t.Errorf("err = %v, want media error", err)
	}
	if res.Dir != "" {
		t.Error("nothing should be saved for an empty transcript")
	}
}

func TestRun_WithoutFFprobe(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	src, err := media.NewSource([]byte("ID3 not really an mp3"), "audio/mpeg", "lesson.mp3")
	if err != nil {
		t.Fatal(err)
	}
	mt := testutil.NewMockTranscriber("Ciao.")
	if _, err := Run(ctx, src, Clients{Transcriber: mt}, Settings{}, outputConfig(t), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls := mt.Calls(); len(calls) != 1 || calls[0].Duration != 0 {
		t.Errorf("calls = %+v", calls)
	}
}

func TestRun_CorruptWAV(t *testing.T) {
	src := media.AudioSource{Data: []byte("RIFF\x00\x00\x00\x00WAVEjunk"), MIMEType: "audio/wav", Name: "broken.wav"}
	mt := testutil.NewMockTranscriber("x")

	_, err := Run(context.Background(), src, Clients{Transcriber: mt}, Settings{}, outputConfig(t), nil)
	if apierr.KindOf(err) != apierr.Media {
		t.Errorf("err = %v, want media error", err)
	}
	if len(mt.Calls()) != 0 {
		t.Error("transcriber should not be called for a corrupt file")
	}
}

func TestExpandText(t *testing.T) {
	if _, err := ExpandText(context.Background(), testutil.NewMockExpander(), " \n", "Italiano"); !errors.Is(err, llm.ErrEmptyTranscript) {
		t.Errorf("err = %v, want ErrEmptyTranscript", err)
	}
	doc, err := ExpandText(context.Background(), testutil.NewMockExpander(), "testo", "Italiano")
	if err != nil || doc.Title == "" {
		t.Errorf("ExpandText() = %v, %v", doc, err)
	}
}

func TestFromConfig(t *testing.T) {
	for _, env := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY"} {
		t.Setenv(env, "")
	}

	cfg := config.DefaultConfig()
	if _, _, err := FromConfig(cfg); err == nil {
		t.Error("expected error without an API key")
	}

	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "AIza-test"}
	cfg.Translation.Enabled = true
	cfg.Translation.TargetLanguage = "en"
	clients, settings, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if clients.Transcriber == nil || clients.Translator == nil || clients.Expander != nil {
		t.Errorf("clients = %+v", clients)
	}
	if settings.SourceLanguage != "Italiano" || settings.TargetLanguage != "English" || !settings.Translate {
		t.Errorf("settings = %+v", settings)
	}
}
