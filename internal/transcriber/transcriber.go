package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/provider"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

// Transcriber turns one audio source into a finite stream of transcript
// chunks. A stream cannot be restarted; retrying means calling Transcribe again.
type Transcriber interface {
	Transcribe(ctx context.Context, src media.AudioSource, opts Options) (stream.ChunkStream, error)
}

// Options carries the per-session hints sent with the audio
type Options struct {
	Language string        // spoken language, code or name ("it", "Italiano")
	Duration time.Duration // total audio length, drives the timestamp format
}

// Configuration for the transcriber
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string // overrides the provider endpoint
}

// New creates the transcriber for the configured provider
func New(config Config) (Transcriber, error) {
	p := provider.GetProvider(config.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported transcription provider: %s", config.Provider)
	}
	if p.RequiresAPIKey() && config.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", p.DisplayName())
	}
	if config.Model == "" {
		config.Model = p.DefaultModel(provider.Transcription)
	}
	if m, err := provider.GetModel(config.Provider, config.Model); err == nil && !m.Can(provider.Transcription) {
		return nil, fmt.Errorf("model %s cannot transcribe audio", config.Model)
	}

	switch config.Provider {
	case provider.ProviderGemini:
		return NewGeminiAdapter(config)
	case provider.ProviderOpenAI, provider.ProviderGroq:
		if config.BaseURL == "" {
			config.BaseURL = p.BaseURL()
		}
		return NewOpenAIAdapter(config), nil
	}
	return nil, fmt.Errorf("unsupported transcription provider: %s", config.Provider)
}
