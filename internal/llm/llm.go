package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

// Expander turns a finished transcript into a structured lesson document
type Expander interface {
	Expand(ctx context.Context, transcript, language string) (*document.AcademicDocument, error)
}

// Config holds expander configuration
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewExpander creates an expander based on the provider
func NewExpander(cfg Config) (Expander, error) {
	p := provider.GetProvider(cfg.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported expansion provider: %s", cfg.Provider)
	}
	if p.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", p.DisplayName())
	}
	if cfg.Model == "" {
		cfg.Model = p.DefaultModel(provider.Expansion)
	}
	m, err := provider.GetModel(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	if !m.Can(provider.Expansion) {
		return nil, fmt.Errorf("model %s cannot generate documents", cfg.Model)
	}
	if cfg.BaseURL == "" && cfg.Provider != provider.ProviderGemini {
		cfg.BaseURL = p.BaseURL()
	}

	switch cfg.Provider {
	case provider.ProviderGemini:
		return NewGeminiAdapter(cfg)
	case provider.ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case provider.ProviderGroq:
		return NewGroqAdapter(cfg), nil
	}
	return nil, fmt.Errorf("unsupported expansion provider: %s", cfg.Provider)
}

var ErrEmptyTranscript = errors.New("transcript is empty")

func checkTranscript(transcript string) error {
	if strings.TrimSpace(StripTimestamps(transcript)) == "" {
		return ErrEmptyTranscript
	}
	return nil
}
