package translator

import (
	"context"
	"fmt"

	"github.com/leonardotrapani/memoscribe/internal/provider"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

// Translator translates one text segment. Calls are independent and share
// no session state.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (stream.ChunkStream, error)
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func New(config Config) (Translator, error) {
	p := provider.GetProvider(config.Provider)
	if p == nil {
		return nil, fmt.Errorf("unsupported translation provider: %s", config.Provider)
	}
	if p.RequiresAPIKey() && config.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", p.DisplayName())
	}
	if config.Model == "" {
		config.Model = p.DefaultModel(provider.Translation)
	}
	if m, err := provider.GetModel(config.Provider, config.Model); err == nil && !m.Can(provider.Translation) {
		return nil, fmt.Errorf("model %s cannot translate text", config.Model)
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
	return nil, fmt.Errorf("unsupported translation provider: %s", config.Provider)
}
