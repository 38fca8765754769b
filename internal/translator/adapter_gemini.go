package translator

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

type GeminiAdapter struct {
	client *genai.Client
	config Config
}

func NewGeminiAdapter(config Config) (*GeminiAdapter, error) {
	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions.BaseURL = config.BaseURL
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiAdapter{client: client, config: config}, nil
}

func (a *GeminiAdapter) Translate(ctx context.Context, text, targetLanguage string) (stream.ChunkStream, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	contents := genai.Text(Prompt(text, targetLanguage))

	log.Printf("gemini-translator: translating %d bytes into %s", len(text), targetLanguage)
	responses := a.client.Models.GenerateContentStream(ctx, a.config.Model, contents, cfg)

	return stream.FromSeq(func(yield func(string, error) bool) {
		for resp, err := range responses {
			if err != nil {
				yield("", apierr.Classify(apierr.OpTranslate, err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}), nil
}
