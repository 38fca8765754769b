package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
)

// GeminiAdapter implements Expander with Gemini's schema-constrained output
type GeminiAdapter struct {
	client *genai.Client
	config Config
}

func NewGeminiAdapter(cfg Config) (*GeminiAdapter, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiAdapter{client: client, config: cfg}, nil
}

func geminiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        {Type: genai.TypeString, Description: descTitle},
			"introduction": {Type: genai.TypeString, Description: descIntroduction},
			"sections": {
				Type:        genai.TypeArray,
				Description: descSections,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"heading": {Type: genai.TypeString, Description: descHeading},
						"content": {
							Type:        genai.TypeArray,
							Description: descContent,
							Items:       &genai.Schema{Type: genai.TypeString},
						},
					},
					Required: []string{"heading", "content"},
				},
			},
			"conclusion": {Type: genai.TypeString, Description: descConclusion},
		},
		Required: []string{"title", "introduction", "sections", "conclusion"},
	}
}

func (a *GeminiAdapter) Expand(ctx context.Context, transcript, lang string) (*document.AcademicDocument, error) {
	if err := checkTranscript(transcript); err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemPrompt(lang), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(),
	}

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.config.Model, genai.Text(BuildUserPrompt(transcript)), cfg)
	duration := time.Since(start)
	if err != nil {
		log.Printf("gemini-expander: API call failed after %v: %v", duration, err)
		return nil, apierr.Classify(apierr.OpExpand, err)
	}

	text := resp.Text()
	log.Printf("gemini-expander: generated %d bytes in %v", len(text), duration)
	return document.Parse([]byte(text))
}
