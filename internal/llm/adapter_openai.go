package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
)

// OpenAIAdapter implements Expander using OpenAI's chat completions API
// with a strict JSON schema response format
type OpenAIAdapter struct {
	client *openai.Client
	config Config
	// structured selects json_schema output; otherwise json_object plus a
	// shape hint in the prompt
	structured bool
}

// NewOpenAIAdapter creates a new OpenAI expander
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	return newChatAdapter(cfg, true)
}

func newChatAdapter(cfg Config, structured bool) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIAdapter{
		client:     openai.NewClientWithConfig(clientConfig),
		config:     cfg,
		structured: structured,
	}
}

func documentSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":        {Type: jsonschema.String, Description: descTitle},
			"introduction": {Type: jsonschema.String, Description: descIntroduction},
			"sections": {
				Type:        jsonschema.Array,
				Description: descSections,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"heading": {Type: jsonschema.String, Description: descHeading},
						"content": {
							Type:        jsonschema.Array,
							Description: descContent,
							Items:       &jsonschema.Definition{Type: jsonschema.String},
						},
					},
					Required:             []string{"heading", "content"},
					AdditionalProperties: false,
				},
			},
			"conclusion": {Type: jsonschema.String, Description: descConclusion},
		},
		Required:             []string{"title", "introduction", "sections", "conclusion"},
		AdditionalProperties: false,
	}
}

func (a *OpenAIAdapter) Expand(ctx context.Context, transcript, lang string) (*document.AcademicDocument, error) {
	if err := checkTranscript(transcript); err != nil {
		return nil, err
	}

	systemPrompt := BuildSystemPrompt(lang)
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	if a.structured {
		format = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "academic_document",
				Schema: documentSchema(),
				Strict: true,
			},
		}
	} else {
		systemPrompt += jsonShapeHint
	}

	req := openai.ChatCompletionRequest{
		Model: a.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(transcript)},
		},
		ResponseFormat: format,
		Temperature:    0.7,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("%s-expander: API call failed after %v: %v", a.config.Provider, duration, err)
		return nil, apierr.Classify(apierr.OpExpand, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apierr.New(apierr.Format, apierr.OpExpand, fmt.Errorf("chat completion: no response choices"))
	}

	content := resp.Choices[0].Message.Content
	log.Printf("%s-expander: generated %d bytes in %v", a.config.Provider, len(content), duration)
	return document.Parse([]byte(content))
}
