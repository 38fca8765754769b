package translator

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

// OpenAIAdapter streams translations from an OpenAI-compatible chat endpoint
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (a *OpenAIAdapter) Translate(ctx context.Context, text, targetLanguage string) (stream.ChunkStream, error) {
	req := openai.ChatCompletionRequest{
		Model: a.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(text, targetLanguage)},
		},
		Temperature: 0.3,
		Stream:      true,
	}

	log.Printf("openai-translator: translating %d bytes into %s", len(text), targetLanguage)
	s, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		log.Printf("openai-translator: request failed: %v", err)
		return nil, apierr.Classify(apierr.OpTranslate, err)
	}
	return &chatStream{s: s}, nil
}

// chatStream adapts a chat completion stream to stream.ChunkStream
type chatStream struct {
	s *openai.ChatCompletionStream
}

func (c *chatStream) Recv() (string, error) {
	for {
		resp, err := c.s.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", apierr.Classify(apierr.OpTranslate, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (c *chatStream) Close() error {
	return c.s.Close()
}
