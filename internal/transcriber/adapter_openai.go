package transcriber

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

// OpenAIAdapter transcribes through an OpenAI-compatible speech-to-text
// endpoint (OpenAI, Groq). The endpoint is not streamed, so the whole
// transcript arrives as a single chunk.
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

func (a *OpenAIAdapter) Transcribe(ctx context.Context, src media.AudioSource, opts Options) (stream.ChunkStream, error) {
	if len(src.Data) == 0 {
		return nil, apierr.New(apierr.Media, apierr.OpTranscribe, media.ErrEmptyAudio)
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		Reader:   bytes.NewReader(src.Data),
		FilePath: src.Name,
		Prompt:   shortPrompt(opts.Language, opts.Duration),
	}
	if lang, ok := language.Resolve(opts.Language); ok {
		req.Language = lang.Code
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("openai-transcriber: API call failed after %v: %v", duration, err)
		return nil, apierr.Classify(apierr.OpTranscribe, err)
	}

	log.Printf("openai-transcriber: transcribed %d bytes in %v (%d chars)", len(src.Data), duration, len(resp.Text))
	return stream.FromSlice(resp.Text), nil
}
