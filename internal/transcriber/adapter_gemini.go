package transcriber

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/stream"
)

// GeminiAdapter streams a transcript from a Gemini model with the audio inlined
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

func (a *GeminiAdapter) Transcribe(ctx context.Context, src media.AudioSource, opts Options) (stream.ChunkStream, error) {
	if len(src.Data) == 0 {
		return nil, apierr.New(apierr.Media, apierr.OpTranscribe, media.ErrEmptyAudio)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(src.Data, src.MIMEType)}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(opts.Language, opts.Duration), genai.RoleUser),
	}

	log.Printf("gemini-transcriber: sending %d bytes (%s, %v) to %s", len(src.Data), src.MIMEType, opts.Duration, a.config.Model)
	start := time.Now()
	responses := a.client.Models.GenerateContentStream(ctx, a.config.Model, contents, cfg)

	chunks := 0
	return stream.FromSeq(func(yield func(string, error) bool) {
		for resp, err := range responses {
			if err != nil {
				log.Printf("gemini-transcriber: stream failed after %v: %v", time.Since(start), err)
				yield("", apierr.Classify(apierr.OpTranscribe, err))
				return
			}
			chunks++
			if !yield(resp.Text(), nil) {
				return
			}
		}
		log.Printf("gemini-transcriber: stream finished in %v (%d chunks)", time.Since(start), chunks)
	}), nil
}
