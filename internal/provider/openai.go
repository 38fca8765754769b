package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI services
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) DisplayName() string {
	return "OpenAI"
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) APIKeyURL() string {
	return "https://platform.openai.com/api-keys"
}

func (p *OpenAIProvider) BaseURL() string {
	return "https://api.openai.com/v1"
}

func (p *OpenAIProvider) Models() []Model {
	return []Model{
		// transcription models
		{
			ID:           "gpt-4o-transcribe",
			Name:         "GPT-4o Transcribe",
			Description:  "Speech-to-text that follows a formatting prompt",
			Capabilities: []Capability{Transcription},
		},
		{
			ID:           "whisper-1",
			Name:         "Whisper 1",
			Description:  "OpenAI's production speech-to-text model",
			Capabilities: []Capability{Transcription},
		},
		// text models
		{
			ID:           "gpt-4o-mini",
			Name:         "GPT-4o Mini",
			Description:  "Fast and affordable GPT-4 variant",
			Capabilities: []Capability{Translation, Expansion},
			Streaming:    true,
			Structured:   true,
		},
		{
			ID:           "gpt-4o",
			Name:         "GPT-4o",
			Description:  "Most capable GPT-4 model",
			Capabilities: []Capability{Translation, Expansion},
			Streaming:    true,
			Structured:   true,
		},
	}
}

func (p *OpenAIProvider) DefaultModel(c Capability) string {
	switch c {
	case Transcription:
		return "gpt-4o-transcribe"
	case Translation, Expansion:
		return "gpt-4o-mini"
	}
	return ""
}
