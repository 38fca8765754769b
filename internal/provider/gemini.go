package provider

import "strings"

// GeminiProvider implements Provider for the Gemini API
type GeminiProvider struct{}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

func (p *GeminiProvider) DisplayName() string {
	return "Google Gemini"
}

func (p *GeminiProvider) RequiresAPIKey() bool {
	return true
}

func (p *GeminiProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "AIza")
}

func (p *GeminiProvider) APIKeyURL() string {
	return "https://aistudio.google.com/apikey"
}

func (p *GeminiProvider) BaseURL() string {
	return "https://generativelanguage.googleapis.com/"
}

func (p *GeminiProvider) Models() []Model {
	all := []Capability{Transcription, Translation, Expansion}
	return []Model{
		{
			ID:           "gemini-2.5-flash",
			Name:         "Gemini 2.5 Flash",
			Description:  "Fast multimodal model, streams audio transcription",
			Capabilities: all,
			Streaming:    true,
			Structured:   true,
		},
		{
			ID:           "gemini-2.5-pro",
			Name:         "Gemini 2.5 Pro",
			Description:  "Most capable Gemini model, slower",
			Capabilities: all,
			Streaming:    true,
			Structured:   true,
		},
		{
			ID:           "gemini-2.5-flash-lite",
			Name:         "Gemini 2.5 Flash-Lite",
			Description:  "Cheapest option for long lectures",
			Capabilities: all,
			Streaming:    true,
			Structured:   true,
		},
	}
}

func (p *GeminiProvider) DefaultModel(c Capability) string {
	return "gemini-2.5-flash"
}
