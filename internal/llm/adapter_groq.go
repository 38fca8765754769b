package llm

// NewGroqAdapter creates an expander for Groq's OpenAI-compatible API.
// Groq models get json_object output with the shape described in the prompt.
func NewGroqAdapter(cfg Config) *OpenAIAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	return newChatAdapter(cfg, false)
}
