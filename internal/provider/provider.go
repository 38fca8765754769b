package provider

import "sort"

// Provider describes a hosted generative-AI service and the models it offers
type Provider interface {
	Name() string
	DisplayName() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	APIKeyURL() string
	BaseURL() string
	Models() []Model
	DefaultModel(c Capability) string
}

var registry = make(map[string]Provider)

func init() {
	Register(&GeminiProvider{})
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListProvidersWith returns providers that have at least one model for c
func ListProvidersWith(c Capability) []string {
	var names []string
	for name, p := range registry {
		if len(ModelsWith(p, c)) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Supports reports whether the named provider offers capability c
func Supports(name string, c Capability) bool {
	p := GetProvider(name)
	return p != nil && len(ModelsWith(p, c)) > 0
}
