package provider

import (
	"fmt"
	"slices"
)

// Capability is one of the three remote calls the application makes
type Capability int

const (
	Transcription Capability = iota
	Translation
	Expansion
)

func (c Capability) String() string {
	switch c {
	case Transcription:
		return "transcription"
	case Translation:
		return "translation"
	case Expansion:
		return "expansion"
	}
	return "unknown"
}

// Model represents a model with the calls it can serve
type Model struct {
	ID           string       // unique identifier (e.g., "gemini-2.5-flash")
	Name         string       // display name
	Description  string       // short description
	Capabilities []Capability // calls this model can serve
	Streaming    bool         // output arrives incrementally
	Structured   bool         // supports schema-constrained JSON output
}

// Can reports whether the model serves capability c
func (m *Model) Can(c Capability) bool {
	return slices.Contains(m.Capabilities, c)
}

// ModelsWith returns the models of p that serve capability c
func ModelsWith(p Provider, c Capability) []Model {
	var out []Model
	for _, m := range p.Models() {
		if m.Can(c) {
			out = append(out, m)
		}
	}
	return out
}

// GetModel looks up a model by provider and id
func GetModel(providerName, modelID string) (*Model, error) {
	p := GetProvider(providerName)
	if p == nil {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
	for _, m := range p.Models() {
		if m.ID == modelID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("unknown model %q for provider %s", modelID, providerName)
}
