package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
)

// AcademicDocument is the structured lesson produced by the expander.
type AcademicDocument struct {
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	Sections     []Section `json:"sections"`
	Conclusion   string    `json:"conclusion"`
}

// Section is one titled part of the lesson body.
type Section struct {
	Heading string   `json:"heading"`
	Content []string `json:"content"`
}

var ErrIncomplete = errors.New("document is incomplete")

// Validate checks that every field the schema marks as required is present.
func (d *AcademicDocument) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Introduction) == "" {
		missing = append(missing, "introduction")
	}
	if strings.TrimSpace(d.Conclusion) == "" {
		missing = append(missing, "conclusion")
	}
	for i, s := range d.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			missing = append(missing, fmt.Sprintf("sections[%d].heading", i))
		}
		if !hasText(s.Content) {
			missing = append(missing, fmt.Sprintf("sections[%d].content", i))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func hasText(paragraphs []string) bool {
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Parse decodes a structured model response into a document. Any decoding
// or validation failure is a Format error.
func Parse(data []byte) (*AcademicDocument, error) {
	var doc AcademicDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apierr.New(apierr.Format, apierr.OpExpand, fmt.Errorf("decode document: %w", err))
	}
	if err := doc.Validate(); err != nil {
		return nil, apierr.New(apierr.Format, apierr.OpExpand, err)
	}
	return &doc, nil
}

// Map returns a copy of the document with fn applied to every text field.
func (d *AcademicDocument) Map(fn func(string) string) *AcademicDocument {
	out := &AcademicDocument{
		Title:        fn(d.Title),
		Introduction: fn(d.Introduction),
		Conclusion:   fn(d.Conclusion),
		Sections:     make([]Section, len(d.Sections)),
	}
	for i, s := range d.Sections {
		content := make([]string, len(s.Content))
		for j, p := range s.Content {
			content[j] = fn(p)
		}
		out.Sections[i] = Section{Heading: fn(s.Heading), Content: content}
	}
	return out
}
