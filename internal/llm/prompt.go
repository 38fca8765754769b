package llm

import (
	"fmt"
	"regexp"

	"github.com/leonardotrapani/memoscribe/internal/language"
)

var timestampRe = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\]\s?`)

// StripTimestamps removes [HH:MM:SS] markers and one following whitespace
func StripTimestamps(transcript string) string {
	return timestampRe.ReplaceAllString(transcript, "")
}

// Field descriptions shared by every structured output schema
const (
	descTitle        = "Academic title of the lesson."
	descIntroduction = "Introductory paragraph summarising the goals of the lesson."
	descSections     = "The sections of the lesson, in order."
	descHeading      = "Heading of the section."
	descContent      = "Paragraphs of the section, rewritten in academic style and expanded."
	descConclusion   = "Closing paragraph summarising the key points."
)

// BuildSystemPrompt generates the instructions for the lesson writer
func BuildSystemPrompt(lang string) string {
	name := language.PromptName(lang)
	return fmt.Sprintf(`You are a university professor and an experienced academic author. Your task is to turn the raw transcript of a lecture into a complete, well structured and in-depth academic document for university students. The whole output must be in **%[1]s**.

Follow these instructions and answer with a JSON object:
1. Language: the whole document, titles included, must be written in **%[1]s**.
2. Title: a concise academic title for the lesson.
3. Introduction: a paragraph summarising the main topics and the goals of the lesson.
4. Sections: organise the content into logical sections. For each section:
   - write a clear, descriptive heading;
   - do not just paraphrase the transcript. EXPAND every concept SIGNIFICANTLY with precise definitions, concrete examples, historical or theoretical context, and comparisons between related ideas. The text of each section must be much longer and more detailed than the matching part of the transcript, like a textbook chapter;
   - use formal academic prose.
5. Conclusion: a paragraph summarising the key points and suggesting further study.
6. Style: formal, clear and precise language. Avoid a colloquial tone.`, name)
}

// jsonShapeHint spells the schema out for providers without schema-constrained output
const jsonShapeHint = `

The JSON object must have exactly this shape:
{"title": string, "introduction": string, "sections": [{"heading": string, "content": [string, ...]}, ...], "conclusion": string}`

// BuildUserPrompt wraps the cleaned transcript
func BuildUserPrompt(transcript string) string {
	return fmt.Sprintf("Lecture transcript:\n---\n%s\n---", StripTimestamps(transcript))
}
