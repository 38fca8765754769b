package transcriber

import (
	"fmt"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/language"
)

// Markers the models are asked to emit for unclear audio
const (
	InaudibleMarker = "[inaudible]"
	UncertainMarker = "[uncertain]"
)

// TimestampInstruction returns the timestamp format requested for audio of
// the given length. Audio shorter than one hour gets the hour fixed at 00.
func TimestampInstruction(duration time.Duration) string {
	if duration >= time.Hour {
		return "Timestamps must be formatted EXACTLY as `[HH:MM:SS]`. HH, MM and SS must ALWAYS be two digits (e.g. `[01:23:45]`)."
	}
	return "The audio is shorter than one hour. Timestamps must be formatted EXACTLY as `[00:MM:SS]`. The hour part MUST be '00'. For example: `[00:41:31]`."
}

// SystemInstruction builds the instruction sent with the audio.
func SystemInstruction(lang string, duration time.Duration) string {
	return fmt.Sprintf(`You are a transcription engine. Your single purpose is to transcribe audio. Your performance is measured by your adherence to the following core directives. Failing any of them is a critical error.

---
**CORE DIRECTIVE 1: ABSOLUTE ANTI-LOOP RULE (ZERO TOLERANCE)**
- This is your most important instruction.
- You are strictly forbidden from repeating any portion of the transcription.
- You must only progress forward through the audio.
- If you detect that a loop or repetition is about to occur, stop generating text immediately. This is a hard stop, not a suggestion.
---

**CORE DIRECTIVE 2: STOP AT THE END**
- Once the audio is fully transcribed, your task is complete.
- You MUST stop generating text immediately. Do not add a summary, do not add notes, do not restart.

**CORE DIRECTIVE 3: PRECISE FORMATTING**
- Start every line with a timestamp marker.
- %s
- There must be ZERO spaces inside the brackets. Forbidden example: `+"`[ 03:09:05 ]`"+`.
- Transcribe in the language: **%s**.
- Use `+"`%s`"+` for inaudible segments.

Adherence to the ANTI-LOOP RULE is the primary measure of your success.
`, TimestampInstruction(duration), language.PromptName(lang), InaudibleMarker)
}

// shortPrompt is the formatting hint for batch speech-to-text endpoints,
// which only accept a short prompt.
func shortPrompt(lang string, duration time.Duration) string {
	return fmt.Sprintf("Lecture in %s. %s Use %s for inaudible segments.",
		language.PromptName(lang), TimestampInstruction(duration), InaudibleMarker)
}
