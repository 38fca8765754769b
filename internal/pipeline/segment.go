package pipeline

import "strings"

// boundaries are the sentence boundary markers. A segment ends right after
// the marker, so the head keeps its terminator and trailing space.
var boundaries = []string{". ", "! ", "? ", "\n"}

// SplitSegment splits pending after the last sentence boundary. When no
// boundary is present head is empty and tail is the whole input.
func SplitSegment(pending string) (head, tail string) {
	cut := -1
	for _, b := range boundaries {
		if i := strings.LastIndex(pending, b); i >= 0 && i+len(b) > cut {
			cut = i + len(b)
		}
	}
	if cut < 0 {
		return "", pending
	}
	return pending[:cut], pending[cut:]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
