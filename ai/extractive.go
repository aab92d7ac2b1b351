package ai

import "strings"

// ExtractiveSummary returns the first maxWords whitespace-separated words of
// text, with an ellipsis marker appended when the input was truncated. It is
// a degraded-mode summarizer for when the provider is out of reach; callers
// select it explicitly, it is never substituted for a failed completion.
func ExtractiveSummary(text string, maxWords int) string {
	words := strings.Fields(text)
	if maxWords <= 0 || len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
