package assist

import "strings"

// EstimateTokens gives a rough token count using a word-based heuristic.
// Exact tokenization is not required for prompt sizing.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// TruncateToTokens trims text to roughly maxTokens, cutting on a word
// boundary and marking the cut. Text already under the limit comes back
// untouched, formatting included.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if EstimateTokens(text) <= maxTokens {
		return text
	}
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / 1.33)
	if keep < 1 {
		keep = 1
	}
	if keep >= len(words) {
		return text
	}
	return strings.Join(words[:keep], " ") + " [...]"
}
