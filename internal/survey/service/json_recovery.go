package service

import "strings"

// ExtractFirstJSONObject returns the first brace-balanced {...} span of text.
// Braces inside string literals are counted like any other brace, and a '}'
// seen before the first '{' is ignored. ok is false when no balanced span exists.
func ExtractFirstJSONObject(text string) (object string, ok bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
