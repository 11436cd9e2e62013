// Package textutil holds string helpers shared by failure reporting.
package textutil

import "unicode/utf8"

// MaxBodySize is the default maximum body size shown in request dumps (10KB).
const MaxBodySize = 10 * 1024

// TruncateBody truncates a string to maxSize bytes, appending "...(truncated)" if truncated.
// If maxSize <= 0, uses MaxBodySize. The cut never splits a UTF-8 sequence.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}
	if len(data) <= maxSize {
		return data
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return data[:cut] + "...(truncated)"
}

// Truncate shortens s to at most maxLen runes, ending with "..." when cut.
// Used for the expected/actual values quoted in mismatch explanations.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
