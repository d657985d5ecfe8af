package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes, appending "..." when anything
// was cut. Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	cut := 0
	for i := range s {
		if cut == maxLen {
			return s[:i] + "..."
		}
		cut++
	}
	return s
}
