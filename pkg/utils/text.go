package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanText collapses whitespace runs into single spaces and drops invalid UTF-8.
func CleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + "..."
}
