package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputLength is the longest entity name accepted from a caller, in runes.
const MaxInputLength = 50

var (
	validInput   = regexp.MustCompile(`^[\p{L}\p{N}_\s-]+$`)
	invalidRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
)

// ValidInput reports whether a raw entity name may be looked up.
func ValidInput(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxInputLength {
		return false
	}
	return validInput.MatchString(s)
}

// displayName returns the form of a raw parameter that may be echoed back in a
// message. Rejected input is stripped of disallowed characters and truncated.
func displayName(raw string) string {
	if ValidInput(raw) {
		return strings.TrimSpace(raw)
	}
	clean := strings.TrimSpace(invalidRunes.ReplaceAllString(raw, ""))
	if utf8.RuneCountInString(clean) > MaxInputLength {
		clean = string([]rune(clean)[:MaxInputLength])
	}
	return clean
}
