package graph

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Identifier derives the node identifier for a display name: trimmed,
// lower-cased, with every run of non-word characters collapsed to '_'.
// Two names with the same identifier denote the same node.
func Identifier(name string) string {
	return nonWord.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}
