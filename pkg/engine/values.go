package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/preetimant/coursesensei/pkg/graph"
)

var leadingNumber = regexp.MustCompile(`\d+\.?\d*`)

// Ordinal is a session number parsed once from its stored string.
type Ordinal struct {
	Raw   string
	N     int
	Valid bool
}

// ParseOrdinal parses a stored session ordinal. Non-integer ordinals keep
// their raw text and are marked invalid.
func ParseOrdinal(s string) Ordinal {
	raw := strings.TrimSpace(s)
	n, err := strconv.Atoi(raw)
	return Ordinal{Raw: raw, N: n, Valid: err == nil}
}

// Percentage is an assessment weight parsed from strings such as "20%".
type Percentage struct {
	Value float64
	Valid bool
}

// ParsePercentage takes the first run of digits, with an optional decimal
// part, as the weight. Text without digits and the sentinel are invalid.
func ParsePercentage(s string) Percentage {
	if graph.IsMissing(s) {
		return Percentage{}
	}
	m := strings.TrimSuffix(leadingNumber.FindString(s), ".")
	if m == "" {
		return Percentage{}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return Percentage{}
	}
	return Percentage{Value: v, Valid: true}
}

// String renders the weight without trailing zeros, e.g. "30" or "50.5".
func (p Percentage) String() string {
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}
