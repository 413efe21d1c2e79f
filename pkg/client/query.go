package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyQuery is returned by ParseQuery for a blank line.
var ErrEmptyQuery = errors.New("empty query")

// ParseQuery reads a query line of the form
//
//	GetCourseCredits courseName="Databases 101" page=2
//
// Values may be double-quoted. "next" and "prev" are shorthands for the
// paging intents.
func ParseQuery(line string) (Query, error) {
	fields, err := splitFields(line)
	if err != nil {
		return Query{}, err
	}
	if len(fields) == 0 {
		return Query{}, ErrEmptyQuery
	}

	q := Query{Intent: fields[0]}
	switch strings.ToLower(q.Intent) {
	case "next", "n":
		q.Intent = "NextPage"
	case "prev", "previous", "p":
		q.Intent = "PreviousPage"
	}

	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return Query{}, fmt.Errorf("parameter %q: want key=value", f)
		}
		if q.Params == nil {
			q.Params = make(map[string]any)
		}
		q.Params[key] = value
	}
	return q, nil
}

func splitFields(line string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
