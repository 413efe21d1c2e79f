package engine

import (
	"fmt"
	"strings"

	"github.com/preetimant/coursesensei/pkg/graph"
)

const (
	// MsgUnsupported answers an intent missing from the dispatch table.
	MsgUnsupported = "This query type is not supported yet."
	// MsgInternalError answers any request whose handling faulted.
	MsgInternalError = "Sorry, I encountered an error processing your request."

	paginationFooter = "\n\n(Page %d/%d - Say 'next page' or 'previous page')"
)

// Outcome classifies a response for metrics and load testing.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeNoData      Outcome = "no_data"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeError       Outcome = "error"
)

type result struct {
	text    string
	outcome Outcome
	page    *Page
}

func answered(format string, args ...any) result {
	return result{text: fmt.Sprintf(format, args...), outcome: OutcomeAnswered}
}

// NotFoundMessage renders the not_found template.
func NotFoundMessage(entity, name string) string {
	return fmt.Sprintf("I couldn't find %s '%s'.", entity, displayName(name))
}

// NoDataMessage renders the no_data template.
func NoDataMessage(data, entity, name string) string {
	return fmt.Sprintf("No %s available for %s '%s'.", data, entity, displayName(name))
}

func notFound(entity, name string) result {
	return result{text: NotFoundMessage(entity, name), outcome: OutcomeNotFound}
}

func noData(data, entity, name string) result {
	return result{text: NoDataMessage(data, entity, name), outcome: OutcomeNoData}
}

// field is a labelled value that is dropped when missing.
type field struct {
	label string
	value string
}

// joinFields renders "Label: value" pairs separated by sep, skipping missing
// values together with their label and separator.
func joinFields(sep string, fields ...field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if graph.IsMissing(f.value) {
			continue
		}
		v := strings.TrimSpace(f.value)
		if f.label != "" {
			v = f.label + ": " + v
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, sep)
}

// joinPresent joins the non-missing values with sep.
func joinPresent(sep string, values ...string) string {
	fields := make([]field, len(values))
	for i, v := range values {
		fields[i] = field{value: v}
	}
	return joinFields(sep, fields...)
}
