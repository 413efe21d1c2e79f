package client

import "net/http"

// Query is one question: an intent name and its parameters.
type Query struct {
	Intent string         `json:"intent"`
	Params map[string]any `json:"params,omitempty"`
}

// Context is a conversational context as exchanged with the webhook.
type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// Answer is the fulfillment returned for a query. Outcome is read from the
// response header and is empty when the daemon does not send one.
type Answer struct {
	Text     string    `json:"fulfillmentText"`
	Contexts []Context `json:"outputContexts,omitempty"`
	Outcome  string    `json:"-"`
}

// OutcomeHeader is the response header classifying an answer.
const OutcomeHeader = "X-CourseSensei-Outcome"

// Outcome values sent by the daemon.
const (
	OutcomeAnswered    = "answered"
	OutcomeNotFound    = "not_found"
	OutcomeNoData      = "no_data"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
)

func (a *Answer) readHeader(h http.Header) {
	a.Outcome = h.Get(OutcomeHeader)
}

// Status represents the health of the daemon.
type Status struct {
	Status        string         `json:"status"`
	KnowledgeBase *KnowledgeBase `json:"knowledge_base,omitempty"`
}

// KnowledgeBase describes the graph the daemon serves.
type KnowledgeBase struct {
	Source   string `json:"source,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Nodes    int    `json:"nodes"`
}

type webhookRequest struct {
	Session     string      `json:"session,omitempty"`
	QueryResult queryResult `json:"queryResult"`
}

type queryResult struct {
	QueryText      string         `json:"queryText,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Intent         intent         `json:"intent"`
	OutputContexts []Context      `json:"outputContexts,omitempty"`
}

type intent struct {
	DisplayName string `json:"displayName"`
}
