package api

// WebhookRequest is the fulfillment request sent by the conversational agent
// platform (Dialogflow ES layout).
type WebhookRequest struct {
	ResponseID  string      `json:"responseId,omitempty"`
	Session     string      `json:"session,omitempty"`
	QueryResult QueryResult `json:"queryResult"`
}

// QueryResult carries the matched intent and its parameters.
type QueryResult struct {
	QueryText      string          `json:"queryText,omitempty"`
	Parameters     map[string]any  `json:"parameters,omitempty"`
	Intent         Intent          `json:"intent"`
	OutputContexts []OutputContext `json:"outputContexts,omitempty"`
	LanguageCode   string          `json:"languageCode,omitempty"`
}

// Intent identifies the matched intent by display name.
type Intent struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// OutputContext is a conversational context in either direction.
type OutputContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is the fulfillment answer.
type WebhookResponse struct {
	FulfillmentText string          `json:"fulfillmentText"`
	OutputContexts  []OutputContext `json:"outputContexts,omitempty"`
}

// KnowledgeBaseInfo describes the loaded knowledge base for health checks.
type KnowledgeBaseInfo struct {
	Source   string `json:"source,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Nodes    int    `json:"nodes"`
}

// HealthResponse matches GET /v1/health.
type HealthResponse struct {
	Status        string             `json:"status"`
	KnowledgeBase *KnowledgeBaseInfo `json:"knowledge_base,omitempty"`
}

// IntentsResponse matches GET /v1/intents.
type IntentsResponse struct {
	Intents []string `json:"intents"`
}
