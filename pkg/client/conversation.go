package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Conversation keeps the session and the live contexts across turns, the way
// an agent platform does between webhook calls.
type Conversation struct {
	client  *Client
	session string

	mu       sync.Mutex
	contexts []Context
}

// NewConversation starts a conversation with a fresh session id.
func (c *Client) NewConversation() *Conversation {
	return &Conversation{
		client:  c,
		session: "projects/coursesensei/agent/sessions/" + uuid.NewString(),
	}
}

// Session returns the session path sent with every turn.
func (cv *Conversation) Session() string {
	return cv.session
}

// Ask sends one turn. Contexts returned by the daemon replace those of the
// same name; the others age by one turn and expire at lifespan zero.
func (cv *Conversation) Ask(ctx context.Context, q Query) (Answer, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	answer, err := cv.client.Fulfill(ctx, cv.session, q, cv.contexts)
	if err != nil {
		return Answer{}, err
	}
	cv.contexts = ageContexts(cv.contexts, answer.Contexts)
	return answer, nil
}

// Contexts returns a copy of the live contexts.
func (cv *Conversation) Contexts() []Context {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return append([]Context(nil), cv.contexts...)
}

// Reset drops every live context.
func (cv *Conversation) Reset() {
	cv.mu.Lock()
	cv.contexts = nil
	cv.mu.Unlock()
}

func ageContexts(live, fresh []Context) []Context {
	out := make([]Context, 0, len(live)+len(fresh))
	renewed := make(map[string]bool, len(fresh))
	for _, c := range fresh {
		renewed[c.Name] = true
		out = append(out, c)
	}
	for _, c := range live {
		if renewed[c.Name] {
			continue
		}
		c.LifespanCount--
		if c.LifespanCount > 0 {
			out = append(out, c)
		}
	}
	return out
}
