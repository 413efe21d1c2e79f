package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/client"
	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
)

func newDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := engine.New(graphtest.University(), engine.Config{Logger: logger})
	require.NoError(t, err)
	ts := httptest.NewServer(api.NewServer(e, "", logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestConversation_Pages(t *testing.T) {
	ts := newDaemon(t)
	cv := client.NewClient(ts.URL).NewConversation()
	assert.True(t, strings.HasPrefix(cv.Session(), "projects/coursesensei/agent/sessions/"))
	ctx := context.Background()

	first, err := cv.Ask(ctx, client.Query{Intent: "GetInstructorForCourse", Params: map[string]any{"courseName": "Databases 101"}})
	require.NoError(t, err)
	assert.Contains(t, first.Text, "Page 1/2")
	assert.Equal(t, client.OutcomeAnswered, first.Outcome)
	require.Len(t, cv.Contexts(), 1)
	assert.Equal(t, cv.Session()+"/contexts/pagination", cv.Contexts()[0].Name)

	next, err := cv.Ask(ctx, client.Query{Intent: engine.IntentNextPage})
	require.NoError(t, err)
	assert.Equal(t, "Rahul Das\n\n(Page 2/2 - Say 'next page' or 'previous page')", next.Text)

	// A non-list answer leaves the cursor alive but one turn older.
	_, err = cv.Ask(ctx, client.Query{Intent: "GetCourseCredits", Params: map[string]any{"courseName": "Databases 101"}})
	require.NoError(t, err)
	require.Len(t, cv.Contexts(), 1)
	assert.Equal(t, engine.ContextLifespan-1, cv.Contexts()[0].LifespanCount)

	prev, err := cv.Ask(ctx, client.Query{Intent: engine.IntentPreviousPage})
	require.NoError(t, err)
	assert.Equal(t, first.Text, prev.Text)

	cv.Reset()
	resp, err := cv.Ask(ctx, client.Query{Intent: engine.IntentNextPage})
	require.NoError(t, err)
	assert.Equal(t, engine.MsgUnsupported, resp.Text)
	assert.Equal(t, client.OutcomeUnsupported, resp.Outcome)
}

func TestConversation_ContextsExpire(t *testing.T) {
	ts := newDaemon(t)
	cv := client.NewClient(ts.URL).NewConversation()
	ctx := context.Background()

	_, err := cv.Ask(ctx, client.Query{Intent: "GetAssessmentTools", Params: map[string]any{"courseName": "Databases 101"}})
	require.NoError(t, err)

	for i := 0; i < engine.ContextLifespan; i++ {
		_, err := cv.Ask(ctx, client.Query{Intent: "GetCourseCredits", Params: map[string]any{"courseName": "Databases 101"}})
		require.NoError(t, err)
	}
	assert.Empty(t, cv.Contexts())
}
