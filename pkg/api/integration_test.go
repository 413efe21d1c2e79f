package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
	"github.com/preetimant/coursesensei/pkg/store"
)

// The daemon path: snapshot imported into sqlite, graph loaded back from
// the store and served over HTTP.
func TestWebhook_FromStoredKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "kb.db"))
	require.NoError(t, err)
	defer st.Close()

	info, err := st.ImportSnapshot(ctx, graph.CourseSchema(), graphtest.UniversitySnapshot(), "fixture")
	require.NoError(t, err)

	g, err := st.LoadGraph(ctx, graph.CourseSchema())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := engine.New(g, engine.Config{Logger: logger})
	require.NoError(t, err)

	s := api.NewServer(e, "", logger)
	s.SetKnowledgeBase(api.KnowledgeBaseInfo{Source: info.Source, Checksum: info.Checksum, Nodes: info.Nodes})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, err := json.Marshal(api.WebhookRequest{QueryResult: api.QueryResult{
		Intent:     api.Intent{DisplayName: "GetCourseTopics"},
		Parameters: map[string]any{"courseName": "Databases 101"},
	}})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/webhook", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.WebhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	// Sessions keep their stored order, not numeric order.
	assert.Contains(t, out.FulfillmentText, "Session 2: Foundations - SQL basics\nSession 1: Foundations - Relational model\nSession 10: Design - Indexing")
	require.Len(t, out.OutputContexts, 1)
	assert.Equal(t, "pagination", out.OutputContexts[0].Name)
}
