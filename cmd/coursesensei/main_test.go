package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
	"github.com/preetimant/coursesensei/pkg/store"
)

func daemon(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := engine.New(graphtest.University(), engine.Config{Logger: logger})
	require.NoError(t, err)
	s := api.NewServer(e, "", logger)
	s.SetKnowledgeBase(api.KnowledgeBaseInfo{Source: "fixture", Checksum: "0123456789abcdef", Nodes: 36})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestRun_Ask(t *testing.T) {
	url := daemon(t)

	var out, errOut bytes.Buffer
	code := run([]string{"-api", url, "ask", "GetCourseCredits", "courseName=Databases 101"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "4 credits.\n", out.String())

	out.Reset()
	code = run([]string{"-api", url, "ask", "GetCourseCredits", `courseName="Intro to AI"`}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Equal(t, "3 credits.\n", out.String())
}

func TestRun_IntentsAndHealth(t *testing.T) {
	url := daemon(t)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"-api", url, "intents"}, &out, &errOut))
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 31)

	out.Reset()
	require.Equal(t, 0, run([]string{"-api", url, "health"}, &out, &errOut))
	assert.Contains(t, out.String(), "status: ok")
	assert.Contains(t, out.String(), "checksum 0123456789abcdef")
}

func TestRun_Import(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "kb.yaml")
	require.NoError(t, os.WriteFile(snapPath, []byte(`
nodes:
  - id: databases_101
    type: Course
`), 0644))
	dbPath := filepath.Join(dir, "kb.db")

	var out, errOut bytes.Buffer
	code := run([]string{"import", snapPath, dbPath}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Imported 1 nodes")

	st, err := store.NewStore(dbPath)
	require.NoError(t, err)
	defer st.Close()
	g, err := st.LoadGraph(context.Background(), graph.CourseSchema())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestRun_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Equal(t, 2, run([]string{"launch"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"import", "only-one"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"-api", "http://127.0.0.1:1", "ask"}, &out, &errOut))

	errOut.Reset()
	assert.Equal(t, 1, run([]string{"-api", "http://127.0.0.1:1", "-timeout", "200ms", "ask", "GetCourseCredits"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Is coursesensei-d running?")
}
