package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
	"github.com/preetimant/coursesensei/pkg/store"
)

const snapshotYAML = `
nodes:
  - id: databases_101
    type: Course
    relations:
      hasCourseMetadata: [databases_101_meta]
  - id: databases_101_meta
    type: CourseMetadata
    attributes:
      CourseCredit: 4
`

func TestLoadKnowledgeBase_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0644))

	g, info, err := loadKnowledgeBase(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, path, info.Source)
	assert.Len(t, info.Checksum, 16)
	assert.Equal(t, 2, info.Nodes)
}

func TestLoadKnowledgeBase_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kb.db")

	// Never imported.
	_, _, err := loadKnowledgeBase(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmpty)

	st, err := store.NewStore(path)
	require.NoError(t, err)
	imported, err := st.ImportSnapshot(ctx, graph.CourseSchema(), graphtest.UniversitySnapshot(), "fixture.yaml")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	g, info, err := loadKnowledgeBase(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, imported.Checksum, info.Checksum)
	assert.Equal(t, "fixture.yaml", info.Source)
	assert.Equal(t, g.Len(), info.Nodes)
}

func TestLoadKnowledgeBase_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := loadKnowledgeBase(context.Background(), filepath.Join(dir, "kb.owl"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nodes":[{"id":"x","type":"Spaceship"}]}`), 0644))
	_, _, err = loadKnowledgeBase(context.Background(), bad)
	assert.ErrorIs(t, err, graph.ErrUnknownType)
}
