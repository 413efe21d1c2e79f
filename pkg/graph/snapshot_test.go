package graph_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/graph"
)

const yamlSnapshot = `
nodes:
  - id: databases_101
    type: Course
    relations:
      hasCourseMetadata: [databases_101_meta]
  - id: databases_101_meta
    type: CourseMetadata
    attributes:
      CourseCredit: 4
      Sections: [A, B]
`

const jsonSnapshot = `{
  "nodes": [
    {"id": "databases_101", "type": "Course", "relations": {"hasCourseMetadata": ["databases_101_meta"]}},
    {"id": "databases_101_meta", "type": "CourseMetadata", "attributes": {"CourseCredit": 4, "Sections": ["A", "B"]}}
  ]
}`

func TestDecodeSnapshot(t *testing.T) {
	for format, body := range map[graph.Format]string{
		graph.FormatYAML: yamlSnapshot,
		graph.FormatJSON: jsonSnapshot,
	} {
		t.Run(string(format), func(t *testing.T) {
			snap, err := graph.DecodeSnapshot(strings.NewReader(body), format)
			require.NoError(t, err)
			require.Len(t, snap.Nodes, 2)

			meta := snap.Nodes[1]
			assert.Equal(t, graph.Values{"4"}, meta.Attributes["CourseCredit"])
			assert.Equal(t, graph.Values{"A", "B"}, meta.Attributes["Sections"])

			g, err := graph.Build(graph.CourseSchema(), snap)
			require.NoError(t, err)
			n, ok := g.Node("databases_101_meta")
			require.True(t, ok)
			assert.Equal(t, "A", n.Attr("Sections"))
		})
	}
}

func TestDecodeSnapshot_RejectsNestedAttribute(t *testing.T) {
	body := `
nodes:
  - id: m
    type: CourseMetadata
    attributes:
      CourseCredit: {value: 4}
`
	_, err := graph.DecodeSnapshot(strings.NewReader(body), graph.FormatYAML)
	assert.Error(t, err)
}

func TestLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlSnapshot), 0644))

	snap, err := graph.LoadSnapshotFile(path)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 2)

	_, err = graph.LoadSnapshotFile(filepath.Join(dir, "kb.owl"))
	assert.ErrorIs(t, err, graph.ErrUnsupportedSnapshot)
}
