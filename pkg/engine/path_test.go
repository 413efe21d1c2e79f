package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
)

func TestResolvePath(t *testing.T) {
	g := graphtest.University()
	db, _ := g.Node("databases_101")
	algo, _ := g.Node("algorithms")

	tests := []struct {
		name   string
		node   *graph.Node
		path   string
		want   string
		wantOK bool
	}{
		{"single link then attribute", db, "hasCourseMetadata.CourseCredit", "4", true},
		{"list collapses to first", db, "hasInstructorDetails.Instructors", "Anita Rao", true},
		{"three segments through lists", db, "belongsToTerm.belongsToProgram.programName", "MBA Core", true},
		{"final link renders as key", db, "belongsToTerm", "mba_core_term_1", true},
		{"sentinel", db, "hasCourseMetadata.Prerequisites", "", false},
		{"attribute of first list item", db, "hasInstructorDetails.ConsultationHours", "Mon 2-4pm", true},
		{"empty list", algo, "hasCourseMetadata.CourseCredit", "", false},
		{"empty final list", algo, "hasAssessment", "", false},
		{"undeclared relation", db, "hasCourseMetadata.Colour", "", false},
		{"relation of another type", db, "CourseCredit", "", false},
		{"past a scalar", db, "hasCourseMetadata.CourseCredit.Value", "", false},
		{"empty path", db, "", "", false},
		{"nil node", nil, "hasCourseMetadata.CourseCredit", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := engine.ResolvePath(g, tt.node, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, v.String())
				assert.False(t, v.IsMissing())
			}
		})
	}
}

func TestResolvePath_MissingAttributeOnFirstItem(t *testing.T) {
	g := graphtest.University()
	ai, _ := g.Node("intro_to_ai")

	// Only the first instructor detail is read, and its office is absent.
	_, ok := engine.ResolvePath(g, ai, "hasInstructorDetails.Office")
	assert.False(t, ok)
}

func TestResolvePath_RecoversFromFault(t *testing.T) {
	g := graphtest.University()
	db, _ := g.Node("databases_101")

	var broken *graph.Graph
	assert.NotPanics(t, func() {
		_, ok := engine.ResolvePath(broken, db, "hasCourseMetadata.CourseCredit")
		assert.False(t, ok)
	})
}

func TestCompilePath(t *testing.T) {
	schema := graph.CourseSchema()

	p, err := engine.CompilePath(schema, graph.NodeCourse, "belongsToTerm.belongsToProgram.programName")
	require.NoError(t, err)
	assert.Equal(t, engine.Path{"belongsToTerm", "belongsToProgram", "programName"}, p)
	assert.Equal(t, "belongsToTerm.belongsToProgram.programName", p.String())

	_, err = engine.CompilePath(schema, graph.NodeCourse, "hasBasicInfo.Introductio")
	assert.ErrorIs(t, err, graph.ErrUndeclaredRelation)

	_, err = engine.CompilePath(schema, graph.NodeCourse, "")
	assert.Error(t, err)

	_, err = engine.CompilePath(schema, graph.NodeTerm, "hasCourseMetadata")
	assert.ErrorIs(t, err, graph.ErrUndeclaredRelation)
}
