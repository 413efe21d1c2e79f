package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
)

func newResolvers(t *testing.T, cfg engine.ResolverConfig) *engine.Resolvers {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	r, err := engine.NewResolvers(graphtest.University(), cfg)
	require.NoError(t, err)
	return r
}

func TestResolveCourse_NormalizedNamesShareNode(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})
	ctx := context.Background()

	a, ok := r.ResolveCourse(ctx, "Intro to AI")
	require.True(t, ok)
	b, ok := r.ResolveCourse(ctx, "intro-to-ai")
	require.True(t, ok)
	c, ok := r.ResolveCourse(ctx, "Intro to AI")
	require.True(t, ok)

	assert.Equal(t, "intro_to_ai", a.Key())
	assert.Same(t, a, b)
	assert.Same(t, a, c)

	courses, _ := r.CacheStats()
	assert.Equal(t, uint64(2), courses.Misses, "each raw spelling is its own cache key")
	assert.Equal(t, uint64(1), courses.Hits)
	assert.Equal(t, 2, courses.Size)
}

func TestResolveCourse_CachesNotFound(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})
	ctx := context.Background()

	_, ok := r.ResolveCourse(ctx, "Unknown Course")
	assert.False(t, ok)
	_, ok = r.ResolveCourse(ctx, "Unknown Course")
	assert.False(t, ok)

	courses, _ := r.CacheStats()
	assert.Equal(t, uint64(1), courses.Misses)
	assert.Equal(t, uint64(1), courses.Hits)
}

func TestResolveCourse_InvalidInputSkipsCache(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})
	ctx := context.Background()

	for _, raw := range []string{"", "C++ Systems", "x'; DROP TABLE courses"} {
		_, ok := r.ResolveCourse(ctx, raw)
		assert.False(t, ok, raw)
	}
	courses, _ := r.CacheStats()
	assert.Equal(t, 0, courses.Size)
	assert.Zero(t, courses.Misses)
}

func TestResolveCourse_RejectsOtherTypes(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})

	_, ok := r.ResolveCourse(context.Background(), "MBA Core")
	assert.False(t, ok, "a program is not a course")
}

func TestResolveCourse_Evicts(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{CourseCacheSize: 2})
	ctx := context.Background()

	for _, name := range []string{"Databases 101", "Intro to AI", "Algorithms"} {
		_, ok := r.ResolveCourse(ctx, name)
		require.True(t, ok, name)
	}
	courses, _ := r.CacheStats()
	assert.Equal(t, 2, courses.Size)
	assert.Equal(t, uint64(1), courses.Evictions)
}

func TestResolveInstructor(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})
	ctx := context.Background()

	n, ok := r.ResolveInstructor(ctx, "  Anita Rao ")
	require.True(t, ok)
	assert.Equal(t, graph.NodeInstructor, n.Type)

	_, ok = r.ResolveInstructor(ctx, "anita rao")
	assert.False(t, ok, "instructor names match exactly")

	_, ok = r.ResolveInstructor(ctx, "Rahul Das")
	assert.False(t, ok, "course instructor details are not instructors")

	_, instructors := r.CacheStats()
	assert.Equal(t, 3, instructors.Size)
}

func TestResolveNamed(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{})

	n, ok := r.ResolveNamed(engine.EntityProgram, graph.NodeProgram, "MBA Core")
	require.True(t, ok)
	assert.Equal(t, "mba_core", n.ID)

	_, ok = r.ResolveNamed(engine.EntityTerm, graph.NodeTerm, "MBA Core")
	assert.False(t, ok)

	_, ok = r.ResolveNamed(engine.EntityProgram, graph.NodeProgram, "M&A")
	assert.False(t, ok)
}

type memoryIndex struct {
	mu         sync.Mutex
	entries    map[string]string
	lookupErr  error
	remembered []string
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{entries: make(map[string]string)}
}

func (m *memoryIndex) Lookup(_ context.Context, kind, raw string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return "", false, m.lookupErr
	}
	id, ok := m.entries[kind+"/"+raw]
	return id, ok, nil
}

func (m *memoryIndex) Remember(_ context.Context, kind, raw, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[kind+"/"+raw] = id
	m.remembered = append(m.remembered, kind+"/"+raw+"="+id)
	return nil
}

func TestResolvers_UseIndex(t *testing.T) {
	ctx := context.Background()
	idx := newMemoryIndex()
	idx.entries["course/AI Course"] = "intro_to_ai"
	idx.entries["course/Algorithms"] = ""

	r := newResolvers(t, engine.ResolverConfig{Index: idx})

	n, ok := r.ResolveCourse(ctx, "AI Course")
	require.True(t, ok, "index hit resolves names the graph does not know")
	assert.Equal(t, "intro_to_ai", n.ID)

	_, ok = r.ResolveCourse(ctx, "Algorithms")
	assert.False(t, ok, "a recorded miss wins over the graph")

	_, ok = r.ResolveCourse(ctx, "Databases 101")
	require.True(t, ok)
	_, ok = r.ResolveCourse(ctx, "Unknown Course")
	require.False(t, ok)

	assert.Equal(t, []string{
		"course/Databases 101=databases_101",
		"course/Unknown Course=",
	}, idx.remembered)
}

func TestResolvers_IndexFailureFallsBackToGraph(t *testing.T) {
	idx := newMemoryIndex()
	idx.lookupErr = errors.New("connection refused")
	r := newResolvers(t, engine.ResolverConfig{Index: idx})

	n, ok := r.ResolveCourse(context.Background(), "Databases 101")
	require.True(t, ok)
	assert.Equal(t, "databases_101", n.ID)
}

func TestResolvers_StaleIndexEntry(t *testing.T) {
	idx := newMemoryIndex()
	idx.entries["course/Databases 101"] = "removed_course"
	r := newResolvers(t, engine.ResolverConfig{Index: idx})

	n, ok := r.ResolveCourse(context.Background(), "Databases 101")
	require.True(t, ok)
	assert.Equal(t, "databases_101", n.ID)
	assert.Equal(t, "databases_101", idx.entries["course/Databases 101"])
}

func TestResolvers_Concurrent(t *testing.T) {
	r := newResolvers(t, engine.ResolverConfig{CourseCacheSize: 2})
	names := map[string]string{
		"Databases 101": "databases_101",
		"Intro to AI":   "intro_to_ai",
		"intro-to-ai":   "intro_to_ai",
		"Algorithms":    "algorithms",
	}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				for raw, want := range names {
					n, ok := r.ResolveCourse(context.Background(), raw)
					if assert.True(t, ok, raw) {
						assert.Equal(t, want, n.ID, raw)
					}
				}
			}
		}()
	}
	wg.Wait()
}
