package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/preetimant/coursesensei/pkg/cache"
	"github.com/preetimant/coursesensei/pkg/graph"
)

const (
	DefaultCourseCacheSize     = 100
	DefaultInstructorCacheSize = 50
)

// Entity kinds handled by the resolvers.
const (
	EntityCourse     = "course"
	EntityInstructor = "instructor"
	EntityProgram    = "program"
	EntityTerm       = "term"
)

// ResolutionIndex is a shared second cache tier behind the in-process LRUs,
// mapping (kind, raw input) to a node id. An empty id records a known miss.
type ResolutionIndex interface {
	Lookup(ctx context.Context, kind, raw string) (id string, found bool, err error)
	Remember(ctx context.Context, kind, raw, id string) error
}

// ResolverConfig configures NewResolvers. Zero sizes select the defaults.
type ResolverConfig struct {
	CourseCacheSize     int
	InstructorCacheSize int
	Index               ResolutionIndex
	Logger              *slog.Logger
}

// Resolvers turn raw user-supplied names into graph nodes. Results, misses
// included, are memoized per raw input string.
type Resolvers struct {
	graph       *graph.Graph
	courses     *cache.LRU[string, *graph.Node]
	instructors *cache.LRU[string, *graph.Node]
	index       ResolutionIndex
	group       singleflight.Group
	logger      *slog.Logger
}

// NewResolvers creates resolvers over g with fresh caches.
func NewResolvers(g *graph.Graph, cfg ResolverConfig) (*Resolvers, error) {
	if cfg.CourseCacheSize == 0 {
		cfg.CourseCacheSize = DefaultCourseCacheSize
	}
	if cfg.InstructorCacheSize == 0 {
		cfg.InstructorCacheSize = DefaultInstructorCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	courses, err := cache.NewLRU[string, *graph.Node](EntityCourse, cfg.CourseCacheSize)
	if err != nil {
		return nil, err
	}
	instructors, err := cache.NewLRU[string, *graph.Node](EntityInstructor, cfg.InstructorCacheSize)
	if err != nil {
		return nil, err
	}

	return &Resolvers{
		graph:       g,
		courses:     courses,
		instructors: instructors,
		index:       cfg.Index,
		logger:      cfg.Logger,
	}, nil
}

// ResolveCourse finds a course by the identifier derived from its name.
func (r *Resolvers) ResolveCourse(ctx context.Context, raw string) (*graph.Node, bool) {
	return r.resolve(ctx, EntityCourse, raw, r.courses, func(name string) (*graph.Node, bool) {
		return r.findByIdentifier(name, graph.NodeCourse)
	})
}

// ResolveInstructor finds an instructor by exact match on the trimmed name.
func (r *Resolvers) ResolveInstructor(ctx context.Context, raw string) (*graph.Node, bool) {
	return r.resolve(ctx, EntityInstructor, raw, r.instructors, func(name string) (*graph.Node, bool) {
		return r.graph.FindByAttribute(graph.NodeInstructor, "Instructors", strings.TrimSpace(name))
	})
}

// ResolveNamed finds a program or term by identifier. It is not cached.
func (r *Resolvers) ResolveNamed(kind string, t graph.NodeType, raw string) (*graph.Node, bool) {
	if !ValidInput(raw) {
		r.logger.Warn("invalid input", "kind", kind, "input", raw)
		return nil, false
	}
	return r.findByIdentifier(raw, t)
}

// CacheStats returns the course and instructor cache counters.
func (r *Resolvers) CacheStats() (courses, instructors cache.Stats) {
	return r.courses.Stats(), r.instructors.Stats()
}

func (r *Resolvers) findByIdentifier(name string, t graph.NodeType) (*graph.Node, bool) {
	n, ok := r.graph.FindByIdentifier(graph.Identifier(name))
	if !ok || n.Type != t {
		return nil, false
	}
	return n, true
}

func (r *Resolvers) resolve(
	ctx context.Context,
	kind, raw string,
	c *cache.LRU[string, *graph.Node],
	lookup func(string) (*graph.Node, bool),
) (*graph.Node, bool) {
	if !ValidInput(raw) {
		r.logger.Warn("invalid input", "kind", kind, "input", raw)
		return nil, false
	}
	if n, ok := c.Get(raw); ok {
		return n, n != nil
	}

	v, _, _ := r.group.Do(kind+"\x00"+raw, func() (any, error) {
		n := r.lookupIndexed(ctx, kind, raw, lookup)
		c.Add(raw, n)
		return n, nil
	})
	n, _ := v.(*graph.Node)
	return n, n != nil
}

func (r *Resolvers) lookupIndexed(ctx context.Context, kind, raw string, lookup func(string) (*graph.Node, bool)) *graph.Node {
	if r.index != nil {
		id, found, err := r.index.Lookup(ctx, kind, raw)
		switch {
		case err != nil:
			r.logger.Warn("resolution index lookup failed", "kind", kind, "error", err)
		case found && id == "":
			return nil
		case found:
			if n, ok := r.graph.Node(id); ok {
				return n
			}
			r.logger.Debug("stale resolution index entry", "kind", kind, "id", id)
		}
	}

	n, ok := lookup(raw)
	if !ok {
		n = nil
	}
	if r.index != nil {
		id := ""
		if n != nil {
			id = n.ID
		}
		if err := r.index.Remember(ctx, kind, raw, id); err != nil {
			r.logger.Warn("resolution index update failed", "kind", kind, "error", fmt.Errorf("remember %q: %w", raw, err))
		}
	}
	return n
}
