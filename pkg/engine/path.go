package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/preetimant/coursesensei/pkg/graph"
)

// Path is a dotted chain of relation names, e.g. "hasCourseMetadata.CourseCredit".
type Path []string

// ParsePath splits a dotted path without checking it.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// CompilePath parses a dotted path and checks every segment against the
// schema, starting from the root type. Only the last segment may name an
// attribute.
func CompilePath(schema *graph.Schema, root graph.NodeType, dotted string) (Path, error) {
	p := ParsePath(dotted)
	if len(p) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	t := root
	for i, seg := range p {
		spec, ok := schema.Lookup(t, seg)
		if !ok {
			return nil, fmt.Errorf("path %q: %w: %s.%s", dotted, graph.ErrUndeclaredRelation, t, seg)
		}
		if spec.Kind == graph.KindAttribute {
			if i != len(p)-1 {
				return nil, fmt.Errorf("path %q: attribute %s.%s must be the last segment", dotted, t, seg)
			}
			break
		}
		t = spec.Target
	}
	return p, nil
}

// Resolve walks the path from n. A list met along the way collapses to its
// first element, and so does the final value. Absent relations, empty lists,
// blank values and the sentinel all yield ok == false.
func (p Path) Resolve(g *graph.Graph, n *graph.Node) (v graph.Value, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("path resolution failed", "path", p.String(), "panic", r)
			v, ok = graph.Value{}, false
		}
	}()

	if n == nil || len(p) == 0 {
		return graph.Value{}, false
	}
	current := []graph.Value{{Node: n}}
	for _, seg := range p {
		if len(current) == 0 || current[0].Node == nil {
			return graph.Value{}, false
		}
		vals, declared := g.Relation(current[0].Node, seg)
		if !declared {
			return graph.Value{}, false
		}
		current = vals
	}
	if len(current) == 0 || current[0].IsMissing() {
		return graph.Value{}, false
	}
	return current[0], true
}

// ResolvePath resolves a dotted path from n. See Path.Resolve.
func ResolvePath(g *graph.Graph, n *graph.Node, dotted string) (graph.Value, bool) {
	return ParsePath(dotted).Resolve(g, n)
}
