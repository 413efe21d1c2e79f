package graph

import (
	"fmt"
	"sort"
)

// Graph is an immutable, schema-checked knowledge graph. All read methods are
// safe for concurrent use because nothing mutates the graph after Build.
type Graph struct {
	schema *Schema
	nodes  []*Node
	byID   map[string]*Node
	byKey  map[string]*Node
	byType map[NodeType][]*Node
}

// Build validates a snapshot against the schema and links its nodes.
// Declared inverse links are filled in so that either side may be authored.
func Build(schema *Schema, snap Snapshot) (*Graph, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	g := &Graph{
		schema: schema,
		nodes:  make([]*Node, 0, len(snap.Nodes)),
		byID:   make(map[string]*Node, len(snap.Nodes)),
		byKey:  make(map[string]*Node, len(snap.Nodes)),
		byType: make(map[NodeType][]*Node),
	}

	// Pass 1: nodes and attributes
	for _, rec := range snap.Nodes {
		if rec.ID == "" {
			return nil, fmt.Errorf("node of type %s has empty id", rec.Type)
		}
		if !schema.HasType(rec.Type) {
			return nil, fmt.Errorf("node %q: %w: %s", rec.ID, ErrUnknownType, rec.Type)
		}
		if _, dup := g.byID[rec.ID]; dup {
			return nil, fmt.Errorf("node %q: %w", rec.ID, ErrDuplicateNode)
		}

		n := &Node{
			ID:    rec.ID,
			Type:  rec.Type,
			attrs: make(map[string][]string, len(rec.Attributes)),
			links: make(map[string][]*Node),
		}
		for name, vals := range rec.Attributes {
			spec, ok := schema.Lookup(rec.Type, name)
			if !ok || spec.Kind != KindAttribute {
				return nil, fmt.Errorf("node %q: %w: %s.%s", rec.ID, ErrUndeclaredRelation, rec.Type, name)
			}
			// Exported ontologies often repeat datatype properties, so extra
			// attribute values are kept and readers take the first.
			n.attrs[name] = append([]string(nil), vals...)
		}

		g.nodes = append(g.nodes, n)
		g.byID[n.ID] = n
		key := n.Key()
		if _, taken := g.byKey[key]; !taken {
			g.byKey[key] = n
		}
		g.byType[n.Type] = append(g.byType[n.Type], n)
	}

	// Pass 2: links and their inverses
	for _, rec := range snap.Nodes {
		from := g.byID[rec.ID]
		for _, name := range sortedKeys(rec.Relations) {
			spec, ok := schema.Lookup(rec.Type, name)
			if !ok || spec.Kind != KindLink {
				return nil, fmt.Errorf("node %q: %w: %s.%s", rec.ID, ErrUndeclaredRelation, rec.Type, name)
			}
			for _, targetID := range rec.Relations[name] {
				to, ok := g.byID[targetID]
				if !ok {
					return nil, fmt.Errorf("node %q: %w: %s -> %q", rec.ID, ErrDanglingLink, name, targetID)
				}
				if to.Type != spec.Target {
					return nil, fmt.Errorf("node %q: %w: %s -> %q is %s, want %s", rec.ID, ErrTargetType, name, targetID, to.Type, spec.Target)
				}
				addLink(from, name, to)
				if spec.Inverse != "" {
					addLink(to, spec.Inverse, from)
				}
			}
		}
	}

	// Pass 3: cardinality, checked after inverses are in place
	for _, n := range g.nodes {
		for name, targets := range n.links {
			spec, _ := schema.Lookup(n.Type, name)
			if !spec.Many && len(targets) > 1 {
				return nil, fmt.Errorf("node %q: %w: %s has %d targets", n.ID, ErrCardinality, name, len(targets))
			}
		}
	}

	return g, nil
}

func addLink(from *Node, name string, to *Node) {
	for _, existing := range from.links[name] {
		if existing == to {
			return
		}
	}
	from.links[name] = append(from.links[name], to)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schema returns the schema the graph was validated against.
func (g *Graph) Schema() *Schema {
	return g.schema
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the exact id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// FindByIdentifier returns the node whose id, or the suffix of its id after
// '#', equals the identifier.
func (g *Graph) FindByIdentifier(identifier string) (*Node, bool) {
	if identifier == "" {
		return nil, false
	}
	if n, ok := g.byKey[identifier]; ok {
		return n, true
	}
	n, ok := g.byID[identifier]
	return n, ok
}

// FindByAttribute returns the first node of type t, in load order, having an
// attribute value equal to value.
func (g *Graph) FindByAttribute(t NodeType, attr, value string) (*Node, bool) {
	for _, n := range g.byType[t] {
		for _, v := range n.attrs[attr] {
			if v == value {
				return n, true
			}
		}
	}
	return nil, false
}

// AllOfType returns every node of type t in load order.
func (g *Graph) AllOfType(t NodeType) []*Node {
	return append([]*Node(nil), g.byType[t]...)
}

// Relation reads a named relation of a node. The second result is false when
// the relation is not declared for the node's type; a declared relation with
// no stored values returns an empty slice and true.
func (g *Graph) Relation(n *Node, name string) ([]Value, bool) {
	if n == nil {
		return nil, false
	}
	spec, ok := g.schema.Lookup(n.Type, name)
	if !ok {
		return nil, false
	}
	if spec.Kind == KindAttribute {
		raw := n.attrs[name]
		out := make([]Value, len(raw))
		for i, s := range raw {
			out[i] = Value{Text: s}
		}
		return out, true
	}
	targets := n.links[name]
	out := make([]Value, len(targets))
	for i, t := range targets {
		out[i] = Value{Node: t}
	}
	return out, true
}

// Links returns the linked nodes of a relation, or nil.
func (g *Graph) Links(n *Node, name string) []*Node {
	if n == nil {
		return nil
	}
	return append([]*Node(nil), n.links[name]...)
}

// Counts returns the number of nodes per type.
func (g *Graph) Counts() map[NodeType]int {
	out := make(map[NodeType]int, len(g.byType))
	for t, nodes := range g.byType {
		out[t] = len(nodes)
	}
	return out
}
