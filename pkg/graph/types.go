package graph

import "strings"

// NodeType represents the semantic type of a node in the course knowledge graph.
type NodeType string

const (
	NodeCourse           NodeType = "Course"
	NodeCourseMetadata   NodeType = "CourseMetadata"
	NodeBasicInfo        NodeType = "BasicInfo"
	NodeInstructorDetail NodeType = "InstructorDetail"
	NodeInstructor       NodeType = "Instructor"
	NodeSessionPlan      NodeType = "SessionPlan"
	NodeAssessment       NodeType = "Assessment"
	NodeTerm             NodeType = "Term"
	NodeProgram          NodeType = "Program"
)

// Sentinel is the stored placeholder for a value that is intentionally absent.
const Sentinel = "NA"

// IsMissing reports whether a stored scalar carries no usable value.
func IsMissing(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == Sentinel
}

// Node represents a vertex in the knowledge graph. Nodes are created by Build
// and never mutated afterwards.
type Node struct {
	ID   string
	Type NodeType

	attrs map[string][]string
	links map[string][]*Node
}

// Attr returns the first stored value of an attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	if vals := n.attrs[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Key returns the identifier part of the node id, i.e. the suffix after the
// last '#' for IRI-style ids.
func (n *Node) Key() string {
	return identifierKey(n.ID)
}

// Value is a single relation value: either a linked node or a scalar.
type Value struct {
	Node *Node
	Text string
}

// IsMissing reports whether the value is absent or the sentinel.
func (v Value) IsMissing() bool {
	return v.Node == nil && IsMissing(v.Text)
}

// String renders the value for display. Linked nodes render as their key.
func (v Value) String() string {
	if v.Node != nil {
		return v.Node.Key()
	}
	return strings.TrimSpace(v.Text)
}

func identifierKey(id string) string {
	if i := strings.LastIndex(id, "#"); i >= 0 {
		return id[i+1:]
	}
	return id
}
