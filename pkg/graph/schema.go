package graph

import (
	"fmt"
	"sort"
)

// RelationKind distinguishes scalar attributes from links to other nodes.
type RelationKind int

const (
	KindAttribute RelationKind = iota
	KindLink
)

// RelationSpec declares one named relation on a node type.
type RelationSpec struct {
	Name    string
	Kind    RelationKind
	Many    bool
	Target  NodeType // links only
	Inverse string   // links only; relation filled on the target during Build
}

// Schema maps (node type, relation name) to the relation's declaration.
type Schema struct {
	types map[NodeType]map[string]RelationSpec
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{types: make(map[NodeType]map[string]RelationSpec)}
}

// Declare registers a node type with its relations. Declaring the same type
// twice merges the relation sets.
func (s *Schema) Declare(t NodeType, specs ...RelationSpec) *Schema {
	rels, ok := s.types[t]
	if !ok {
		rels = make(map[string]RelationSpec, len(specs))
		s.types[t] = rels
	}
	for _, spec := range specs {
		rels[spec.Name] = spec
	}
	return s
}

// HasType reports whether t is declared.
func (s *Schema) HasType(t NodeType) bool {
	_, ok := s.types[t]
	return ok
}

// Lookup returns the declaration of a relation on a node type.
func (s *Schema) Lookup(t NodeType, name string) (RelationSpec, bool) {
	spec, ok := s.types[t][name]
	return spec, ok
}

// Types returns the declared node types in sorted order.
func (s *Schema) Types() []NodeType {
	out := make([]NodeType, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks that every link targets a declared type and that every
// inverse names a link on the target pointing back.
func (s *Schema) Validate() error {
	for t, rels := range s.types {
		for name, spec := range rels {
			if spec.Kind != KindLink {
				continue
			}
			if !s.HasType(spec.Target) {
				return fmt.Errorf("%s.%s: %w: %s", t, name, ErrUnknownType, spec.Target)
			}
			if spec.Inverse == "" {
				continue
			}
			inv, ok := s.Lookup(spec.Target, spec.Inverse)
			if !ok || inv.Kind != KindLink || inv.Target != t {
				return fmt.Errorf("%s.%s: inverse %s.%s does not link back", t, name, spec.Target, spec.Inverse)
			}
		}
	}
	return nil
}

func attribute(name string) RelationSpec {
	return RelationSpec{Name: name, Kind: KindAttribute}
}

func linkOne(name string, target NodeType, inverse string) RelationSpec {
	return RelationSpec{Name: name, Kind: KindLink, Target: target, Inverse: inverse}
}

func linkMany(name string, target NodeType, inverse string) RelationSpec {
	return RelationSpec{Name: name, Kind: KindLink, Many: true, Target: target, Inverse: inverse}
}

// CourseSchema returns the schema of the university course ontology.
func CourseSchema() *Schema {
	s := NewSchema()
	s.Declare(NodeCourse,
		linkOne("hasCourseMetadata", NodeCourseMetadata, ""),
		linkOne("hasBasicInfo", NodeBasicInfo, ""),
		linkMany("hasInstructorDetails", NodeInstructorDetail, ""),
		linkMany("hasSessionPlan", NodeSessionPlan, ""),
		linkMany("hasAssessment", NodeAssessment, ""),
		linkMany("belongsToTerm", NodeTerm, "hasCourse"),
	)
	s.Declare(NodeCourseMetadata,
		attribute("CourseCredit"),
		attribute("CourseType"),
		attribute("Prerequisites"),
		attribute("SessionDuration"),
		attribute("TotalSessions"),
		attribute("YearBatch"),
		attribute("Sections"),
		attribute("CourseCodeTitle"),
	)
	s.Declare(NodeBasicInfo,
		attribute("Introduction"),
		attribute("LearningOutcomes"),
		attribute("PedagogyUsed"),
	)
	s.Declare(NodeInstructorDetail,
		attribute("Instructors"),
		attribute("ContactDetails"),
		attribute("Office"),
		attribute("ConsultationHours"),
	)
	s.Declare(NodeInstructor,
		attribute("Instructors"),
		attribute("ContactDetails"),
		attribute("Office"),
		attribute("ConsultationHours"),
		linkMany("teachesCourse", NodeCourse, ""),
	)
	s.Declare(NodeSessionPlan,
		attribute("Session"),
		attribute("Module"),
		attribute("Topic"),
		attribute("ReadingMaterial"),
	)
	s.Declare(NodeAssessment,
		attribute("AssessmentTool"),
		attribute("Percentage"),
		attribute("AssessmentDescription"),
	)
	s.Declare(NodeTerm,
		attribute("termName"),
		linkOne("belongsToProgram", NodeProgram, "hasTerm"),
		linkMany("hasCourse", NodeCourse, "belongsToTerm"),
	)
	s.Declare(NodeProgram,
		attribute("programName"),
		linkMany("hasTerm", NodeTerm, "belongsToProgram"),
	)
	return s
}
