package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/preetimant/coursesensei/pkg/graph"
)

type customHandler func(e *Engine, ctx context.Context, params map[string]string) result

var customHandlers = map[HandlerID]customHandler{
	HandlerContactInstructor:         (*Engine).contactInstructor,
	HandlerCoursesByInstructor:       (*Engine).coursesByInstructor,
	HandlerCoursesByInstructorInProg: (*Engine).coursesByInstructorInProgram,
	HandlerConsultationContact:       (*Engine).consultationContact,
	HandlerSessionInfo:               (*Engine).sessionInfo,
	HandlerFullSessionPlan:           (*Engine).fullSessionPlan,
	HandlerReadingMaterials:          (*Engine).readingMaterials,
	HandlerAssessmentPercentage:      (*Engine).assessmentPercentage,
	HandlerAssessmentDetails:         (*Engine).assessmentDetails,
	HandlerHighestAssessmentTool:     (*Engine).highestAssessmentTool,
	HandlerTermForCourseProgram:      (*Engine).termForCourseProgram,
	HandlerCoursesInProgramTerm:      (*Engine).coursesInProgramTerm,
	HandlerInstructorsInProgramTerm:  (*Engine).instructorsInProgramTerm,
}

// Paths read by the custom handlers, checked in New.
var customPaths = map[graph.NodeType][]string{
	graph.NodeCourse: {pathCourseTitle},
}

const (
	pathCourseTitle  = "hasCourseMetadata.CourseCodeTitle"
	maxReadingsShown = 5
)

func (e *Engine) courseTitle(course *graph.Node) (string, bool) {
	v, ok := e.paths[pathCourseTitle].Resolve(e.graph, course)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// courseTitles returns the titles of courses in order, skipping untitled ones.
func (e *Engine) courseTitles(courses []*graph.Node) []string {
	titles := make([]string, 0, len(courses))
	for _, c := range courses {
		if t, ok := e.courseTitle(c); ok {
			titles = append(titles, t)
		}
	}
	return titles
}

// containsIdentifier reports whether the identifier of n contains the
// identifier derived from name. The match is by substring, so "BA" matches
// both "bba" and "mba_core".
func containsIdentifier(n *graph.Node, name string) bool {
	return strings.Contains(n.Key(), graph.Identifier(name))
}

func (e *Engine) contactInstructor(ctx context.Context, params map[string]string) result {
	name := params[ParamInstructor]
	inst, ok := e.resolvers.ResolveInstructor(ctx, name)
	if !ok {
		return notFound(EntityInstructor, name)
	}
	if graph.IsMissing(inst.Attr("ContactDetails")) {
		return noData("contact details", EntityInstructor, name)
	}
	return answered("%s", joinFields(", ",
		field{"Contact", inst.Attr("ContactDetails")},
		field{"Consultation Hours", inst.Attr("ConsultationHours")},
	))
}

func (e *Engine) coursesByInstructor(ctx context.Context, params map[string]string) result {
	name := params[ParamInstructor]
	inst, ok := e.resolvers.ResolveInstructor(ctx, name)
	if !ok {
		return notFound(EntityInstructor, name)
	}
	titles := e.courseTitles(e.graph.Links(inst, "teachesCourse"))
	if len(titles) == 0 {
		return noData("courses", EntityInstructor, name)
	}
	return answered("%s teaches: %s.", displayName(name), strings.Join(titles, ", "))
}

func (e *Engine) coursesByInstructorInProgram(ctx context.Context, params map[string]string) result {
	name, program := params[ParamInstructor], params[ParamProgram]
	inst, ok := e.resolvers.ResolveInstructor(ctx, name)
	if !ok {
		return notFound(EntityInstructor, name)
	}

	var matched []*graph.Node
	for _, course := range e.graph.Links(inst, "teachesCourse") {
		for _, term := range e.graph.Links(course, "belongsToTerm") {
			prog := e.graph.Links(term, "belongsToProgram")
			if len(prog) > 0 && containsIdentifier(prog[0], program) {
				matched = append(matched, course)
				break
			}
		}
	}
	titles := e.courseTitles(matched)
	if len(titles) == 0 {
		return noData("courses", EntityInstructor, name)
	}
	return answered("Courses taught by %s in %s: %s.", displayName(name), displayName(program), strings.Join(titles, ", "))
}

func (e *Engine) consultationContact(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	details := e.graph.Links(course, "hasInstructorDetails")
	if len(details) == 0 {
		return noData("consultation details", EntityCourse, name)
	}
	text := joinFields(", ",
		field{"Contact", details[0].Attr("ContactDetails")},
		field{"Consultation Hours", details[0].Attr("ConsultationHours")},
	)
	if text == "" {
		return noData("consultation details", EntityCourse, name)
	}
	return answered("%s", text)
}

func (e *Engine) sessionInfo(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	want := strings.TrimSpace(params[ParamSession])
	for _, s := range e.graph.Links(course, "hasSessionPlan") {
		raw := ParseOrdinal(s.Attr("Session")).Raw
		if want == "" || graph.IsMissing(raw) || raw != want {
			continue
		}
		text := joinFields(", ",
			field{"Module", s.Attr("Module")},
			field{"Topic", s.Attr("Topic")},
			field{"Materials", s.Attr("ReadingMaterial")},
		)
		if text == "" {
			break
		}
		return answered("%s", text)
	}
	return noData("session information", EntityCourse, name)
}

// sessionsInOrder sorts session plans by numeric ordinal. When any ordinal
// is not an integer the storage order is kept.
func sessionsInOrder(sessions []*graph.Node) []*graph.Node {
	ords := make(map[*graph.Node]Ordinal, len(sessions))
	for _, s := range sessions {
		o := ParseOrdinal(s.Attr("Session"))
		if !o.Valid {
			return sessions
		}
		ords[s] = o
	}
	sorted := append([]*graph.Node(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ords[sorted[i]].N < ords[sorted[j]].N
	})
	return sorted
}

func (e *Engine) fullSessionPlan(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}

	var lines []string
	for _, s := range sessionsInOrder(e.graph.Links(course, "hasSessionPlan")) {
		topic := s.Attr("Topic")
		if graph.IsMissing(topic) {
			continue
		}
		line := joinPresent(" - ", s.Attr("Module"), topic)
		if ord := ParseOrdinal(s.Attr("Session")); !graph.IsMissing(ord.Raw) {
			line = fmt.Sprintf("Session %s: %s", ord.Raw, line)
		}
		if m := s.Attr("ReadingMaterial"); !graph.IsMissing(m) {
			line += fmt.Sprintf(" (Materials: %s)", strings.TrimSpace(m))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return noData("session plan", EntityCourse, name)
	}
	return answered("Course topics:\n%s", strings.Join(lines, "\n"))
}

func (e *Engine) readingMaterials(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}

	var materials []string
	for _, s := range sessionsInOrder(e.graph.Links(course, "hasSessionPlan")) {
		if m := s.Attr("ReadingMaterial"); !graph.IsMissing(m) {
			materials = append(materials, strings.TrimSpace(m))
		}
		if len(materials) == maxReadingsShown {
			break
		}
	}
	if len(materials) == 0 {
		return noData("reading materials", EntityCourse, name)
	}
	return answered("Required readings:\n%s", strings.Join(materials, "\n"))
}

func (e *Engine) assessmentPercentage(ctx context.Context, params map[string]string) result {
	name, tool := params[ParamCourse], params[ParamAssessmentTool]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	want := strings.TrimSpace(tool)
	for _, a := range e.graph.Links(course, "hasAssessment") {
		got := a.Attr("AssessmentTool")
		if graph.IsMissing(got) || !strings.EqualFold(strings.TrimSpace(got), want) {
			continue
		}
		p := ParsePercentage(a.Attr("Percentage"))
		if !p.Valid {
			return noData("assessment percentage", EntityCourse, name)
		}
		return answered("%s accounts for %s%% of the grade.", strings.TrimSpace(got), p)
	}
	return notFound("assessment tool", tool)
}

func (e *Engine) assessmentDetails(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	assessments := e.graph.Links(course, "hasAssessment")
	if len(assessments) == 0 {
		return noData("assessment details", EntityCourse, name)
	}

	lines := make([]string, 0, len(assessments))
	for _, a := range assessments {
		tool := a.Attr("AssessmentTool")
		if graph.IsMissing(tool) {
			tool = "Unknown tool"
		}
		weight := "unknown percentage"
		if p := ParsePercentage(a.Attr("Percentage")); p.Valid {
			weight = p.String() + "%"
		}
		line := fmt.Sprintf("%s (%s)", strings.TrimSpace(tool), weight)
		if d := a.Attr("AssessmentDescription"); !graph.IsMissing(d) {
			line += ": " + strings.TrimSpace(d)
		}
		lines = append(lines, line)
	}
	return answered("Assessment details:\n%s", strings.Join(lines, "\n"))
}

func (e *Engine) highestAssessmentTool(ctx context.Context, params map[string]string) result {
	name := params[ParamCourse]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}

	var (
		best     Percentage
		bestTool string
	)
	for _, a := range e.graph.Links(course, "hasAssessment") {
		tool := a.Attr("AssessmentTool")
		if graph.IsMissing(tool) {
			continue
		}
		p := ParsePercentage(a.Attr("Percentage"))
		if !p.Valid {
			continue
		}
		if !best.Valid || p.Value > best.Value {
			best, bestTool = p, strings.TrimSpace(tool)
		}
	}
	if !best.Valid {
		return noData("assessment tool", EntityCourse, name)
	}
	return answered("Highest weighted assessment tool: %s (%s%%).", bestTool, best)
}

func (e *Engine) termForCourseProgram(ctx context.Context, params map[string]string) result {
	name, program := params[ParamCourse], params[ParamProgram]
	course, ok := e.resolvers.ResolveCourse(ctx, name)
	if !ok {
		return notFound(EntityCourse, name)
	}
	for _, term := range e.graph.AllOfType(graph.NodeTerm) {
		if !linksTo(e.graph.Links(term, "hasCourse"), course) {
			continue
		}
		prog := e.graph.Links(term, "belongsToProgram")
		if len(prog) == 0 || !containsIdentifier(prog[0], program) {
			continue
		}
		key := term.Key()
		return answered("Term %s", key[strings.LastIndex(key, "_")+1:])
	}
	return noData("term information", EntityCourse, name)
}

func linksTo(nodes []*graph.Node, target *graph.Node) bool {
	for _, n := range nodes {
		if n == target {
			return true
		}
	}
	return false
}

func (e *Engine) coursesInProgramTerm(_ context.Context, params map[string]string) result {
	programName, termName := params[ParamProgram], params[ParamTerm]
	program, ok := e.resolvers.ResolveNamed(EntityProgram, graph.NodeProgram, programName)
	if !ok {
		return notFound(EntityProgram, programName)
	}

	var term *graph.Node
	for _, t := range e.graph.Links(program, "hasTerm") {
		if strings.TrimSpace(termName) != "" && containsIdentifier(t, termName) {
			term = t
			break
		}
	}
	if term == nil {
		return notFound(EntityTerm, termName)
	}

	titles := e.courseTitles(e.graph.Links(term, "hasCourse"))
	if len(titles) == 0 {
		return noData("courses", EntityProgram, programName)
	}
	return answered("Courses offered in %s during %s: %s.", displayName(programName), displayName(termName), strings.Join(titles, ", "))
}

func (e *Engine) instructorsInProgramTerm(_ context.Context, params map[string]string) result {
	var (
		courses []*graph.Node
		entity  string
		name    string
	)
	switch {
	case strings.TrimSpace(params[ParamProgram]) != "":
		entity, name = EntityProgram, params[ParamProgram]
		program, ok := e.resolvers.ResolveNamed(entity, graph.NodeProgram, name)
		if !ok {
			return notFound(entity, name)
		}
		for _, term := range e.graph.Links(program, "hasTerm") {
			courses = append(courses, e.graph.Links(term, "hasCourse")...)
		}
	case strings.TrimSpace(params[ParamTerm]) != "":
		entity, name = EntityTerm, params[ParamTerm]
		term, ok := e.resolvers.ResolveNamed(entity, graph.NodeTerm, name)
		if !ok {
			return notFound(entity, name)
		}
		courses = e.graph.Links(term, "hasCourse")
	default:
		return noData("instructors", "program/term", "")
	}

	seen := make(map[string]struct{})
	var names []string
	for _, course := range courses {
		for _, d := range e.graph.Links(course, "hasInstructorDetails") {
			n := strings.TrimSpace(d.Attr("Instructors"))
			if graph.IsMissing(n) {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return noData("instructors", entity, name)
	}
	sort.Strings(names)
	return answered("Instructors: %s", strings.Join(names, ", "))
}
