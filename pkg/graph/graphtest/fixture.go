// Package graphtest provides a small university knowledge graph for tests.
package graphtest

import (
	"github.com/preetimant/coursesensei/pkg/graph"
)

func attrs(kv ...string) map[string]graph.Values {
	out := make(map[string]graph.Values, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = graph.Values{kv[i+1]}
	}
	return out
}

func node(id string, t graph.NodeType, a map[string]graph.Values, rels map[string][]string) graph.NodeRecord {
	return graph.NodeRecord{ID: id, Type: t, Attributes: a, Relations: rels}
}

// UniversitySnapshot returns the fixture as a snapshot.
//
// Courses: "Databases 101" (complete, four instructors, five sessions stored
// out of order, four assessments one of them non-numeric), "Intro to AI"
// (tied assessment weights, a non-numeric session ordinal), "Algorithms"
// (no metadata at all), "Data Ethics" (a placeholder session ordinal and a
// heavier assessment with no tool name) and "Research Methods" (its only
// assessment has a blank tool name).
func UniversitySnapshot() graph.Snapshot {
	return graph.Snapshot{Nodes: []graph.NodeRecord{
		node("databases_101", graph.NodeCourse, nil, map[string][]string{
			"hasCourseMetadata":    {"databases_101_meta"},
			"hasBasicInfo":         {"databases_101_info"},
			"hasInstructorDetails": {"databases_101_inst_1", "databases_101_inst_2", "databases_101_inst_3", "databases_101_inst_4"},
			"hasSessionPlan":       {"databases_101_s2", "databases_101_s1", "databases_101_s10", "databases_101_s3", "databases_101_s4"},
			"hasAssessment":        {"databases_101_quiz", "databases_101_mid", "databases_101_project", "databases_101_final"},
		}),
		node("databases_101_meta", graph.NodeCourseMetadata, attrs(
			"CourseCredit", "4",
			"CourseType", "Core",
			"Prerequisites", "NA",
			"SessionDuration", "90 minutes",
			"TotalSessions", "20",
			"YearBatch", "2024 batch",
			"Sections", "A, B",
			"CourseCodeTitle", "CS101 - Databases 101",
		), nil),
		node("databases_101_info", graph.NodeBasicInfo, attrs(
			"Introduction", "Relational modelling and SQL.",
			"LearningOutcomes", "Design normalised schemas.",
			"PedagogyUsed", "NA",
		), nil),
		node("databases_101_inst_1", graph.NodeInstructorDetail, attrs(
			"Instructors", "Anita Rao",
			"ContactDetails", "anita@uni.edu",
			"Office", "B-204",
			"ConsultationHours", "Mon 2-4pm",
		), nil),
		node("databases_101_inst_2", graph.NodeInstructorDetail, attrs(
			"Instructors", "Vikram Sen",
			"ContactDetails", "vikram@uni.edu",
			"Office", "NA",
		), nil),
		node("databases_101_inst_3", graph.NodeInstructorDetail, attrs("Instructors", "Meera Iyer"), nil),
		node("databases_101_inst_4", graph.NodeInstructorDetail, attrs("Instructors", "Rahul Das"), nil),
		node("databases_101_s1", graph.NodeSessionPlan, attrs(
			"Session", "1", "Module", "Foundations", "Topic", "Relational model", "ReadingMaterial", "Chapter 1",
		), nil),
		node("databases_101_s2", graph.NodeSessionPlan, attrs(
			"Session", "2", "Module", "Foundations", "Topic", "SQL basics", "ReadingMaterial", "NA",
		), nil),
		node("databases_101_s3", graph.NodeSessionPlan, attrs(
			"Session", "3", "Module", "NA", "Topic", "NA", "ReadingMaterial", "Chapter 3",
		), nil),
		node("databases_101_s4", graph.NodeSessionPlan, attrs(
			"Session", "4", "Module", "Design", "Topic", "Normalisation", "ReadingMaterial", "Chapter 4",
		), nil),
		node("databases_101_s10", graph.NodeSessionPlan, attrs(
			"Session", "10", "Module", "Design", "Topic", "Indexing", "ReadingMaterial", "Chapter 10",
		), nil),
		node("databases_101_quiz", graph.NodeAssessment, attrs(
			"AssessmentTool", "Quiz", "Percentage", "20%", "AssessmentDescription", "Weekly quizzes",
		), nil),
		node("databases_101_mid", graph.NodeAssessment, attrs(
			"AssessmentTool", "Midterm", "Percentage", "30%", "AssessmentDescription", "NA",
		), nil),
		node("databases_101_project", graph.NodeAssessment, attrs(
			"AssessmentTool", "Project", "Percentage", "abc",
		), nil),
		node("databases_101_final", graph.NodeAssessment, attrs(
			"AssessmentTool", "Final Exam", "Percentage", "50.5%", "AssessmentDescription", "Closed book",
		), nil),

		node("intro_to_ai", graph.NodeCourse, nil, map[string][]string{
			"hasCourseMetadata":    {"intro_to_ai_meta"},
			"hasInstructorDetails": {"intro_to_ai_inst_1"},
			"hasSessionPlan":       {"intro_to_ai_s2", "intro_to_ai_intro"},
			"hasAssessment":        {"intro_to_ai_assignment", "intro_to_ai_exam"},
		}),
		node("intro_to_ai_meta", graph.NodeCourseMetadata, attrs(
			"CourseCredit", "3",
			"CourseCodeTitle", "CS201 - Intro to AI",
		), nil),
		node("intro_to_ai_inst_1", graph.NodeInstructorDetail, attrs(
			"Instructors", "Vikram Sen",
			"ContactDetails", "NA",
			"ConsultationHours", "NA",
		), nil),
		node("intro_to_ai_s2", graph.NodeSessionPlan, attrs(
			"Session", "2", "Module", "Search", "Topic", "A* search",
		), nil),
		node("intro_to_ai_intro", graph.NodeSessionPlan, attrs(
			"Session", "Intro", "Module", "Overview", "Topic", "What is AI",
		), nil),
		node("intro_to_ai_assignment", graph.NodeAssessment, attrs(
			"AssessmentTool", "Assignment", "Percentage", "30%",
		), nil),
		node("intro_to_ai_exam", graph.NodeAssessment, attrs(
			"AssessmentTool", "Exam", "Percentage", "30%",
		), nil),

		node("algorithms", graph.NodeCourse, nil, nil),

		node("data_ethics", graph.NodeCourse, nil, map[string][]string{
			"hasSessionPlan": {"data_ethics_intro", "data_ethics_s2"},
			"hasAssessment":  {"data_ethics_quiz", "data_ethics_unnamed"},
		}),
		node("data_ethics_intro", graph.NodeSessionPlan, attrs(
			"Session", "NA", "Module", "Foundations", "Topic", "Why ethics matters",
		), nil),
		node("data_ethics_s2", graph.NodeSessionPlan, attrs(
			"Session", "2", "Module", "Foundations", "Topic", "Consent",
		), nil),
		node("data_ethics_quiz", graph.NodeAssessment, attrs(
			"AssessmentTool", "Quiz", "Percentage", "20%",
		), nil),
		node("data_ethics_unnamed", graph.NodeAssessment, attrs(
			"AssessmentTool", "NA", "Percentage", "60%",
		), nil),

		node("research_methods", graph.NodeCourse, nil, map[string][]string{
			"hasAssessment": {"research_methods_unnamed"},
		}),
		node("research_methods_unnamed", graph.NodeAssessment, attrs(
			"AssessmentTool", " ", "Percentage", "40%",
		), nil),

		node("mba_core", graph.NodeProgram, attrs("programName", "MBA Core"), nil),
		node("bba", graph.NodeProgram, attrs("programName", "BBA"), nil),
		node("mba_core_term_1", graph.NodeTerm, attrs("termName", "Term 1"), map[string][]string{
			"belongsToProgram": {"mba_core"},
			"hasCourse":        {"databases_101", "intro_to_ai"},
		}),
		node("mba_core_term_2", graph.NodeTerm, attrs("termName", "Term 2"), map[string][]string{
			"belongsToProgram": {"mba_core"},
			"hasCourse":        {"algorithms"},
		}),
		node("bba_term_3", graph.NodeTerm, attrs("termName", "Term 3"), map[string][]string{
			"belongsToProgram": {"bba"},
			"hasCourse":        {"databases_101"},
		}),

		node("instructor_anita_rao", graph.NodeInstructor, attrs(
			"Instructors", "Anita Rao",
			"ContactDetails", "anita@uni.edu",
			"ConsultationHours", "Mon 2-4pm",
			"Office", "B-204",
		), map[string][]string{"teachesCourse": {"databases_101"}}),
		node("instructor_vikram_sen", graph.NodeInstructor, attrs(
			"Instructors", "Vikram Sen",
			"ContactDetails", "vikram@uni.edu",
			"ConsultationHours", "NA",
		), map[string][]string{"teachesCourse": {"databases_101", "intro_to_ai"}}),
		node("instructor_meera_iyer", graph.NodeInstructor, attrs(
			"Instructors", "Meera Iyer",
			"ContactDetails", "NA",
		), nil),
	}}
}

// University builds the fixture graph with the course schema.
func University() *graph.Graph {
	g, err := graph.Build(graph.CourseSchema(), UniversitySnapshot())
	if err != nil {
		panic("graphtest: fixture does not build: " + err.Error())
	}
	return g
}
