package engine

import (
	"fmt"

	"github.com/preetimant/coursesensei/pkg/graph"
)

// Query is one entry of the dispatch table: Standard, List or Custom.
type Query interface {
	kind() string
}

// Standard reads one value along Path from the requested course. Answer is a
// format with a single %s verb; empty means the bare value.
type Standard struct {
	Path   string
	Label  string
	Answer string
}

// List reads the list relation named by the first segment of Path, resolves
// the remaining segments on each item, formats the items and paginates them.
type List struct {
	Path   string
	Label  string
	Format FormatterID
}

// Custom delegates to a registered handler.
type Custom struct {
	Handler HandlerID
}

func (Standard) kind() string { return "standard" }
func (List) kind() string     { return "list" }
func (Custom) kind() string   { return "custom" }

// FormatterID names a list item formatter.
type FormatterID string

const (
	FormatValue        FormatterID = "value"
	FormatSessionTopic FormatterID = "session-topic"
)

type formatter func(v graph.Value) string

var formatters = map[FormatterID]formatter{
	FormatValue: func(v graph.Value) string {
		if v.IsMissing() {
			return ""
		}
		return v.String()
	},
	FormatSessionTopic: func(v graph.Value) string {
		if v.Node == nil {
			return ""
		}
		s := v.Node
		body := joinPresent(" - ", s.Attr("Module"), s.Attr("Topic"))
		if body == "" {
			return ""
		}
		if ord := ParseOrdinal(s.Attr("Session")); !graph.IsMissing(ord.Raw) {
			return fmt.Sprintf("Session %s: %s", ord.Raw, body)
		}
		return body
	},
}

// HandlerID names a custom handler.
type HandlerID string

const (
	HandlerContactInstructor         HandlerID = "contact-instructor"
	HandlerCoursesByInstructor       HandlerID = "courses-by-instructor"
	HandlerCoursesByInstructorInProg HandlerID = "courses-by-instructor-in-program"
	HandlerConsultationContact       HandlerID = "consultation-contact"
	HandlerSessionInfo               HandlerID = "session-info"
	HandlerFullSessionPlan           HandlerID = "full-session-plan"
	HandlerReadingMaterials          HandlerID = "reading-materials"
	HandlerAssessmentPercentage      HandlerID = "assessment-percentage"
	HandlerAssessmentDetails         HandlerID = "assessment-details"
	HandlerHighestAssessmentTool     HandlerID = "highest-assessment-tool"
	HandlerTermForCourseProgram      HandlerID = "term-for-course-program"
	HandlerCoursesInProgramTerm      HandlerID = "courses-in-program-term"
	HandlerInstructorsInProgramTerm  HandlerID = "instructors-in-program-term"
	HandlerNextPage                  HandlerID = "next-page"
	HandlerPreviousPage              HandlerID = "previous-page"
)

// Parameter names understood by the handlers.
const (
	ParamCourse         = "courseName"
	ParamInstructor     = "instructorName"
	ParamProgram        = "program"
	ParamTerm           = "term"
	ParamSession        = "sessionNumber"
	ParamAssessmentTool = "assessmentTool"
	ParamPage           = "page"
)

// Intent names with special pagination handling.
const (
	IntentNextPage     = "NextPage"
	IntentPreviousPage = "PreviousPage"
)

// DefaultIntents returns the dispatch table of the course assistant.
func DefaultIntents() map[string]Query {
	return map[string]Query{
		"GetCourseCredits":     Standard{Path: "hasCourseMetadata.CourseCredit", Label: "credit information", Answer: "%s credits."},
		"GetCourseType":        Standard{Path: "hasCourseMetadata.CourseType", Label: "course type"},
		"GetPrerequisites":     Standard{Path: "hasCourseMetadata.Prerequisites", Label: "prerequisites"},
		"GetSessionDuration":   Standard{Path: "hasCourseMetadata.SessionDuration", Label: "session duration"},
		"GetTotalSessions":     Standard{Path: "hasCourseMetadata.TotalSessions", Label: "total sessions", Answer: "%s sessions."},
		"GetYearBatch":         Standard{Path: "hasCourseMetadata.YearBatch", Label: "year/batch"},
		"GetSections":          Standard{Path: "hasCourseMetadata.Sections", Label: "sections"},
		"GetCourseOverview":    Standard{Path: "hasBasicInfo.Introduction", Label: "course overview"},
		"GetLearningOutcomes":  Standard{Path: "hasBasicInfo.LearningOutcomes", Label: "learning outcomes"},
		"GetPedagogy":          Standard{Path: "hasBasicInfo.PedagogyUsed", Label: "pedagogy information"},
		"GetInstructorContact": Standard{Path: "hasInstructorDetails.ContactDetails", Label: "contact details"},
		"GetInstructorOffice":  Standard{Path: "hasInstructorDetails.Office", Label: "office location", Answer: "Office location: %s"},
		"GetProgramForCourse":  Standard{Path: "belongsToTerm.belongsToProgram.programName", Label: "program", Answer: "Taught in %s program."},

		"GetInstructorForCourse": List{Path: "hasInstructorDetails.Instructors", Label: "instructors", Format: FormatValue},
		"GetCourseTopics":        List{Path: "hasSessionPlan", Label: "topics", Format: FormatSessionTopic},
		"GetAssessmentTools":     List{Path: "hasAssessment.AssessmentTool", Label: "assessment tools", Format: FormatValue},

		"GetContactInstructor":            Custom{Handler: HandlerContactInstructor},
		"GetCoursesByInstructor":          Custom{Handler: HandlerCoursesByInstructor},
		"GetCoursesByInstructorInProgram": Custom{Handler: HandlerCoursesByInstructorInProg},
		"GetConsultationContact":          Custom{Handler: HandlerConsultationContact},
		"GetSessionInfo":                  Custom{Handler: HandlerSessionInfo},
		"GetFullSessionPlan":              Custom{Handler: HandlerFullSessionPlan},
		"GetReadingMaterials":             Custom{Handler: HandlerReadingMaterials},
		"GetAssessmentPercentage":         Custom{Handler: HandlerAssessmentPercentage},
		"GetAssessmentDetails":            Custom{Handler: HandlerAssessmentDetails},
		"GetHighestAssessmentTool":        Custom{Handler: HandlerHighestAssessmentTool},
		"GetTermForCourseProgram":         Custom{Handler: HandlerTermForCourseProgram},
		"GetCoursesInProgramTerm":         Custom{Handler: HandlerCoursesInProgramTerm},
		"GetInstructorsInProgramTerm":     Custom{Handler: HandlerInstructorsInProgramTerm},

		IntentNextPage:     Custom{Handler: HandlerNextPage},
		IntentPreviousPage: Custom{Handler: HandlerPreviousPage},
	}
}
