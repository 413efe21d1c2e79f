// Package mcp exposes the course assistant over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/preetimant/coursesensei/pkg/client"
)

const promptName = "course-assistant"

// toolParams maps tool argument names to intent parameter names.
var toolParams = []struct {
	arg, param, desc string
}{
	{"course_name", "courseName", "Course title or identifier, e.g. 'Databases 101'"},
	{"instructor_name", "instructorName", "Instructor full name, e.g. 'Anita Rao'"},
	{"program", "program", "Program name, e.g. 'MBA Core'"},
	{"term", "term", "Term name or identifier, e.g. 'mba_core_term_1'"},
	{"session_number", "sessionNumber", "Session number within the course plan"},
	{"assessment_tool", "assessmentTool", "Assessment tool, e.g. 'Quiz'"},
}

// Server adapts coursesensei-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
	conv      *client.Conversation
}

// NewServer creates a new MCP server instance. One conversation is kept for
// the lifetime of the server so page turns follow the last list answer.
func NewServer(apiURL string, opts ...client.Option) *Server {
	c := client.NewClient(apiURL, opts...)
	s := &Server{
		mcpServer: server.NewMCPServer(
			"coursesensei",
			"1.0.0",
		),
		apiClient: c,
		conv:      c.NewConversation(),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"coursesensei://intents",
		"Supported Intents",
		mcp.WithResourceDescription("Intent names the course assistant can answer"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadIntents)

	s.mcpServer.AddResource(mcp.NewResource(
		"coursesensei://health",
		"Knowledge Base Status",
		mcp.WithResourceDescription("Daemon health and the loaded knowledge base checksum"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadHealth)
}

// --- Tools ---

func (s *Server) registerTools() {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Answer a question about courses, instructors, sessions or assessments. Long lists are paged; use turn_page to continue."),
		mcp.WithString("intent", mcp.Required(), mcp.Description("Intent name, see coursesensei://intents (e.g. 'GetCourseCredits')")),
	}
	for _, p := range toolParams {
		opts = append(opts, mcp.WithString(p.arg, mcp.Description(p.desc)))
	}
	s.mcpServer.AddTool(mcp.NewTool("ask_course_question", opts...), s.handleAsk)

	s.mcpServer.AddTool(mcp.NewTool(
		"turn_page",
		mcp.WithDescription("Show the next or previous page of the last list answer."),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("next", "previous")),
	), s.handleTurnPage)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		promptName,
		mcp.WithPromptDescription("Explains how to answer course questions with the CourseSensei tools"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadIntents(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	intents, err := s.apiClient.Intents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intents: %w", err)
	}
	return jsonResource(request.Params.URI, intents)
}

func (s *Server) handleReadHealth(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status, err := s.apiClient.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health: %w", err)
	}
	return jsonResource(request.Params.URI, status)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	intent := strings.TrimSpace(mcp.ParseString(request, "intent", ""))
	if intent == "" {
		return mcp.NewToolResultError("intent is required"), nil
	}

	params := make(map[string]any)
	for _, p := range toolParams {
		if v := mcp.ParseString(request, p.arg, ""); v != "" {
			params[p.param] = v
		}
	}

	return s.ask(ctx, client.Query{Intent: intent, Params: params})
}

func (s *Server) handleTurnPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch mcp.ParseString(request, "direction", "") {
	case "next":
		return s.ask(ctx, client.Query{Intent: "NextPage"})
	case "previous":
		return s.ask(ctx, client.Query{Intent: "PreviousPage"})
	default:
		return mcp.NewToolResultError("direction must be 'next' or 'previous'"), nil
	}
}

func (s *Server) ask(ctx context.Context, q client.Query) (*mcp.CallToolResult, error) {
	answer, err := s.conv.Ask(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText(answer.Text), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != promptName {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are a course assistant backed by a university knowledge base.

Concepts:
- Course: identified by its title ('Databases 101') or identifier ('databases_101').
- Instructor: matched by exact full name.
- Program and Term: a program has terms, a term offers courses.
- Session plan: numbered sessions with module, topic and reading material.
- Assessment: a tool (Quiz, Midterm) with a grade percentage.

Use the 'ask_course_question' tool with an intent from coursesensei://intents.
Answers ending in "(Page x/y ...)" are paged: call 'turn_page' to continue.
Relay answers as given; do not invent missing course data.
`

	return mcp.NewGetPromptResult(
		promptName,
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
