package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetimant/coursesensei/pkg/api"
	"github.com/preetimant/coursesensei/pkg/client"
	"github.com/preetimant/coursesensei/pkg/engine"
	"github.com/preetimant/coursesensei/pkg/graph/graphtest"
)

func newModel(t *testing.T) model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := engine.New(graphtest.University(), engine.Config{Logger: logger})
	require.NoError(t, err)
	ts := httptest.NewServer(api.NewServer(e, "", logger).Handler())
	t.Cleanup(ts.Close)
	return initialModel(client.NewClient(ts.URL))
}

func TestParseInput(t *testing.T) {
	tests := map[string]string{
		"next page":                         "NextPage",
		"Previous Page":                     "PreviousPage",
		"back":                              "PreviousPage",
		`GetCourseCredits courseName="X Y"`: "GetCourseCredits",
	}
	for line, want := range tests {
		q, err := parseInput(line)
		require.NoError(t, err, line)
		assert.Equal(t, want, q.Intent, line)
	}

	_, err := parseInput(`GetCourseCredits courseName="open`)
	assert.Error(t, err)
}

func TestModel_AskAndPage(t *testing.T) {
	m := newModel(t)

	q, err := parseInput(`GetInstructorForCourse courseName="Databases 101"`)
	require.NoError(t, err)
	msg := m.ask("instructors", q)()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	require.NoError(t, answer.err)
	assert.Contains(t, answer.answer.Text, "Page 1/2")

	updated, _ := m.Update(answer)
	m = updated.(model)
	require.Len(t, m.history, 1)
	assert.Equal(t, client.OutcomeAnswered, m.history[0].outcome)

	// The conversation carries the page cursor to the next turn.
	next, _ := parseInput("next page")
	answer = m.ask("next page", next)().(answerMsg)
	assert.Equal(t, "Rahul Das\n\n(Page 2/2 - Say 'next page' or 'previous page')", answer.answer.Text)
}

func TestModel_EnterWithBadInput(t *testing.T) {
	m := newModel(t)
	m.ready = true
	m.input.SetValue(`GetCourseCredits courseName="open`)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(model)
	assert.Nil(t, cmd)
	assert.False(t, m.pending)
	require.Len(t, m.history, 1)
	assert.Equal(t, client.OutcomeError, m.history[0].outcome)
	assert.Empty(t, m.input.Value())
}

func TestModel_ResetClearsConversation(t *testing.T) {
	m := newModel(t)
	m.history = []exchange{{question: "q", answer: "a"}}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = updated.(model)
	assert.Empty(t, m.history)
	assert.Empty(t, m.conv.Contexts())
}

func TestRenderHistory(t *testing.T) {
	out := renderHistory([]exchange{
		{question: "GetCourseCredits", answer: "4 credits.", outcome: client.OutcomeAnswered},
		{question: "BookFlight", answer: engine.MsgUnsupported, outcome: client.OutcomeUnsupported},
	})
	assert.True(t, strings.Contains(out, "4 credits."))
	assert.True(t, strings.Contains(out, engine.MsgUnsupported))
}
