package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/preetimant/coursesensei/pkg/client"
)

// Config
const (
	pollRate       = 5 * time.Second
	askTimeout     = 10 * time.Second
	viewportHeight = 20
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	answerStyles  = map[string]lipgloss.Style{
		client.OutcomeAnswered:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		client.OutcomeNotFound:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		client.OutcomeNoData:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		client.OutcomeUnsupported: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		client.OutcomeError:       errorStyle,
	}
)

type tickMsg time.Time

type statusMsg struct {
	status client.Status
	err    error
}

type answerMsg struct {
	question string
	answer   client.Answer
	err      error
}

type exchange struct {
	question string
	answer   string
	outcome  string
}

type model struct {
	client   *client.Client
	conv     *client.Conversation
	spinner  spinner.Model
	viewport viewport.Model
	input    textinput.Model

	history []exchange
	status  client.Status
	err     error
	pending bool
	ready   bool
}

func initialModel(c *client.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = `GetCourseCredits courseName="Databases 101"   (or: next page)`
	ti.CharLimit = 256
	ti.Width = 80
	ti.Focus()

	return model{
		client:   c,
		conv:     c.NewConversation(),
		spinner:  s,
		viewport: newViewport(100),
		input:    ti,
	}
}

func newViewport(width int) viewport.Model {
	vp := viewport.New(width, viewportHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingRight(2)
	return vp
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		fetchStatus(m.client),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.conv.Reset()
			m.history = nil
			m.refresh()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.pending {
				return m, nil
			}
			q, err := parseInput(line)
			m.input.SetValue("")
			if err != nil {
				m.history = append(m.history, exchange{question: line, answer: err.Error(), outcome: client.OutcomeError})
				m.refresh()
				return m, nil
			}
			m.pending = true
			return m, m.ask(line, q)
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case answerMsg:
		m.pending = false
		ex := exchange{question: msg.question, answer: msg.answer.Text, outcome: msg.answer.Outcome}
		if msg.err != nil {
			ex.answer = fmt.Sprintf("request failed: %v", msg.err)
			ex.outcome = client.OutcomeError
		}
		m.history = append(m.history, ex)
		m.refresh()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchStatus(m.client), tick())

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		m.ready = true

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = newViewport(msg.Width)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// parseInput accepts a query line or a spoken paging phrase.
func parseInput(line string) (client.Query, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "next page", "next", "more":
		return client.Query{Intent: "NextPage"}, nil
	case "previous page", "prev page", "previous", "prev", "back":
		return client.Query{Intent: "PreviousPage"}, nil
	}
	return client.ParseQuery(line)
}

func (m model) ask(question string, q client.Query) tea.Cmd {
	conv := m.conv
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		answer, err := conv.Ask(ctx, q)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m *model) refresh() {
	m.viewport.SetContent(renderHistory(m.history))
	m.viewport.GotoBottom()
}

func renderHistory(history []exchange) string {
	var sb strings.Builder
	for _, ex := range history {
		style, ok := answerStyles[ex.outcome]
		if !ok {
			style = answerStyles[client.OutcomeAnswered]
		}
		sb.WriteString(questionStyle.Render("> "+ex.question) + "\n")
		sb.WriteString(style.Render(ex.answer) + "\n\n")
	}
	return sb.String()
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Connecting to %s...", m.spinner.View(), m.client.Endpoint())
	}

	title := "CourseSensei"
	if m.pending {
		title = m.spinner.View() + " " + title
	}
	header := headerStyle.Render(title)

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render(fmt.Sprintf("Offline: %v", m.err))
	case m.status.KnowledgeBase != nil:
		kb := m.status.KnowledgeBase
		status = okStyle.Render(fmt.Sprintf("Online • %d nodes • checksum %s", kb.Nodes, kb.Checksum))
	default:
		status = okStyle.Render("Online")
	}
	footer := subtleStyle.Render(fmt.Sprintf("%s\nEnter to ask • PgUp/PgDn to scroll • Ctrl+R to reset • Esc to quit", status))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), m.input.View(), footer)
}

// Commands

func fetchStatus(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		status, err := c.Ping(ctx)
		return statusMsg{status: status, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	apiURL := flag.String("api", "http://127.0.0.1:8090", "Base URL of coursesensei-d")
	token := flag.String("token", os.Getenv("COURSESENSEI_WEBHOOK_TOKEN"), "webhook bearer token")
	flag.Parse()

	c := client.NewClient(*apiURL, client.WithToken(*token), client.WithRetries(0, nil))
	p := tea.NewProgram(initialModel(c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
