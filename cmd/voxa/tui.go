package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	pipeline "github.com/ferrostad/voxa-core/core"
	"github.com/ferrostad/voxa-core/core/events"
	"github.com/ferrostad/voxa-core/internal/config"
)

const transcriptLimit = 200

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// pipelineEventMsg carries one pipeline lifecycle event into the bubbletea
// loop.
type pipelineEventMsg struct{ event events.Event }

// sessionModel renders the conversation transcript and drives the pipeline
// from keyboard input.
type sessionModel struct {
	pipeline *pipeline.Pipeline
	events   <-chan events.Event

	input    textinput.Model
	viewport viewport.Model

	lines    []string
	interim  string
	response string
	speed    float64

	width  int
	height int
	ready  bool
}

func newSessionModel(p *pipeline.Pipeline, cfg *config.Config, eventCh <-chan events.Event) sessionModel {
	input := textinput.New()
	input.Placeholder = "type a prompt and press enter, or just speak"
	input.Focus()

	return sessionModel{
		pipeline: p,
		events:   eventCh,
		input:    input,
		speed:    cfg.PlaybackSpeed,
	}
}

func (m sessionModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenEvents())
}

func (m sessionModel) listenEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return pipelineEventMsg{event: event}
	}
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			if prompt := strings.TrimSpace(m.input.Value()); prompt != "" {
				m.pipeline.SendPrompt(prompt)
				m.input.Reset()
			}
			return m, nil
		case "ctrl+l":
			m.pipeline.StartListening()
			return m, nil
		case "esc":
			m.pipeline.Cancel()
			return m, nil
		case "ctrl+up":
			m.speed = min(m.speed+0.25, 4.0)
			m.pipeline.SetPlaybackSpeed(m.speed)
			return m, nil
		case "ctrl+down":
			m.speed = max(m.speed-0.25, 0.25)
			m.pipeline.SetPlaybackSpeed(m.speed)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, max(msg.Height-6, 3))
		m.ready = true
		m.refreshViewport()

	case pipelineEventMsg:
		m.applyEvent(msg.event)
		m.refreshViewport()
		cmds = append(cmds, m.listenEvents())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *sessionModel) applyEvent(event events.Event) {
	switch e := event.(type) {
	case events.UserTranscriptInterimUpdated:
		m.interim = e.Transcript
	case events.UserTranscriptFinal:
		m.interim = ""
		m.appendLine(userStyle.Render("you: ") + e.Transcript)
	case events.TurnListeningEnded:
		m.interim = ""
	case events.AssistantResponseSegment:
		m.response += e.Segment
	case events.AssistantResponseFinal:
		if e.Response != "" {
			m.appendLine(assistantStyle.Render("voxa: ") + e.Response)
		}
		m.response = ""
	case events.TurnCancelled:
		m.response = ""
		m.interim = ""
		m.appendLine(statusStyle.Render("(turn cancelled)"))
	case events.PipelineError:
		m.appendLine(errorStyle.Render(fmt.Sprintf("error [%s/%s]: %s", e.ErrorKind, e.Phase, e.Detail)))
	}
}

func (m *sessionModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > transcriptLimit {
		m.lines = m.lines[len(m.lines)-transcriptLimit:]
	}
}

func (m *sessionModel) refreshViewport() {
	if !m.ready {
		return
	}

	content := strings.Join(m.lines, "\n")
	if m.interim != "" {
		content += "\n" + statusStyle.Render("you (listening): "+m.interim)
	}
	if m.response != "" {
		content += "\n" + assistantStyle.Render("voxa: ") + m.response
	}

	m.viewport.SetContent(wordwrap.String(content, m.width))
	m.viewport.GotoBottom()
}

func (m sessionModel) View() string {
	if !m.ready {
		return "starting session..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("voxa"),
		statusStyle.Render(fmt.Sprintf("  %s  |  speed %.2fx", m.pipeline.State(), m.speed)),
	)
	help := helpStyle.Render("enter=prompt  ctrl+l=listen  esc=cancel  ctrl+↑/↓=speed  ctrl+c=quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.input.View(),
		help,
	)
}
