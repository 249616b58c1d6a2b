package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"socialstudio/internal/app"
	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

const consultWelcome = "Hello! I'm your AI Marketing Expert. How can I help you grow your brand today?"

// ConsultModel is the marketing consultant chat panel. It lives beside
// whatever page is active and keeps its history for the session.
type ConsultModel struct {
	state *app.State
	gen   Generator

	history  []types.ChatMessage
	waiting  bool
	styles   Styles
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
}

// NewConsultModel builds the consultant panel with its welcome turn.
func NewConsultModel(state *app.State, gen Generator, styles Styles) ConsultModel {
	ta := textarea.New()
	ta.Placeholder = "Ask the consultant..."
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := ConsultModel{
		state:    state,
		gen:      gen,
		styles:   styles,
		viewport: viewport.New(40, 16),
		input:    ta,
		spinner:  sp,
		width:    40,
		height:   20,
		history: []types.ChatMessage{{
			ID:        types.NewID(),
			Role:      types.RoleModel,
			Text:      consultWelcome,
			Timestamp: time.Now(),
		}},
	}
	m.refreshViewport()
	return m
}

// Init implements tea.Model.
func (m ConsultModel) Init() tea.Cmd { return nil }

// Focused reports whether the input owns the keyboard.
func (m ConsultModel) Focused() bool { return m.input.Focused() }

// SetSize resizes the panel and rebuilds the markdown renderer for the
// new wrap width.
func (m *ConsultModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w - 4
	m.viewport.Height = h - 7
	m.input.SetWidth(w - 4)
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(w-6),
	)
	m.refreshViewport()
}

// Update handles chat input and replies.
func (m ConsultModel) Update(msg tea.Msg) (ConsultModel, tea.Cmd) {
	switch msg := msg.(type) {
	case consultReplyMsg:
		m.waiting = false
		m.history = append(m.history, types.ChatMessage{
			ID:        types.NewID(),
			Role:      types.RoleModel,
			Text:      msg.text,
			Timestamp: time.Now(),
		})
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.send()
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send appends the user turn and asks for the model's reply. The full
// history travels with every request.
func (m ConsultModel) send() (ConsultModel, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()
	m.history = append(m.history, types.ChatMessage{
		ID:        types.NewID(),
		Role:      types.RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	})
	m.waiting = true
	m.refreshViewport()
	logging.Consult("consult panel: sending turn %d", len(m.history))

	var campaign *types.Campaign
	if c, ok := m.state.Selected(); ok {
		campaign = &c
	}
	history := append([]types.ChatMessage(nil), m.history...)
	gen := m.gen
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return consultReplyMsg{text: gen.Consult(context.Background(), history, campaign)}
	})
}

// safeRenderMarkdown renders markdown with panic recovery; glamour can
// panic on pathological input.
func (m ConsultModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()
	if m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return rendered
		}
	}
	return content
}

func (m *ConsultModel) refreshViewport() {
	var b strings.Builder
	for _, msg := range m.history {
		if msg.Role == types.RoleUser {
			b.WriteString(m.styles.UserTurn.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Text)
			b.WriteString("\n\n")
		} else {
			b.WriteString(m.styles.Subtitle.Render("Consultant"))
			b.WriteString("\n")
			b.WriteString(m.safeRenderMarkdown(msg.Text))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the panel.
func (m ConsultModel) View() string {
	header := m.styles.Header.Render(" Marketing Consultant ")

	status := ""
	if m.waiting {
		status = m.spinner.View() + " thinking..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.styles.Content.Render(m.viewport.View()),
		status,
		m.input.View())
}
