package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"socialstudio/internal/app"
	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// Generator is the slice of the gateway the UI drives. Satisfied by
// *gateway.Client; tests swap in a stub.
type Generator interface {
	GeneratePlan(ctx context.Context, campaign types.Campaign, days int, startDate string, platform types.Platform) ([]types.PostDraft, error)
	GenerateImage(ctx context.Context, prompt string, reference *types.ImageBlob) (*types.ImageBlob, error)
	EditImage(ctx context.Context, image types.ImageBlob, prompt string) (*types.ImageBlob, error)
	Consult(ctx context.Context, history []types.ChatMessage, campaign *types.Campaign) string
}

// ViewMode selects the active page.
type ViewMode int

const (
	DashboardView ViewMode = iota
	FormView
	PlannerView
)

// Model is the root model of the studio interface.
type Model struct {
	state *app.State
	gen   Generator

	styles   Styles
	viewMode ViewMode

	dashboard DashboardModel
	form      FormModel
	planner   PlannerModel
	consult   ConsultModel

	showConsult bool
	exportDir   string

	width  int
	height int
	ready  bool
}

// NewModel wires the root model over loaded application state.
func NewModel(state *app.State, gen Generator, exportDir string) Model {
	styles := DefaultStyles()
	return Model{
		state:     state,
		gen:       gen,
		styles:    styles,
		viewMode:  DashboardView,
		dashboard: NewDashboardModel(state, styles),
		form:      NewFormModel(styles),
		planner:   NewPlannerModel(state, gen, styles, exportDir),
		consult:   NewConsultModel(state, gen, styles),
		exportDir: exportDir,
	}
}

// Init starts the interface.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.dashboard.Init(), m.consult.Init())
}

// Update routes messages to the active page; the consultant panel
// receives input only while open.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.dashboard.SetSize(m.contentWidth(), m.height-2)
		m.form.SetSize(m.contentWidth(), m.height-2)
		m.planner.SetSize(m.contentWidth(), m.height-2)
		m.consult.SetSize(m.consultWidth(), m.height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+e":
			m.showConsult = !m.showConsult
			m.dashboard.SetSize(m.contentWidth(), m.height-2)
			m.planner.SetSize(m.contentWidth(), m.height-2)
			m.consult.SetSize(m.consultWidth(), m.height-2)
			logging.UIDebug("consult panel toggled: %v", m.showConsult)
			return m, nil
		}
		if m.showConsult && m.consult.Focused() {
			var cmd tea.Cmd
			m.consult, cmd = m.consult.Update(msg)
			return m, cmd
		}

	case openFormMsg:
		m.form.Reset(msg.editing)
		m.viewMode = FormView
		return m, nil

	case formDoneMsg:
		if msg.submitted {
			if err := m.applyForm(msg); err != nil {
				m.form.SetError(err)
				return m, nil
			}
		}
		m.viewMode = DashboardView
		m.dashboard.Refresh()
		return m, nil

	case openPlannerMsg:
		m.state.Select(msg.campaignID)
		m.state.SetView(app.ViewPlanner)
		m.planner.Open()
		m.viewMode = PlannerView
		return m, nil

	case closePlannerMsg:
		m.state.Select("")
		m.state.SetView(app.ViewDashboard)
		m.viewMode = DashboardView
		m.dashboard.Refresh()
		return m, nil

	case campaignDeletedMsg:
		// Deleting the selected campaign already forced the state
		// back to the dashboard; mirror that here.
		if m.state.View() == app.ViewDashboard {
			m.viewMode = DashboardView
		}
		m.dashboard.Refresh()
		return m, nil

	case consultReplyMsg:
		var cmd tea.Cmd
		m.consult, cmd = m.consult.Update(msg)
		return m, cmd

	case planResultMsg, imageResultMsg:
		var cmd tea.Cmd
		m.planner, cmd = m.planner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.viewMode {
	case DashboardView:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case FormView:
		m.form, cmd = m.form.Update(msg)
	case PlannerView:
		m.planner, cmd = m.planner.Update(msg)
	}
	cmds = append(cmds, cmd)

	if m.showConsult {
		var ccmd tea.Cmd
		m.consult, ccmd = m.consult.Update(msg)
		cmds = append(cmds, ccmd)
	}
	return m, tea.Batch(cmds...)
}

// applyForm commits a submitted campaign form: add for fresh ids,
// wholesale update for existing ones.
func (m *Model) applyForm(msg formDoneMsg) error {
	if msg.isEdit {
		return m.state.UpdateCampaign(msg.campaign)
	}
	return m.state.AddCampaign(msg.campaign)
}

// View renders the active page, with the consultant panel beside it
// when open.
func (m Model) View() string {
	if !m.ready {
		return "Loading SocialStudio..."
	}

	var page string
	switch m.viewMode {
	case DashboardView:
		page = m.dashboard.View()
	case FormView:
		page = m.form.View()
	case PlannerView:
		page = m.planner.View()
	}

	if !m.showConsult {
		return page
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, page, m.consult.View())
}

func (m Model) contentWidth() int {
	if m.showConsult {
		return m.width - m.consultWidth()
	}
	return m.width
}

func (m Model) consultWidth() int {
	w := m.width / 3
	if w < 40 {
		w = 40
	}
	return w
}
