package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"socialstudio/internal/app"
	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// campaignItem adapts a campaign for bubbles/list.
type campaignItem struct {
	campaign types.Campaign
	posts    int
}

func (i campaignItem) Title() string { return i.campaign.CompanyName }

func (i campaignItem) Description() string {
	return fmt.Sprintf("%s · %d posts", i.campaign.Niche, i.posts)
}

func (i campaignItem) FilterValue() string { return i.campaign.CompanyName }

// DashboardModel lists campaigns and dispatches create/edit/delete and
// planner navigation.
type DashboardModel struct {
	state  *app.State
	list   list.Model
	styles Styles
	width  int
	height int

	confirmDelete string // campaign id pending delete confirmation
}

// NewDashboardModel builds the dashboard over application state.
func NewDashboardModel(state *app.State, styles Styles) DashboardModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Theme.Accent).
		BorderLeftForeground(styles.Theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.Theme.Muted).
		BorderLeftForeground(styles.Theme.Accent)

	l := list.New(nil, delegate, 80, 20)
	l.Title = "Campaigns"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Title

	m := DashboardModel{state: state, list: l, styles: styles, width: 80, height: 20}
	m.Refresh()
	return m
}

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd { return nil }

// Refresh rebuilds the list items from state.
func (m *DashboardModel) Refresh() {
	campaigns := m.state.Campaigns()
	items := make([]list.Item, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, campaignItem{campaign: c, posts: len(m.state.Posts(c.ID))})
	}
	m.list.SetItems(items)
}

// SetSize resizes the list.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w-4, h-4)
}

func (m DashboardModel) selected() (types.Campaign, bool) {
	item, ok := m.list.SelectedItem().(campaignItem)
	if !ok {
		return types.Campaign{}, false
	}
	return item.campaign, true
}

// Update handles dashboard input.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		// A pending delete intercepts the next keypress.
		if m.confirmDelete != "" {
			id := m.confirmDelete
			m.confirmDelete = ""
			if key.String() == "y" {
				if err := m.state.DeleteCampaign(id); err != nil {
					logging.UI("dashboard: delete failed: %v", err)
					return m, nil
				}
				m.Refresh()
				return m, func() tea.Msg { return campaignDeletedMsg{campaignID: id} }
			}
			return m, nil
		}

		if !m.list.SettingFilter() {
			switch key.String() {
			case "q":
				return m, tea.Quit
			case "n":
				return m, func() tea.Msg { return openFormMsg{} }
			case "e":
				if c, ok := m.selected(); ok {
					edit := c
					return m, func() tea.Msg { return openFormMsg{editing: &edit} }
				}
			case "d":
				if c, ok := m.selected(); ok {
					m.confirmDelete = c.ID
				}
				return m, nil
			case "enter":
				if c, ok := m.selected(); ok {
					return m, func() tea.Msg { return openPlannerMsg{campaignID: c.ID} }
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	header := m.styles.Header.Render(" SocialStudio ")
	body := m.styles.Content.Render(m.list.View())

	footer := m.styles.Footer.Render("enter plan · n new · e edit · d delete · ctrl+e consultant · q quit")
	if m.confirmDelete != "" {
		if c, ok := m.state.Campaign(m.confirmDelete); ok {
			footer = m.styles.Error.Render(fmt.Sprintf(" Delete %q? y/N ", c.CompanyName))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
