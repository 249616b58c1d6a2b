package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

const (
	fieldCompany = iota
	fieldNiche
	fieldServices
	fieldAudience
	fieldVoice
	fieldLogo
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Company Name",
	"Niche",
	"Services",
	"Target Audience",
	"Brand Voice",
	"Logo path (optional)",
}

// FormModel is the create/edit campaign form.
type FormModel struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	editing *types.Campaign
	err     error
	styles  Styles
	width   int
	height  int
}

// NewFormModel builds an empty form.
func NewFormModel(styles Styles) FormModel {
	m := FormModel{styles: styles, width: 80, height: 20}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 512
		in.Width = 48
		m.inputs[i] = in
	}
	m.inputs[fieldCompany].Focus()
	return m
}

// Reset prepares the form for a new campaign, or pre-fills it for an
// edit.
func (m *FormModel) Reset(editing *types.Campaign) {
	m.editing = editing
	m.err = nil
	m.focus = fieldCompany
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	if editing != nil {
		m.inputs[fieldCompany].SetValue(editing.CompanyName)
		m.inputs[fieldNiche].SetValue(editing.Niche)
		m.inputs[fieldServices].SetValue(editing.Services)
		m.inputs[fieldAudience].SetValue(editing.TargetAudience)
		m.inputs[fieldVoice].SetValue(editing.BrandVoice)
	}
	m.inputs[fieldCompany].Focus()
}

// SetError surfaces a submit failure without leaving the form.
func (m *FormModel) SetError(err error) { m.err = err }

// SetSize resizes the inputs.
func (m *FormModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	for i := range m.inputs {
		m.inputs[i].Width = w - 30
	}
}

func (m *FormModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// Update handles form input.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, func() tea.Msg { return formDoneMsg{submitted: false} }
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "enter":
			if m.focus < fieldCount-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the profile and hands it to the root model. The
// form stays open on validation or logo errors.
func (m FormModel) submit() (FormModel, tea.Cmd) {
	campaign := types.Campaign{
		CompanyName:    strings.TrimSpace(m.inputs[fieldCompany].Value()),
		Niche:          strings.TrimSpace(m.inputs[fieldNiche].Value()),
		Services:       strings.TrimSpace(m.inputs[fieldServices].Value()),
		TargetAudience: strings.TrimSpace(m.inputs[fieldAudience].Value()),
		BrandVoice:     strings.TrimSpace(m.inputs[fieldVoice].Value()),
	}
	isEdit := m.editing != nil
	if isEdit {
		campaign.ID = m.editing.ID
		campaign.CreatedAt = m.editing.CreatedAt
		campaign.Logo = m.editing.Logo
	} else {
		campaign.ID = types.NewID()
		campaign.CreatedAt = time.Now()
	}

	if err := campaign.Validate(); err != nil {
		m.err = err
		return m, nil
	}

	if path := strings.TrimSpace(m.inputs[fieldLogo].Value()); path != "" {
		logo, err := loadLogo(path)
		if err != nil {
			m.err = err
			return m, nil
		}
		campaign.Logo = logo
	}

	logging.UIDebug("form submit: %s edit=%v", campaign.CompanyName, isEdit)
	return m, func() tea.Msg {
		return formDoneMsg{submitted: true, isEdit: isEdit, campaign: campaign}
	}
}

// loadLogo reads an image file into a blob, inferring the media type
// from the extension.
func loadLogo(path string) (*types.ImageBlob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	case ".webp":
		mime = "image/webp"
	}
	return &types.ImageBlob{MIMEType: mime, Data: data}, nil
}

// View renders the form.
func (m FormModel) View() string {
	title := "New Campaign"
	if m.editing != nil {
		title = "Edit Campaign"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	for i := range m.inputs {
		label := fieldLabels[i]
		if i == m.focus {
			b.WriteString(m.styles.Subtitle.Render(label))
		} else {
			b.WriteString(m.styles.Muted.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}

	footer := m.styles.Footer.Render("tab next · ctrl+s save · esc cancel")
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Content.Render(b.String()), footer)
}
