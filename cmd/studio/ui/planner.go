package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"socialstudio/internal/app"
	"socialstudio/internal/export"
	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// BatchState tracks a generation batch through its lifecycle. A batch
// never moves backwards: committing clears it and the posts live on in
// the application state.
type BatchState int

const (
	BatchNotRequested BatchState = iota
	BatchPending
	BatchPreviewed
	BatchFailed
)

// durations are the selectable planning horizons, in days.
var durations = []int{3, 7, 14}

// inputMode selects which text input, if any, owns the keyboard.
type inputMode int

const (
	modeNormal inputMode = iota
	modeDate
	modePrompt      // edit visual description of a previewed post
	modeImagePrompt // edit instruction for a committed image
)

// PlannerModel drives content generation for the selected campaign.
type PlannerModel struct {
	state *app.State
	gen   Generator

	styles    Styles
	exportDir string

	// Controls
	durationIdx int
	platformIdx int
	dateInput   textinput.Model

	// Batch under preview. Posts get ids at promotion time so visual
	// completions can find them before commit.
	batch      []types.Post
	batchState BatchState
	batchErr   string

	// Visual generation in flight, keyed by post id.
	visualPending map[string]bool

	mode        inputMode
	promptInput textinput.Model
	cursor      int

	spinner  spinner.Model
	viewport viewport.Model
	status   string
	width    int
	height   int
}

// NewPlannerModel builds the planner page.
func NewPlannerModel(state *app.State, gen Generator, styles Styles, exportDir string) PlannerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	date := textinput.New()
	date.Prompt = ""
	date.CharLimit = 10
	date.Width = 12
	date.SetValue(time.Now().Format("2006-01-02"))

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.CharLimit = 1024
	prompt.Width = 60

	vp := viewport.New(80, 16)

	return PlannerModel{
		state:         state,
		gen:           gen,
		styles:        styles,
		exportDir:     exportDir,
		durationIdx:   1, // 7 days
		dateInput:     date,
		promptInput:   prompt,
		visualPending: map[string]bool{},
		spinner:       sp,
		viewport:      vp,
		width:         80,
		height:        20,
	}
}

// Init implements tea.Model.
func (m PlannerModel) Init() tea.Cmd { return nil }

// Open resets per-campaign state when the planner is entered.
func (m *PlannerModel) Open() {
	m.batch = nil
	m.batchState = BatchNotRequested
	m.batchErr = ""
	m.status = ""
	m.cursor = 0
	m.mode = modeNormal
	m.visualPending = map[string]bool{}
}

// SetSize resizes the post viewport.
func (m *PlannerModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w - 4
	m.viewport.Height = h - 9
	m.promptInput.Width = w - 12
}

func (m PlannerModel) days() int { return durations[m.durationIdx] }

func (m PlannerModel) platform() types.Platform {
	return types.Platforms[m.platformIdx]
}

// visiblePosts returns committed posts followed by the preview batch,
// which is the order the page renders them in.
func (m PlannerModel) visiblePosts() []types.Post {
	campaign, ok := m.state.Selected()
	if !ok {
		return nil
	}
	out := append([]types.Post(nil), m.state.Posts(campaign.ID)...)
	return append(out, m.batch...)
}

// Update handles planner input and async completions.
func (m PlannerModel) Update(msg tea.Msg) (PlannerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case planResultMsg:
		return m.handlePlanResult(msg)
	case imageResultMsg:
		return m.handleImageResult(msg)
	case spinner.TickMsg:
		if m.batchState == BatchPending || len(m.visualPending) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PlannerModel) handleKey(msg tea.KeyMsg) (PlannerModel, tea.Cmd) {
	switch m.mode {
	case modeDate:
		switch msg.String() {
		case "enter", "esc":
			m.mode = modeNormal
			m.dateInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd

	case modePrompt:
		switch msg.String() {
		case "enter":
			m.applyPromptEdit()
			m.mode = modeNormal
			m.promptInput.Blur()
			return m, nil
		case "esc":
			m.mode = modeNormal
			m.promptInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.promptInput, cmd = m.promptInput.Update(msg)
		return m, cmd

	case modeImagePrompt:
		switch msg.String() {
		case "enter":
			instruction := strings.TrimSpace(m.promptInput.Value())
			m.mode = modeNormal
			m.promptInput.Blur()
			if instruction == "" {
				return m, nil
			}
			return m.startImageEdit(instruction)
		case "esc":
			m.mode = modeNormal
			m.promptInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.promptInput, cmd = m.promptInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return closePlannerMsg{} }
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visiblePosts())-1 {
			m.cursor++
		}
	case "d":
		m.durationIdx = (m.durationIdx + 1) % len(durations)
	case "p":
		m.platformIdx = (m.platformIdx + 1) % len(types.Platforms)
	case "t":
		m.mode = modeDate
		m.dateInput.Focus()
	case "g":
		return m.startGenerate()
	case "s":
		return m.commitBatch()
	case "x":
		m.exportCSV()
	case "e":
		m.beginPromptEdit()
	case "v":
		return m.startVisual()
	case "i":
		m.beginImagePrompt()
	}
	return m, nil
}

// startGenerate kicks off plan generation. Re-generating over an
// uncommitted preview discards it.
func (m PlannerModel) startGenerate() (PlannerModel, tea.Cmd) {
	if m.batchState == BatchPending {
		return m, nil
	}
	campaign, ok := m.state.Selected()
	if !ok {
		return m, nil
	}

	days := m.days()
	startDate := strings.TrimSpace(m.dateInput.Value())
	platform := m.platform()

	m.batch = nil
	m.batchState = BatchPending
	m.batchErr = ""
	m.status = ""
	logging.Planner("planner: generating %d days of %s content for %s", days, platform, campaign.CompanyName)

	gen := m.gen
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		drafts, err := gen.GeneratePlan(context.Background(), campaign, days, startDate, platform)
		return planResultMsg{campaignID: campaign.ID, drafts: drafts, err: err}
	})
}

func (m PlannerModel) handlePlanResult(msg planResultMsg) (PlannerModel, tea.Cmd) {
	if m.batchState != BatchPending {
		// Stale completion from a batch that was superseded.
		return m, nil
	}
	if msg.err != nil {
		m.batchState = BatchFailed
		m.batchErr = "Failed to generate content. Please try again."
		logging.Planner("planner: generation failed: %v", msg.err)
		return m, nil
	}

	platform := m.platform()
	m.batch = make([]types.Post, 0, len(msg.drafts))
	for _, d := range msg.drafts {
		m.batch = append(m.batch, d.Promote(msg.campaignID, platform))
	}
	m.batchState = BatchPreviewed
	logging.Planner("planner: previewing %d posts", len(m.batch))
	return m, nil
}

// commitBatch appends the previewed batch to the campaign's posts.
func (m PlannerModel) commitBatch() (PlannerModel, tea.Cmd) {
	if m.batchState != BatchPreviewed || len(m.batch) == 0 {
		return m, nil
	}
	campaign, ok := m.state.Selected()
	if !ok {
		return m, nil
	}
	if err := m.state.CommitPosts(campaign.ID, m.batch); err != nil {
		m.status = "Save failed: " + err.Error()
		return m, nil
	}
	m.batch = nil
	m.batchState = BatchNotRequested
	m.status = "Content calendar saved."
	return m, nil
}

// beginPromptEdit opens the visual description editor for the
// selected previewed post. Committed posts are immutable except for
// their visuals.
func (m *PlannerModel) beginPromptEdit() {
	post, inBatch := m.selectedPost()
	if post == nil || !inBatch {
		return
	}
	m.mode = modePrompt
	m.promptInput.SetValue(post.VisualDescription)
	m.promptInput.Focus()
}

func (m *PlannerModel) applyPromptEdit() {
	post, inBatch := m.selectedPost()
	if post == nil || !inBatch {
		return
	}
	post.VisualDescription = strings.TrimSpace(m.promptInput.Value())
}

// beginImagePrompt opens the edit-instruction input for a committed
// image post that already has a generated image.
func (m *PlannerModel) beginImagePrompt() {
	post, inBatch := m.selectedPost()
	if post == nil || inBatch {
		return
	}
	if post.Visual.Kind != types.KindImage || post.Visual.Image == nil {
		return
	}
	m.mode = modeImagePrompt
	m.promptInput.SetValue("")
	m.promptInput.Focus()
}

// selectedPost returns a pointer into either the committed posts copy
// or the live batch. Only batch pointers are mutable in place.
func (m *PlannerModel) selectedPost() (post *types.Post, inBatch bool) {
	visible := m.visiblePosts()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil, false
	}
	committed := len(visible) - len(m.batch)
	if m.cursor >= committed {
		return &m.batch[m.cursor-committed], true
	}
	p := visible[m.cursor]
	return &p, false
}

// startVisual generates an image for the selected image post. The
// campaign logo rides along as a style reference when present.
// Overlapping completions for the same post resolve last-writer-wins.
func (m PlannerModel) startVisual() (PlannerModel, tea.Cmd) {
	post, _ := m.selectedPost()
	if post == nil || post.Visual.Kind != types.KindImage {
		return m, nil
	}
	campaign, ok := m.state.Selected()
	if !ok {
		return m, nil
	}

	id := post.ID
	prompt := post.VisualDescription
	logo := campaign.Logo
	m.visualPending[id] = true
	logging.Planner("planner: generating visual for post %s", id)

	gen := m.gen
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		blob, err := gen.GenerateImage(context.Background(), prompt, logo)
		return imageResultMsg{postID: id, blob: blob, err: err}
	})
}

// startImageEdit sends the committed image plus an instruction through
// the edit operation.
func (m PlannerModel) startImageEdit(instruction string) (PlannerModel, tea.Cmd) {
	post, _ := m.selectedPost()
	if post == nil || post.Visual.Image == nil {
		return m, nil
	}

	id := post.ID
	src := *post.Visual.Image
	m.visualPending[id] = true
	logging.Planner("planner: editing visual for post %s", id)

	gen := m.gen
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		blob, err := gen.EditImage(context.Background(), src, instruction)
		return imageResultMsg{postID: id, blob: blob, err: err}
	})
}

func (m PlannerModel) handleImageResult(msg imageResultMsg) (PlannerModel, tea.Cmd) {
	delete(m.visualPending, msg.postID)
	if msg.err != nil {
		m.status = "Visual generation failed."
		logging.Planner("planner: visual failed for %s: %v", msg.postID, msg.err)
		return m, nil
	}

	// Previewed batch first, then committed posts.
	for i := range m.batch {
		if m.batch[i].ID == msg.postID {
			m.batch[i].Visual = m.batch[i].Visual.WithImage(msg.blob)
			return m, nil
		}
	}
	if err := m.state.SetVisualImage(msg.postID, msg.blob); err != nil {
		m.status = "Save failed: " + err.Error()
	}
	return m, nil
}

// exportCSV writes the committed calendar for the selected campaign.
func (m *PlannerModel) exportCSV() {
	campaign, ok := m.state.Selected()
	if !ok {
		return
	}
	path, err := export.WriteCSV(m.exportDir, campaign, m.state.Posts(campaign.ID))
	if err != nil {
		m.status = "Export failed: " + err.Error()
		return
	}
	m.status = "Exported " + path
}

// View renders the planner.
func (m PlannerModel) View() string {
	campaign, ok := m.state.Selected()
	if !ok {
		return m.styles.Content.Render("No campaign selected.")
	}

	header := m.styles.Header.Render(fmt.Sprintf(" Planner · %s ", campaign.CompanyName))
	controls := fmt.Sprintf("%s %d days   %s %s   %s %s",
		m.styles.Subtitle.Render("[d]"), m.days(),
		m.styles.Subtitle.Render("[p]"), m.platform().DisplayName(),
		m.styles.Subtitle.Render("[t]"), m.dateInput.View())

	var body strings.Builder
	switch m.batchState {
	case BatchPending:
		body.WriteString(m.spinner.View() + " Generating content plan...\n")
	case BatchFailed:
		body.WriteString(m.styles.Error.Render(m.batchErr) + "\n")
	}
	body.WriteString(m.renderPosts())

	m.viewport.SetContent(body.String())

	var extra string
	switch m.mode {
	case modePrompt:
		extra = m.styles.Subtitle.Render("Visual prompt: ") + m.promptInput.View()
	case modeImagePrompt:
		extra = m.styles.Subtitle.Render("Edit instruction: ") + m.promptInput.View()
	default:
		if m.status != "" {
			extra = m.styles.Muted.Render(m.status)
		}
	}

	footer := m.styles.Footer.Render("g generate · s save · v visual · i edit image · e edit prompt · x export · esc back")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.styles.Content.Render(controls),
		m.viewport.View(),
		extra,
		footer)
}

func (m PlannerModel) renderPosts() string {
	visible := m.visiblePosts()
	if len(visible) == 0 {
		return m.styles.Muted.Render("No posts yet. Press g to generate a plan.")
	}
	committed := len(visible) - len(m.batch)

	var b strings.Builder
	for i, p := range visible {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Subtitle.Render("> ")
		}

		badge := ""
		if i >= committed {
			badge = " " + m.styles.Badge.Render("preview")
		}
		if m.visualPending[p.ID] {
			badge += " " + m.spinner.View()
		}

		visual := m.styles.Muted.Render("no visual")
		switch {
		case p.Visual.Kind == types.KindVideo:
			visual = m.styles.Warning.Render("video script")
		case p.Visual.Image != nil:
			visual = m.styles.Success.Render(fmt.Sprintf("image %dKB", len(p.Visual.Image.Data)/1024))
		}

		fmt.Fprintf(&b, "%s%s · %s · %s%s\n", cursor,
			m.styles.Bold.Render(p.Day), p.Platform.DisplayName(), visual, badge)
		fmt.Fprintf(&b, "   %s\n", truncate(p.Caption, m.width-6))
		fmt.Fprintf(&b, "   %s\n", m.styles.Muted.Render(truncate(p.VisualDescription, m.width-6)))
	}
	return b.String()
}

func truncate(s string, max int) string {
	if max < 4 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
