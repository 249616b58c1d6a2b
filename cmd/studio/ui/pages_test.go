package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"socialstudio/internal/app"
	"socialstudio/internal/types"
)

// memStore backs app.State in tests without touching sqlite.
type memStore struct {
	campaigns []types.Campaign
	posts     []types.Post
}

func (m *memStore) LoadCampaigns() ([]types.Campaign, error) { return m.campaigns, nil }
func (m *memStore) LoadPosts() ([]types.Post, error)         { return m.posts, nil }
func (m *memStore) SaveCampaigns(cs []types.Campaign) error {
	m.campaigns = append([]types.Campaign(nil), cs...)
	return nil
}
func (m *memStore) SavePosts(ps []types.Post) error {
	m.posts = append([]types.Post(nil), ps...)
	return nil
}

// stubGen is a canned Generator.
type stubGen struct {
	drafts     []types.PostDraft
	planErr    error
	image      *types.ImageBlob
	imageErr   error
	consultOut string
}

func (s *stubGen) GeneratePlan(_ context.Context, _ types.Campaign, _ int, _ string, _ types.Platform) ([]types.PostDraft, error) {
	return s.drafts, s.planErr
}

func (s *stubGen) GenerateImage(_ context.Context, _ string, _ *types.ImageBlob) (*types.ImageBlob, error) {
	return s.image, s.imageErr
}

func (s *stubGen) EditImage(_ context.Context, _ types.ImageBlob, _ string) (*types.ImageBlob, error) {
	return s.image, s.imageErr
}

func (s *stubGen) Consult(_ context.Context, _ []types.ChatMessage, _ *types.Campaign) string {
	return s.consultOut
}

func testState(t *testing.T, campaigns ...types.Campaign) *app.State {
	t.Helper()
	state, err := app.Load(&memStore{campaigns: campaigns})
	if err != nil {
		t.Fatalf("app.Load failed: %v", err)
	}
	return state
}

func ecoSip() types.Campaign {
	return types.Campaign{
		ID: "c1", CompanyName: "EcoSip", Niche: "Sustainable Beverages",
		Services: "Coffee", TargetAudience: "Millennials", BrandVoice: "Earthy",
		CreatedAt: time.Now(),
	}
}

// drainPlanner feeds produced messages back into the model until the
// pipeline settles. Spinner ticks are dropped to keep it finite.
func drainPlanner(m PlannerModel, cmd tea.Cmd) PlannerModel {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		if _, ok := msg.(spinner.TickMsg); ok {
			return m
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				m = drainPlanner(m, c)
			}
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func TestDashboardListsCampaigns(t *testing.T) {
	state := testState(t, ecoSip())
	d := NewDashboardModel(state, DefaultStyles())
	d.SetSize(100, 30)
	if !strings.Contains(d.View(), "EcoSip") {
		t.Error("dashboard does not show campaign")
	}
}

func TestDashboardDeleteRequiresConfirmation(t *testing.T) {
	state := testState(t, ecoSip())
	d := NewDashboardModel(state, DefaultStyles())
	d.SetSize(100, 30)

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if !strings.Contains(d.View(), "Delete") {
		t.Error("confirmation prompt missing")
	}
	// Anything but y aborts.
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if len(state.Campaigns()) != 1 {
		t.Error("campaign deleted without confirmation")
	}

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	d, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if len(state.Campaigns()) != 0 {
		t.Error("confirmed delete did not remove campaign")
	}
	if cmd == nil {
		t.Fatal("expected deletion message")
	}
	if _, ok := cmd().(campaignDeletedMsg); !ok {
		t.Error("expected campaignDeletedMsg")
	}
}

func TestFormValidationBlocksSubmit(t *testing.T) {
	f := NewFormModel(DefaultStyles())
	f.Reset(nil)

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("empty form should not submit")
	}
	if !strings.Contains(f.View(), "cannot be blank") {
		t.Error("validation error not shown")
	}
}

func TestFormSubmitProducesCampaign(t *testing.T) {
	f := NewFormModel(DefaultStyles())
	f.Reset(nil)

	values := []string{"EcoSip", "Beverages", "Coffee", "Millennials", "Earthy"}
	for i, v := range values {
		f.inputs[i].SetValue(v)
	}

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("valid form did not submit")
	}
	done, ok := cmd().(formDoneMsg)
	if !ok || !done.submitted {
		t.Fatalf("unexpected message: %+v", done)
	}
	if done.isEdit {
		t.Error("fresh form flagged as edit")
	}
	if done.campaign.ID == "" || done.campaign.CompanyName != "EcoSip" {
		t.Errorf("campaign malformed: %+v", done.campaign)
	}
}

func TestFormEditKeepsIdentity(t *testing.T) {
	f := NewFormModel(DefaultStyles())
	existing := ecoSip()
	f.Reset(&existing)
	f.inputs[fieldCompany].SetValue("EcoSip Global")

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("edit did not submit")
	}
	done := cmd().(formDoneMsg)
	if !done.isEdit || done.campaign.ID != existing.ID {
		t.Errorf("edit identity lost: %+v", done.campaign)
	}
	if done.campaign.CompanyName != "EcoSip Global" {
		t.Error("edit not applied")
	}
}

func TestPlannerBatchLifecycle(t *testing.T) {
	state := testState(t, ecoSip())
	state.Select("c1")
	gen := &stubGen{drafts: []types.PostDraft{
		{Day: "Mon", Caption: "a", Hashtags: []string{"#a"}, VisualDescription: "va", VisualType: "image"},
		{Day: "Tue", Caption: "b", Hashtags: []string{"#b"}, VisualDescription: "vb", VisualType: "video", VideoScript: "s"},
	}}

	p := NewPlannerModel(state, gen, DefaultStyles(), t.TempDir())
	p.Open()
	p.SetSize(100, 30)

	if p.batchState != BatchNotRequested {
		t.Fatalf("initial state = %v", p.batchState)
	}

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if p.batchState != BatchPending {
		t.Fatalf("state after generate = %v", p.batchState)
	}
	p = drainPlanner(p, cmd)

	if p.batchState != BatchPreviewed {
		t.Fatalf("state after result = %v", p.batchState)
	}
	if len(p.batch) != 2 {
		t.Fatalf("batch size = %d", len(p.batch))
	}
	if p.batch[1].Visual.Kind != types.KindVideo {
		t.Error("video draft not promoted")
	}
	if len(state.Posts("c1")) != 0 {
		t.Error("preview leaked into committed posts")
	}

	// Commit appends.
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if p.batchState != BatchNotRequested || len(p.batch) != 0 {
		t.Error("commit did not clear batch")
	}
	if len(state.Posts("c1")) != 2 {
		t.Fatalf("committed posts = %d", len(state.Posts("c1")))
	}

	// A second batch lands on top of the first.
	p, cmd = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	p = drainPlanner(p, cmd)
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if got := len(state.Posts("c1")); got != 4 {
		t.Errorf("posts after second commit = %d, want 4", got)
	}
}

func TestPlannerGenerationFailure(t *testing.T) {
	state := testState(t, ecoSip())
	state.Select("c1")
	gen := &stubGen{planErr: errors.New("api down")}

	p := NewPlannerModel(state, gen, DefaultStyles(), t.TempDir())
	p.Open()
	p.SetSize(100, 30)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	p = drainPlanner(p, cmd)
	if p.batchState != BatchFailed {
		t.Fatalf("state = %v, want failed", p.batchState)
	}
	if !strings.Contains(p.View(), "Failed to generate content") {
		t.Error("failure message not rendered")
	}

	// Retry from failed works.
	p, cmd = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if p.batchState != BatchPending {
		t.Error("retry did not restart batch")
	}
	_ = cmd
}

func TestPlannerCommitWithoutPreviewIsNoOp(t *testing.T) {
	state := testState(t, ecoSip())
	state.Select("c1")
	p := NewPlannerModel(state, &stubGen{}, DefaultStyles(), t.TempDir())
	p.Open()

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if len(state.Posts("c1")) != 0 {
		t.Error("commit without preview stored posts")
	}
}

func TestPlannerVisualWriteBack(t *testing.T) {
	state := testState(t, ecoSip())
	state.Select("c1")
	state.CommitPosts("c1", []types.Post{{
		ID: "p1", Platform: types.PlatformInstagram,
		VisualDescription: "a cup", Visual: types.NewImageVisual(nil),
	}})
	blob := &types.ImageBlob{MIMEType: "image/png", Data: []byte{1, 2, 3}}
	gen := &stubGen{image: blob}

	p := NewPlannerModel(state, gen, DefaultStyles(), t.TempDir())
	p.Open()
	p.SetSize(100, 30)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	if !p.visualPending["p1"] {
		t.Error("visual not marked pending")
	}
	p = drainPlanner(p, cmd)

	got := state.Posts("c1")[0]
	if got.Visual.Image == nil || len(got.Visual.Image.Data) != 3 {
		t.Errorf("visual not written back: %+v", got.Visual)
	}
	if p.visualPending["p1"] {
		t.Error("pending flag not cleared")
	}
}

func TestPlannerDurationAndPlatformCycle(t *testing.T) {
	state := testState(t, ecoSip())
	state.Select("c1")
	p := NewPlannerModel(state, &stubGen{}, DefaultStyles(), t.TempDir())

	if p.days() != 7 {
		t.Errorf("default duration = %d", p.days())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if p.days() != 14 {
		t.Errorf("duration after cycle = %d", p.days())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if p.days() != 3 {
		t.Errorf("duration wrap = %d", p.days())
	}

	if p.platform() != types.PlatformInstagram {
		t.Errorf("default platform = %s", p.platform())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if p.platform() != types.PlatformLinkedIn {
		t.Errorf("platform after cycle = %s", p.platform())
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 40, "short"},
		{"abcdefgh", 6, "abc..."},
		{"héllö wörld, ça va très bien", 10, "héllö w..."},
		{"日本語のキャプションです", 8, "日本語のキ..."},
		{"tiny", 3, "tiny"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestConsultPanelWelcomeAndReply(t *testing.T) {
	state := testState(t, ecoSip())
	gen := &stubGen{consultOut: "Post more reels."}
	c := NewConsultModel(state, gen, DefaultStyles())
	c.SetSize(60, 30)

	if !strings.Contains(c.View(), "AI Marketing Expert") {
		t.Error("welcome message missing")
	}

	c.input.SetValue("How do I grow?")
	c, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !c.waiting {
		t.Fatal("panel not waiting after send")
	}
	if len(c.history) != 2 {
		t.Fatalf("history = %d turns", len(c.history))
	}

	// Resolve the batch: spinner tick + gateway reply.
	for cmd != nil {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				if reply, ok := sub().(consultReplyMsg); ok {
					c, _ = c.Update(reply)
				}
			}
			break
		}
		if reply, ok := msg.(consultReplyMsg); ok {
			c, _ = c.Update(reply)
			break
		}
		break
	}

	if c.waiting {
		t.Error("still waiting after reply")
	}
	if len(c.history) != 3 || c.history[2].Text != "Post more reels." {
		t.Errorf("reply not appended: %+v", c.history)
	}
}

func TestConsultIgnoresEmptyInput(t *testing.T) {
	state := testState(t, ecoSip())
	c := NewConsultModel(state, &stubGen{}, DefaultStyles())
	c.input.SetValue("   ")
	c, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if c.waiting || cmd != nil {
		t.Error("blank input should not send")
	}
	if len(c.history) != 1 {
		t.Errorf("history grew on blank input: %d", len(c.history))
	}
}

func TestRootModelNavigation(t *testing.T) {
	state := testState(t, ecoSip())
	root := NewModel(state, &stubGen{}, t.TempDir())

	var m tea.Model = root
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(openPlannerMsg{campaignID: "c1"})
	rm := m.(Model)
	if rm.viewMode != PlannerView {
		t.Fatalf("view = %v, want planner", rm.viewMode)
	}
	if sel, ok := state.Selected(); !ok || sel.ID != "c1" {
		t.Error("selection not set")
	}

	m, _ = m.Update(closePlannerMsg{})
	rm = m.(Model)
	if rm.viewMode != DashboardView {
		t.Error("planner close did not return to dashboard")
	}
	if _, ok := state.Selected(); ok {
		t.Error("selection not cleared")
	}
}

func TestRootModelConsultToggle(t *testing.T) {
	state := testState(t, ecoSip())
	root := NewModel(state, &stubGen{consultOut: "ok"}, t.TempDir())

	var m tea.Model = root
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	rm := m.(Model)
	if !rm.showConsult {
		t.Fatal("consult panel not shown")
	}
	if !strings.Contains(rm.View(), "Marketing Consultant") {
		t.Error("consult panel not rendered")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.(Model).showConsult {
		t.Error("consult panel not hidden on second toggle")
	}
}
