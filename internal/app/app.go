// Package app owns the in-memory application state: campaigns, posts,
// the current selection, and the active view. All mutation goes
// through this coordinator, which persists synchronously to the store
// before returning. It is driven from a single event loop, so no
// locking is needed; overlapping visual completions simply resolve to
// whichever finished last.
package app

import (
	"fmt"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// View identifies the top-level screen.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewPlanner   View = "planner"
)

// Persister is the slice of the store the coordinator needs.
type Persister interface {
	LoadCampaigns() ([]types.Campaign, error)
	LoadPosts() ([]types.Post, error)
	SaveCampaigns([]types.Campaign) error
	SavePosts([]types.Post) error
}

// State coordinates campaigns, posts, selection, and view.
type State struct {
	store Persister

	campaigns  []types.Campaign
	posts      []types.Post
	selectedID string
	view       View
}

// Load builds the state from the store.
func Load(store Persister) (*State, error) {
	campaigns, err := store.LoadCampaigns()
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	posts, err := store.LoadPosts()
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	logging.Boot("State loaded: %d campaigns, %d posts", len(campaigns), len(posts))
	return &State{
		store:     store,
		campaigns: campaigns,
		posts:     posts,
		view:      ViewDashboard,
	}, nil
}

// Campaigns returns the campaigns in insertion order.
func (s *State) Campaigns() []types.Campaign { return s.campaigns }

// Campaign looks up a campaign by id.
func (s *State) Campaign(id string) (types.Campaign, bool) {
	for _, c := range s.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return types.Campaign{}, false
}

// Selected returns the selected campaign, if any.
func (s *State) Selected() (types.Campaign, bool) {
	if s.selectedID == "" {
		return types.Campaign{}, false
	}
	return s.Campaign(s.selectedID)
}

// View returns the active view.
func (s *State) View() View { return s.view }

// SetView switches the active view.
func (s *State) SetView(v View) {
	logging.UIDebug("SetView: %s -> %s", s.view, v)
	s.view = v
}

// Select marks a campaign as selected. An empty id clears selection.
func (s *State) Select(id string) {
	s.selectedID = id
}

// AddCampaign appends a campaign. No duplicate check: ids are fresh
// uuids, and the dashboard renders whatever is stored.
func (s *State) AddCampaign(c types.Campaign) error {
	s.campaigns = append(s.campaigns, c)
	if err := s.store.SaveCampaigns(s.campaigns); err != nil {
		return err
	}
	logging.UI("AddCampaign: %s (%s)", c.CompanyName, c.ID)
	return nil
}

// UpdateCampaign replaces the campaign with a matching id wholesale.
// Unknown ids are a no-op.
func (s *State) UpdateCampaign(c types.Campaign) error {
	replaced := false
	for i := range s.campaigns {
		if s.campaigns[i].ID == c.ID {
			s.campaigns[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		logging.UIDebug("UpdateCampaign: id %s not found, ignoring", c.ID)
		return nil
	}
	if err := s.store.SaveCampaigns(s.campaigns); err != nil {
		return err
	}
	logging.UI("UpdateCampaign: %s (%s)", c.CompanyName, c.ID)
	return nil
}

// DeleteCampaign removes a campaign by id. When the deleted campaign
// was selected, selection clears and the view falls back to the
// dashboard. Its posts are retained.
func (s *State) DeleteCampaign(id string) error {
	kept := s.campaigns[:0]
	for _, c := range s.campaigns {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.campaigns = kept

	if s.selectedID == id {
		s.selectedID = ""
		s.view = ViewDashboard
	}
	if err := s.store.SaveCampaigns(s.campaigns); err != nil {
		return err
	}
	logging.UI("DeleteCampaign: %s", id)
	return nil
}

// Posts returns all posts for one campaign, in commit order.
func (s *State) Posts(campaignID string) []types.Post {
	var out []types.Post
	for _, p := range s.posts {
		if p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	return out
}

// AllPosts returns the full posts collection.
func (s *State) AllPosts() []types.Post { return s.posts }

// CommitPosts appends a previewed batch to the campaign's posts.
// Existing posts are never replaced: committing N posts onto M leaves
// M+N.
func (s *State) CommitPosts(campaignID string, batch []types.Post) error {
	for i := range batch {
		batch[i].CampaignID = campaignID
	}
	s.posts = append(s.posts, batch...)
	if err := s.store.SavePosts(s.posts); err != nil {
		return err
	}
	logging.UI("CommitPosts: campaign=%s committed=%d total=%d", campaignID, len(batch), len(s.posts))
	return nil
}

// SetVisualImage writes a generated or edited image back onto a
// committed post. Unknown post ids are a no-op: the post may have
// belonged to a batch that was never committed.
func (s *State) SetVisualImage(postID string, blob *types.ImageBlob) error {
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Visual = s.posts[i].Visual.WithImage(blob)
			if err := s.store.SavePosts(s.posts); err != nil {
				return err
			}
			logging.UI("SetVisualImage: post=%s bytes=%d", postID, len(blob.Data))
			return nil
		}
	}
	logging.UIDebug("SetVisualImage: post %s not found, ignoring", postID)
	return nil
}
