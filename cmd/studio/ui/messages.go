package ui

import "socialstudio/internal/types"

// Page navigation messages exchanged between the pages and the root
// model.

type openFormMsg struct {
	// editing is nil for a new campaign.
	editing *types.Campaign
}

type formDoneMsg struct {
	submitted bool
	isEdit    bool
	campaign  types.Campaign
}

type openPlannerMsg struct {
	campaignID string
}

type closePlannerMsg struct{}

type campaignDeletedMsg struct {
	campaignID string
}

// Async completion messages from gateway commands.

type planResultMsg struct {
	campaignID string
	drafts     []types.PostDraft
	err        error
}

type imageResultMsg struct {
	postID string
	blob   *types.ImageBlob
	err    error
}

type consultReplyMsg struct {
	text string
}
