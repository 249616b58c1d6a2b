// Package types defines the shared domain types for SocialStudio:
// campaigns (brand profiles), posts (scheduled content items), and the
// chat messages exchanged with the marketing consultant.
package types

import (
	"fmt"
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Platform identifies the social network a post is written for.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
)

// Platforms lists all supported platforms in display order.
var Platforms = []Platform{PlatformInstagram, PlatformLinkedIn, PlatformTwitter, PlatformFacebook}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformLinkedIn, PlatformTwitter, PlatformFacebook:
		return true
	}
	return false
}

func (p Platform) String() string { return string(p) }

// DisplayName returns the platform name as shown in the UI.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTwitter:
		return "Twitter / X"
	case PlatformFacebook:
		return "Facebook"
	}
	return string(p)
}

// PostStatus tracks a post through its publishing lifecycle.
// Scheduled and published are reserved for future scheduling support;
// nothing currently transitions a post out of draft.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
)

// Campaign is a brand profile used to parameterize content generation.
type Campaign struct {
	ID             string     `json:"id"`
	CompanyName    string     `json:"companyName"`
	Niche          string     `json:"niche"`
	Services       string     `json:"services"`
	TargetAudience string     `json:"targetAudience"`
	BrandVoice     string     `json:"brandVoice"`
	Logo           *ImageBlob `json:"logo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Validate checks that all required profile fields are filled in.
// The form layer calls this before add/update; the store does not.
func (c Campaign) Validate() error {
	return v.ValidateStruct(&c,
		v.Field(&c.CompanyName, v.Required),
		v.Field(&c.Niche, v.Required),
		v.Field(&c.Services, v.Required),
		v.Field(&c.TargetAudience, v.Required),
		v.Field(&c.BrandVoice, v.Required),
	)
}

// Post is one planned content item tied to a campaign and a platform.
// Posts are grouped by campaign id externally, never embedded in the
// Campaign record.
type Post struct {
	ID                string     `json:"id"`
	CampaignID        string     `json:"campaignId"`
	Day               string     `json:"day"` // date or weekday label, generator-supplied
	Platform          Platform   `json:"platform"`
	Caption           string     `json:"caption"`
	Hashtags          []string   `json:"hashtags"`
	VisualDescription string     `json:"visualDescription"`
	Visual            Visual     `json:"visual"`
	Status            PostStatus `json:"status"`
}

// PostDraft is the generator output shape for a single day, before it
// is promoted to a Post with an id, platform, and status.
type PostDraft struct {
	Day               string   `json:"day"`
	Caption           string   `json:"caption"`
	Hashtags          []string `json:"hashtags"`
	VisualDescription string   `json:"visualDescription"`
	VisualType        string   `json:"visualType"`
	VideoScript       string   `json:"videoScript,omitempty"`
}

// Promote converts a generated draft into a persistable Post with a
// fresh id, draft status, and the requested campaign and platform. An
// unrecognized visual type defaults to image.
func (d PostDraft) Promote(campaignID string, platform Platform) Post {
	var vis Visual
	if d.VisualType == string(KindVideo) {
		vis = NewVideoVisual(d.VideoScript)
	} else {
		vis = NewImageVisual(nil)
	}
	return Post{
		ID:                NewID(),
		CampaignID:        campaignID,
		Day:               d.Day,
		Platform:          platform,
		Caption:           d.Caption,
		Hashtags:          d.Hashtags,
		VisualDescription: d.VisualDescription,
		Visual:            vis,
		Status:            StatusDraft,
	}
}

// ChatRole identifies the speaker of a consultation turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the consultant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID returns a fresh opaque unique identifier.
func NewID() string { return uuid.NewString() }

// ParsePlatform converts user input into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}
