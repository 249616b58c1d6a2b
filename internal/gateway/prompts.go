package gateway

import (
	"fmt"
	"strings"

	"socialstudio/internal/types"
)

// platformGuidelines carries the per-network writing rules injected
// into the plan prompt.
var platformGuidelines = map[types.Platform]string{
	types.PlatformInstagram: "Focus on visual storytelling, use 15-20 hashtags, casual and engaging tone.",
	types.PlatformLinkedIn:  "Professional tone, focus on industry insights and leadership, use 3-5 hashtags.",
	types.PlatformTwitter:   "Short, punchy, under 280 characters if possible (thread style if longer), 2-3 hashtags.",
	types.PlatformFacebook:  "Community focused, conversational, moderate length.",
}

// referenceImageInstruction is appended to an image prompt when a
// reference image or logo accompanies it.
const referenceImageInstruction = " Incorporate the visual style and elements of the provided reference image/logo naturally into the composition."

const consultSystemInstruction = `
    You are a world-class Digital Marketing Consultant and Growth Hacker.
    CRITICAL INSTRUCTION: Provide extremely concise, high-impact advice.
    - Do NOT write blog posts or long introductions.
    - Get straight to the point immediately.
    - Use bullet points for lists.
    - Keep responses under 100 words unless explicitly asked for a detailed strategy.
    - Be professional, sharp, and direct.
  `

// buildPlanPrompt assembles the calendar generation prompt for one
// campaign, horizon, start date, and platform.
func buildPlanPrompt(campaign types.Campaign, days int, startDate string, platform types.Platform) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
    You are an expert social media manager for a company with the following profile:
    - Company Name: %s
    - Niche: %s
    - Services: %s
    - Target Audience: %s
    - Brand Voice: %s

    Please generate a social media content calendar for %d days starting from %s specifically for %s.

    Platform Rules: %s

    For each day, provide:
    1. A creative caption formatted for %s.
    2. Relevant hashtags.
    3. A detailed visual description (prompt) for generating an image or video.
       %s
    4. Suggest whether an 'image' or 'video' is best for this post.
    5. If the visual type is 'video', provide a short script (voiceover or action description).
  `,
		campaign.CompanyName, campaign.Niche, campaign.Services,
		campaign.TargetAudience, campaign.BrandVoice,
		days, startDate, strings.ToUpper(platform.String()),
		platformGuidelines[platform],
		platform.String(),
		logoNote(campaign))
	return b.String()
}

func logoNote(campaign types.Campaign) string {
	if campaign.Logo != nil {
		return "Note: The visual should seamlessly incorporate the brand's logo style."
	}
	return ""
}

// planResponseSchema is the structured-output schema for the plan
// operation: an array of per-day draft objects.
func planResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "ARRAY",
		"items": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"day": map[string]interface{}{
					"type":        "STRING",
					"description": "The date or day of the week",
				},
				"caption": map[string]interface{}{
					"type":        "STRING",
					"description": "Engaging social media caption",
				},
				"hashtags": map[string]interface{}{
					"type":        "ARRAY",
					"items":       map[string]interface{}{"type": "STRING"},
					"description": "List of relevant hashtags",
				},
				"visualDescription": map[string]interface{}{
					"type":        "STRING",
					"description": "Prompt for visual generation",
				},
				"visualType": map[string]interface{}{
					"type":        "STRING",
					"enum":        []string{"image", "video"},
					"description": "Recommended visual type",
				},
				"videoScript": map[string]interface{}{
					"type":        "STRING",
					"description": "Script for the video if visualType is video",
				},
			},
			"required": []string{"day", "caption", "hashtags", "visualDescription", "visualType"},
		},
	}
}

// buildConsultSystem returns the consultant system instruction,
// extended with campaign context when one is selected.
func buildConsultSystem(campaign *types.Campaign) string {
	if campaign == nil {
		return consultSystemInstruction
	}
	return consultSystemInstruction + fmt.Sprintf(`
      Context for this session:
      - Company: %s
      - Niche: %s
      - Target Audience: %s
      - Brand Voice: %s
    `, campaign.CompanyName, campaign.Niche, campaign.TargetAudience, campaign.BrandVoice)
}
