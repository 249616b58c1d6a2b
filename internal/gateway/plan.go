package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// GeneratePlan produces one PostDraft per day of the requested horizon
// for a single platform. Failures are wrapped in ErrGenerationFailed
// so the UI can show a uniform retryable message.
func (c *Client) GeneratePlan(ctx context.Context, campaign types.Campaign, days int, startDate string, platform types.Platform) ([]types.PostDraft, error) {
	timer := logging.StartTimer(logging.CategoryPlanner, "GeneratePlan")
	defer timer.Stop()

	if days <= 0 {
		return nil, fmt.Errorf("%w: day count must be positive", ErrGenerationFailed)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrGenerationFailed, platform)
	}

	logging.Planner("GeneratePlan: campaign=%s days=%d platform=%s", campaign.CompanyName, days, platform)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: buildPlanPrompt(campaign, days, startDate, platform)}},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   planResponseSchema(),
		},
	}

	resp, err := c.generate(ctx, c.planModel, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := strings.TrimSpace(resp.text())
	if text == "" {
		logging.GatewayError("GeneratePlan: response carried no content")
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	var drafts []types.PostDraft
	if err := json.Unmarshal([]byte(text), &drafts); err != nil {
		logging.GatewayError("GeneratePlan: failed to parse drafts: %v", err)
		return nil, fmt.Errorf("%w: failed to parse drafts: %v", ErrGenerationFailed, err)
	}

	logging.Planner("GeneratePlan: received %d drafts", len(drafts))
	return drafts, nil
}
