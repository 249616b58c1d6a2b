package gateway

import (
	"context"
	"strings"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// Fallback texts returned to the UI instead of raw errors; the consult
// surface never shows a failure, only an apology.
const (
	consultEmptyFallback = "I couldn't generate a response at this time."
	consultErrorFallback = "I apologize, but I'm having trouble connecting to the marketing database right now."
)

// Consult sends the full conversation history and returns the model's
// next turn. Failures surface as the apology fallback text rather than
// an error so the chat keeps its shape.
func (c *Client) Consult(ctx context.Context, history []types.ChatMessage, campaign *types.Campaign) string {
	timer := logging.StartTimer(logging.CategoryConsult, "Consult")
	defer timer.Stop()

	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		contents = append(contents, geminiContent{
			Role:  string(msg.Role),
			Parts: []geminiPart{{Text: msg.Text}},
		})
	}

	logging.Consult("Consult: turns=%d has_campaign=%v", len(history), campaign != nil)

	resp, err := c.generate(ctx, c.consultModel, geminiRequest{
		Contents: contents,
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: buildConsultSystem(campaign)}},
		},
	})
	if err != nil {
		logging.ConsultDebug("Consult: falling back after error: %v", err)
		return consultErrorFallback
	}

	text := strings.TrimSpace(resp.text())
	if text == "" {
		return consultEmptyFallback
	}
	return text
}
