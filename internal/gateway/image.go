package gateway

import (
	"context"
	"encoding/base64"
	"fmt"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

// GenerateImage synthesizes an image from a text prompt. When a
// reference image (typically the campaign logo) is supplied, its style
// is folded into the composition via an extra prompt instruction.
func (c *Client) GenerateImage(ctx context.Context, prompt string, reference *types.ImageBlob) (*types.ImageBlob, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "GenerateImage")
	defer timer.Stop()

	parts := []geminiPart{{Text: prompt}}
	if reference != nil {
		parts[0].Text += referenceImageInstruction
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: reference.MIMEType,
				Data:     reference.Base64(),
			},
		})
	}

	logging.GatewayDebug("GenerateImage: prompt_len=%d has_reference=%v", len(prompt), reference != nil)

	resp, err := c.generate(ctx, c.imageModel, geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	})
	if err != nil {
		return nil, err
	}
	return decodeImage(resp)
}

// EditImage applies an edit instruction to an existing image and
// returns the full replacement; the model does not patch in place.
func (c *Client) EditImage(ctx context.Context, image types.ImageBlob, prompt string) (*types.ImageBlob, error) {
	timer := logging.StartTimer(logging.CategoryGateway, "EditImage")
	defer timer.Stop()

	logging.GatewayDebug("EditImage: prompt_len=%d image_bytes=%d", len(prompt), len(image.Data))

	resp, err := c.generate(ctx, c.imageModel, geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MIMEType: image.MIMEType,
					Data:     image.Base64(),
				}},
				{Text: prompt},
			},
		}},
	})
	if err != nil {
		return nil, err
	}
	return decodeImage(resp)
}

func decodeImage(resp *geminiResponse) (*types.ImageBlob, error) {
	inline := resp.inlineData()
	if inline == nil {
		logging.GatewayError("decodeImage: response carried no inline data")
		return nil, ErrNoImageReturned
	}
	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	mime := inline.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	logging.GatewayDebug("decodeImage: %s %d bytes", mime, len(data))
	return &types.ImageBlob{MIMEType: mime, Data: data}, nil
}
