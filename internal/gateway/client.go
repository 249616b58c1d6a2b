// Package gateway is the single boundary between SocialStudio and the
// Gemini generateContent API. It exposes four operations: content plan
// generation, image synthesis, image editing, and consultation turns.
// Each call is a single attempt; callers decide whether to retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialstudio/internal/logging"
)

// Sentinel errors callers can match with errors.Is.
var (
	// ErrNoAPIKey means the client was constructed without a key.
	ErrNoAPIKey = errors.New("API key not configured")
	// ErrNoImageReturned means the model answered but produced no
	// inline image data.
	ErrNoImageReturned = errors.New("no image returned")
	// ErrGenerationFailed wraps transport and API-level failures of
	// the plan operation.
	ErrGenerationFailed = errors.New("failed to generate content")
)

// Config holds gateway settings.
type Config struct {
	APIKey       string
	BaseURL      string
	PlanModel    string
	ImageModel   string
	ConsultModel string
	Timeout      time.Duration
}

// DefaultConfig returns sensible defaults around the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:       apiKey,
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta",
		PlanModel:    "gemini-3-flash-preview",
		ImageModel:   "gemini-2.5-flash-image",
		ConsultModel: "gemini-3-pro-preview",
		Timeout:      2 * time.Minute,
	}
}

// Client talks to the Gemini REST API.
type Client struct {
	apiKey       string
	baseURL      string
	planModel    string
	imageModel   string
	consultModel string
	httpClient   *http.Client
}

// NewClient creates a gateway client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.PlanModel == "" {
		cfg.PlanModel = "gemini-3-flash-preview"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gemini-2.5-flash-image"
	}
	if cfg.ConsultModel == "" {
		cfg.ConsultModel = "gemini-3-pro-preview"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		planModel:    cfg.PlanModel,
		imageModel:   cfg.ImageModel,
		consultModel: cfg.ConsultModel,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// generate posts a request to the given model and decodes the
// response. Single attempt; a timeout is applied when the context has
// no deadline of its own.
func (c *Client) generate(ctx context.Context, model string, reqBody geminiRequest) (*geminiResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		logging.GatewayError("generate: API key not configured")
		return nil, ErrNoAPIKey
	}

	startTime := time.Now()
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	logging.GatewayDebug("generate: model=%s request_len=%d", model, len(jsonData))

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.GatewayError("generate: request failed: %v", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.GatewayError("generate: status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		logging.GatewayError("generate: API error: %s", geminiResp.Error.Message)
		return nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}

	logging.Gateway("generate: model=%s completed in %v tokens=%d",
		model, time.Since(startTime), geminiResp.UsageMetadata.TotalTokenCount)
	return &geminiResp, nil
}
