package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialstudio/internal/types"
)

func testCampaign() types.Campaign {
	return types.Campaign{
		ID:             "c1",
		CompanyName:    "EcoSip",
		Niche:          "Sustainable Beverages",
		Services:       "Organic Coffee, Reusable Cups",
		TargetAudience: "Eco-conscious millennials",
		BrandVoice:     "Friendly, Earthy, Inspiring",
	}
}

// stubServer returns a client pointed at a server that replies with
// the given handler. The captured request body, if any, lands in got.
func stubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func textResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeneratePlanParsesDrafts(t *testing.T) {
	drafts := `[{"day":"2024-06-01","caption":"Sip green","hashtags":["#eco"],"visualDescription":"a cup","visualType":"image"},
		{"day":"2024-06-02","caption":"Bean there","hashtags":["#coffee"],"visualDescription":"beans","visualType":"video","videoScript":"voiceover"}]`

	var gotPath string
	var gotBody geminiRequest
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(textResponse(drafts)))
	})

	got, err := c.GeneratePlan(context.Background(), testCampaign(), 2, "2024-06-01", types.PlatformInstagram)
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(got))
	}
	if got[1].VideoScript != "voiceover" {
		t.Errorf("video script lost: %+v", got[1])
	}

	if !strings.Contains(gotPath, "gemini-3-flash-preview") {
		t.Errorf("wrong model path: %s", gotPath)
	}
	if gotBody.GenerationConfig == nil {
		t.Fatal("generation config missing")
	}
	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Error("structured output not requested")
	}
	if gotBody.GenerationConfig.ResponseSchema == nil {
		t.Error("response schema missing")
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "EcoSip") || !strings.Contains(prompt, "INSTAGRAM") {
		t.Errorf("prompt missing campaign or platform: %s", prompt)
	}
	if !strings.Contains(prompt, "15-20 hashtags") {
		t.Error("platform guideline not injected")
	}
}

func TestGeneratePlanIncludesLogoNote(t *testing.T) {
	var prompt string
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(textResponse("[]")))
	})

	campaign := testCampaign()
	campaign.Logo = &types.ImageBlob{MIMEType: "image/png", Data: []byte{1}}
	if _, err := c.GeneratePlan(context.Background(), campaign, 3, "2024-06-01", types.PlatformLinkedIn); err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if !strings.Contains(prompt, "incorporate the brand's logo style") {
		t.Error("logo note missing from prompt")
	}
}

func TestGeneratePlanWrapsServerError(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.GeneratePlan(context.Background(), testCampaign(), 3, "2024-06-01", types.PlatformTwitter)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGeneratePlanFailsOnEmptyContent(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse("   ")))
	})
	drafts, err := c.GeneratePlan(context.Background(), testCampaign(), 3, "2024-06-01", types.PlatformInstagram)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed for empty content, got %v", err)
	}
	if drafts != nil {
		t.Errorf("expected no drafts, got %+v", drafts)
	}
}

func TestGeneratePlanRejectsBadInput(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	if _, err := c.GeneratePlan(context.Background(), testCampaign(), 0, "2024-06-01", types.PlatformTwitter); !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("zero days: %v", err)
	}
	if _, err := c.GeneratePlan(context.Background(), testCampaign(), 3, "2024-06-01", types.Platform("myspace")); !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("bad platform: %v", err)
	}
}

func TestGeneratePlanNoAPIKey(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.GeneratePlan(context.Background(), testCampaign(), 3, "2024-06-01", types.PlatformFacebook)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("expected wrapped failure, got %v", err)
	}
}

func imageResponse(mime string, data []byte) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{
					{"inlineData": map[string]string{
						"mimeType": mime,
						"data":     base64.StdEncoding.EncodeToString(data),
					}},
				},
			}},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func TestGenerateImage(t *testing.T) {
	want := []byte{0x89, 0x50, 0x4e, 0x47}
	var rawBody []byte
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(imageResponse("image/png", want)))
	})

	blob, err := c.GenerateImage(context.Background(), "a cup on a rock", nil)
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if blob.MIMEType != "image/png" || string(blob.Data) != string(want) {
		t.Errorf("blob mismatch: %+v", blob)
	}

	var gotBody geminiRequest
	if err := json.Unmarshal(rawBody, &gotBody); err != nil {
		t.Fatalf("bad request body: %v", err)
	}
	if strings.Contains(gotBody.Contents[0].Parts[0].Text, "reference image/logo") {
		t.Error("reference instruction added without a reference")
	}
	// Image requests carry no generation config at all.
	if strings.Contains(string(rawBody), "generationConfig") {
		t.Errorf("image request carries a generation config: %s", rawBody)
	}
}

func TestGenerateImageWithReference(t *testing.T) {
	var gotBody geminiRequest
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(imageResponse("image/jpeg", []byte{1, 2})))
	})

	ref := &types.ImageBlob{MIMEType: "image/png", Data: []byte{9, 9}}
	if _, err := c.GenerateImage(context.Background(), "a cup", ref); err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}

	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected prompt + inline data, got %d parts", len(parts))
	}
	if !strings.Contains(parts[0].Text, "reference image/logo") {
		t.Error("reference instruction missing")
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
		t.Errorf("reference inline data missing: %+v", parts[1])
	}
}

func TestGenerateImageNoImageReturned(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse("sorry, words only")))
	})
	_, err := c.GenerateImage(context.Background(), "a cup", nil)
	if !errors.Is(err, ErrNoImageReturned) {
		t.Errorf("expected ErrNoImageReturned, got %v", err)
	}
}

func TestEditImageSendsImageFirst(t *testing.T) {
	var gotBody geminiRequest
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(imageResponse("image/png", []byte{7})))
	})

	src := types.ImageBlob{MIMEType: "image/png", Data: []byte{1, 2, 3}}
	blob, err := c.EditImage(context.Background(), src, "make it pop")
	if err != nil {
		t.Fatalf("EditImage failed: %v", err)
	}
	if len(blob.Data) != 1 {
		t.Errorf("unexpected result: %+v", blob)
	}

	parts := gotBody.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[1].Text != "make it pop" {
		t.Errorf("edit request shape wrong: %+v", parts)
	}
}

func TestConsultReturnsModelText(t *testing.T) {
	var gotBody geminiRequest
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(textResponse("Post daily. Track CTR.")))
	})

	history := []types.ChatMessage{
		{Role: types.RoleModel, Text: "Hello!"},
		{Role: types.RoleUser, Text: "How do I grow?"},
	}
	campaign := testCampaign()
	got := c.Consult(context.Background(), history, &campaign)
	if got != "Post daily. Track CTR." {
		t.Errorf("Consult = %q", got)
	}

	if len(gotBody.Contents) != 2 {
		t.Fatalf("history not forwarded: %d turns", len(gotBody.Contents))
	}
	if gotBody.Contents[0].Role != "model" || gotBody.Contents[1].Role != "user" {
		t.Errorf("roles wrong: %+v", gotBody.Contents)
	}
	sys := gotBody.SystemInstruction.Parts[0].Text
	if !strings.Contains(sys, "Growth Hacker") || !strings.Contains(sys, "EcoSip") {
		t.Errorf("system instruction missing consultant rules or context: %s", sys)
	}
}

func TestConsultWithoutCampaignOmitsContext(t *testing.T) {
	var gotBody geminiRequest
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(textResponse("ok")))
	})
	c.Consult(context.Background(), []types.ChatMessage{{Role: types.RoleUser, Text: "hi"}}, nil)
	if strings.Contains(gotBody.SystemInstruction.Parts[0].Text, "Context for this session") {
		t.Error("campaign context injected without a campaign")
	}
}

func TestConsultFallbacks(t *testing.T) {
	empty := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse("   ")))
	})
	if got := empty.Consult(context.Background(), nil, nil); got != consultEmptyFallback {
		t.Errorf("empty fallback = %q", got)
	}

	failing := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	if got := failing.Consult(context.Background(), nil, nil); got != consultErrorFallback {
		t.Errorf("error fallback = %q", got)
	}
}

func TestGenerateRespectsAPIError(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":400,"message":"key invalid","status":"INVALID_ARGUMENT"}}`))
	})
	_, err := c.GenerateImage(context.Background(), "x", nil)
	if err == nil || !strings.Contains(err.Error(), "key invalid") {
		t.Errorf("API error not surfaced: %v", err)
	}
}
