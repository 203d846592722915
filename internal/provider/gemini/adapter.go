package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"genai-gateway/internal/config"
	"genai-gateway/internal/models"
	"genai-gateway/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "genai-gateway/0.1"
)

// Adapter implements the capability contract for the Google Gemini API.
// Gemini has no image generation endpoint in this gateway's scope, so
// GenerateImage reports the capability as unsupported.
type Adapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New constructs a Gemini adapter.
func New(cfg config.GeminiConfig, client *http.Client) *Adapter {
	return &Adapter{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}
}

func (a *Adapter) Name() string {
	return models.VendorGemini
}

func (a *Adapter) IsConfigured() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

// Chat performs one buffered generateContent cycle.
func (a *Adapter) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, req.Model)

	httpResp, err := a.post(ctx, url, buildGeneratePayload(req))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	return resp.toResult(req.Model)
}

// ChatStream performs a streaming generateContent call. Gemini streams one
// JSON object per line without an SSE data: prefix.
func (a *Adapter) ChatStream(ctx context.Context, req models.ChatRequest) (*provider.Stream, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent", a.baseURL, req.Model)

	httpResp, err := a.post(ctx, url, buildGeneratePayload(req))
	if err != nil {
		return nil, err
	}
	return provider.NewStream(decodeStream(ctx, httpResp.Body)), nil
}

func (a *Adapter) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	return nil, fmt.Errorf("gemini: image generation: %w", provider.ErrUnsupportedCapability)
}

func (a *Adapter) post(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("x-goog-api-key", a.apiKey)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		return nil, parseAPIError(httpResp)
	}
	return httpResp, nil
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return &provider.VendorError{
			Vendor:     models.VendorGemini,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read error body: %v", err),
		}
	}

	message := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	return &provider.VendorError{
		Vendor:     models.VendorGemini,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
