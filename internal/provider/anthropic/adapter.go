package anthropic

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

	// The messages endpoint requires max_tokens; the canonical request does
	// not carry one, so a generous fixed ceiling is used.
	defaultMaxTokens = 4096
)

// Adapter implements the capability contract for the Anthropic API.
// Anthropic has no image generation, so GenerateImage reports the capability
// as unsupported.
type Adapter struct {
	apiKey      string
	apiVersion  string
	client      *http.Client
	messagesURL string
}

// New constructs an Anthropic adapter.
func New(cfg config.AnthropicConfig, client *http.Client) *Adapter {
	return &Adapter{
		apiKey:      cfg.APIKey,
		apiVersion:  cfg.APIVersion,
		client:      client,
		messagesURL: strings.TrimRight(cfg.BaseURL, "/") + "/messages",
	}
}

func (a *Adapter) Name() string {
	return models.VendorAnthropic
}

func (a *Adapter) IsConfigured() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

// Chat performs one buffered messages cycle.
func (a *Adapter) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	httpResp, err := a.post(ctx, buildMessagePayload(req, false))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp messageResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	return resp.toResult()
}

// ChatStream performs a streaming messages call and decodes Anthropic's
// typed SSE events into the canonical sequence.
func (a *Adapter) ChatStream(ctx context.Context, req models.ChatRequest) (*provider.Stream, error) {
	httpResp, err := a.post(ctx, buildMessagePayload(req, true))
	if err != nil {
		return nil, err
	}
	return provider.NewStream(decodeStream(ctx, httpResp.Body)), nil
}

func (a *Adapter) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	return nil, fmt.Errorf("anthropic: image generation: %w", provider.ErrUnsupportedCapability)
}

func (a *Adapter) post(ctx context.Context, payload messagePayload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.messagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", a.apiVersion)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
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
			Vendor:     models.VendorAnthropic,
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
		Vendor:     models.VendorAnthropic,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
