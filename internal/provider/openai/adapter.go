package openai

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

	imageModel = "dall-e-3"
)

// Adapter implements the capability contract for the OpenAI API.
type Adapter struct {
	apiKey   string
	client   *http.Client
	chatURL  string
	imageURL string
}

// New constructs an OpenAI adapter. Construction is pure; missing credentials
// surface later through IsConfigured.
func New(cfg config.OpenAIConfig, client *http.Client) *Adapter {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &Adapter{
		apiKey:   cfg.APIKey,
		client:   client,
		chatURL:  baseURL + "/chat/completions",
		imageURL: baseURL + "/images/generations",
	}
}

func (a *Adapter) Name() string {
	return models.VendorOpenAI
}

func (a *Adapter) IsConfigured() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

// Chat performs one buffered chat completion cycle.
func (a *Adapter) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	payload := buildChatPayload(req, false)

	httpResp, err := a.post(ctx, a.chatURL, payload, false)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	return resp.toResult()
}

// ChatStream performs a streaming chat completion and decodes the SSE wire
// format into the canonical event sequence.
func (a *Adapter) ChatStream(ctx context.Context, req models.ChatRequest) (*provider.Stream, error) {
	payload := buildChatPayload(req, true)

	httpResp, err := a.post(ctx, a.chatURL, payload, true)
	if err != nil {
		return nil, err
	}
	return provider.NewStream(DecodeStream(ctx, httpResp.Body)), nil
}

// GenerateImage produces a single image through the images endpoint.
func (a *Adapter) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	payload := imagePayload{
		Model:   imageModel,
		Prompt:  req.Prompt,
		N:       1,
		Size:    req.Size,
		Quality: req.Quality,
	}

	httpResp, err := a.post(ctx, a.imageURL, payload, false)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp imageResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode openai image response: %w", err)
	}
	return resp.toResult(req)
}

func (a *Adapter) post(ctx context.Context, url string, payload any, streaming bool) (*http.Response, error) {
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
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		return nil, parseAPIError(httpResp)
	}
	return httpResp, nil
}

// parseAPIError maps an upstream failure into a VendorError, preserving the
// vendor's own message for diagnostics.
func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return &provider.VendorError{
			Vendor:     models.VendorOpenAI,
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
		Vendor:     models.VendorOpenAI,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
