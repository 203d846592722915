package azure

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
	"genai-gateway/internal/provider/openai"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "genai-gateway/0.1"
)

// Adapter implements the capability contract for Azure OpenAI. The wire
// format matches OpenAI, but authentication uses an api-key header and the
// deployment name is templated into the request path.
type Adapter struct {
	apiKey          string
	endpoint        string
	apiVersion      string
	chatDeployment  string
	imageDeployment string
	client          *http.Client
}

// New constructs an Azure OpenAI adapter.
func New(cfg config.AzureConfig, client *http.Client) *Adapter {
	return &Adapter{
		apiKey:          cfg.APIKey,
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		apiVersion:      cfg.APIVersion,
		chatDeployment:  cfg.ChatDeployment,
		imageDeployment: cfg.ImageDeployment,
		client:          client,
	}
}

func (a *Adapter) Name() string {
	return models.VendorAzure
}

func (a *Adapter) IsConfigured() bool {
	return strings.TrimSpace(a.apiKey) != "" &&
		strings.TrimSpace(a.endpoint) != "" &&
		strings.TrimSpace(a.chatDeployment) != ""
}

// deploymentURL substitutes the deployment name into the Azure request path.
func (a *Adapter) deploymentURL(deployment, operation string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		a.endpoint, deployment, operation, a.apiVersion)
}

// Chat performs one buffered chat completion cycle against the configured
// chat deployment.
func (a *Adapter) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	url := a.deploymentURL(a.chatDeployment, "chat/completions")

	httpResp, err := a.post(ctx, url, buildChatPayload(req, false))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode azure response: %w", err)
	}
	return resp.toResult()
}

// ChatStream performs a streaming chat completion. Azure emits the same SSE
// encoding as OpenAI, so the OpenAI decoder is shared.
func (a *Adapter) ChatStream(ctx context.Context, req models.ChatRequest) (*provider.Stream, error) {
	url := a.deploymentURL(a.chatDeployment, "chat/completions")

	httpResp, err := a.post(ctx, url, buildChatPayload(req, true))
	if err != nil {
		return nil, err
	}
	return provider.NewStream(openai.DecodeStream(ctx, httpResp.Body)), nil
}

// GenerateImage produces a single image through the image deployment.
func (a *Adapter) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	if strings.TrimSpace(a.imageDeployment) == "" {
		return nil, fmt.Errorf("azure: image deployment: %w", provider.ErrNotConfigured)
	}
	url := a.deploymentURL(a.imageDeployment, "images/generations")

	payload := imagePayload{
		Prompt:  req.Prompt,
		N:       1,
		Size:    req.Size,
		Quality: req.Quality,
	}

	httpResp, err := a.post(ctx, url, payload)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp imageResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode azure image response: %w", err)
	}
	return resp.toResult(req)
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
	httpReq.Header.Set("api-key", a.apiKey)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure request failed: %w", err)
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
			Vendor:     models.VendorAzure,
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
		Vendor:     models.VendorAzure,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
