// Package router orchestrates a request's path through the gateway:
// validation, rate limiting, adapter resolution, configuration check and
// invocation. Failures at each stage surface as distinct error kinds for the
// server boundary to map onto transport status codes.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"genai-gateway/internal/config"
	"genai-gateway/internal/models"
	"genai-gateway/internal/provider"
	"genai-gateway/internal/provider/factory"
	"genai-gateway/internal/ratelimit"
	"genai-gateway/internal/validate"
)

// Per-request deadlines. Timeout expiry and client disconnect share the same
// context-cancellation path into the adapter.
const (
	ChatTimeout  = 60 * time.Second
	ImageTimeout = 120 * time.Second
)

// Documented per-endpoint rate limits.
const (
	ChatRateLimit   = 30
	ChatRateWindow  = time.Minute
	ImageRateLimit  = 10
	ImageRateWindow = 5 * time.Minute
)

// RateLimitError reports a rejected request together with the window state
// the server needs for Retry-After and X-RateLimit headers.
type RateLimitError struct {
	Rate ratelimit.Result
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.Rate.ResetAt.Format(time.RFC3339))
}

// Router owns the limiters and the shared outbound HTTP client. The limiter
// store is injected state with a single owner; nothing else reads or writes
// the timestamp table.
type Router struct {
	cfg          config.Config
	client       *http.Client
	chatLimiter  *ratelimit.Limiter
	imageLimiter *ratelimit.Limiter
}

// New constructs a router for the given configuration.
func New(cfg config.Config, client *http.Client) *Router {
	return &Router{
		cfg:          cfg,
		client:       client,
		chatLimiter:  ratelimit.New(ChatRateLimit, ChatRateWindow),
		imageLimiter: ratelimit.New(ImageRateLimit, ImageRateWindow),
	}
}

// ChatOutcome is the result of a successful chat invocation. Exactly one of
// Result (buffered) or Stream (streaming) is set.
type ChatOutcome struct {
	RequestID string
	Vendor    string
	Rate      ratelimit.Result
	Result    *models.ChatResult
	Stream    *provider.Stream
}

// Chat runs the request pipeline for the chat endpoint.
func (r *Router) Chat(ctx context.Context, input validate.ChatInput, clientKey string) (*ChatOutcome, error) {
	req, err := validate.Chat(input)
	if err != nil {
		return nil, err
	}

	rate := r.chatLimiter.Allow(clientKey)
	if rate.Limited {
		return nil, &RateLimitError{Rate: rate}
	}

	adapter, err := r.resolve(req.Vendor)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := slog.With("request_id", requestID, "vendor", req.Vendor, "model", req.Model)
	outcome := &ChatOutcome{RequestID: requestID, Vendor: req.Vendor, Rate: rate}

	callCtx, cancel := context.WithTimeout(ctx, ChatTimeout)

	if req.Stream {
		stream, err := adapter.ChatStream(callCtx, req)
		if err != nil {
			cancel()
			logger.Warn("streaming chat invocation failed", "error", err)
			return nil, err
		}
		logger.Info("streaming chat invocation started")
		outcome.Stream = releaseOnFinish(stream, cancel)
		return outcome, nil
	}

	defer cancel()
	result, err := adapter.Chat(callCtx, req)
	if err != nil {
		logger.Warn("chat invocation failed", "error", err)
		return nil, err
	}
	logger.Info("chat invocation completed", "content_length", len(result.Content))
	outcome.Result = result
	return outcome, nil
}

// ImageOutcome is the result of a successful image invocation.
type ImageOutcome struct {
	RequestID string
	Vendor    string
	Rate      ratelimit.Result
	Result    *models.ImageResult
}

// Image runs the request pipeline for the image endpoint.
func (r *Router) Image(ctx context.Context, input validate.ImageInput, clientKey string) (*ImageOutcome, error) {
	req, err := validate.Image(input)
	if err != nil {
		return nil, err
	}

	rate := r.imageLimiter.Allow(clientKey)
	if rate.Limited {
		return nil, &RateLimitError{Rate: rate}
	}

	adapter, err := r.resolve(req.Vendor)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := slog.With("request_id", requestID, "vendor", req.Vendor)

	callCtx, cancel := context.WithTimeout(ctx, ImageTimeout)
	defer cancel()

	result, err := adapter.GenerateImage(callCtx, req)
	if err != nil {
		logger.Warn("image invocation failed", "error", err)
		return nil, err
	}
	logger.Info("image invocation completed")

	return &ImageOutcome{
		RequestID: requestID,
		Vendor:    req.Vendor,
		Rate:      rate,
		Result:    result,
	}, nil
}

// Configured reports credential presence per vendor for the health endpoint.
// No vendor calls are made.
func (r *Router) Configured() map[string]bool {
	status := make(map[string]bool, 4)
	for _, vendor := range []string{
		models.VendorOpenAI, models.VendorGemini, models.VendorAnthropic, models.VendorAzure,
	} {
		adapter, err := factory.New(vendor, r.cfg, r.client)
		if err != nil {
			continue
		}
		status[vendor] = adapter.IsConfigured()
	}
	return status
}

// resolve constructs the adapter and fails fast when the vendor is unknown
// or unconfigured, before any vendor call is attempted.
func (r *Router) resolve(vendor string) (provider.Adapter, error) {
	adapter, err := factory.New(vendor, r.cfg, r.client)
	if err != nil {
		return nil, err
	}
	if !adapter.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", vendor, provider.ErrNotConfigured)
	}
	return adapter, nil
}

// releaseOnFinish wraps a stream so the per-request timeout's cancel runs
// when iteration stops, releasing the vendor connection even when the client
// abandons the stream early.
func releaseOnFinish(stream *provider.Stream, cancel context.CancelFunc) *provider.Stream {
	return provider.NewStream(func(yield func(models.ChatEvent) bool) {
		defer cancel()
		for event := range stream.Events() {
			if !yield(event) {
				return
			}
		}
	})
}
