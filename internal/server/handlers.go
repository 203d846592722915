package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"genai-gateway/internal/models"
	"genai-gateway/internal/provider"
	"genai-gateway/internal/ratelimit"
	"genai-gateway/internal/validate"
)

func (s *Server) handleHealth(c echo.Context) error {
	vendors := s.router.Configured()

	status := "healthy"
	for _, configured := range vendors {
		if !configured {
			status = "degraded"
			break
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    status,
		"providers": vendors,
	})
}

func (s *Server) handleChat(c echo.Context) error {
	var input validate.ChatInput
	if err := decodeRequestBody(c, &input); err != nil {
		return err
	}

	outcome, err := s.router.Chat(c.Request().Context(), input, clientKey(c.Request()))
	if err != nil {
		return toHTTPError(err)
	}

	setRateHeaders(c, outcome.Rate)

	if outcome.Stream != nil {
		return writeChatStream(c, outcome.Stream)
	}

	result := outcome.Result
	metadata := map[string]any{"request_id": outcome.RequestID, "model": result.Model}
	for k, v := range result.Metadata {
		metadata[k] = v
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"provider": outcome.Vendor,
		"response": result.Content,
		"metadata": metadata,
		"usage":    result.Usage,
	})
}

func (s *Server) handleImage(c echo.Context) error {
	var input validate.ImageInput
	if err := decodeRequestBody(c, &input); err != nil {
		return err
	}

	outcome, err := s.router.Image(c.Request().Context(), input, clientKey(c.Request()))
	if err != nil {
		return toHTTPError(err)
	}

	setRateHeaders(c, outcome.Rate)

	result := outcome.Result
	image := map[string]any{
		"revisedPrompt": result.RevisedPrompt,
		"size":          result.Size,
		"quality":       result.Quality,
	}
	if result.URL != "" {
		image["url"] = result.URL
	}
	if result.Base64 != "" {
		image["base64"] = result.Base64
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"provider": outcome.Vendor,
		"images":   []map[string]any{image},
		"metadata": map[string]any{
			"request_id":     outcome.RequestID,
			"originalPrompt": result.OriginalPrompt,
		},
	})
}

// clientKey derives the rate-limit identity from forwarded-IP headers,
// taking the first entry of a comma-separated X-Forwarded-For list, and
// falling back to the peer address.
func clientKey(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if key := strings.TrimSpace(first); key != "" {
			return key
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func setRateHeaders(c echo.Context, rate ratelimit.Result) {
	header := c.Response().Header()
	header.Set("X-RateLimit-Limit", strconv.Itoa(rate.Limit))
	header.Set("X-RateLimit-Remaining", strconv.Itoa(rate.Remaining))
	header.Set("X-RateLimit-Reset", strconv.FormatInt(rate.ResetAt.Unix(), 10))
}

// writeChatStream forwards canonical events as SSE frames without buffering,
// flushing after each frame and closing the response when the terminal event
// has been forwarded.
func writeChatStream(c echo.Context, stream *provider.Stream) error {
	writer := c.Response().Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		return requestError{
			Status:  http.StatusInternalServerError,
			Message: "server does not support streaming responses",
		}
	}

	header := c.Response().Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	c.Response().WriteHeader(http.StatusOK)

	for event := range stream.Events() {
		if err := writeSSEFrame(writer, event); err != nil {
			// Client went away; the adapter's iterator cleans up on return.
			return nil
		}
		flusher.Flush()

		if event.Terminal() {
			break
		}
	}

	return nil
}

func writeSSEFrame(w io.Writer, event models.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE frame: %w", err)
	}
	return nil
}

// decodeRequestBody strictly decodes a single JSON object from the request.
func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
		}
	}
	return nil
}
