package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genai-gateway/internal/config"
	"genai-gateway/internal/models"
	"genai-gateway/internal/provider"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)
	return New(config.GeminiConfig{APIKey: "test-key", BaseURL: upstream.URL}, upstream.Client())
}

func TestChatBufferedResponse(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var payload generatePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 1)
		assert.Equal(t, "user", payload.Contents[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": "4"}}},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]int{"promptTokenCount": 5, "candidatesTokenCount": 1, "totalTokenCount": 6},
		})
	})

	result, err := adapter.Chat(context.Background(), models.ChatRequest{
		Vendor:      models.VendorGemini,
		Model:       "gemini-2.0-flash",
		Messages:    []models.Message{{Role: models.RoleUser, Content: "2+2?"}},
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "4", result.Content)
	assert.Equal(t, 6, result.Usage.TotalTokens)
}

func TestChatStreamUsesStreamingEndpoint(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:streamGenerateContent", r.URL.Path)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"4"}]},"finishReason":"STOP"}]}` + "\n"))
	})

	stream, err := adapter.ChatStream(context.Background(), models.ChatRequest{
		Vendor:   models.VendorGemini,
		Model:    "gemini-2.0-flash",
		Messages: []models.Message{{Role: models.RoleUser, Content: "2+2?"}},
		Stream:   true,
	})
	require.NoError(t, err)

	result, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "4", result.Content)
}

func TestGenerateImageUnsupported(t *testing.T) {
	adapter := New(config.GeminiConfig{APIKey: "k"}, nil)

	_, err := adapter.GenerateImage(context.Background(), models.ImageRequest{Prompt: "p"})
	assert.True(t, errors.Is(err, provider.ErrUnsupportedCapability))
}

func TestChatVendorError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := adapter.Chat(context.Background(), models.ChatRequest{
		Model:    "gemini-2.0-flash",
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})
	var vendorErr *provider.VendorError
	require.ErrorAs(t, err, &vendorErr)
	assert.Equal(t, models.VendorGemini, vendorErr.Vendor)
	assert.Contains(t, vendorErr.Message, "API key not valid")
}
