package openai

import (
	"context"
	"encoding/json"
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
	return New(config.OpenAIConfig{APIKey: "test-key", BaseURL: upstream.URL}, upstream.Client())
}

func chatRequest(stream bool) models.ChatRequest {
	return models.ChatRequest{
		Vendor:      models.VendorOpenAI,
		Model:       "gpt-4o-mini",
		Messages:    []models.Message{{Role: models.RoleUser, Content: "2+2?"}},
		Temperature: 0.7,
		Stream:      stream,
	}
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, New(config.OpenAIConfig{APIKey: "k"}, nil).IsConfigured())
	assert.False(t, New(config.OpenAIConfig{}, nil).IsConfigured())
	assert.False(t, New(config.OpenAIConfig{APIKey: "   "}, nil).IsConfigured())
}

func TestChatBufferedResponse(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload chatPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o-mini", payload.Model)
		assert.False(t, payload.Stream)
		// Direct role mapping: messages pass through unchanged.
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "2+2?", payload.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "4"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 5, "completion_tokens": 1, "total_tokens": 6},
		})
	})

	result, err := adapter.Chat(context.Background(), chatRequest(false))
	require.NoError(t, err)
	assert.Equal(t, "4", result.Content)
	assert.Equal(t, 6, result.Usage.TotalTokens)
	assert.Equal(t, "stop", result.Metadata["finish_reason"])
}

func TestChatPreservesSystemMessage(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var payload chatPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		// Identity law: system and user messages arrive as two messages.
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, wireMessage{Role: "system", Content: "X"}, payload.Messages[0])
		assert.Equal(t, wireMessage{Role: "user", Content: "Y"}, payload.Messages[1])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	})

	req := chatRequest(false)
	req.Messages = []models.Message{
		{Role: models.RoleSystem, Content: "X"},
		{Role: models.RoleUser, Content: "Y"},
	}
	_, err := adapter.Chat(context.Background(), req)
	require.NoError(t, err)
}

func TestChatVendorError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	})

	_, err := adapter.Chat(context.Background(), chatRequest(false))
	var vendorErr *provider.VendorError
	require.ErrorAs(t, err, &vendorErr)
	assert.Equal(t, models.VendorOpenAI, vendorErr.Vendor)
	assert.Equal(t, http.StatusTooManyRequests, vendorErr.StatusCode)
	assert.Contains(t, vendorErr.Message, "quota")
}

func TestChatEmptyChoices(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := adapter.Chat(context.Background(), chatRequest(false))
	require.Error(t, err)
}

func TestGenerateImage(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		var payload imagePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, imageModel, payload.Model)
		assert.Equal(t, 1, payload.N)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"url": "https://img.example/1.png", "revised_prompt": "a detailed lighthouse"},
			},
		})
	})

	result, err := adapter.GenerateImage(context.Background(), models.ImageRequest{
		Vendor:  models.VendorOpenAI,
		Prompt:  "a lighthouse",
		Size:    models.ImageSizeSquare,
		Quality: models.ImageQualityStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", result.URL)
	assert.Equal(t, "a lighthouse", result.OriginalPrompt)
	assert.Equal(t, "a detailed lighthouse", result.RevisedPrompt)
}

func TestChatStreamAgainstServer(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var payload chatPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.True(t, payload.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"4\"}}]}\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	})

	stream, err := adapter.ChatStream(context.Background(), chatRequest(true))
	require.NoError(t, err)

	result, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, "4", result.Content)
}
