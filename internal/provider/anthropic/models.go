package anthropic

import (
	"errors"
	"strings"

	"genai-gateway/internal/models"
)

type messagePayload struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessagePayload translates the canonical request into the Anthropic
// wire shape. System content is hoisted into the dedicated top-level field
// (joined when more than one system message is present); user and assistant
// messages pass through with role unchanged.
func buildMessagePayload(req models.ChatRequest, streaming bool) messagePayload {
	var systemParts []string
	messages := make([]wireMessage, 0, len(req.Messages))

	for _, msg := range req.Messages {
		if msg.Role == models.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		messages = append(messages, wireMessage{Role: msg.Role, Content: msg.Content})
	}

	return messagePayload{
		Model:       req.Model,
		System:      strings.Join(systemParts, "\n\n"),
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
		Stream:      streaming,
	}
}

type messageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usageBlock     `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usageBlock struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (r messageResponse) toResult() (*models.ChatResult, error) {
	if len(r.Content) == 0 {
		return nil, errors.New("anthropic response did not include content blocks")
	}

	var text strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &models.ChatResult{
		Content: text.String(),
		Model:   r.Model,
		Usage: models.Usage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		},
		Metadata: map[string]any{
			"id":          r.ID,
			"stop_reason": r.StopReason,
		},
	}, nil
}

// streamEvent is the discriminated union Anthropic sends over SSE. The Type
// field selects which of the optional payloads is populated.
type streamEvent struct {
	Type  string       `json:"type"`
	Delta *streamDelta `json:"delta,omitempty"`
	Error *streamError `json:"error,omitempty"`
}

type streamDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type streamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
