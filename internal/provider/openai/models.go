package openai

import (
	"errors"

	"genai-gateway/internal/models"
)

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildChatPayload translates the canonical request into the OpenAI wire
// shape. Roles and content pass through unchanged (direct role mapping).
func buildChatPayload(req models.ChatRequest, streaming bool) chatPayload {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, wireMessage{Role: msg.Role, Content: msg.Content})
	}
	return chatPayload{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		Stream:      streaming,
	}
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *usageBlock  `json:"usage,omitempty"`
}

type chatChoice struct {
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type usageBlock struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (r chatResponse) toResult() (*models.ChatResult, error) {
	if len(r.Choices) == 0 {
		return nil, errors.New("openai response did not include choices")
	}

	choice := r.Choices[0]
	result := &models.ChatResult{
		Content: choice.Message.Content,
		Model:   r.Model,
		Metadata: map[string]any{
			"id":            r.ID,
			"finish_reason": choice.FinishReason,
		},
	}
	if r.Usage != nil {
		result.Usage = models.Usage{
			PromptTokens:     r.Usage.PromptTokens,
			CompletionTokens: r.Usage.CompletionTokens,
			TotalTokens:      r.Usage.TotalTokens,
		}
	}
	return result, nil
}

type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta        streamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason"`
}

type streamDelta struct {
	Content string `json:"content"`
}

type imagePayload struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type imageResponse struct {
	Data []imageDatum `json:"data"`
}

type imageDatum struct {
	URL           string `json:"url,omitempty"`
	Base64        string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

func (r imageResponse) toResult(req models.ImageRequest) (*models.ImageResult, error) {
	if len(r.Data) == 0 {
		return nil, errors.New("openai image response did not include data")
	}

	datum := r.Data[0]
	return &models.ImageResult{
		URL:            datum.URL,
		Base64:         datum.Base64,
		OriginalPrompt: req.Prompt,
		RevisedPrompt:  datum.RevisedPrompt,
		Size:           req.Size,
		Quality:        req.Quality,
	}, nil
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
