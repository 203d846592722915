package gemini

import (
	"errors"
	"strings"

	"genai-gateway/internal/models"
)

type generatePayload struct {
	Contents         []wireContent    `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type wireContent struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

type candidate struct {
	Content      *wireContent `json:"content,omitempty"`
	FinishReason string       `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (r generateResponse) toResult(model string) (*models.ChatResult, error) {
	if len(r.Candidates) == 0 {
		return nil, errors.New("gemini response did not include candidates")
	}

	cand := r.Candidates[0]
	var text strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
	}

	result := &models.ChatResult{
		Content: text.String(),
		Model:   model,
		Metadata: map[string]any{
			"finish_reason": cand.FinishReason,
		},
	}
	if r.UsageMetadata != nil {
		result.Usage = models.Usage{
			PromptTokens:     r.UsageMetadata.PromptTokenCount,
			CompletionTokens: r.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      r.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
