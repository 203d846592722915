// Package validate schema-checks inbound requests and normalizes them into
// canonical form. Validation either produces a fully defaulted request or a
// list of field-tagged errors; it never partially normalizes on failure.
package validate

import (
	"fmt"
	"strings"

	"genai-gateway/internal/models"
)

// Bounds and defaults for canonical requests.
const (
	MaxMessages        = 50
	MaxMessageContent  = 10000
	MaxPromptLength    = 4000
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
)

// Error reports one or more field-level validation failures.
type Error struct {
	Details []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// ChatInput is the raw, untrusted chat request body. Pointer fields
// distinguish absent values from zero values so defaults apply correctly.
type ChatInput struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Messages    []MessageInput `json:"messages"`
	Temperature *float64       `json:"temperature"`
	Stream      *bool          `json:"stream"`
}

// MessageInput is one raw message within a chat request body.
type MessageInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ImageInput is the raw, untrusted image request body.
type ImageInput struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	Size     string `json:"size"`
	Quality  string `json:"quality"`
}

var chatVendors = map[string]struct{}{
	models.VendorOpenAI:    {},
	models.VendorGemini:    {},
	models.VendorAnthropic: {},
	models.VendorAzure:     {},
}

var imageVendors = map[string]struct{}{
	models.VendorOpenAI: {},
	models.VendorAzure:  {},
}

var messageRoles = map[string]struct{}{
	models.RoleSystem:    {},
	models.RoleUser:      {},
	models.RoleAssistant: {},
}

var imageSizes = map[string]struct{}{
	models.ImageSizeSquare:    {},
	models.ImageSizeLandscape: {},
	models.ImageSizePortrait:  {},
}

var imageQualities = map[string]struct{}{
	models.ImageQualityStandard: {},
	models.ImageQualityHD:       {},
}

// Chat validates and normalizes a chat request, applying documented defaults
// (temperature 0.7, stream true) and trimming message content.
func Chat(input ChatInput) (models.ChatRequest, error) {
	var details []string

	vendor := strings.ToLower(strings.TrimSpace(input.Provider))
	if vendor == "" {
		details = append(details, "provider: is required")
	} else if _, ok := chatVendors[vendor]; !ok {
		details = append(details, fmt.Sprintf("provider: %q is not a supported provider", input.Provider))
	}

	model := strings.TrimSpace(input.Model)
	if model == "" {
		details = append(details, "model: is required")
	}

	messages, messageDetails := validateMessages(input.Messages)
	details = append(details, messageDetails...)

	temperature := DefaultTemperature
	if input.Temperature != nil {
		temperature = *input.Temperature
		if temperature < MinTemperature || temperature > MaxTemperature {
			details = append(details, fmt.Sprintf("temperature: %g is outside [%g, %g]", temperature, MinTemperature, MaxTemperature))
		}
	}

	stream := true
	if input.Stream != nil {
		stream = *input.Stream
	}

	if len(details) > 0 {
		return models.ChatRequest{}, &Error{Details: details}
	}

	return models.ChatRequest{
		Vendor:      vendor,
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      stream,
	}, nil
}

// validateMessages checks every message for a known role and non-empty,
// bounded content, trimming content as it goes.
func validateMessages(inputs []MessageInput) ([]models.Message, []string) {
	var details []string

	if len(inputs) == 0 {
		return nil, []string{"messages: at least one message is required"}
	}
	if len(inputs) > MaxMessages {
		return nil, []string{fmt.Sprintf("messages: at most %d messages are allowed, got %d", MaxMessages, len(inputs))}
	}

	messages := make([]models.Message, 0, len(inputs))
	for i, msg := range inputs {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if _, ok := messageRoles[role]; !ok {
			details = append(details, fmt.Sprintf("messages[%d].role: %q is not one of system, user, assistant", i, msg.Role))
		}

		content := strings.TrimSpace(msg.Content)
		if content == "" {
			details = append(details, fmt.Sprintf("messages[%d].content: must not be empty", i))
		} else if len(content) > MaxMessageContent {
			details = append(details, fmt.Sprintf("messages[%d].content: exceeds %d characters", i, MaxMessageContent))
		}

		messages = append(messages, models.Message{Role: role, Content: content})
	}

	if len(details) > 0 {
		return nil, details
	}
	return messages, nil
}

// Image validates and normalizes an image request, applying documented
// defaults (size 1024x1024, quality standard).
func Image(input ImageInput) (models.ImageRequest, error) {
	var details []string

	vendor := strings.ToLower(strings.TrimSpace(input.Provider))
	if vendor == "" {
		details = append(details, "provider: is required")
	} else if _, ok := imageVendors[vendor]; !ok {
		details = append(details, fmt.Sprintf("provider: %q does not support image generation", input.Provider))
	}

	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		details = append(details, "prompt: is required")
	} else if len(prompt) > MaxPromptLength {
		details = append(details, fmt.Sprintf("prompt: exceeds %d characters", MaxPromptLength))
	}

	size := input.Size
	if size == "" {
		size = models.ImageSizeSquare
	} else if _, ok := imageSizes[size]; !ok {
		details = append(details, fmt.Sprintf("size: %q is not a supported size", input.Size))
	}

	quality := input.Quality
	if quality == "" {
		quality = models.ImageQualityStandard
	} else if _, ok := imageQualities[quality]; !ok {
		details = append(details, fmt.Sprintf("quality: %q is not a supported quality", input.Quality))
	}

	if len(details) > 0 {
		return models.ImageRequest{}, &Error{Details: details}
	}

	return models.ImageRequest{
		Vendor:  vendor,
		Prompt:  prompt,
		Size:    size,
		Quality: quality,
	}, nil
}
