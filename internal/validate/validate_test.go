package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genai-gateway/internal/models"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrBool(v bool) *bool        { return &v }

func validChatInput() ChatInput {
	return ChatInput{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Messages: []MessageInput{{Role: "user", Content: "hello"}},
	}
}

func TestChatAppliesDefaults(t *testing.T) {
	req, err := Chat(validChatInput())
	require.NoError(t, err)

	assert.Equal(t, models.VendorOpenAI, req.Vendor)
	assert.Equal(t, DefaultTemperature, req.Temperature)
	assert.True(t, req.Stream)
}

func TestChatHonorsExplicitValues(t *testing.T) {
	input := validChatInput()
	input.Temperature = ptrFloat(1.5)
	input.Stream = ptrBool(false)

	req, err := Chat(input)
	require.NoError(t, err)
	assert.Equal(t, 1.5, req.Temperature)
	assert.False(t, req.Stream)
}

func TestChatRejectsTemperatureOutOfRange(t *testing.T) {
	input := validChatInput()
	input.Temperature = ptrFloat(2.5)

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Details, 1)
	assert.Contains(t, vErr.Details[0], "temperature")
}

func TestChatRejectsEmptyMessages(t *testing.T) {
	input := validChatInput()
	input.Messages = nil

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "messages")
}

func TestChatRejectsUnknownProvider(t *testing.T) {
	input := validChatInput()
	input.Provider = "skynet"

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "provider")
}

func TestChatCollectsMultipleFieldErrors(t *testing.T) {
	input := ChatInput{
		Provider:    "skynet",
		Temperature: ptrFloat(-1),
	}

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.GreaterOrEqual(t, len(vErr.Details), 3)
}

func TestChatRejectsBadRoleAndEmptyContent(t *testing.T) {
	input := validChatInput()
	input.Messages = []MessageInput{
		{Role: "robot", Content: "hi"},
		{Role: "user", Content: "   "},
	}

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Details, 2)
	assert.Contains(t, vErr.Details[0], "messages[0].role")
	assert.Contains(t, vErr.Details[1], "messages[1].content")
}

func TestChatRejectsOversizedContent(t *testing.T) {
	input := validChatInput()
	input.Messages = []MessageInput{{Role: "user", Content: strings.Repeat("x", MaxMessageContent+1)}}

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "exceeds")
}

func TestChatRejectsTooManyMessages(t *testing.T) {
	input := validChatInput()
	input.Messages = make([]MessageInput, MaxMessages+1)
	for i := range input.Messages {
		input.Messages[i] = MessageInput{Role: "user", Content: "hi"}
	}

	_, err := Chat(input)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "at most")
}

func TestChatTrimsContent(t *testing.T) {
	input := validChatInput()
	input.Messages = []MessageInput{{Role: "User", Content: "  hello  "}}

	req, err := Chat(input)
	require.NoError(t, err)
	assert.Equal(t, "hello", req.Messages[0].Content)
	assert.Equal(t, models.RoleUser, req.Messages[0].Role)
}

func TestImageAppliesDefaults(t *testing.T) {
	req, err := Image(ImageInput{Provider: "openai", Prompt: "a lighthouse"})
	require.NoError(t, err)

	assert.Equal(t, models.ImageSizeSquare, req.Size)
	assert.Equal(t, models.ImageQualityStandard, req.Quality)
}

func TestImageRejectsChatOnlyVendor(t *testing.T) {
	_, err := Image(ImageInput{Provider: "anthropic", Prompt: "a lighthouse"})
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "image generation")
}

func TestImageRejectsOversizedPrompt(t *testing.T) {
	_, err := Image(ImageInput{Provider: "openai", Prompt: strings.Repeat("x", MaxPromptLength+1)})
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details[0], "prompt")
}

func TestImageRejectsUnknownSizeAndQuality(t *testing.T) {
	_, err := Image(ImageInput{Provider: "azure", Prompt: "p", Size: "512x512", Quality: "ultra"})
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Details, 2)
}
