package gemini

import (
	"log/slog"
	"strings"

	"genai-gateway/internal/models"
)

// convertMessages translates canonical messages into Gemini contents.
// Gemini renames assistant to "model" and has no separate system field:
// system content is folded as a prefix onto the first user message.
//
// When no user message exists to fold into, the system content is sent as a
// standalone user message instead of being dropped; upstream behavior for
// this case is unspecified, so the fallback is logged.
func convertMessages(messages []models.Message) []wireContent {
	var systemParts []string
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			systemParts = append(systemParts, msg.Content)
		}
	}
	systemPrefix := strings.Join(systemParts, "\n\n")

	contents := make([]wireContent, 0, len(messages))
	folded := systemPrefix == ""

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			continue
		case models.RoleUser:
			text := msg.Content
			if !folded {
				text = systemPrefix + "\n\n" + text
				folded = true
			}
			contents = append(contents, wireContent{
				Role:  "user",
				Parts: []wirePart{{Text: text}},
			})
		case models.RoleAssistant:
			contents = append(contents, wireContent{
				Role:  "model",
				Parts: []wirePart{{Text: msg.Content}},
			})
		}
	}

	if !folded {
		slog.Warn("gemini: no user message to fold system content into, sending as user message")
		contents = append(contents, wireContent{
			Role:  "user",
			Parts: []wirePart{{Text: systemPrefix}},
		})
	}

	return contents
}

func buildGeneratePayload(req models.ChatRequest) generatePayload {
	return generatePayload{
		Contents: convertMessages(req.Messages),
		GenerationConfig: generationConfig{
			Temperature: req.Temperature,
		},
	}
}
