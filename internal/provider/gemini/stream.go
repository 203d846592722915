package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"

	"genai-gateway/internal/models"
	"genai-gateway/internal/sse"
)

// decodeStream converts the Gemini streaming wire format into the canonical
// event sequence. Each complete line is a JSON object (no data: prefix);
// candidates[0].content.parts[0].text carries a content delta and a present
// finishReason terminates the stream. Lines that do not parse as JSON are
// skipped, which also tolerates the array framing Gemini wraps chunks in.
func decodeStream(ctx context.Context, body io.ReadCloser) iter.Seq[models.ChatEvent] {
	return func(yield func(models.ChatEvent) bool) {
		defer body.Close()
		scanner := sse.NewLineScanner(body)

		for {
			if err := ctx.Err(); err != nil {
				yield(models.ChatEvent{Type: models.EventError, Error: err.Error()})
				return
			}

			line, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				yield(models.ChatEvent{Type: models.EventDone})
				return
			}
			if err != nil {
				yield(models.ChatEvent{Type: models.EventError, Error: err.Error()})
				return
			}

			var chunk generateResponse
			if json.Unmarshal([]byte(line), &chunk) != nil {
				continue
			}
			if len(chunk.Candidates) == 0 {
				continue
			}

			cand := chunk.Candidates[0]
			if cand.Content != nil && len(cand.Content.Parts) > 0 {
				if delta := cand.Content.Parts[0].Text; delta != "" {
					if !yield(models.ChatEvent{Type: models.EventContent, Delta: delta}) {
						return
					}
				}
			}

			if cand.FinishReason != "" {
				yield(models.ChatEvent{
					Type:     models.EventDone,
					Metadata: map[string]any{"finish_reason": cand.FinishReason},
				})
				return
			}
		}
	}
}
