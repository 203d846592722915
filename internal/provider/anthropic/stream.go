package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"

	"genai-gateway/internal/models"
	"genai-gateway/internal/sse"
)

// decodeStream converts Anthropic's typed SSE events into the canonical
// sequence. The JSON type field discriminates: content_block_delta carries a
// text delta, message_stop terminates the stream, content_block_stop is a
// no-op because more blocks may follow, and a vendor-declared error event is
// authoritative and terminates the stream. Unparsable lines are skipped.
func decodeStream(ctx context.Context, body io.ReadCloser) iter.Seq[models.ChatEvent] {
	return func(yield func(models.ChatEvent) bool) {
		defer body.Close()
		scanner := sse.NewScanner(body)

		for {
			if err := ctx.Err(); err != nil {
				yield(models.ChatEvent{Type: models.EventError, Error: err.Error()})
				return
			}

			payload, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				yield(models.ChatEvent{Type: models.EventDone})
				return
			}
			if err != nil {
				yield(models.ChatEvent{Type: models.EventError, Error: err.Error()})
				return
			}

			var event streamEvent
			if json.Unmarshal([]byte(payload), &event) != nil {
				continue
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta == nil || event.Delta.Text == "" {
					continue
				}
				if !yield(models.ChatEvent{Type: models.EventContent, Delta: event.Delta.Text}) {
					return
				}
			case "message_stop":
				yield(models.ChatEvent{Type: models.EventDone})
				return
			case "error":
				message := "anthropic stream error"
				if event.Error != nil && event.Error.Message != "" {
					message = event.Error.Message
				}
				yield(models.ChatEvent{Type: models.EventError, Error: message})
				return
			default:
				// message_start, message_delta, content_block_start,
				// content_block_stop and ping carry no canonical payload.
			}
		}
	}
}
