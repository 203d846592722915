package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"

	"genai-gateway/internal/models"
	"genai-gateway/internal/sse"
)

const doneSentinel = "[DONE]"

// DecodeStream converts the OpenAI SSE wire format into the canonical event
// sequence: "data: " lines carry JSON chunks with choices[0].delta.content,
// and the "[DONE]" sentinel terminates the stream. Unparsable lines are
// skipped so keep-alive noise never aborts a healthy stream. Azure OpenAI
// uses the same encoding and shares this decoder.
//
// The returned iterator owns body and closes it when iteration stops. It
// always ends with exactly one terminal event: Done on the sentinel or a
// clean EOF, Error on cancellation or a read failure.
func DecodeStream(ctx context.Context, body io.ReadCloser) iter.Seq[models.ChatEvent] {
	return func(yield func(models.ChatEvent) bool) {
		defer body.Close()
		scanner := sse.NewScanner(body)

		for {
			if err := ctx.Err(); err != nil {
				yield(abortEvent(err))
				return
			}

			payload, err := scanner.Next()
			if errors.Is(err, io.EOF) {
				yield(models.ChatEvent{Type: models.EventDone})
				return
			}
			if err != nil {
				yield(abortEvent(err))
				return
			}

			if payload == doneSentinel {
				yield(models.ChatEvent{Type: models.EventDone})
				return
			}

			var chunk streamChunk
			if json.Unmarshal([]byte(payload), &chunk) != nil {
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if !yield(models.ChatEvent{Type: models.EventContent, Delta: delta}) {
					return
				}
			}
		}
	}
}

func abortEvent(err error) models.ChatEvent {
	return models.ChatEvent{Type: models.EventError, Error: err.Error()}
}
