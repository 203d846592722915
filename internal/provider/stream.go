package provider

import (
	"errors"
	"iter"
	"strings"

	"genai-gateway/internal/models"
)

// Stream is a lazy, finite, non-restartable sequence of canonical chat
// events. It wraps a pull-based iterator so the caller can forward events as
// they arrive without buffering the whole response.
//
// Callers must consume the stream, either by ranging over Events (breaking
// out early is fine) or by calling Collect. The producing adapter holds the
// vendor's response body open until the iterator finishes or is abandoned.
type Stream struct {
	events iter.Seq[models.ChatEvent]
}

// NewStream wraps a raw event iterator. The iterator must yield zero or more
// non-terminal events followed by exactly one terminal event.
func NewStream(events iter.Seq[models.ChatEvent]) *Stream {
	return &Stream{events: events}
}

// Events returns the underlying iterator for range-over-func loops.
func (s *Stream) Events() iter.Seq[models.ChatEvent] {
	return s.events
}

// Collect consumes the entire stream and accumulates it into a ChatResult.
// A terminal error event is returned as a Go error alongside the partial
// result accumulated up to that point.
func (s *Stream) Collect() (*models.ChatResult, error) {
	var content strings.Builder
	result := &models.ChatResult{}

	for event := range s.events {
		switch event.Type {
		case models.EventContent:
			content.WriteString(event.Delta)
		case models.EventMetadata:
			mergeMetadata(result, event.Metadata)
		case models.EventDone:
			mergeMetadata(result, event.Metadata)
		case models.EventError:
			result.Content = content.String()
			return result, errors.New(event.Error)
		}
	}

	result.Content = content.String()
	return result, nil
}

func mergeMetadata(result *models.ChatResult, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	if result.Metadata == nil {
		result.Metadata = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		result.Metadata[k] = v
	}
}
