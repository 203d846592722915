package openai

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genai-gateway/internal/models"
)

func collectEvents(ctx context.Context, body io.Reader) []models.ChatEvent {
	var events []models.ChatEvent
	for event := range DecodeStream(ctx, io.NopCloser(body)) {
		events = append(events, event)
	}
	return events
}

func TestDecodeStreamContentAndDone(t *testing.T) {
	wire := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
		"data: [DONE]\n\n"

	events := collectEvents(context.Background(), strings.NewReader(wire))
	require.Len(t, events, 3)
	assert.Equal(t, models.ChatEvent{Type: models.EventContent, Delta: "Hel"}, events[0])
	assert.Equal(t, models.ChatEvent{Type: models.EventContent, Delta: "lo"}, events[1])
	assert.Equal(t, models.EventDone, events[2].Type)
}

func TestDecodeStreamSplitChunksMatchWholeRead(t *testing.T) {
	wire := "data: {\"choices\":[{\"delta\":{\"content\":\"split json payload\"}}]}\n\n" +
		"data: [DONE]\n\n"

	whole := collectEvents(context.Background(), strings.NewReader(wire))
	split := collectEvents(context.Background(), iotest.OneByteReader(strings.NewReader(wire)))
	assert.Equal(t, whole, split)
}

func TestDecodeStreamSkipsUnparsableLines(t *testing.T) {
	wire := "data: not json at all\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n" +
		"data: [DONE]\n\n"

	events := collectEvents(context.Background(), strings.NewReader(wire))
	require.Len(t, events, 2)
	assert.Equal(t, "ok", events[0].Delta)
}

func TestDecodeStreamSkipsEmptyDeltas(t *testing.T) {
	wire := "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n" +
		"data: [DONE]\n\n"

	events := collectEvents(context.Background(), strings.NewReader(wire))
	require.Len(t, events, 2)
	assert.Equal(t, "x", events[0].Delta)
}

func TestDecodeStreamSynthesizesDoneOnEOF(t *testing.T) {
	wire := "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n"

	events := collectEvents(context.Background(), strings.NewReader(wire))
	require.Len(t, events, 2)
	assert.Equal(t, models.EventDone, events[1].Type)
}

func TestDecodeStreamCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collectEvents(ctx, strings.NewReader("data: {\"choices\":[]}\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventError, events[0].Type)
}

func TestDecodeStreamExactlyOneTerminalEvent(t *testing.T) {
	wire := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n" +
		"data: [DONE]\n\n" +
		// Anything after the sentinel must never surface.
		"data: {\"choices\":[{\"delta\":{\"content\":\"ghost\"}}]}\n\n"

	events := collectEvents(context.Background(), strings.NewReader(wire))

	terminals := 0
	for i, event := range events {
		if event.Terminal() {
			terminals++
			assert.Equal(t, len(events)-1, i, "terminal event must be last")
		}
	}
	assert.Equal(t, 1, terminals)
}
