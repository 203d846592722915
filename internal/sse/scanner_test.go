package sse

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, next func() (string, error)) []string {
	t.Helper()
	var payloads []string
	for {
		payload, err := next()
		if err == io.EOF {
			return payloads
		}
		require.NoError(t, err)
		payloads = append(payloads, payload)
	}
}

func TestScannerDataLines(t *testing.T) {
	input := "data: {\"a\":1}\n\n: keep-alive comment\ndata: {\"b\":2}\n\ndata: [DONE]\n\n"

	payloads := collect(t, NewScanner(strings.NewReader(input)).Next)
	require.Equal(t, []string{`{"a":1}`, `{"b":2}`, "[DONE]"}, payloads)
}

func TestScannerIgnoresOtherFields(t *testing.T) {
	input := "event: message_start\nid: 42\ndata: {\"x\":true}\n\n"

	payloads := collect(t, NewScanner(strings.NewReader(input)).Next)
	require.Equal(t, []string{`{"x":true}`}, payloads)
}

func TestScannerReassemblesSplitReads(t *testing.T) {
	// One-byte reads force every payload to arrive split across network
	// reads; the scanner must produce identical payloads either way.
	input := "data: {\"delta\":\"hello world\"}\n\ndata: {\"delta\":\"again\"}\n\n"

	whole := collect(t, NewScanner(strings.NewReader(input)).Next)
	split := collect(t, NewScanner(iotest.OneByteReader(strings.NewReader(input))).Next)
	require.Equal(t, whole, split)
}

func TestLineScannerBareJSONLines(t *testing.T) {
	input := "{\"n\":1}\n\n{\"n\":2}\n"

	payloads := collect(t, NewLineScanner(strings.NewReader(input)).Next)
	require.Equal(t, []string{`{"n":1}`, `{"n":2}`}, payloads)
}

func TestLineScannerSplitReads(t *testing.T) {
	input := "{\"text\":\"split across reads\"}\n"

	whole := collect(t, NewLineScanner(strings.NewReader(input)).Next)
	split := collect(t, NewLineScanner(iotest.OneByteReader(strings.NewReader(input))).Next)
	require.Equal(t, whole, split)
}
