// Package sse reads vendor streaming responses line by line. Both scanners
// are backed by bufio, so a JSON payload split across two network reads is
// reassembled before it reaches the caller: bytes are buffered until a
// newline arrives and the trailing incomplete line is held back.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize caps a single streamed line at 1 MiB.
const maxLineSize = 1 << 20

// Scanner reads Server-Sent Events from a reader and returns the payload of
// each "data:" line. Empty lines, comment lines and other SSE fields are
// skipped.
type Scanner struct {
	scanner *bufio.Scanner
}

// NewScanner creates a Scanner over the given reader.
func NewScanner(reader io.Reader) *Scanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{scanner: scanner}
}

// Next returns the next data payload. Sentinel payloads such as "[DONE]" are
// returned verbatim; interpreting them is the vendor decoder's job. Returns
// io.EOF when the stream ends.
func (s *Scanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			return strings.TrimSpace(data), nil
		}
		// Other SSE fields (event:, id:, retry:) carry no payload.
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream line: %w", err)
	}
	return "", io.EOF
}

// LineScanner reads a stream where each non-empty line is itself a payload
// (the Gemini wire format carries bare JSON objects without a data: prefix).
type LineScanner struct {
	scanner *bufio.Scanner
}

// NewLineScanner creates a LineScanner over the given reader.
func NewLineScanner(reader io.Reader) *LineScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineScanner{scanner: scanner}
}

// Next returns the next non-empty line. Returns io.EOF when the stream ends.
func (s *LineScanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream line: %w", err)
	}
	return "", io.EOF
}
