package streaming

import (
	"bufio"
	"io"
	"strings"
)

// doneSentinel terminates a server-sent-event stream.
const doneSentinel = "[DONE]"

// SSEScanner walks a server-sent-event body line by line and yields the
// payload of each "data:" line. Comments, blank lines and non-data fields
// are skipped.
type SSEScanner struct {
	scanner *bufio.Scanner
}

func NewSSEScanner(r io.Reader) *SSEScanner {
	sc := bufio.NewScanner(r)
	// Single chunks can exceed the default token size.
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 1024*1024)
	return &SSEScanner{scanner: sc}
}

// Next returns the next data payload. It returns io.EOF on the [DONE]
// sentinel and when the body ends.
func (s *SSEScanner) Next() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == doneSentinel {
			return "", io.EOF
		}
		return payload, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
