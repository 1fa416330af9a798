package streaming

import (
	"io"
	"strings"
	"testing"
)

func TestSSEScannerNext(t *testing.T) {
	body := strings.Join([]string{
		": keep-alive comment",
		"",
		"event: message",
		"data: {\"a\":1}",
		"data:{\"b\":2}",
		"",
		"data: [DONE]",
		"data: {\"never\":true}",
	}, "\n")

	sc := NewSSEScanner(strings.NewReader(body))

	first, err := sc.Next()
	if err != nil || first != `{"a":1}` {
		t.Fatalf("first = %q, %v", first, err)
	}
	second, err := sc.Next()
	if err != nil || second != `{"b":2}` {
		t.Fatalf("second = %q, %v", second, err)
	}
	if _, err := sc.Next(); err != io.EOF {
		t.Fatalf("after [DONE]: err = %v, want io.EOF", err)
	}
}

func TestSSEScannerBodyEnd(t *testing.T) {
	sc := NewSSEScanner(strings.NewReader("data: last\n"))
	if payload, err := sc.Next(); err != nil || payload != "last" {
		t.Fatalf("payload = %q, %v", payload, err)
	}
	if _, err := sc.Next(); err != io.EOF {
		t.Fatalf("at body end: err = %v, want io.EOF", err)
	}
}

func TestSSEScannerEmptyBody(t *testing.T) {
	sc := NewSSEScanner(strings.NewReader(""))
	if _, err := sc.Next(); err != io.EOF {
		t.Fatalf("empty body: err = %v, want io.EOF", err)
	}
}

func TestSSEScannerLargeChunk(t *testing.T) {
	payload := strings.Repeat("x", 200*1024)
	sc := NewSSEScanner(strings.NewReader("data: " + payload + "\n"))
	got, err := sc.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got != payload {
		t.Fatalf("large chunk truncated: got %d bytes, want %d", len(got), len(payload))
	}
}
