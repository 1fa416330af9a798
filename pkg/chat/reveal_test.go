package chat

import (
	"context"
	"strings"
	"testing"
	"time"
)

func zeroTick() time.Duration { return 0 }

func TestRevealRunFullText(t *testing.T) {
	text := "one two three four five six seven"
	task := newRevealTask()

	var updates []RevealUpdate
	completed := task.run(context.Background(), text, zeroTick, func(u RevealUpdate) {
		updates = append(updates, u)
	})

	if !completed {
		t.Fatalf("run returned false, want true")
	}
	if len(updates) == 0 {
		t.Fatalf("no reveal updates emitted")
	}

	// At most three words appear per tick.
	prev := 0
	for i, u := range updates {
		n := len(strings.Fields(u.Visible))
		if n-prev > maxWordsPerTick {
			t.Errorf("update %d revealed %d new words, max is %d", i, n-prev, maxWordsPerTick)
		}
		prev = n
	}

	last := updates[len(updates)-1]
	if last.Progress != 100 {
		t.Errorf("final progress = %v, want 100", last.Progress)
	}
	if last.Visible != text {
		t.Errorf("final visible = %q, want full text", last.Visible)
	}
}

func TestRevealRunEmptyText(t *testing.T) {
	task := newRevealTask()

	var updates []RevealUpdate
	completed := task.run(context.Background(), "", zeroTick, func(u RevealUpdate) {
		updates = append(updates, u)
	})

	if !completed {
		t.Fatalf("run returned false, want true")
	}
	if len(updates) != 1 || updates[0].Progress != 100 {
		t.Fatalf("empty text should emit a single 100%% update, got %+v", updates)
	}
}

func TestRevealCancel(t *testing.T) {
	task := newRevealTask()

	done := make(chan bool, 1)
	go func() {
		done <- task.run(context.Background(), "a b c d e f g h i j", func() time.Duration {
			return time.Hour
		}, nil)
	}()

	// Give the goroutine a moment to block on the first tick.
	time.Sleep(10 * time.Millisecond)
	task.Cancel()

	select {
	case completed := <-done:
		if completed {
			t.Errorf("cancelled run returned true")
		}
	case <-time.After(time.Second):
		t.Fatalf("run did not return after Cancel")
	}
}

func TestRevealCancelIdempotent(t *testing.T) {
	task := newRevealTask()
	go task.run(context.Background(), "a b", zeroTick, nil)

	task.Cancel()
	task.Cancel() // must not panic or block
}

func TestRevealContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := newRevealTask()
	completed := task.run(ctx, "a b c", func() time.Duration { return time.Millisecond }, nil)
	if completed {
		t.Errorf("run with cancelled context returned true")
	}
}
