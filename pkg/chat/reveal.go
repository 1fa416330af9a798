package chat

import (
	"context"
	"strings"
	"time"
)

const maxWordsPerTick = 3

// RevealUpdate is one tick of the simulated reveal: the currently visible
// prefix and a 0-100 progress percentage.
type RevealUpdate struct {
	Visible  string
	Progress float64
}

// revealTask is the cancellable handle for one reveal run. A new turn (or
// Close) cancels a still-running reveal deterministically instead of leaving
// two timers racing.
type revealTask struct {
	cancel chan struct{}
	done   chan struct{}
}

func newRevealTask() *revealTask {
	return &revealTask{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (t *revealTask) Cancel() {
	select {
	case <-t.cancel:
	default:
		close(t.cancel)
	}
	<-t.done
}

// run reveals the text word by word, up to maxWordsPerTick words per tick on
// a jittered interval. It returns true when the full text was revealed and
// false when cancelled. The per-tick timer is always stopped before return.
func (t *revealTask) run(ctx context.Context, text string, tick func() time.Duration, onTick func(RevealUpdate)) bool {
	defer close(t.done)

	words := strings.Fields(text)
	total := len(words)
	if total == 0 {
		if onTick != nil {
			onTick(RevealUpdate{Visible: text, Progress: 100})
		}
		return true
	}

	revealed := 0
	for revealed < total {
		if !t.wait(ctx, tick()) {
			return false
		}

		step := maxWordsPerTick
		if remaining := total - revealed; step > remaining {
			step = remaining
		}
		revealed += step

		if onTick != nil {
			onTick(RevealUpdate{
				Visible:  strings.Join(words[:revealed], " "),
				Progress: float64(revealed) / float64(total) * 100,
			})
		}
	}
	return true
}

func (t *revealTask) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-t.cancel:
			return false
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-t.cancel:
		return false
	case <-ctx.Done():
		return false
	}
}
