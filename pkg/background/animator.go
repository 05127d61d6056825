package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vanderheijden86/deckwork/pkg/debug"
)

// ErrRunning is returned by Start when the animator is already ticking.
var ErrRunning = errors.New("animator already running")

// Animator emits frame ticks at a fixed rate until stopped. It only produces
// timing; stepping the field is left to the receiver so the field is only
// ever touched from one goroutine.
type Animator struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	frames chan time.Time
}

// NewAnimator creates an animator running at fps frames per second.
// fps is clamped to [1, 60].
func NewAnimator(fps int) *Animator {
	if fps < 1 {
		fps = 1
	}
	if fps > 60 {
		fps = 60
	}
	return &Animator{interval: time.Second / time.Duration(fps)}
}

// Interval returns the time between frames.
func (a *Animator) Interval() time.Duration {
	return a.interval
}

// Start begins ticking. The animator stops when ctx is cancelled or Stop is
// called.
func (a *Animator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	// one slot: a slow receiver skips frames instead of queueing them
	a.frames = make(chan time.Time, 1)

	go a.loop(ctx, a.frames, a.done)
	debug.Log("background animator started at %v/frame", a.interval)
	return nil
}

func (a *Animator) loop(ctx context.Context, frames chan<- time.Time, done chan<- struct{}) {
	defer close(done)
	defer close(frames)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			select {
			case frames <- t:
			default:
			}
		}
	}
}

// Frames returns the channel of frame ticks for the current run. It is closed
// when the run ends. Nil before the first Start.
func (a *Animator) Frames() <-chan time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Running reports whether the animator is ticking.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Stop halts the animator and waits for its goroutine to exit. Safe to call
// more than once and on an animator that never started.
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	debug.Log("background animator stopped")
}
