package repeater

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Repeater calls a function once per period until stopped.
type Repeater struct {
	// period is the delay between two invocations.
	period time.Duration
	// fn is invoked on every period with the loop context.
	fn func(ctx context.Context)

	// active is the gate checked before every invocation.
	active atomic.Bool

	// mu serializes Start and Stop.
	mu sync.Mutex
	// cancel stops the loop context of the running goroutine.
	cancel context.CancelFunc
	// done is closed when the running goroutine exits.
	done chan struct{}
}

// New returns a stopped repeater. A non-positive period falls back to one second.
func New(period time.Duration, fn func(ctx context.Context)) *Repeater {
	if period <= 0 {
		period = time.Second
	}

	return &Repeater{
		period: period,
		fn:     fn,
	}
}

// Period returns the delay between invocations.
func (r *Repeater) Period() time.Duration {
	return r.period
}

// Active reports whether the repeater is running.
func (r *Repeater) Active() bool {
	return r.active.Load()
}

// Start launches the loop. The first invocation happens one period later.
// Starting an active repeater does nothing.
func (r *Repeater) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active.Load() {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.cancel = cancel
	r.done = done
	r.active.Store(true)

	go r.loop(loopCtx, done)
}

// Stop clears the gate, cancels the loop and waits for it to exit.
// The function passed to New must return promptly once its context is canceled.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return
	}

	r.active.Store(false)
	r.cancel()
	<-r.done

	r.cancel = nil
	r.done = nil
}

func (r *Repeater) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.active.Load() || ctx.Err() != nil {
				return
			}

			r.fn(ctx)
		}
	}
}
