package timer

import (
	"context"
	"sync"
	"time"
)

// Interval is a cancellable periodic task.
//
// Start and Stop are idempotent: starting a running interval restarts it
// instead of stacking a second one, and stopping a stopped interval is a
// no-op. The callback receives a stop func bound to its own run, calling it
// after a restart doesn't stop the new run.
type Interval struct {
	period time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	gen     uint64
	running bool
}

// NewInterval returns a stopped interval with the given period.
func NewInterval(period time.Duration) *Interval {
	return &Interval{period: period}
}

// Period returns the interval period.
func (i *Interval) Period() time.Duration { return i.period }

// Start starts calling fn every period until Stop is called or ctx is done.
func (i *Interval) Start(ctx context.Context, fn func(ctx context.Context, stop func())) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.stop()

	ctx, cancel := context.WithCancel(ctx)
	i.gen++
	i.cancel = cancel
	i.running = true
	gen := i.gen
	stop := func() { i.stopRun(gen) }

	go func() {
		ticker := time.NewTicker(i.period)
		defer ticker.Stop()
		defer i.finish(gen)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Both channels can be ready at the same time.
				if ctx.Err() != nil {
					return
				}
				fn(ctx, stop)
			}
		}
	}()
}

// Stop stops the interval, it doesn't wait for a running callback.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stop()
}

// Running returns true if the interval is started.
func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.running
}

func (i *Interval) stop() {
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	i.running = false
}

// stopRun stops the interval only if it's still on the gen run.
func (i *Interval) stopRun(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if gen != i.gen {
		return
	}
	i.stop()
}

func (i *Interval) finish(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	// A restart already replaced this run.
	if gen != i.gen {
		return
	}
	i.running = false
	i.cancel = nil
}
