// Package loop provides the single-goroutine scheduler the notification
// stack runs on. Every state mutation of the stack happens inside a closure
// posted to a Scheduler, so no locks guard the stack itself.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler serializes work onto a single goroutine.
type Scheduler interface {
	// Post queues fn to run on the scheduler goroutine.
	Post(fn func())
	// AfterFunc runs fn on the scheduler goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is a Scheduler backed by a goroutine draining a FIFO of closures.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending []func()
	wakeCh  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a new Loop. Call Run (or Start) to begin processing.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Post queues fn. Closures posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run processes posted closures until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case <-l.wakeCh:
			l.drain()
		}
	}
}

// Stop halts the loop and waits for the current closure to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	l.mu.Unlock()

	<-l.doneCh
}

// drain runs every closure queued so far, including ones posted while
// draining.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.mu.Unlock()

		l.invoke(fn)
	}
}

// invoke runs fn, keeping the loop alive if it panics.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in scheduled closure", "panic", r)
		}
	}()
	fn()
}

// Await posts fn and blocks until it has run or ctx is done.
func Await(ctx context.Context, s Scheduler, fn func()) error {
	done := make(chan struct{})
	s.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
