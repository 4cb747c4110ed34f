package gtkhost

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/toaststack/internal/loop"
)

// Dispatcher is a loop.Scheduler backed by the GLib main loop. Closures run
// on the GTK thread, so they may touch widgets directly.
type Dispatcher struct {
	logger *slog.Logger
}

var _ loop.Scheduler = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher for the default main context.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Post queues fn on the main loop. It is safe to call from any goroutine.
func (d *Dispatcher) Post(fn func()) {
	glib.IdleAdd(func() { d.invoke(fn) })
}

// AfterFunc runs fn on the main loop once delay has elapsed.
func (d *Dispatcher) AfterFunc(delay time.Duration, fn func()) loop.Timer {
	t := &glibTimer{}
	ms := delay.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handle = glib.TimeoutAdd(uint(ms), func() {
		t.mu.Lock()
		if t.done {
			t.mu.Unlock()
			return
		}
		t.done = true
		t.mu.Unlock()
		d.invoke(fn)
	})
	return t
}

// invoke keeps a panicking callback from unwinding into GLib.
func (d *Dispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("main loop callback panicked", "panic", r)
		}
	}()
	fn()
}

type glibTimer struct {
	mu     sync.Mutex
	handle glib.SourceHandle
	done   bool
}

func (t *glibTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	glib.SourceRemove(t.handle)
	return true
}
