// Package pool keeps notification windows alive between notifications.
//
// A window is either active (showing a notification, ordered by stack slot,
// index 0 nearest the corner) or inactive (hidden, waiting for reuse). New
// windows are only created when no inactive window is left.
package pool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/toaststack/internal/host"
)

var (
	// ErrInvalidState is returned when a window is not in the set an
	// operation expects.
	ErrInvalidState = errors.New("window in invalid pool state")
	// ErrReset is delivered to Acquire callbacks whose window finished
	// loading after CloseAllAndReset.
	ErrReset = errors.New("pool was reset while window was loading")
)

// StateError describes a pool inconsistency.
type StateError struct {
	Op     string
	Window string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("pool %s: window %s is not active", e.Op, e.Window)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// Pool owns every notification window. It must only be used from the
// scheduler goroutine.
type Pool struct {
	host   host.Host
	logger *slog.Logger

	template string
	opts     host.Options
	css      string

	active   []host.Window
	inactive []host.Window
	loading  map[string]host.Window
	built    map[host.Window]build
	gen      uint64
}

// build is what a window was created with.
type build struct {
	template string
	opts     host.Options
}

// New creates an empty pool.
func New(h host.Host, template string, opts host.Options, css string, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		host:     h,
		logger:   logger,
		template: template,
		opts:     opts,
		css:      css,
		loading:  make(map[string]host.Window),
		built:    make(map[host.Window]build),
	}
}

// Acquire hands out a window and appends it to the active set. An inactive
// window is reused at once; otherwise a new one is created and done runs
// after it has loaded.
func (p *Pool) Acquire(done func(host.Window, error)) {
	if n := len(p.inactive); n > 0 {
		w := p.inactive[n-1]
		p.inactive[n-1] = nil
		p.inactive = p.inactive[:n-1]
		p.active = append(p.active, w)
		p.logger.Debug("reusing window", "window", w.ID(), "slot", len(p.active)-1)
		done(w, nil)
		return
	}

	w, err := p.host.CreateWindow(p.template, p.opts)
	if err != nil {
		done(nil, fmt.Errorf("create window: %w", err))
		return
	}

	gen := p.gen
	p.loading[w.ID()] = w
	p.built[w] = build{template: p.template, opts: p.opts}
	p.logger.Debug("creating window", "window", w.ID())

	w.OnLoaded(func() {
		if gen != p.gen {
			w.Close()
			done(nil, ErrReset)
			return
		}
		delete(p.loading, w.ID())
		p.fit(w)
		w.ApplyStyle(p.css)
		p.active = append(p.active, w)
		done(w, nil)
	})
}

// Release moves w from the active to the inactive set and returns the slot
// it occupied. A window built from an outdated template or with outdated
// creation flags is destroyed instead.
func (p *Pool) Release(w host.Window) (int, error) {
	idx := p.IndexOf(w)
	if idx < 0 {
		return -1, &StateError{Op: "release", Window: w.ID()}
	}
	copy(p.active[idx:], p.active[idx+1:])
	p.active[len(p.active)-1] = nil
	p.active = p.active[:len(p.active)-1]

	if !p.fit(w) {
		p.logger.Debug("closing outdated window", "window", w.ID())
		w.Close()
		delete(p.built, w)
		return idx, nil
	}
	p.inactive = append(p.inactive, w)
	return idx, nil
}

// fit brings w up to the current configuration and reports whether it now
// matches. Only the size can change on a live window.
func (p *Pool) fit(w host.Window) bool {
	want := build{template: p.template, opts: p.opts}
	have := p.built[w]
	if have == want {
		return true
	}
	resized := have
	resized.opts.Width, resized.opts.Height = want.opts.Width, want.opts.Height
	if resized != want {
		return false
	}
	w.Resize(want.opts.Width, want.opts.Height)
	p.built[w] = want
	return true
}

// CloseAllAndReset destroys every window, including ones still loading.
func (p *Pool) CloseAllAndReset() {
	closed := 0
	for _, set := range [][]host.Window{p.active, p.inactive} {
		for _, w := range set {
			w.Close()
			closed++
		}
	}
	for _, w := range p.loading {
		w.Close()
		closed++
	}
	p.active = nil
	p.inactive = nil
	p.loading = make(map[string]host.Window)
	p.built = make(map[host.Window]build)
	p.gen++
	p.logger.Debug("pool reset", "closed", closed)
}

// Reconfigure changes how windows are created from now on. Live windows
// follow a size change in place. Idle windows built from another template
// or with other flags are destroyed; active ones are destroyed when they
// are released. A style change is applied to every live window.
func (p *Pool) Reconfigure(template string, opts host.Options, css string) {
	p.template, p.opts = template, opts

	kept := p.inactive[:0]
	for _, w := range p.inactive {
		if p.fit(w) {
			kept = append(kept, w)
			continue
		}
		w.Close()
		delete(p.built, w)
	}
	if dropped := len(p.inactive) - len(kept); dropped > 0 {
		p.logger.Debug("discarded outdated idle windows", "count", dropped)
	}
	clear(p.inactive[len(kept):])
	p.inactive = kept

	for _, w := range p.active {
		p.fit(w)
	}

	if css != p.css {
		for _, w := range p.active {
			w.ApplyStyle(css)
		}
		for _, w := range p.inactive {
			w.ApplyStyle(css)
		}
		p.css = css
	}
}

// Active returns a copy of the active set in slot order.
func (p *Pool) Active() []host.Window {
	out := make([]host.Window, len(p.active))
	copy(out, p.active)
	return out
}

// ActiveCount returns the number of windows showing a notification.
func (p *Pool) ActiveCount() int { return len(p.active) }

// InactiveCount returns the number of idle windows.
func (p *Pool) InactiveCount() int { return len(p.inactive) }

// IndexOf returns the slot of w, or -1 when w is not active.
func (p *Pool) IndexOf(w host.Window) int {
	for i, a := range p.active {
		if a == w {
			return i
		}
	}
	return -1
}
