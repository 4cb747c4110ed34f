// Package headless implements an in-memory host. Windows are plain structs
// that record what was done to them; nothing is drawn. It backs the engine
// tests and the terminal preview.
package headless

import (
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/loop"
)

// ErrCreateFailed is returned by CreateWindow while failures are injected.
var ErrCreateFailed = errors.New("headless: window creation failed")

// Move is one recorded MoveTo call.
type Move struct {
	X, Y int
}

// Host is an in-memory host.
type Host struct {
	sched   loop.Scheduler
	screens []geometry.Screen

	mu         sync.Mutex
	windows    []*Window
	failCreate int
}

// New creates a host with the given screens. Callbacks are delivered
// through sched.
func New(sched loop.Scheduler, screens ...geometry.Screen) *Host {
	if len(screens) == 0 {
		screens = []geometry.Screen{DefaultScreen()}
	}
	return &Host{sched: sched, screens: screens}
}

// DefaultScreen is a 1920x1080 screen with a 40px bottom panel.
func DefaultScreen() geometry.Screen {
	return geometry.Screen{
		Bounds:   geometry.Rect{Width: 1920, Height: 1080},
		WorkArea: geometry.Rect{Width: 1920, Height: 1040},
	}
}

// CreateWindow creates a hidden window.
func (h *Host) CreateWindow(template string, opts host.Options) (host.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.failCreate > 0 {
		h.failCreate--
		return nil, ErrCreateFailed
	}

	w := &Window{
		id:       ulid.Make().String(),
		host:     h,
		template: template,
		opts:     opts,
	}
	h.windows = append(h.windows, w)
	return w, nil
}

// Screens returns the configured screens.
func (h *Host) Screens() ([]geometry.Screen, error) {
	return h.screens, nil
}

// FailNextCreates makes the next n CreateWindow calls fail.
func (h *Host) FailNextCreates(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failCreate = n
}

// Windows returns every window created so far, including closed ones.
func (h *Host) Windows() []*Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Window, len(h.windows))
	copy(out, h.windows)
	return out
}

// Visible returns the windows currently shown, in creation order.
func (h *Host) Visible() []*Window {
	var out []*Window
	for _, w := range h.Windows() {
		if w.Visible() {
			out = append(out, w)
		}
	}
	return out
}

// Created reports how many windows were ever created.
func (h *Host) Created() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.windows)
}

// Window is a recorded headless window.
type Window struct {
	id       string
	host     *Host
	template string
	opts     host.Options

	mu        sync.Mutex
	x, y      int
	visible   bool
	closed    bool
	loaded    bool
	content   host.Content
	css       string
	moves     []Move
	listeners map[int]host.Listener
	nextL     int
}

// ID returns the window's ULID.
func (w *Window) ID() string { return w.id }

// Options returns the creation options with the current size.
func (w *Window) Options() host.Options {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// MoveTo records a move.
func (w *Window) MoveTo(x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.x, w.y = x, y
	w.moves = append(w.moves, Move{X: x, Y: y})
}

// Position returns the last position.
func (w *Window) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

// Show marks the window visible.
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = true
}

// Hide marks the window hidden.
func (w *Window) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible = false
}

// Close destroys the window.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.visible = false
	w.listeners = nil
}

// OnLoaded delivers fn on the next scheduler turn.
func (w *Window) OnLoaded(fn func()) {
	w.host.sched.Post(func() {
		w.mu.Lock()
		w.loaded = true
		w.mu.Unlock()
		fn()
	})
}

// Render stores the content.
func (w *Window) Render(c host.Content) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.content = c
}

// ApplyStyle stores the stylesheet.
func (w *Window) ApplyStyle(css string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.css = css
}

// Resize records the new size.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts.Width, w.opts.Height = width, height
}

// Listen registers l.
func (w *Window) Listen(l host.Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.listeners == nil {
		w.listeners = make(map[int]host.Listener)
	}
	key := w.nextL
	w.nextL++
	w.listeners[key] = l
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, key)
	}
}

// Click simulates a click on the container. Handlers run on the scheduler.
func (w *Window) Click() {
	for _, l := range w.snapshotListeners() {
		if l.OnClick != nil {
			w.host.sched.Post(l.OnClick)
		}
	}
}

// PressClose simulates activating the close button.
func (w *Window) PressClose() {
	for _, l := range w.snapshotListeners() {
		if l.OnCloseButton != nil {
			w.host.sched.Post(l.OnCloseButton)
		}
	}
}

func (w *Window) snapshotListeners() []host.Listener {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]host.Listener, 0, len(w.listeners))
	for i := 0; i < w.nextL; i++ {
		if l, ok := w.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Closed reports whether the window was destroyed.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Loaded reports whether OnLoaded has fired.
func (w *Window) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Content returns the last rendered content.
func (w *Window) Content() host.Content {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.content
}

// Style returns the applied stylesheet.
func (w *Window) Style() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.css
}

// Moves returns every recorded move.
func (w *Window) Moves() []Move {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Move, len(w.moves))
	copy(out, w.moves)
	return out
}

// ListenerCount reports how many listeners are attached.
func (w *Window) ListenerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}
