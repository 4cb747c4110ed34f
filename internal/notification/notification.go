// Package notification defines a toast notification and its lifecycle.
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/loop"
)

// State is the lifecycle state of a notification.
type State int

const (
	// StateQueued means the notification waits for a free slot.
	StateQueued State = iota
	// StateShowing means the notification occupies a slot.
	StateShowing
	// StateClosing means the close sequence is running.
	StateClosing
	// StateClosed is terminal.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateShowing:
		return "showing"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason tells OnClose handlers why a notification went away.
type CloseReason string

const (
	// ReasonTimeout means the display timer expired.
	ReasonTimeout CloseReason = "timeout"
	// ReasonClose means the user activated the close button.
	ReasonClose CloseReason = "close"
	// ReasonClosedByAPI means Close was called programmatically.
	ReasonClosedByAPI CloseReason = "closedByAPI"
	// ReasonCloseAll means the whole stack was shut down.
	ReasonCloseAll CloseReason = "closeAll"
)

var (
	// ErrAlreadyClosed is returned for operations on a closed notification.
	// The stack absorbs it rather than surfacing it.
	ErrAlreadyClosed = errors.New("notification already closed")
	// ErrInvalidTransition is returned for a transition the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Closer closes the notification it was issued for.
type Closer func(reason CloseReason)

// ShowEvent is passed to OnShow.
type ShowEvent struct {
	ID    int64
	Close Closer
}

// ClickEvent is passed to OnClick.
type ClickEvent struct {
	ID    int64
	Close Closer
}

// CloseEvent is passed to OnClose.
type CloseEvent struct {
	ID     int64
	Reason CloseReason
}

// Request is what a caller submits.
type Request struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`  // Image shown next to the text
	Link  string `json:"url,omitempty"`   // Opened via the desktop shell on click
	Sound string `json:"sound,omitempty"` // Overrides the configured sound

	OnClick func(ClickEvent) `json:"-"`
	OnShow  func(ShowEvent)  `json:"-"`
	OnClose func(CloseEvent) `json:"-"`
}

// Notification is a submitted request plus its lifecycle state. It is only
// touched from the stack's scheduler goroutine.
type Notification struct {
	ID      int64
	Request Request

	state  State
	closed bool
	reason CloseReason

	window   host.Window
	timer    loop.Timer
	detach   func()
	queuedAt time.Time
	shownAt  time.Time
}

// New creates a queued notification.
func New(id int64, req Request) *Notification {
	return &Notification{
		ID:       id,
		Request:  req,
		state:    StateQueued,
		queuedAt: time.Now(),
	}
}

// State returns the current state.
func (n *Notification) State() State { return n.state }

// Closed reports whether a close was requested.
func (n *Notification) Closed() bool { return n.closed }

// Reason returns the close reason, empty while open.
func (n *Notification) Reason() CloseReason { return n.reason }

// Window returns the bound window, nil unless showing or closing.
func (n *Notification) Window() host.Window { return n.window }

// QueuedAt returns the submission time.
func (n *Notification) QueuedAt() time.Time { return n.queuedAt }

// ShownAt returns when the notification became visible.
func (n *Notification) ShownAt() time.Time { return n.shownAt }

// RequestClose flips the closed flag. It reports false when a close was
// already requested, in which case the caller must do nothing.
func (n *Notification) RequestClose(reason CloseReason) bool {
	if n.closed {
		return false
	}
	n.closed = true
	n.reason = reason
	return true
}

// Show binds w and moves to StateShowing. detach removes the window
// listeners registered for this notification.
func (n *Notification) Show(w host.Window, detach func()) error {
	if n.state == StateClosed {
		return ErrAlreadyClosed
	}
	if n.state != StateQueued {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.state, StateShowing)
	}
	n.window = w
	n.detach = detach
	n.state = StateShowing
	n.shownAt = time.Now()
	return nil
}

// StartTimer arms the display timer. A negative d leaves the notification
// up until it is closed explicitly.
func (n *Notification) StartTimer(sched loop.Scheduler, d time.Duration, fire func()) {
	if d < 0 {
		return
	}
	n.timer = sched.AfterFunc(d, fire)
}

// BeginClose moves a showing notification to StateClosing, cancelling its
// timer and detaching its listeners. The window stays bound until Finish.
func (n *Notification) BeginClose() error {
	switch n.state {
	case StateClosed, StateClosing:
		return ErrAlreadyClosed
	case StateQueued:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.state, StateClosing)
	}
	n.state = StateClosing
	n.stopTimer()
	if n.detach != nil {
		n.detach()
		n.detach = nil
	}
	return nil
}

// Finish moves to StateClosed and unbinds the window. It is valid from
// StateClosing and, for notifications that never got a slot, StateQueued.
func (n *Notification) Finish() error {
	if n.state == StateClosed {
		return ErrAlreadyClosed
	}
	if n.state == StateShowing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.state, StateClosed)
	}
	n.stopTimer()
	n.state = StateClosed
	n.window = nil
	return nil
}

// CloseEvent builds the event handed to OnClose.
func (n *Notification) CloseEvent() CloseEvent {
	return CloseEvent{ID: n.ID, Reason: n.reason}
}

// Content returns what the window should display.
func (n *Notification) Content(appIcon string) host.Content {
	return host.Content{
		Title:   n.Request.Title,
		Body:    n.Request.Body,
		Icon:    n.Request.Icon,
		AppIcon: appIcon,
		HasLink: n.Request.Link != "",
	}
}

func (n *Notification) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
