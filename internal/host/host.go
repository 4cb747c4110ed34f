// Package host defines the windowing environment the notification stack
// drives. Implementations live in the headless and gtk subpackages.
//
// Every Window method is called from the stack's scheduler goroutine, and
// implementations must deliver their callbacks (OnLoaded, Listener) back
// through the same scheduler.
package host

import (
	"github.com/jmylchreest/toaststack/internal/geometry"
)

// Options are the fixed creation flags of a notification window.
type Options struct {
	AlwaysOnTop            bool
	VisibleOnAllWorkspaces bool
	ShowInTaskbar          bool
	Frame                  bool
	Transparent            bool
	Width                  int
	Height                 int
}

// Content is what a notification window displays.
type Content struct {
	Title   string
	Body    string
	Icon    string // Image shown on the right, hidden when empty
	AppIcon string // Application icon on the left, hidden when empty
	HasLink bool   // Container is clickable
}

// Listener receives user interaction with a window.
type Listener struct {
	OnClick       func() // Container clicked
	OnCloseButton func() // Close button activated
}

// Window is a reusable popup surface.
type Window interface {
	// ID identifies the window in logs.
	ID() string
	MoveTo(x, y int)
	Position() (x, y int)
	Show()
	Hide()
	// Close destroys the window. It must not be used afterwards.
	Close()
	// OnLoaded runs fn once the window's content surface is ready. For an
	// already loaded window fn runs on the next scheduler turn.
	OnLoaded(fn func())
	Render(c Content)
	ApplyStyle(css string)
	// Resize changes the window size in place, keeping its position.
	Resize(width, height int)
	// Listen registers l and returns a function that removes it again.
	Listen(l Listener) (detach func())
}

// Host creates windows and reports the available screens.
type Host interface {
	CreateWindow(template string, opts Options) (Window, error)
	Screens() ([]geometry.Screen, error)
}
