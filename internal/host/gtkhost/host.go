// Package gtkhost implements the notification host on GTK4. Windows are
// wlr-layer-shell surfaces anchored to the bottom-right corner of their
// monitor and positioned through margins.
package gtkhost

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/layout"
	"github.com/jmylchreest/toaststack/internal/loop"
)

// Namespace is the layer-shell namespace compositors see for our windows.
const Namespace = "toaststack"

// HostError represents a failure talking to the display server.
type HostError struct {
	Message string
	Cause   error
}

func (e *HostError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HostError) Unwrap() error {
	return e.Cause
}

// Host creates layer-shell windows inside a GTK application. It must only be
// used from the GTK thread.
type Host struct {
	app    *gtk.Application
	sched  loop.Scheduler
	loader *layout.Loader
	logger *slog.Logger

	provider   *gtk.CSSProvider
	css        string
	registered bool

	monitors []monitorInfo
}

type monitorInfo struct {
	monitor *gdk.Monitor
	rect    geometry.Rect
}

var _ host.Host = (*Host)(nil)

// New creates a host for app. Templates named by path are resolved through
// loader; sched is normally the Dispatcher of the same main loop.
func New(app *gtk.Application, sched loop.Scheduler, loader *layout.Loader, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		app:      app,
		sched:    sched,
		loader:   loader,
		logger:   logger,
		provider: gtk.NewCSSProvider(),
	}
}

// CreateWindow builds a hidden window from the template at path.
func (h *Host) CreateWindow(path string, opts host.Options) (host.Window, error) {
	l, err := h.loader.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if gdk.DisplayGetDefault() == nil {
		return nil, &HostError{Message: "no display available"}
	}
	return newWindow(h, l, opts), nil
}

// Screens reports every monitor. GTK4 does not expose the work area, so it
// equals the monitor bounds; layer-shell margins are already measured from
// the edge left free by panels with an exclusive zone.
func (h *Host) Screens() ([]geometry.Screen, error) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &HostError{Message: "no display available"}
	}

	list := display.Monitors()
	if list == nil || list.NItems() == 0 {
		return nil, &HostError{Message: "no monitors available"}
	}

	h.monitors = h.monitors[:0]
	screens := make([]geometry.Screen, 0, list.NItems())
	for i := uint(0); i < list.NItems(); i++ {
		m := wrapMonitor(list.Item(i))
		if m == nil {
			continue
		}
		g := m.Geometry()
		rect := geometry.Rect{X: g.X(), Y: g.Y(), Width: g.Width(), Height: g.Height()}
		h.monitors = append(h.monitors, monitorInfo{monitor: m, rect: rect})
		screens = append(screens, geometry.Screen{Bounds: rect, WorkArea: rect})
		h.logger.Debug("monitor detected", "index", i, "connector", m.Connector(),
			"width", rect.Width, "height", rect.Height)
	}
	return screens, nil
}

// monitorAt returns the monitor containing the point, or the first one.
func (h *Host) monitorAt(x, y int) (monitorInfo, bool) {
	if len(h.monitors) == 0 {
		if _, err := h.Screens(); err != nil {
			return monitorInfo{}, false
		}
	}
	for _, m := range h.monitors {
		r := m.rect
		if x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom() {
			return m, true
		}
	}
	if len(h.monitors) > 0 {
		return h.monitors[0], true
	}
	return monitorInfo{}, false
}

// applyStyle loads css into the shared provider. Every window shares one
// stylesheet, so reloading is skipped when nothing changed.
func (h *Host) applyStyle(css string) {
	if !h.registered {
		display := gdk.DisplayGetDefault()
		if display == nil {
			h.logger.Warn("no display available, cannot apply stylesheet")
			return
		}
		gtk.StyleContextAddProviderForDisplay(display, h.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
		h.registered = true
	}
	if css == h.css {
		return
	}
	h.provider.LoadFromString(css)
	h.css = css
}

// wrapMonitor wraps a list item as a gdk.Monitor. gotk4 keeps its own
// wrapper unexported; Monitor only embeds the object pointer.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
