package gtkhost

import (
	"strings"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/layout"
	"github.com/jmylchreest/toaststack/internal/theme"
)

const (
	iconSize     = 32
	imageSize    = 48
	textMaxChars = 40
)

// Window is a layer-shell popup built from a layout template.
type Window struct {
	id     string
	host   *Host
	opts   host.Options
	window *gtk.Window

	// Widgets, nil when the template has no such element
	container *gtk.Box
	appIcon   *gtk.Image
	image     *gtk.Image
	title     *gtk.Label
	message   *gtk.Label
	closeBtn  *gtk.Button

	x, y      int
	placed    bool
	closed    bool
	listeners map[int]host.Listener
	nextL     int
}

var _ host.Window = (*Window)(nil)

func newWindow(h *Host, l *layout.Layout, opts host.Options) *Window {
	w := &Window{
		id:   ulid.Make().String(),
		host: h,
		opts: opts,
	}

	w.window = gtk.NewWindow()
	w.window.SetApplication(h.app)
	w.window.SetDecorated(opts.Frame)
	w.window.SetResizable(false)
	w.window.SetDefaultSize(opts.Width, opts.Height)
	w.window.SetSizeRequest(opts.Width, opts.Height)
	w.window.AddCSSClass(theme.ClassWindow)

	layershell.InitForWindow(w.window)
	if opts.AlwaysOnTop {
		layershell.SetLayer(w.window, layershell.LayerShellLayerOverlay)
	} else {
		layershell.SetLayer(w.window, layershell.LayerShellLayerTop)
	}
	layershell.SetExclusiveZone(w.window, 0)
	layershell.SetKeyboardMode(w.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(w.window, Namespace)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeBottom, true)
	layershell.SetAnchor(w.window, layershell.LayerShellEdgeRight, true)

	w.container = gtk.NewBox(gtk.OrientationHorizontal, 8)
	w.container.AddCSSClass(theme.ClassContainer)
	for _, elem := range l.Elements {
		if widget := w.buildElement(elem); widget != nil {
			w.container.Append(widget)
		}
	}
	w.window.SetChild(w.container)

	w.connectSignals()
	return w
}

func (w *Window) buildElement(elem layout.Element) gtk.Widgetter {
	switch elem.Type {
	case layout.ElementTypeAppIcon:
		w.appIcon = gtk.NewImage()
		w.appIcon.AddCSSClass(theme.ClassAppIcon)
		w.appIcon.SetPixelSize(iconSize)
		w.appIcon.SetVisible(false)
		return w.appIcon
	case layout.ElementTypeImage:
		w.image = gtk.NewImage()
		w.image.AddCSSClass(theme.ClassImage)
		w.image.SetPixelSize(imageSize)
		w.image.SetVisible(false)
		return w.image
	case layout.ElementTypeTitle:
		w.title = gtk.NewLabel("")
		w.title.AddCSSClass(theme.ClassTitle)
		w.title.SetXAlign(0)
		w.title.SetEllipsize(3) // PANGO_ELLIPSIZE_END
		w.title.SetMaxWidthChars(textMaxChars)
		return w.title
	case layout.ElementTypeMessage:
		w.message = gtk.NewLabel("")
		w.message.AddCSSClass(theme.ClassMessage)
		w.message.SetXAlign(0)
		w.message.SetWrap(true)
		w.message.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		w.message.SetMaxWidthChars(textMaxChars)
		return w.message
	case layout.ElementTypeClose:
		w.closeBtn = gtk.NewButtonFromIconName("window-close-symbolic")
		w.closeBtn.AddCSSClass(theme.ClassClose)
		w.closeBtn.SetVAlign(gtk.AlignStart)
		return w.closeBtn
	case layout.ElementTypeText:
		return w.buildBox(elem, gtk.OrientationVertical, theme.ClassText)
	case layout.ElementTypeBox:
		orientation := gtk.OrientationVertical
		if elem.Attributes["orientation"] == "horizontal" {
			orientation = gtk.OrientationHorizontal
		}
		return w.buildBox(elem, orientation, "")
	default:
		return nil
	}
}

func (w *Window) buildBox(elem layout.Element, orientation gtk.Orientation, class string) gtk.Widgetter {
	box := gtk.NewBox(orientation, 2)
	if class != "" {
		box.AddCSSClass(class)
	}
	if orientation == gtk.OrientationVertical {
		box.SetHExpand(true)
	}
	for _, child := range elem.Children {
		if widget := w.buildElement(child); widget != nil {
			box.Append(widget)
		}
	}
	return box
}

func (w *Window) connectSignals() {
	if w.closeBtn != nil {
		w.closeBtn.ConnectClicked(func() {
			for _, l := range w.snapshotListeners() {
				if l.OnCloseButton != nil {
					l.OnCloseButton()
				}
			}
		})
	}

	click := gtk.NewGestureClick()
	click.SetButton(1)
	click.ConnectReleased(func(nPress int, x, y float64) {
		for _, l := range w.snapshotListeners() {
			if l.OnClick != nil {
				l.OnClick()
			}
		}
	})
	w.container.AddController(click)
}

// ID returns the window's ULID.
func (w *Window) ID() string { return w.id }

// MoveTo places the window's top-left corner at x,y in screen coordinates.
// Layer-shell surfaces cannot be positioned absolutely, so the point is
// turned into bottom and right margins on the monitor containing it.
func (w *Window) MoveTo(x, y int) {
	w.x, w.y = x, y
	w.placed = true
	if w.closed {
		return
	}
	m, ok := w.host.monitorAt(x, y)
	if !ok {
		return
	}
	layershell.SetMonitor(w.window, m.monitor)
	layershell.SetMargin(w.window, layershell.LayerShellEdgeRight, max(0, m.rect.Right()-(x+w.opts.Width)))
	layershell.SetMargin(w.window, layershell.LayerShellEdgeBottom, max(0, m.rect.Bottom()-(y+w.opts.Height)))
}

// Resize changes the size request and recomputes the margins, which are
// measured from the window's bottom-right edge.
func (w *Window) Resize(width, height int) {
	w.opts.Width, w.opts.Height = width, height
	if w.closed {
		return
	}
	w.window.SetDefaultSize(width, height)
	w.window.SetSizeRequest(width, height)
	if w.placed {
		w.MoveTo(w.x, w.y)
	}
}

// Position returns the last position passed to MoveTo.
func (w *Window) Position() (int, int) {
	return w.x, w.y
}

// Show presents the window.
func (w *Window) Show() {
	if !w.closed {
		w.window.Present()
	}
}

// Hide unmaps the window but keeps its widgets for reuse.
func (w *Window) Hide() {
	if !w.closed {
		w.window.SetVisible(false)
	}
}

// Close destroys the window.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.listeners = nil
	w.window.Destroy()
}

// OnLoaded runs fn on the next main loop turn; widgets are built
// synchronously by CreateWindow.
func (w *Window) OnLoaded(fn func()) {
	w.host.sched.Post(fn)
}

// Render fills the widgets with c. Images are file paths when they contain
// a slash and icon theme names otherwise.
func (w *Window) Render(c host.Content) {
	if w.title != nil {
		w.title.SetText(c.Title)
	}
	if w.message != nil {
		w.message.SetText(c.Body)
		w.message.SetVisible(c.Body != "")
	}
	setImage(w.appIcon, c.AppIcon)
	setImage(w.image, c.Icon)

	if c.HasLink {
		w.container.AddCSSClass(theme.ClassClickable)
	} else {
		w.container.RemoveCSSClass(theme.ClassClickable)
	}
}

func setImage(img *gtk.Image, src string) {
	if img == nil {
		return
	}
	switch {
	case src == "":
		img.Clear()
		img.SetVisible(false)
		return
	case strings.Contains(src, "/"):
		img.SetFromFile(src)
	default:
		img.SetFromIconName(src)
	}
	img.SetVisible(true)
}

// ApplyStyle installs css for every window of the host.
func (w *Window) ApplyStyle(css string) {
	w.host.applyStyle(css)
}

// Listen registers l until the returned function is called.
func (w *Window) Listen(l host.Listener) func() {
	if w.listeners == nil {
		w.listeners = make(map[int]host.Listener)
	}
	key := w.nextL
	w.nextL++
	w.listeners[key] = l
	return func() { delete(w.listeners, key) }
}

func (w *Window) snapshotListeners() []host.Listener {
	out := make([]host.Listener, 0, len(w.listeners))
	for i := 0; i < w.nextL; i++ {
		if l, ok := w.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}
