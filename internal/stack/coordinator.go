// Package stack coordinates the notification stack: it assigns slots, queues
// notifications that do not fit, runs the show and close transitions through
// the animation queue and collapses the stack when a slot frees up.
//
// All state is owned by the scheduler goroutine. Exported methods may be
// called from any goroutine; they post their work to the scheduler.
package stack

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/layout"
	"github.com/jmylchreest/toaststack/internal/loop"
	"github.com/jmylchreest/toaststack/internal/notification"
	"github.com/jmylchreest/toaststack/internal/pool"
	"github.com/jmylchreest/toaststack/internal/shell"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// Sounder plays the sound of a notification that became visible.
type Sounder interface {
	Play(sound string)
	Configure(cfg *config.Config)
}

// Coordinator owns the notification stack.
type Coordinator struct {
	sched  loop.Scheduler
	host   host.Host
	logger *slog.Logger
	strict bool
	sound  Sounder
	opener shell.Opener
	onIdle func()

	appPath string
	nextID  atomic.Int64

	// Latest accepted configuration, readable from any goroutine.
	cfgMu sync.RWMutex
	cfg   *config.Config

	// Scheduler-owned state.
	cur        *config.Config
	geo        geometry.Geometry
	pool       *pool.Pool
	queue      *animation.Queue
	byID       map[int64]*notification.Notification
	pending    *list.List // *notification.Notification, oldest first
	pendingIdx map[int64]*list.Element
	promoting  int    // Show tasks submitted that hold no window yet
	epoch      uint64 // Bumped by CloseAll so stale callbacks bail out
	started    bool
	stopped    bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithStrict makes invariant violations, and panics inside stack tasks,
// crash instead of only being logged.
func WithStrict(strict bool) Option {
	return func(c *Coordinator) { c.strict = strict }
}

// WithSound plays notification sounds through s.
func WithSound(s Sounder) Option {
	return func(c *Coordinator) { c.sound = s }
}

// WithOpener opens notification links through o.
func WithOpener(o shell.Opener) Option {
	return func(c *Coordinator) { c.opener = o }
}

// WithIdleHandler registers fn to run on the scheduler whenever the last
// notification has closed.
func WithIdleHandler(fn func()) Option {
	return func(c *Coordinator) { c.onIdle = fn }
}

// New creates a coordinator. Call Init on the scheduler goroutine (or Start
// from anywhere) before notifications are shown.
func New(sched loop.Scheduler, h host.Host, cfg *config.Config, opts ...Option) *Coordinator {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &Coordinator{
		sched:      sched,
		host:       h,
		cfg:        cfg.Clone(),
		byID:       make(map[int64]*notification.Notification),
		pending:    list.New(),
		pendingIdx: make(map[int64]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.opener == nil {
		c.opener = shell.New(c.logger)
	}

	if dir, err := config.AppPath(); err == nil {
		c.appPath = dir
	} else {
		c.logger.Warn("failed to determine application path", "error", err)
	}

	c.queue = animation.NewQueue(c.logger)
	if c.strict {
		c.queue.OnError = func(err *animation.TaskError) {
			if err.Stack != "" {
				panic(err)
			}
		}
	}
	c.cur = c.cfg.Clone()
	c.pool = pool.New(h, c.cur.TemplatePath, windowOptions(c.cur), theme.Stylesheet(c.cur), c.logger)
	return c
}

// Init computes the stack geometry. It must run on the scheduler goroutine.
func (c *Coordinator) Init() error {
	if c.started {
		return nil
	}
	geo, err := c.computeGeometry(c.cur)
	if err != nil {
		return err
	}
	c.geo = geo
	c.started = true
	c.logger.Info("notification stack ready",
		"corner_x", geo.CornerX, "corner_y", geo.CornerY,
		"max_visible", geo.MaxVisible)
	c.promoteNextQueued()
	return nil
}

// Start posts Init to the scheduler. Failures are logged.
func (c *Coordinator) Start() {
	c.sched.Post(func() {
		if err := c.Init(); err != nil {
			c.logger.Error("failed to initialize notification stack", "error", err)
		}
	})
}

// Stop closes every notification and window. Notifications submitted
// afterwards are dropped.
func (c *Coordinator) Stop() {
	c.sched.Post(func() {
		c.closeAll()
		c.stopped = true
		c.logger.Info("notification stack stopped")
	})
}

// Notify submits a notification and returns its ID.
func (c *Coordinator) Notify(req notification.Request) int64 {
	id := c.nextID.Add(1)
	c.sched.Post(func() { c.notify(notification.New(id, req)) })
	return id
}

// Close closes the notification with the given ID. Unknown and already
// closed IDs are ignored.
func (c *Coordinator) Close(id int64) {
	c.sched.Post(func() {
		n, ok := c.byID[id]
		if !ok {
			c.logger.Debug("close for unknown notification", "id", id)
			return
		}
		c.close(n, notification.ReasonClosedByAPI)
	})
}

// CloseAll destroys every window and forgets every notification.
func (c *Coordinator) CloseAll() {
	c.sched.Post(c.closeAll)
}

// SetConfig merges p into the configuration. Keys p leaves unset keep their
// current value. The merged configuration is validated before it is
// accepted; geometry and windows are then updated on the scheduler.
func (c *Coordinator) SetConfig(p config.Patch) error {
	c.cfgMu.Lock()
	merged := c.cfg.Apply(p)
	if err := merged.Validate(); err != nil {
		c.cfgMu.Unlock()
		return fmt.Errorf("rejected configuration: %w", err)
	}
	c.cfg = merged
	c.cfgMu.Unlock()

	applied := merged.Clone()
	c.sched.Post(func() { c.applyConfig(applied) })
	return nil
}

// Config returns a copy of the current configuration.
func (c *Coordinator) Config() *config.Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Clone()
}

// AppPath returns the directory of the running executable.
func (c *Coordinator) AppPath() string {
	return c.appPath
}

// TemplatePath returns the configured layout template path. Empty means the
// built-in layout.
func (c *Coordinator) TemplatePath() string {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.TemplatePath
}

// SetTemplatePath switches the layout template used for new windows.
func (c *Coordinator) SetTemplatePath(path string) error {
	if path != "" {
		if _, err := layout.NewLoader(config.TemplatesDir()).Resolve(path); err != nil {
			return err
		}
	}
	return c.SetConfig(config.Patch{TemplatePath: &path})
}

// Snapshot returns the stack state as seen by the scheduler.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := loop.Await(ctx, c.sched, func() { s = c.snapshot() })
	return s, err
}

func (c *Coordinator) computeGeometry(cfg *config.Config) (geometry.Geometry, error) {
	screens, err := c.host.Screens()
	if err != nil {
		return geometry.Geometry{}, fmt.Errorf("failed to query screens: %w", err)
	}
	screen, ok, err := geometry.Select(screens, cfg.Screen)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if !ok {
		c.logger.Warn("configured screen not found, using the first one",
			"screen", cfg.Screen, "available", len(screens))
	}

	geo, err := geometry.Compute(screen, cfg.Width, cfg.Height, cfg.Padding)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if geo.MaxVisible == 0 {
		c.logger.Warn("work area too small for a single notification",
			"work_area_height", screen.WorkArea.Height, "slot_height", geo.SlotHeight)
	}
	return geo, nil
}

// applyConfig switches the scheduler to cfg.
func (c *Coordinator) applyConfig(cfg *config.Config) {
	c.cur = cfg
	c.pool.Reconfigure(cfg.TemplatePath, windowOptions(cfg), theme.Stylesheet(cfg))
	if c.sound != nil {
		c.sound.Configure(cfg)
	}

	if c.started {
		geo, err := c.computeGeometry(cfg)
		if err != nil {
			c.logger.Error("keeping previous geometry", "error", err)
		} else if geo != c.geo {
			c.geo = geo
			c.relayout()
		}
	}

	c.logger.Debug("configuration applied",
		"max_visible", c.geo.MaxVisible, "display_time", cfg.DisplayTime.Duration())
	c.promoteNextQueued()
}

// invariant reports a broken internal invariant.
func (c *Coordinator) invariant(msg string, args ...any) {
	c.logger.Error("invariant violated: "+msg, args...)
	if c.strict {
		panic(fmt.Sprintf("invariant violated: %s %v", msg, args))
	}
}

func windowOptions(cfg *config.Config) host.Options {
	return host.Options{
		AlwaysOnTop:            cfg.Window.AlwaysOnTop,
		VisibleOnAllWorkspaces: cfg.Window.VisibleOnAllWorkspaces,
		ShowInTaskbar:          cfg.Window.ShowInTaskbar,
		Frame:                  cfg.Window.Frame,
		Transparent:            cfg.Window.Transparent,
		Width:                  cfg.Width,
		Height:                 cfg.Height,
	}
}
