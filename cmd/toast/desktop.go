package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/toaststack/internal/audio"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/host/gtkhost"
	"github.com/jmylchreest/toaststack/internal/layout"
	"github.com/jmylchreest/toaststack/internal/stack"
)

const appID = "io.github.jmylchreest.toaststack"

// feedFunc submits notifications to the stack. It runs on its own goroutine
// and returns once there is no more input.
type feedFunc func(ctx context.Context, c *stack.Coordinator) error

// desktop runs the stack on GTK windows until the input is exhausted and
// the last notification has closed.
type desktop struct {
	app     *adw.Application
	sched   *gtkhost.Dispatcher
	stack   *stack.Coordinator
	sound   *audio.Manager
	watcher *config.Watcher

	running   atomic.Bool
	inputDone atomic.Bool
	held      bool

	errMu sync.Mutex
	err   error
}

func runDesktop(ctx context.Context, cfg *config.Config, watch bool, feed feedFunc) error {
	// Several toast processes may be showing notifications at once.
	d := &desktop{app: adw.NewApplication(appID, gio.ApplicationNonUnique)}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", "reason", ctx.Err())
		glib.IdleAdd(d.quit)
	}()

	d.app.ConnectActivate(func() {
		if d.running.Swap(true) {
			logger.Warn("application already running")
			return
		}
		if err := d.start(ctx, cfg, watch, feed); err != nil {
			d.setErr(err)
			d.quit()
		}
	})

	if code := d.app.Run([]string{os.Args[0]}); code != 0 {
		d.setErr(fmt.Errorf("application exited with status %d", code))
	}
	return d.getErr()
}

func (d *desktop) start(ctx context.Context, cfg *config.Config, watch bool, feed feedFunc) error {
	d.sched = gtkhost.NewDispatcher(logger)
	h := gtkhost.New(&d.app.Application, d.sched, layout.NewLoader(config.TemplatesDir()), logger)
	d.sound = audio.NewManager(cfg, logger)

	d.stack = stack.New(d.sched, h, cfg,
		stack.WithLogger(logger),
		stack.WithSound(d.sound),
		stack.WithIdleHandler(d.maybeQuit),
	)
	// We are on the GTK thread, which is the stack's scheduler.
	if err := d.stack.Init(); err != nil {
		return fmt.Errorf("failed to start notification stack: %w", err)
	}
	d.app.Hold()
	d.held = true

	if watch {
		d.startWatcher()
	}

	go func() {
		if err := feed(ctx, d.stack); err != nil && !errors.Is(err, context.Canceled) {
			d.setErr(err)
		}
		d.inputDone.Store(true)
		d.maybeQuit()
	}()
	return nil
}

func (d *desktop) startWatcher() {
	w, err := config.NewWatcher(configPath(),
		func(c *config.Config) {
			if err := d.stack.SetConfig(c.Patch()); err != nil {
				logger.Warn("ignoring config change", "error", err)
				return
			}
			logger.Info("config reloaded")
		},
		func(err error) { logger.Warn("config file is invalid", "error", err) },
		logger,
	)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
		return
	}
	if err := w.Start(); err != nil {
		logger.Debug("config hot reload disabled", "error", err)
		return
	}
	d.watcher = w
}

// maybeQuit exits once the input is done and the stack has drained.
func (d *desktop) maybeQuit() {
	if !d.inputDone.Load() || d.stack == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		snap, err := d.stack.Snapshot(ctx)
		if err != nil || snap.Len() > 0 || snap.Busy {
			return
		}
		d.sched.Post(d.quit)
	}()
}

// quit tears everything down. It runs on the GTK thread.
func (d *desktop) quit() {
	if !d.running.Swap(false) {
		d.app.Quit()
		return
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			logger.Warn("error stopping config watcher", "error", err)
		}
	}
	if d.sound != nil {
		d.sound.Close()
	}
	if d.held {
		d.held = false
		d.app.Release()
	}
	if d.stack == nil {
		d.app.Quit()
		return
	}
	// Quit after the stack has reported every close.
	d.stack.Stop()
	d.sched.Post(d.app.Quit)
}

func (d *desktop) setErr(err error) {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	if d.err == nil {
		d.err = err
	}
}

func (d *desktop) getErr() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}
