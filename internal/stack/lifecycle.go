package stack

import (
	"container/list"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/notification"
)

// linkTimeout bounds a single attempt to open a notification link.
const linkTimeout = 10 * time.Second

// notify accepts n into the stack: it gets a slot right away when one is
// free and nobody is waiting, otherwise it joins the pending queue.
func (c *Coordinator) notify(n *notification.Notification) {
	if c.stopped {
		c.logger.Debug("stack stopped, dropping notification", "id", n.ID)
		return
	}
	c.byID[n.ID] = n

	if c.pending.Len() == 0 && c.hasFreeSlot() {
		c.promoting++
		c.submitShow(n)
		return
	}

	c.pendingIdx[n.ID] = c.pending.PushBack(n)
	c.logger.Debug("notification queued", "id", n.ID, "pending", c.pending.Len())
}

// hasFreeSlot reports whether a slot is neither occupied nor promised to a
// show task that is still waiting to run.
func (c *Coordinator) hasFreeSlot() bool {
	return c.pool.ActiveCount()+c.promoting < c.geo.MaxVisible
}

// promoteNextQueued hands free slots to the oldest pending notifications.
func (c *Coordinator) promoteNextQueued() {
	if c.stopped {
		return
	}
	for c.pending.Len() > 0 && c.hasFreeSlot() {
		n := c.pending.Remove(c.pending.Front()).(*notification.Notification)
		delete(c.pendingIdx, n.ID)
		c.promoting++
		c.logger.Debug("promoting queued notification", "id", n.ID, "pending", c.pending.Len())
		c.submitShow(n)
	}
}

func (c *Coordinator) submitShow(n *notification.Notification) {
	epoch := c.epoch
	c.queue.Submit(animation.Task{
		Name: "show",
		Run: func(done func(error)) {
			if epoch != c.epoch {
				done(nil)
				return
			}
			c.show(n, epoch, done)
		},
	})
}

// show binds n to a window and makes it visible in the next free slot.
func (c *Coordinator) show(n *notification.Notification, epoch uint64, done func(error)) {
	if n.Closed() {
		c.promoting--
		c.finishUnshown(n)
		c.promoteNextQueued()
		c.checkIdle()
		done(nil)
		return
	}

	ticket := c.queue.Ticket()
	c.pool.Acquire(func(w host.Window, err error) {
		// New windows arrive from the host's load callback, after Run returned.
		defer c.queue.Recover(ticket)
		if epoch != c.epoch {
			done(nil)
			return
		}
		c.promoting--

		if err != nil {
			c.logger.Error("failed to show notification", "id", n.ID, "error", err)
			c.forget(n)
			_ = n.Finish()
			c.promoteNextQueued()
			c.checkIdle()
			done(err)
			return
		}

		if n.Closed() {
			// Closed while its window was loading.
			if _, rerr := c.pool.Release(w); rerr != nil {
				c.invariant("release of unused window failed", "window", w.ID(), "error", rerr)
			}
			c.finishUnshown(n)
			c.promoteNextQueued()
			c.checkIdle()
			done(nil)
			return
		}

		slot := c.pool.IndexOf(w)
		if slot != c.pool.ActiveCount()-1 {
			c.invariant("acquired window is not on top of the stack", "window", w.ID(), "slot", slot)
		}

		w.Render(n.Content(c.cur.AppIcon))
		detach := w.Listen(host.Listener{
			OnClick:       func() { c.click(n) },
			OnCloseButton: func() { c.close(n, notification.ReasonClose) },
		})
		if err := n.Show(w, detach); err != nil {
			c.invariant("show transition failed", "id", n.ID, "error", err)
		}

		w.MoveTo(c.geo.SlotX(), c.geo.SlotY(slot))
		w.Show()
		n.StartTimer(c.sched, c.cur.DisplayTime.Duration(), func() {
			c.close(n, notification.ReasonTimeout)
		})

		c.logger.Debug("notification shown", "id", n.ID, "slot", slot, "window", w.ID())

		if c.sound != nil {
			c.sound.Play(n.Request.Sound)
		}
		if n.Request.OnShow != nil {
			c.callUser(n, "show", func() {
				n.Request.OnShow(notification.ShowEvent{ID: n.ID, Close: c.closer(n)})
			})
		}
		done(nil)
	})
}

// close requests that n goes away. Only the first request counts.
func (c *Coordinator) close(n *notification.Notification, reason notification.CloseReason) {
	if !n.RequestClose(reason) {
		c.logger.Debug("notification already closing", "id", n.ID, "reason", reason)
		return
	}

	switch n.State() {
	case notification.StateQueued:
		if elem, ok := c.pendingIdx[n.ID]; ok {
			c.pending.Remove(elem)
			delete(c.pendingIdx, n.ID)
			c.finishUnshown(n)
			c.checkIdle()
		}
		// Otherwise a show task is on its way and finishes n itself.

	case notification.StateShowing:
		if err := n.BeginClose(); err != nil {
			c.invariant("close transition failed", "id", n.ID, "error", err)
			return
		}
		epoch := c.epoch
		c.queue.Submit(animation.Task{
			Name: "close",
			Run: func(done func(error)) {
				if epoch != c.epoch {
					done(nil)
					return
				}
				c.finishClose(n, done)
			},
		})
	}
}

// finishClose runs as the close task: it reports the close, recycles the
// window and collapses the slots above the freed one.
func (c *Coordinator) finishClose(n *notification.Notification, done func(error)) {
	w := n.Window()
	c.reportClose(n)
	c.forget(n)
	if err := n.Finish(); err != nil {
		c.invariant("finish transition failed", "id", n.ID, "error", err)
	}

	freed, err := c.pool.Release(w)
	if err != nil {
		c.invariant("released window was not active", "id", n.ID, "error", err)
		done(err)
		return
	}
	w.Hide()
	c.logger.Debug("notification closed", "id", n.ID, "reason", n.Reason(), "slot", freed)

	c.promoteNextQueued()
	c.collapseFrom(freed, func() {
		c.checkIdle()
		done(nil)
	})
}

// collapseFrom slides every window at or above the freed slot down into
// its new slot. Their indices have already shifted by one.
func (c *Coordinator) collapseFrom(freed int, done func()) {
	active := c.pool.Active()
	if freed >= len(active) || freed < 0 {
		done()
		return
	}

	x := c.geo.SlotX()
	moves := make([]animation.Move, 0, len(active)-freed)
	for i := freed; i < len(active); i++ {
		_, y := active[i].Position()
		moves = append(moves, animation.Move{
			Window: active[i],
			X:      x,
			FromY:  y,
			ToY:    c.geo.SlotY(i),
		})
	}

	animation.SlideAll(c.queue.Guard(c.sched), moves, c.cur.AnimateInParallel,
		c.cur.AnimationSteps, c.cur.AnimationStep.Duration(), done)
}

// relayout snaps every visible window to its slot after a geometry change.
func (c *Coordinator) relayout() {
	epoch := c.epoch
	c.queue.Submit(animation.Task{
		Name: "relayout",
		Run: func(done func(error)) {
			if epoch != c.epoch {
				done(nil)
				return
			}
			for i, w := range c.pool.Active() {
				w.MoveTo(c.geo.SlotX(), c.geo.SlotY(i))
			}
			done(nil)
		},
	})
}

// closeAll tears the stack down. Every notification that has not reported
// its close yet does so now.
func (c *Coordinator) closeAll() {
	c.epoch++
	c.queue.Reset()

	ids := make([]int64, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		n := c.byID[id]
		n.RequestClose(notification.ReasonCloseAll)
		if n.State() == notification.StateShowing {
			_ = n.BeginClose()
		}
		if err := n.Finish(); err != nil && !errors.Is(err, notification.ErrAlreadyClosed) {
			c.invariant("finish transition failed", "id", id, "error", err)
		}
		c.reportClose(n)
	}

	c.pool.CloseAllAndReset()
	c.byID = make(map[int64]*notification.Notification)
	c.pending.Init()
	c.pendingIdx = make(map[int64]*list.Element)
	c.promoting = 0

	c.logger.Debug("closed all notifications", "count", len(ids))
	c.checkIdle()
}

// finishUnshown closes a notification that never got a window.
func (c *Coordinator) finishUnshown(n *notification.Notification) {
	c.forget(n)
	if err := n.Finish(); err != nil {
		c.invariant("finish transition failed", "id", n.ID, "error", err)
	}
	c.logger.Debug("notification closed before it was shown", "id", n.ID, "reason", n.Reason())
	c.reportClose(n)
}

func (c *Coordinator) forget(n *notification.Notification) {
	delete(c.byID, n.ID)
}

func (c *Coordinator) reportClose(n *notification.Notification) {
	if n.Request.OnClose != nil {
		c.callUser(n, "close", func() { n.Request.OnClose(n.CloseEvent()) })
	}
}

// click handles a click on a showing notification's container.
func (c *Coordinator) click(n *notification.Notification) {
	if n.State() != notification.StateShowing {
		return
	}
	if n.Request.OnClick != nil {
		c.callUser(n, "click", func() {
			n.Request.OnClick(notification.ClickEvent{ID: n.ID, Close: c.closer(n)})
		})
	}

	link := n.Request.Link
	if link == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), linkTimeout)
		defer cancel()
		if err := c.opener.Open(ctx, link); err != nil {
			c.logger.Warn("failed to open notification link", "id", n.ID, "url", link, "error", err)
		}
	}()
}

// callUser runs a callback supplied with n's request. A panic in it is
// logged and does not unwind the stack's bookkeeping.
func (c *Coordinator) callUser(n *notification.Notification, callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notification callback panicked",
				"id", n.ID, "callback", callback, "panic", r)
		}
	}()
	fn()
}

// closer returns a Closer for n that is safe to call from any goroutine.
func (c *Coordinator) closer(n *notification.Notification) notification.Closer {
	return func(reason notification.CloseReason) {
		if reason == "" {
			reason = notification.ReasonClosedByAPI
		}
		c.sched.Post(func() { c.close(n, reason) })
	}
}

func (c *Coordinator) checkIdle() {
	if c.onIdle != nil && len(c.byID) == 0 && c.queue.Len() == 0 {
		c.onIdle()
	}
}
