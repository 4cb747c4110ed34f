package stack

import (
	"time"

	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/notification"
)

// Entry describes one notification in a Snapshot.
type Entry struct {
	ID       int64
	Title    string
	Body     string
	State    notification.State
	Slot     int // -1 unless visible
	X, Y     int
	QueuedAt time.Time
	ShownAt  time.Time
}

// Snapshot is a point-in-time view of the stack.
type Snapshot struct {
	Geometry  geometry.Geometry
	Visible   []Entry // Slot order, nearest the corner first
	Pending   []Entry // Oldest first
	Promoting int
	Idle      int // Hidden windows waiting for reuse
	Busy      bool
	Backlog   int
	Task      string
}

// Len returns the number of notifications not yet closed.
func (s Snapshot) Len() int {
	return len(s.Visible) + len(s.Pending) + s.Promoting
}

func (c *Coordinator) snapshot() Snapshot {
	s := Snapshot{
		Geometry:  c.geo,
		Promoting: c.promoting,
		Idle:      c.pool.InactiveCount(),
		Busy:      c.queue.Running(),
		Backlog:   c.queue.Len(),
		Task:      c.queue.Current(),
	}

	slots := make(map[host.Window]int, c.pool.ActiveCount())
	for i, w := range c.pool.Active() {
		slots[w] = i
	}
	s.Visible = make([]Entry, c.pool.ActiveCount())
	for i := range s.Visible {
		s.Visible[i].Slot = -1
	}
	for _, n := range c.byID {
		w := n.Window()
		if w == nil {
			continue
		}
		slot, ok := slots[w]
		if !ok {
			continue
		}
		e := entry(n)
		e.Slot = slot
		e.X, e.Y = w.Position()
		s.Visible[slot] = e
	}
	s.Visible = compact(s.Visible)

	for e := c.pending.Front(); e != nil; e = e.Next() {
		s.Pending = append(s.Pending, entry(e.Value.(*notification.Notification)))
	}
	return s
}

func entry(n *notification.Notification) Entry {
	return Entry{
		ID:       n.ID,
		Title:    n.Request.Title,
		Body:     n.Request.Body,
		State:    n.State(),
		Slot:     -1,
		QueuedAt: n.QueuedAt(),
		ShownAt:  n.ShownAt(),
	}
}

func compact(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Slot >= 0 {
			out = append(out, e)
		}
	}
	return out
}
