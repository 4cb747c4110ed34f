package loop

import (
	"sort"
	"time"
)

// Virtual is a deterministic Scheduler driven by a manual clock.
// Nothing runs until Drain or Advance is called, which makes it suitable
// for tests of timer and animation ordering.
type Virtual struct {
	now     time.Duration
	seq     uint64
	posted  []func()
	timers  []*virtualTimer
	running bool
}

type virtualTimer struct {
	v       *Virtual
	at      time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer.
func (t *virtualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewVirtual creates a Virtual scheduler at time zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// Post queues fn for the next Drain.
func (v *Virtual) Post(fn func()) {
	v.posted = append(v.posted, fn)
}

// AfterFunc schedules fn at Now()+d. A zero or negative d fires on the
// next Drain.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &virtualTimer{v: v, at: v.now + d, seq: v.seq, fn: fn}
	v.timers = append(v.timers, t)
	return t
}

// Now returns the elapsed virtual time.
func (v *Virtual) Now() time.Duration {
	return v.now
}

// Drain runs posted closures and due timers until nothing is runnable at
// the current time. It reports how many closures ran.
func (v *Virtual) Drain() int {
	if v.running {
		return 0
	}
	v.running = true
	defer func() { v.running = false }()

	ran := 0
	for {
		if len(v.posted) > 0 {
			fn := v.posted[0]
			v.posted = v.posted[1:]
			fn()
			ran++
			continue
		}
		t := v.nextDue(v.now)
		if t == nil {
			return ran
		}
		t.fired = true
		t.fn()
		ran++
	}
}

// Advance moves the clock forward by d, firing timers in due order.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now + d
	v.Drain()
	for {
		t := v.nextDue(target)
		if t == nil {
			break
		}
		if t.at > v.now {
			v.now = t.at
		}
		t.fired = true
		t.fn()
		v.Drain()
	}
	v.now = target
	v.Drain()
}

// RunFor advances the clock in steps of tick until d has elapsed.
func (v *Virtual) RunFor(d, tick time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += tick {
		v.Advance(tick)
	}
}

// Pending reports the number of live timers.
func (v *Virtual) Pending() int {
	n := 0
	for _, t := range v.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// nextDue pops the earliest live timer due at or before limit.
func (v *Virtual) nextDue(limit time.Duration) *virtualTimer {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	v.timers = live
	if len(live) == 0 {
		return nil
	}

	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at == live[j].at {
			return live[i].seq < live[j].seq
		}
		return live[i].at < live[j].at
	})
	if live[0].at > limit {
		return nil
	}
	t := live[0]
	v.timers = live[1:]
	return t
}
