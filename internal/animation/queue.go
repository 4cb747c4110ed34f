// Package animation runs show, close and reposition work one task at a time
// and interpolates window slides between stack slots.
package animation

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/jmylchreest/toaststack/internal/loop"
)

// Task is a deferred unit of stack work. Run must call done exactly once,
// possibly later from a scheduler callback.
type Task struct {
	Name string
	Run  func(done func(error))
}

// TaskError wraps a failure inside a task. The queue logs it and moves on.
type TaskError struct {
	Task  string
	Cause error
	Stack string // Set when the task panicked
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("animation task %q failed: %v", e.Task, e.Cause)
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Queue is a single-flight, run-to-completion task runner. It is not safe
// for concurrent use; callers submit from the scheduler goroutine.
type Queue struct {
	logger  *slog.Logger
	backlog []Task
	running bool
	current string
	gen     uint64
	seq     uint64
	flight  *flight

	// OnError, if set, receives every task failure after it is logged.
	OnError func(*TaskError)
}

// NewQueue creates an idle queue.
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{logger: logger}
}

// Submit runs t now if the queue is idle, otherwise appends it to the backlog.
func (q *Queue) Submit(t Task) {
	if q.running {
		q.backlog = append(q.backlog, t)
		q.logger.Debug("task queued", "task", t.Name, "backlog", len(q.backlog))
		return
	}
	q.running = true
	q.run(t)
}

// Running reports whether a task is in flight.
func (q *Queue) Running() bool { return q.running }

// Current returns the name of the task in flight.
func (q *Queue) Current() string { return q.current }

// Len returns the number of tasks waiting behind the current one.
func (q *Queue) Len() int { return len(q.backlog) }

// Reset drops the backlog and forgets the task in flight; its late
// completion is ignored.
func (q *Queue) Reset() {
	q.backlog = nil
	q.running = false
	q.current = ""
	q.flight = nil
	q.gen++
}

// flight is one run of a task.
type flight struct {
	ticket    uint64
	name      string
	gen       uint64
	completed bool
}

// Ticket identifies the task in flight, zero when the queue is idle. Pass
// it to Recover from callbacks that continue the task later.
func (q *Queue) Ticket() uint64 {
	if q.flight == nil {
		return 0
	}
	return q.flight.ticket
}

// Recover must be deferred directly by a callback that continues the task
// identified by ticket. A panic fails that task and the queue moves on; a
// panic after the task completed is only logged.
func (q *Queue) Recover(ticket uint64) {
	r := recover()
	if r == nil {
		return
	}
	f := q.flight
	if f == nil || f.ticket != ticket || f.completed {
		q.logger.Error("panic in completed animation task", "panic", r)
		return
	}
	q.abort(f, r)
}

// Guard returns a scheduler whose callbacks are covered by Recover for the
// task in flight.
func (q *Queue) Guard(sched loop.Scheduler) loop.Scheduler {
	return &guarded{sched: sched, q: q, ticket: q.Ticket()}
}

type guarded struct {
	sched  loop.Scheduler
	q      *Queue
	ticket uint64
}

func (g *guarded) wrap(fn func()) func() {
	return func() {
		defer g.q.Recover(g.ticket)
		fn()
	}
}

func (g *guarded) Post(fn func()) { g.sched.Post(g.wrap(fn)) }

func (g *guarded) AfterFunc(d time.Duration, fn func()) loop.Timer {
	return g.sched.AfterFunc(d, g.wrap(fn))
}

func (q *Queue) run(t Task) {
	q.seq++
	f := &flight{ticket: q.seq, name: t.Name, gen: q.gen}
	q.flight = f
	q.current = t.Name

	done := func(err error) {
		if f.completed {
			q.logger.Warn("task signalled completion twice", "task", f.name)
			return
		}
		f.completed = true
		if err != nil {
			q.fail(&TaskError{Task: f.name, Cause: err})
		}
		if f.gen != q.gen {
			return
		}
		q.next()
	}

	func() {
		defer q.Recover(f.ticket)
		t.Run(done)
	}()
}

// abort fails f after a panic and starts the next task.
func (q *Queue) abort(f *flight, r any) {
	f.completed = true
	q.fail(&TaskError{
		Task:  f.name,
		Cause: fmt.Errorf("panic: %v", r),
		Stack: string(debug.Stack()),
	})
	if f.gen == q.gen {
		q.next()
	}
}

// next starts the head of the backlog or goes idle.
func (q *Queue) next() {
	if len(q.backlog) == 0 {
		q.running = false
		q.current = ""
		q.flight = nil
		return
	}
	t := q.backlog[0]
	q.backlog[0] = Task{}
	q.backlog = q.backlog[1:]
	q.run(t)
}

func (q *Queue) fail(err *TaskError) {
	q.logger.Warn("animation task failed", "task", err.Task, "error", err.Cause)
	if q.OnError != nil {
		q.OnError(err)
	}
}
