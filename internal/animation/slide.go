package animation

import (
	"math"
	"time"

	"github.com/jmylchreest/toaststack/internal/host"
	"github.com/jmylchreest/toaststack/internal/loop"
)

// Move describes one window sliding to a new vertical position.
type Move struct {
	Window host.Window
	X      int
	FromY  int
	ToY    int
}

// Slide moves w from fromY to toY in steps ticks spaced interval apart.
// Intermediate ticks move by a constant delta; the last tick lands exactly
// on toY. done runs on the scheduler after the final move.
func Slide(sched loop.Scheduler, w host.Window, x, fromY, toY, steps int, interval time.Duration, done func()) {
	if steps <= 1 || fromY == toY {
		sched.Post(func() {
			w.MoveTo(x, toY)
			done()
		})
		return
	}

	delta := float64(toY-fromY) / float64(steps)
	step := 1

	var tick func()
	tick = func() {
		if step >= steps {
			w.MoveTo(x, toY)
			done()
			return
		}
		w.MoveTo(x, fromY+int(math.Round(float64(step)*delta)))
		step++
		sched.AfterFunc(interval, tick)
	}
	sched.AfterFunc(interval, tick)
}

// SlideAll runs every move, either in lockstep (parallel) or one after
// another in slice order. done runs once every window reached its target.
func SlideAll(sched loop.Scheduler, moves []Move, parallel bool, steps int, interval time.Duration, done func()) {
	if len(moves) == 0 {
		sched.Post(done)
		return
	}

	if parallel {
		remaining := len(moves)
		for _, m := range moves {
			Slide(sched, m.Window, m.X, m.FromY, m.ToY, steps, interval, func() {
				remaining--
				if remaining == 0 {
					done()
				}
			})
		}
		return
	}

	var runFrom func(i int)
	runFrom = func(i int) {
		if i == len(moves) {
			done()
			return
		}
		m := moves[i]
		Slide(sched, m.Window, m.X, m.FromY, m.ToY, steps, interval, func() {
			runFrom(i + 1)
		})
	}
	runFrom(0)
}
