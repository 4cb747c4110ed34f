package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/geometry"
	"github.com/jmylchreest/toaststack/internal/host/headless"
	"github.com/jmylchreest/toaststack/internal/loop"
	"github.com/jmylchreest/toaststack/internal/notification"
	"github.com/jmylchreest/toaststack/internal/stack"
)

// ErrNothingVisible is returned by actions that need a visible notification.
var ErrNothingVisible = errors.New("no notification is visible")

// EventKind classifies an Event.
type EventKind string

const (
	EventShown   EventKind = "shown"
	EventClicked EventKind = "clicked"
	EventOpened  EventKind = "opened"
	EventClosed  EventKind = "closed"
)

// Event is one line of the preview's activity log.
type Event struct {
	At     time.Time
	ID     int64
	Kind   EventKind
	Detail string
}

// Session runs a notification stack on a headless host so its behaviour can
// be watched in a terminal.
type Session struct {
	Stack *stack.Coordinator
	Host  *headless.Host

	loop   *loop.Loop
	events chan Event
	logger *slog.Logger
}

// NewSession starts a stack on screen. Links are not opened; they show up
// as EventOpened instead.
func NewSession(ctx context.Context, cfg *config.Config, screen geometry.Screen, logger *slog.Logger, opts ...stack.Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	l := loop.New(logger)
	l.Start(ctx)

	s := &Session{
		Host:   headless.New(l, screen),
		loop:   l,
		events: make(chan Event, 256),
		logger: logger,
	}

	opts = append([]stack.Option{stack.WithLogger(logger), stack.WithOpener(s)}, opts...)
	s.Stack = stack.New(l, s.Host, cfg, opts...)
	s.Stack.Start()
	return s
}

// Events delivers the activity log.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Open records the link instead of launching a browser.
func (s *Session) Open(_ context.Context, link string) error {
	s.emit(Event{Kind: EventOpened, Detail: link})
	return nil
}

// Notify submits a notification whose callbacks feed the activity log.
func (s *Session) Notify(title, body, link string) int64 {
	return s.Stack.Notify(notification.Request{
		Title: title,
		Body:  body,
		Link:  link,
		OnShow: func(e notification.ShowEvent) {
			s.emit(Event{ID: e.ID, Kind: EventShown})
		},
		OnClick: func(e notification.ClickEvent) {
			s.emit(Event{ID: e.ID, Kind: EventClicked})
		},
		OnClose: func(e notification.CloseEvent) {
			s.emit(Event{ID: e.ID, Kind: EventClosed, Detail: string(e.Reason)})
		},
	})
}

// Click clicks the notification in the bottom slot.
func (s *Session) Click(ctx context.Context) error {
	snap, err := s.Stack.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Visible) == 0 {
		return ErrNothingVisible
	}

	bottom := snap.Visible[0]
	for _, w := range s.Host.Visible() {
		if x, y := w.Position(); x == bottom.X && y == bottom.Y {
			w.Click()
			return nil
		}
	}
	return fmt.Errorf("no window at slot 0 for notification %d", bottom.ID)
}

// CloseSlot closes the notification in the bottom slot, or in the top
// occupied slot when top is set.
func (s *Session) CloseSlot(ctx context.Context, top bool) error {
	snap, err := s.Stack.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Visible) == 0 {
		return ErrNothingVisible
	}
	e := snap.Visible[0]
	if top {
		e = snap.Visible[len(snap.Visible)-1]
	}
	s.Stack.Close(e.ID)
	return nil
}

// Close stops the stack and its loop.
func (s *Session) Close() {
	s.Stack.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Await(ctx, s.loop, func() {}); err != nil {
		s.logger.Warn("stack did not stop in time", "error", err)
	}
	s.loop.Stop()
}

func (s *Session) emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case s.events <- e:
	default:
		s.logger.Debug("preview event dropped", "id", e.ID, "kind", e.Kind)
	}
}
