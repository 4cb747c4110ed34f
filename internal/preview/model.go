// Package preview provides a BubbleTea view of a notification stack running
// on the headless host: every slot, the pending queue and the callbacks as
// they fire.
package preview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toaststack/internal/stack"
)

const (
	refreshInterval = 100 * time.Millisecond
	maxLogLines     = 12
	maxDrawnSlots   = 8
	boxWidth        = 38
)

var sampleBodies = []string{
	"Build finished in 42s",
	"3 new messages",
	"Backup completed",
	"Battery at 15%",
	"Download complete",
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Width(boxWidth).
			Padding(0, 1)
	freeSlotStyle = slotStyle.
			BorderStyle(lipgloss.HiddenBorder()).
			Foreground(lipgloss.Color("8"))
)

// Model is the preview TUI model.
type Model struct {
	ctx     context.Context
	session *Session
	keys    KeyMap
	help    help.Model

	snap stack.Snapshot
	log  []Event
	seq  int

	statusMsg string
	statusErr bool
	width     int
	height    int
}

type snapshotMsg struct {
	snap stack.Snapshot
	err  error
}

type eventMsg Event

type tickMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

// New creates a preview model for s.
func New(ctx context.Context, s *Session) Model {
	return Model{
		ctx:     ctx,
		session: s,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init starts polling the stack and listening for callbacks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh, m.waitForEvent)
}

func (m Model) refresh() tea.Msg {
	snap, err := m.session.Stack.Snapshot(m.ctx)
	return snapshotMsg{snap: snap, err: err}
}

func (m Model) waitForEvent() tea.Msg {
	select {
	case e := <-m.session.Events():
		return eventMsg(e)
	case <-m.ctx.Done():
		return nil
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.statusMsg = "Snapshot failed: " + msg.err.Error()
			m.statusErr = true
		} else {
			m.snap = msg.snap
		}
		return m, tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })

	case tickMsg:
		return m, m.refresh

	case eventMsg:
		m.log = append(m.log, Event(msg))
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, m.waitForEvent

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.New):
		m.notify("")

	case key.Matches(msg, m.keys.NewLink):
		m.notify("https://example.com/notifications")

	case key.Matches(msg, m.keys.Burst):
		for range 5 {
			m.notify("")
		}

	case key.Matches(msg, m.keys.Click):
		return m, m.slotAction(m.session.Click)

	case key.Matches(msg, m.keys.Close):
		return m, m.slotAction(func(ctx context.Context) error { return m.session.CloseSlot(ctx, false) })

	case key.Matches(msg, m.keys.CloseTop):
		return m, m.slotAction(func(ctx context.Context) error { return m.session.CloseSlot(ctx, true) })

	case key.Matches(msg, m.keys.CloseAll):
		m.session.Stack.CloseAll()
		m.statusMsg, m.statusErr = "Closed everything", false
	}
	return m, nil
}

func (m *Model) notify(link string) {
	m.seq++
	title := fmt.Sprintf("Notification %d", m.seq)
	id := m.session.Notify(title, sampleBodies[(m.seq-1)%len(sampleBodies)], link)
	m.statusMsg, m.statusErr = fmt.Sprintf("Submitted #%d", id), false
}

func (m Model) slotAction(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return statusMsg{text: err.Error(), isErr: true}
		}
		return statusMsg{text: "OK"}
	}
}

// View renders the preview.
func (m Model) View() string {
	var b strings.Builder

	geo := m.snap.Geometry
	b.WriteString(headerStyle.Render("toaststack preview"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d slots of %dx%d, corner %d,%d",
		geo.MaxVisible, geo.SlotWidth, geo.SlotHeight, geo.CornerX, geo.CornerY)))
	b.WriteString("\n")

	columns := lipgloss.JoinHorizontal(lipgloss.Top, m.viewSlots(), "  ", m.viewSide())
	b.WriteString(columns)
	b.WriteString("\n")

	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errStyle
		}
		b.WriteString(style.Render(m.statusMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// viewSlots draws the stack top slot first, as it appears on screen.
func (m Model) viewSlots() string {
	drawn := min(m.snap.Geometry.MaxVisible, maxDrawnSlots)
	drawn = max(drawn, len(m.snap.Visible))

	boxes := make([]string, 0, drawn)
	for i := drawn - 1; i >= 0; i-- {
		if i >= len(m.snap.Visible) {
			boxes = append(boxes, freeSlotStyle.Render(fmt.Sprintf("slot %d free", i)))
			continue
		}
		e := m.snap.Visible[i]
		body := fmt.Sprintf("#%d %s\n%s\n%s", e.ID, e.Title, e.Body,
			dimStyle.Render(fmt.Sprintf("slot %d at %d,%d, shown %s", i, e.X, e.Y, humanize.Time(e.ShownAt))))
		boxes = append(boxes, slotStyle.Render(body))
	}
	if m.snap.Geometry.MaxVisible > drawn {
		boxes = append([]string{dimStyle.Render(fmt.Sprintf("… %d more slots", m.snap.Geometry.MaxVisible-drawn))}, boxes...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func (m Model) viewSide() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Pending (%d)", len(m.snap.Pending))))
	b.WriteString("\n")
	for _, e := range m.snap.Pending {
		fmt.Fprintf(&b, "#%d %s %s\n", e.ID, e.Title, dimStyle.Render("queued "+humanize.Time(e.QueuedAt)))
	}

	b.WriteString(sectionStyle.Render("Queue"))
	b.WriteString("\n")
	if m.snap.Busy {
		fmt.Fprintf(&b, "running %s, %d waiting\n", m.snap.Task, m.snap.Backlog)
	} else {
		b.WriteString(dimStyle.Render("idle"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d hidden windows, %d promoting\n", m.snap.Idle, m.snap.Promoting)

	b.WriteString(sectionStyle.Render("Events"))
	b.WriteString("\n")
	for _, e := range m.log {
		line := fmt.Sprintf("%s #%d %s", e.At.Format("15:04:05.000"), e.ID, e.Kind)
		if e.Kind == EventOpened {
			line = fmt.Sprintf("%s %s", e.At.Format("15:04:05.000"), e.Kind)
		}
		if e.Detail != "" {
			line += " " + dimStyle.Render(e.Detail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
