// Package tui is a terminal viewer for an event endpoint.
//
// The viewer runs its own poller and feed, so it can watch any hookwatch
// instance (or anything serving the same /api/events payload) without a
// browser. It counts as permanently visible: polling runs for as long as
// the viewer is open.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jpalmerr/hookwatch/internal/event"
	"github.com/jpalmerr/hookwatch/internal/feed"
	"github.com/jpalmerr/hookwatch/internal/poller"
	"github.com/jpalmerr/hookwatch/internal/render"
)

var (
	colorBackground = tcell.NewRGBColor(13, 17, 23)
	colorPanel      = tcell.NewRGBColor(22, 27, 34)
	colorMuted      = tcell.NewRGBColor(139, 148, 158)
)

var actionColors = map[event.Action]tcell.Color{
	event.ActionPush:        tcell.ColorGreen,
	event.ActionPullRequest: tcell.ColorDodgerBlue,
	event.ActionMerge:       tcell.ColorMediumPurple,
}

// Viewer is a full-screen list of events fed by a poller.
type Viewer struct {
	app    *tview.Application
	header *tview.TextView
	table  *tview.Table
	footer *tview.TextView

	poller *poller.Poller
	feed   *feed.Feed
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	status string
	failed bool
	polled time.Time
}

// New builds a viewer around p. maxEvents caps the displayed list.
func New(p *poller.Poller, maxEvents int, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}

	v := &Viewer{
		app:    tview.NewApplication(),
		poller: p,
		feed:   feed.New(maxEvents),
		now:    time.Now,
		logger: logger,
		status: "Connecting...",
	}

	v.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	v.header.SetBackgroundColor(colorPanel)

	v.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(0, 0)
	v.table.SetBackgroundColor(colorBackground)

	v.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	v.footer.SetBackgroundColor(colorPanel)
	v.footer.SetText("[green]r[-] refresh  [green]q[-] quit")

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(v.table, 0, 1, true).
		AddItem(v.footer, 1, 0, false)

	v.app.SetRoot(layout, true).EnableMouse(false)
	v.app.SetInputCapture(v.handleKey)

	v.redraw()
	return v
}

// Run starts polling and blocks until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.poller.SetObserver(v)
	v.poller.Start(ctx)
	defer v.poller.Close()

	go func() {
		<-ctx.Done()
		v.app.Stop()
	}()

	if err := v.app.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

// OnEvents merges a successful poll into the list.
func (v *Viewer) OnEvents(events []event.Event) {
	diff := v.feed.Merge(events)

	v.mu.Lock()
	v.status = feed.StatusFor(diff)
	v.failed = false
	v.polled = v.now()
	v.mu.Unlock()

	v.logger.Debug("poll merged", "added", len(diff.Added), "updated", len(diff.Updated), "evicted", len(diff.Evicted))
	v.app.QueueUpdateDraw(v.redraw)
}

// OnError shows the retry status. The list keeps its last contents.
func (v *Viewer) OnError(err error) {
	v.mu.Lock()
	v.status = feed.StatusError
	v.failed = true
	v.mu.Unlock()

	v.logger.Debug("poll failed", "error", err)
	v.app.QueueUpdateDraw(v.redraw)
}

func (v *Viewer) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Rune() {
	case 'r':
		v.poller.ForcePoll()
		return nil
	case 'q':
		v.app.Stop()
		return nil
	}
	return ev
}

// redraw rebuilds the header and table. It must run on the UI goroutine.
func (v *Viewer) redraw() {
	v.mu.Lock()
	status, failed, polled := v.status, v.failed, v.polled
	v.mu.Unlock()

	v.header.SetText(headerText(v.poller.URL(), status, failed, polled))

	now := v.now()
	events := v.feed.Events()
	v.table.Clear()

	if len(events) == 0 {
		v.table.SetCell(0, 0, tview.NewTableCell(render.EmptyStateTitle).
			SetTextColor(colorMuted).
			SetExpansion(1))
		return
	}

	for i, e := range events {
		for col, text := range Row(e, now) {
			cell := tview.NewTableCell(tview.Escape(text))
			switch col {
			case 0:
				cell.SetTextColor(actionColor(e.Action))
			case 1:
				cell.SetExpansion(1)
			default:
				cell.SetTextColor(colorMuted).SetAlign(tview.AlignRight)
			}
			v.table.SetCell(i, col, cell)
		}
	}
}

// Row returns the label, sentence and relative time for one event.
func Row(e event.Event, now time.Time) []string {
	return []string{
		render.Label(e.Action),
		render.PlainMessage(e),
		render.RelativeTime(e.Timestamp, now),
	}
}

func headerText(url, status string, failed bool, polled time.Time) string {
	color := "green"
	if failed {
		color = "red"
	}
	text := fmt.Sprintf(" [::b]hookwatch[::-]  %s  [%s]%s[-]", tview.Escape(url), color, tview.Escape(status))
	if !polled.IsZero() {
		text += fmt.Sprintf("  [gray]last poll %s[-]", polled.Format("15:04:05"))
	}
	return text
}

func actionColor(a event.Action) tcell.Color {
	if c, ok := actionColors[a.Normalize()]; ok {
		return c
	}
	return tcell.ColorYellow
}
