package hookwatch

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/jpalmerr/hookwatch/internal/feed"
)

// feedObserver receives poll results, merges them into the displayed set
// and tells viewers and callbacks what happened.
type feedObserver struct {
	feed            *feed.Feed
	hub             *feed.Broadcaster
	logger          *slog.Logger
	eventsCallbacks []func([]Event)
	errorCallbacks  []func(error)
}

func (o *feedObserver) OnEvents(events []Event) {
	diff := o.feed.Merge(events)
	if !diff.Empty() {
		o.hub.Publish(feed.Update{Kind: feed.KindEvents, Diff: &diff})
		o.logger.Debug("feed updated",
			"added", len(diff.Added),
			"updated", len(diff.Updated),
			"evicted", len(diff.Evicted),
			"displayed", o.feed.Len(),
		)
	}
	o.hub.Publish(feed.Update{Kind: feed.KindStatus, Message: feed.StatusFor(diff)})

	// callbacks fire after the feed is updated
	for _, cb := range o.eventsCallbacks {
		snapshot := cloneEvents(events)
		invokeCallbackSafe("events callback", func() { cb(snapshot) }, o.logger)
	}
}

func (o *feedObserver) OnError(err error) {
	o.hub.Publish(feed.Update{Kind: feed.KindError, Message: feed.StatusError})

	for _, cb := range o.errorCallbacks {
		invokeCallbackSafe("error callback", func() { cb(err) }, o.logger)
	}
}

// cloneEvents gives each callback its own copy so one cannot mutate what
// another sees.
func cloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

// invokeCallbackSafe calls fn with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(name string, fn func(), logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(name+" panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
