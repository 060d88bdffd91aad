package feed

import (
	"sync"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// DefaultCap is the number of events kept when no cap is configured.
const DefaultCap = 50

// Diff describes how a [Feed.Merge] call changed the displayed set.
type Diff struct {
	// Added holds newly inserted events, newest first.
	Added []event.Event `json:"added"`

	// Updated holds events that were already displayed but whose fields
	// changed. They keep their position.
	Updated []event.Event `json:"updated"`

	// Evicted holds the request IDs trimmed to respect the cap, oldest first.
	Evicted []string `json:"evicted"`
}

// Empty reports whether the merge changed nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Evicted) == 0
}

// Feed is the ordered set of displayed events.
//
// Entries are keyed by request ID and ordered by insertion: the first
// insertion is the oldest entry and the first to be evicted once the set
// grows past its cap. Feed is safe for concurrent use.
type Feed struct {
	mu    sync.RWMutex
	cap   int
	order []string // insertion order, oldest first
	byID  map[string]event.Event
}

// New creates an empty Feed holding at most maxEvents entries. A
// non-positive maxEvents selects [DefaultCap].
func New(maxEvents int) *Feed {
	if maxEvents <= 0 {
		maxEvents = DefaultCap
	}
	return &Feed{
		cap:  maxEvents,
		byID: make(map[string]event.Event, maxEvents),
	}
}

// Merge folds a poll result into the feed.
//
// events must be newest first, which is the order served by /api/events.
// They are applied oldest to newest so that the newest event ends up as the
// most recent insertion. When a batch repeats a request ID, the newest
// occurrence wins. Events without a request ID cannot be deduplicated and
// are skipped.
func (f *Feed) Merge(events []event.Event) Diff {
	batch := uniqueNewestFirst(events)

	f.mu.Lock()
	defer f.mu.Unlock()

	var diff Diff
	var added []event.Event // oldest first

	for i := len(batch) - 1; i >= 0; i-- {
		ev := batch[i]

		if existing, ok := f.byID[ev.RequestID]; ok {
			if !existing.Equal(ev) {
				f.byID[ev.RequestID] = ev.Clone()
				diff.Updated = append(diff.Updated, ev.Clone())
			}
			continue
		}

		f.byID[ev.RequestID] = ev.Clone()
		f.order = append(f.order, ev.RequestID)
		added = append(added, ev.Clone())
	}

	// trim oldest insertions first
	if excess := len(f.order) - f.cap; excess > 0 {
		for _, id := range f.order[:excess] {
			delete(f.byID, id)
			diff.Evicted = append(diff.Evicted, id)
		}
		f.order = append([]string(nil), f.order[excess:]...)

		// an event can be added or updated and evicted in the same pass
		for _, id := range diff.Evicted {
			added = removeID(added, id)
			diff.Updated = removeID(diff.Updated, id)
		}
	}

	for i := len(added) - 1; i >= 0; i-- {
		diff.Added = append(diff.Added, added[i])
	}

	return diff
}

// Events returns a snapshot of the displayed events, newest first.
func (f *Feed) Events() []event.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]event.Event, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.byID[f.order[i]].Clone())
	}
	return out
}

// Len returns the number of displayed events.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// Cap returns the maximum number of displayed events.
func (f *Feed) Cap() int {
	return f.cap
}

// Contains reports whether an event with the given request ID is displayed.
func (f *Feed) Contains(requestID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.byID[requestID]
	return ok
}

// Reset empties the feed.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = nil
	f.byID = make(map[string]event.Event, f.cap)
}

// uniqueNewestFirst drops events without a request ID and keeps only the
// first (newest) occurrence of each request ID, preserving order.
func uniqueNewestFirst(events []event.Event) []event.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if ev.RequestID == "" {
			continue
		}
		if _, dup := seen[ev.RequestID]; dup {
			continue
		}
		seen[ev.RequestID] = struct{}{}
		out = append(out, ev)
	}
	return out
}

func removeID(events []event.Event, id string) []event.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.RequestID != id {
			out = append(out, ev)
		}
	}
	return out
}
