package feed

import (
	"sync"
	"time"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// subscriberBuffer is the channel buffer size handed to each subscriber.
const subscriberBuffer = 100

// UpdateKind identifies what an [Update] carries.
type UpdateKind string

const (
	// KindEvents is a merge result; Diff is set.
	KindEvents UpdateKind = "events"

	// KindError is a failed poll; Message describes the failure.
	KindError UpdateKind = "error"

	// KindStatus is an informational status line such as "Connected".
	KindStatus UpdateKind = "status"
)

// Update is one message pushed to viewers.
type Update struct {
	Kind    UpdateKind    `json:"kind"`
	Diff    *Diff         `json:"diff,omitempty"`
	Events  []event.Event `json:"events,omitempty"`
	Message string        `json:"message,omitempty"`
	At      time.Time     `json:"at"`
}

// Broadcaster fans out [Update] values to subscribers.
//
// Subscribers receive updates via buffered channels (buffer size 100).
// Sends are non-blocking; if a subscriber's buffer is full the update is
// dropped for that subscriber rather than stalling the poll loop.
//
// A viewer hook, when set, is called with the new subscriber count every
// time a subscriber joins or leaves. Hook calls are serialized and arrive in
// the order the count changed; the hook must not call back into the
// Broadcaster's Subscribe or Unsubscribe.
type Broadcaster struct {
	// hookMu is held from the count snapshot until the hook returns
	hookMu      sync.Mutex
	mu          sync.RWMutex
	subscribers map[chan Update]struct{}
	onViewers   func(count int)
}

// NewBroadcaster creates a Broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Update]struct{}),
	}
}

// OnViewersChanged registers fn to be told the subscriber count after every
// Subscribe and Unsubscribe. Passing nil removes the hook.
func (b *Broadcaster) OnViewersChanged(fn func(count int)) {
	b.mu.Lock()
	b.onViewers = fn
	b.mu.Unlock()
}

// Subscribe creates a new subscription.
//
// Caller must call [Broadcaster.Unsubscribe] when done to prevent leaks.
func (b *Broadcaster) Subscribe() <-chan Update {
	ch := make(chan Update, subscriberBuffer)

	b.hookMu.Lock()
	defer b.hookMu.Unlock()

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	count, hook := len(b.subscribers), b.onViewers
	b.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// multiple times or with an unknown channel.
func (b *Broadcaster) Unsubscribe(ch <-chan Update) {
	b.hookMu.Lock()
	defer b.hookMu.Unlock()

	b.mu.Lock()
	removed := false
	for subCh := range b.subscribers {
		if subCh == ch {
			delete(b.subscribers, subCh)
			close(subCh)
			removed = true
			break
		}
	}
	count, hook := len(b.subscribers), b.onViewers
	b.mu.Unlock()

	if removed && hook != nil {
		hook(count)
	}
}

// Publish sends u to every subscriber without blocking. A zero At is set to
// the current time.
func (b *Broadcaster) Publish(u Update) {
	if u.At.IsZero() {
		u.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- u:
		default:
			// subscriber is slow, drop the message
		}
	}
}

// Count returns the number of active subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
