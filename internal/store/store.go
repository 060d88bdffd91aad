package store

import (
	"context"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// DefaultLimit is the number of events returned when no limit is given.
const DefaultLimit = 50

// MaxLimit bounds how many events a single query may return.
const MaxLimit = 100

// Stats summarises stored events.
type Stats struct {
	Total    int            `json:"total"`
	ByAction map[string]int `json:"by_action"`
}

// Store defines the interface for persisting and querying events.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Save inserts e unless an event with the same request ID exists.
	// created reports whether a new row was written.
	Save(ctx context.Context, e event.Event) (created bool, err error)

	// Recent returns up to limit events, most recently saved first.
	// Limits outside 1..MaxLimit are clamped.
	Recent(ctx context.Context, limit int) ([]event.Event, error)

	// Stats counts all stored events, in total and per action.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store.
	Close() error
}

// ClampLimit applies the default and maximum to a requested limit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
