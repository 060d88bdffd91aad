package hookwatch

import "github.com/jpalmerr/hookwatch/internal/store"

// Store persists webhook events. See [NewMemoryStore] and [OpenSQLiteStore].
type Store = store.Store

// Stats summarises stored events.
type Stats = store.Stats

// NewMemoryStore returns a [Store] that keeps events in memory. It is the
// default when no store is configured.
func NewMemoryStore() Store {
	return store.NewMemoryStore()
}

// OpenSQLiteStore opens (creating if needed) a SQLite-backed [Store] at path.
// The caller must Close it.
func OpenSQLiteStore(path string) (Store, error) {
	s, err := store.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
