// Package store persists webhook events for the /api/events endpoint.
//
// The main components are:
//
//   - [Store]: Interface defining save, query and statistics operations
//   - [MemoryStore]: In-memory implementation, the default
//   - [SQLiteStore]: SQLite implementation backed by modernc.org/sqlite
//
// Events are keyed by request ID. Saving an event whose request ID already
// exists is not an error: the first write wins and Save reports that
// nothing was created, mirroring how webhook redeliveries are acknowledged.
package store
