// Package feed holds the set of events currently on display and fans out
// changes to connected viewers.
//
// The main components are:
//
//   - [Feed]: ordered, capped set of events keyed by request ID
//   - [Diff]: the result of merging one poll into a Feed
//   - [Broadcaster]: pub/sub fan-out of [Update] values to viewers
//
// A Feed is rebuilt from scratch for every process; nothing is persisted.
package feed
