// Package poller reads the event endpoint on a fixed interval.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Poller]: Single-endpoint poll loop with Start, Stop and ForcePoll
//   - [Visibility]: Starts and stops a poller as viewers come and go
//
// A [Poller] moves between three states. It is idle until started,
// scheduled while waiting for the next poll and in-flight while a read is
// outstanding. Each start opens a new generation; results that arrive for
// an older generation are dropped without reaching any handler.
//
// The next poll is armed only after the previous one completes, so a slow
// endpoint stretches the cycle instead of stacking requests. Network reads
// are additionally serialized by a lock so that forced polls and rapid
// Stop/Start pairs cannot overlap.
package poller
