// Package webhook turns GitHub webhook deliveries into [event.Event] values.
//
// Supported deliveries are "push" and "pull_request" (opened, or closed with
// merged=true). Everything else, including "ping", is reported as
// [ErrUnsupportedEvent] so the receiver can acknowledge and ignore it.
package webhook
