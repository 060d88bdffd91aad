// Package event defines the webhook event record shared by every hookwatch
// layer: the webhook receiver, the stores, the poller and the renderers.
//
// Events are produced once by the webhook parser and then treated as
// read-only values. Fields that originate from a webhook sender (author,
// branch names) are untrusted and must be escaped by whoever renders them.
package event
