// Package hookwatch provides an embeddable GitHub activity monitor: a
// webhook receiver, an event API and a live dashboard.
//
// # Quick Start
//
// Create a monitor and start it with graceful shutdown:
//
//	m, _ := hookwatch.New(hookwatch.WithWebhookSecret(os.Getenv("WEBHOOK_SECRET")))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	m.Start(ctx) // blocks until context is cancelled
//
// Point a GitHub repository webhook at http://<host>:8080/webhook with the
// "push" and "pull_request" events enabled.
//
// # How it fits together
//
// Webhook deliveries are normalized into [Event] values (push, pull request
// opened, pull request merged) and stored by request ID, so redeliveries are
// harmless. GET /api/events serves the most recent events newest first.
//
// The dashboard does not read the store directly. A poller reads
// /api/events on a fixed interval, the result is merged into a capped set
// of displayed events, and the changes are pushed to open browsers over
// Server-Sent Events. Polls never overlap and a failed poll only changes
// the status line; the next one runs on schedule.
//
// # Configuration
//
// Monitor uses the functional options pattern for configuration:
//
//	store, _ := hookwatch.OpenSQLiteStore("events.db")
//	defer store.Close()
//
//	m, err := hookwatch.New(
//	    hookwatch.WithStore(store),
//	    hookwatch.WithPollingInterval(5 * time.Second),
//	    hookwatch.WithMaxEvents(100),
//	    hookwatch.WithPauseWhenIdle(true),
//	    hookwatch.WithEventsCallback(func(events []hookwatch.Event) {
//	        slog.Info("poll", "events", len(events))
//	    }),
//	)
//
// # Architecture
//
// hookwatch consists of several internal packages (under internal/):
//
//   - internal/event: Event model and timestamp format
//   - internal/webhook: GitHub payload parsing and signature checks
//   - internal/store: In-memory and SQLite event storage
//   - internal/poller: Single-endpoint poller with visibility control
//   - internal/feed: Displayed event set and update fan-out
//   - internal/render: Card text and HTML
//   - internal/server: HTTP routes, SSE and WebSocket streams
//   - internal/tui: Terminal viewer
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package hookwatch
