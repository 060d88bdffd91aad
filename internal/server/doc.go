// Package server provides the HTTP server for webhook ingestion, the event
// API and the live dashboard.
//
// This package handles all HTTP concerns:
//
//   - Webhook receiver: GitHub deliveries at "/webhook", verified with
//     X-Hub-Signature-256 when a secret is configured
//   - REST API: recent events at "/api/events" and counts at "/api/events/stats"
//   - Dashboard serving: the embedded page at "/" with server-rendered cards
//   - Live updates: Server-Sent Events at "/api/sse" and a WebSocket at "/api/ws"
//
// Every open live stream counts as a viewer of the dashboard. The viewer
// count is reported through the feed broadcaster so polling can pause while
// nobody is watching.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
