// Package dashboard provides the embedded web UI assets for hookwatch.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
//
// The embedded assets are served by the server package at the root path ("/").
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
// index.html carries two placeholders filled in per request: {{.Title}}
// (HTML-escaped) and {{.Cards}} (the server-rendered event cards). The page
// keeps itself current through the /api/sse stream.
//
//go:embed assets/*
var Assets embed.FS
