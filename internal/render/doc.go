// Package render turns events into display text and HTML cards.
//
// Everything here is a pure function of its input (plus the clock used for
// relative times). Author and branch values are untrusted webhook data and
// are always HTML-escaped before they reach markup. Malformed events never
// cause an error: missing fields are replaced by placeholders and unknown
// actions fall back to a generic label and icon.
package render
