package render

import (
	"html"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// placeholder stands in for a missing author or destination branch.
const placeholder = "unknown"

// genericIcon is used for actions without a dedicated icon.
const genericIcon = "fas fa-code"

var icons = map[event.Action]string{
	event.ActionPush:        "fas fa-code-commit",
	event.ActionPullRequest: "fas fa-code-pull-request",
	event.ActionMerge:       "fas fa-code-merge",
}

// Label returns the short badge text for an action: "PUSH", "PULL REQUEST",
// "MERGE", the lowercased action for anything unrecognised, or "other"
// when the action is blank.
func Label(a event.Action) string {
	if !a.Known() {
		if l := strings.ToLower(strings.TrimSpace(string(a))); l != "" {
			return l
		}
		return "other"
	}
	return strings.ReplaceAll(string(a.Normalize()), "_", " ")
}

// Icon returns the icon class for an action, falling back to a generic icon.
func Icon(a event.Action) string {
	if icon, ok := icons[a.Normalize()]; ok {
		return icon
	}
	return genericIcon
}

// ClassName returns a CSS-safe modifier class for an action ("push",
// "pull_request", "merge", or a sanitised form of an unknown action).
func ClassName(a event.Action) string {
	s := strings.ToLower(strings.TrimSpace(string(a.Normalize())))
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "other"
	}
	return b.String()
}

// sentence holds the parts of an activity sentence before they are joined
// with or without markup.
type sentence struct {
	author string
	verb   string
	from   string
	to     string
	// noBranches is set for unknown actions, which only name the action.
	noBranches bool
}

func describe(e event.Event) sentence {
	s := sentence{
		author: orPlaceholder(e.Author),
		from:   e.From(),
		to:     orPlaceholder(e.ToBranch),
	}

	switch e.Action.Normalize() {
	case event.ActionPush:
		s.verb = "pushed"
		s.from = ""
	case event.ActionPullRequest:
		s.verb = "submitted a pull request"
	case event.ActionMerge:
		s.verb = "merged branch"
	default:
		s.verb = "performed " + Label(e.Action)
		s.noBranches = true
	}
	return s
}

// Message returns the activity sentence as HTML, for example
//
//	<span class="event-author">octocat</span> pushed to <span class="branch to-branch">main</span>
//
// All interpolated values are escaped.
func Message(e event.Event) template.HTML {
	s := describe(e)

	var b strings.Builder
	b.WriteString(`<span class="event-author">`)
	b.WriteString(html.EscapeString(s.author))
	b.WriteString(`</span> `)
	b.WriteString(html.EscapeString(s.verb))

	if s.noBranches {
		return template.HTML(b.String())
	}

	if s.from != "" {
		b.WriteString(` from <span class="branch from-branch">`)
		b.WriteString(html.EscapeString(s.from))
		b.WriteString(`</span>`)
	}
	b.WriteString(` to <span class="branch to-branch">`)
	b.WriteString(html.EscapeString(s.to))
	b.WriteString(`</span>`)

	return template.HTML(b.String())
}

// PlainMessage returns the activity sentence without markup, for example
// "octocat merged branch dev to main".
func PlainMessage(e event.Event) string {
	s := describe(e)

	parts := []string{s.author, s.verb}
	if !s.noBranches {
		if s.from != "" {
			parts = append(parts, "from", s.from)
		}
		parts = append(parts, "to", s.to)
	}
	return strings.Join(parts, " ")
}

// RelativeTime converts a timestamp into a label such as "3 minutes ago"
// measured against now. Timestamps that cannot be parsed are returned as-is.
func RelativeTime(ts string, now time.Time) string {
	t, err := event.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	if now.Sub(t) < time.Minute && now.Sub(t) >= 0 {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Initials returns up to two uppercase initials for a display name.
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
