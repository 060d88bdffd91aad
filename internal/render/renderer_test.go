package render

import (
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/hookwatch/internal/event"
)

func fixedClock() time.Time {
	return time.Date(2021, time.April, 1, 21, 35, 0, 0, time.UTC)
}

func TestRenderer_CardContainsFormattedParts(t *testing.T) {
	r := NewRendererWithClock(fixedClock)
	e := event.Event{
		RequestID: "abc123",
		Action:    event.ActionPush,
		Author:    "Octo Cat",
		ToBranch:  "main",
		Timestamp: "1st April 2021 - 9:30 PM UTC",
	}

	html, err := r.CardHTML(e)
	if err != nil {
		t.Fatalf("CardHTML() error = %v", err)
	}
	got := string(html)

	for _, want := range []string{
		`data-request-id="abc123"`,
		`class="event-card push"`,
		`fas fa-code-commit`,
		`pushed to <span class="branch to-branch">main</span>`,
		`5 minutes ago`,
		`title="1st April 2021 - 9:30 PM UTC"`,
		`>PUSH<`,
		`>OC<`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q\n%s", want, got)
		}
	}
}

func TestRenderer_CardEscapesScriptAuthor(t *testing.T) {
	r := NewRendererWithClock(fixedClock)
	e := event.Event{
		RequestID: `"><script>x</script>`,
		Action:    "<script>",
		Author:    "<script>",
		ToBranch:  "<script>",
		Timestamp: "<script>",
	}

	html, err := r.CardHTML(e)
	if err != nil {
		t.Fatalf("CardHTML() error = %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Errorf("rendered markup contains unescaped <script>:\n%s", html)
	}
}

func TestRenderer_EmptyList(t *testing.T) {
	r := NewRendererWithClock(fixedClock)

	for _, events := range [][]event.Event{nil, {}} {
		html, err := r.CardsHTML(events)
		if err != nil {
			t.Fatalf("CardsHTML() error = %v", err)
		}
		if !strings.Contains(string(html), EmptyStateTitle) {
			t.Errorf("empty list should render placeholder, got %s", html)
		}
		if strings.Contains(string(html), "event-card") {
			t.Errorf("empty list should not render cards, got %s", html)
		}
	}
}

func TestRenderer_CardsKeepOrder(t *testing.T) {
	r := NewRendererWithClock(fixedClock)
	events := []event.Event{
		{RequestID: "newest", Action: event.ActionMerge, Author: "a", ToBranch: "main"},
		{RequestID: "oldest", Action: event.ActionPush, Author: "b", ToBranch: "main"},
	}

	html, err := r.CardsHTML(events)
	if err != nil {
		t.Fatalf("CardsHTML() error = %v", err)
	}
	got := string(html)

	if strings.Contains(got, EmptyStateTitle) {
		t.Error("non-empty list must not render the placeholder")
	}
	if strings.Index(got, "newest") > strings.Index(got, "oldest") {
		t.Error("cards should be rendered in the given order")
	}
}

func TestRenderer_MalformedEventDoesNotFail(t *testing.T) {
	r := NewRenderer()
	if _, err := r.CardsHTML([]event.Event{{}, {RequestID: "x", Action: "???"}}); err != nil {
		t.Fatalf("CardsHTML() error = %v", err)
	}
}
