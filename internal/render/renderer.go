package render

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// EmptyStateTitle is the heading shown when there are no events to display.
const EmptyStateTitle = "No events yet"

const cardTemplates = `
{{define "card"}}<div class="event-card {{.Class}}" data-request-id="{{.RequestID}}">
  <div class="event-avatar">{{.Initials}}</div>
  <div class="event-icon"><i class="{{.Icon}}"></i></div>
  <div class="event-content">
    <div class="event-message">{{.Message}}</div>
    <div class="event-meta">
      <span class="event-timestamp" title="{{.Timestamp}}">{{.Relative}}</span>
      <span class="event-type badge badge-{{.Class}}">{{.Label}}</span>
    </div>
  </div>
</div>{{end}}

{{define "empty"}}<div class="empty-state">
  <h3>` + EmptyStateTitle + `</h3>
  <p>Events will appear here when GitHub webhooks are received.</p>
</div>{{end}}

{{define "cards"}}{{if .}}{{range .}}{{template "card" .}}
{{end}}{{else}}{{template "empty"}}{{end}}{{end}}
`

// Card is the view model for one rendered event.
type Card struct {
	RequestID string
	Class     string
	Icon      string
	Label     string
	Initials  string
	Message   template.HTML
	Timestamp string
	Relative  string
}

// Renderer produces HTML cards for events.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewRenderer creates a Renderer that measures relative times against the
// wall clock.
func NewRenderer() *Renderer {
	return NewRendererWithClock(time.Now)
}

// NewRendererWithClock creates a Renderer using now as its clock.
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("cards").Parse(cardTemplates)),
		now:  now,
	}
}

// CardFor builds the view model for a single event.
func (r *Renderer) CardFor(e event.Event) Card {
	return Card{
		RequestID: e.RequestID,
		Class:     ClassName(e.Action),
		Icon:      Icon(e.Action),
		Label:     Label(e.Action),
		Initials:  Initials(e.Author),
		Message:   Message(e),
		Timestamp: e.Timestamp,
		Relative:  RelativeTime(e.Timestamp, r.now()),
	}
}

// RenderCard writes the markup for one event card.
func (r *Renderer) RenderCard(w io.Writer, e event.Event) error {
	return r.tmpl.ExecuteTemplate(w, "card", r.CardFor(e))
}

// RenderCards writes cards for events in the given order, or the empty-state
// placeholder when there are none.
func (r *Renderer) RenderCards(w io.Writer, events []event.Event) error {
	cards := make([]Card, len(events))
	for i, e := range events {
		cards[i] = r.CardFor(e)
	}
	return r.tmpl.ExecuteTemplate(w, "cards", cards)
}

// CardHTML returns the markup for one event card.
func (r *Renderer) CardHTML(e event.Event) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.RenderCard(&buf, e); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// CardsHTML returns the markup produced by [Renderer.RenderCards].
func (r *Renderer) CardsHTML(events []event.Event) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.RenderCards(&buf, events); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
