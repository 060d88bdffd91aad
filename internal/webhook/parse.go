package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/hookwatch/internal/event"
)

// GitHub delivery headers.
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderSignature = "X-Hub-Signature-256"
	HeaderDelivery  = "X-GitHub-Delivery"
)

var (
	// ErrUnsupportedEvent is returned for deliveries that do not map to an
	// event, such as "ping" or a pull request being labelled.
	ErrUnsupportedEvent = errors.New("unsupported webhook event")

	// ErrInvalidPayload is returned when the body is not a usable payload.
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// Parser converts webhook payloads to events. The zero value uses the wall
// clock for deliveries that carry no usable timestamp.
type Parser struct {
	Now func() time.Time
}

type pushPayload struct {
	Ref    string `json:"ref"`
	After  string `json:"after"`
	Pusher struct {
		Name string `json:"name"`
	} `json:"pusher"`
	HeadCommit *struct {
		Timestamp string `json:"timestamp"`
	} `json:"head_commit"`
	Repository *struct {
		PushedAt json.RawMessage `json:"pushed_at"`
	} `json:"repository"`
}

type pullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		ID     json.Number `json:"id"`
		Merged bool        `json:"merged"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		CreatedAt string `json:"created_at"`
		MergedAt  string `json:"merged_at"`
	} `json:"pull_request"`
	Repository json.RawMessage `json:"repository"`
}

// Parse decodes a delivery of the given GitHub event type.
//
// The returned event has passed [event.Event.Validate]. Deliveries that are
// valid but not tracked return [ErrUnsupportedEvent]; malformed or
// incomplete payloads return an error wrapping [ErrInvalidPayload].
func (p Parser) Parse(eventType string, body []byte) (event.Event, error) {
	var (
		ev  event.Event
		err error
	)

	switch eventType {
	case "push":
		ev, err = p.parsePush(body)
	case "pull_request":
		ev, err = p.parsePullRequest(body)
	default:
		return event.Event{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, eventType)
	}
	if err != nil {
		return event.Event{}, err
	}

	if err := ev.Validate(); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ev, nil
}

func (p Parser) parsePush(body []byte) (event.Event, error) {
	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	author := payload.Pusher.Name
	if author == "" {
		author = "Unknown"
	}

	var ts string
	if payload.HeadCommit != nil {
		ts = payload.HeadCommit.Timestamp
	}
	if ts == "" && payload.Repository != nil {
		ts = pushedAt(payload.Repository.PushedAt)
	}

	return event.Event{
		RequestID: payload.After,
		Action:    event.ActionPush,
		Author:    author,
		ToBranch:  BranchFromRef(payload.Ref),
		Timestamp: p.formatTimestamp(ts),
	}, nil
}

func (p Parser) parsePullRequest(body []byte) (event.Event, error) {
	var payload pullRequestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	pr := payload.PullRequest
	var action event.Action
	switch {
	case payload.Action == "closed" && pr.Merged:
		action = event.ActionMerge
	case payload.Action == "opened":
		action = event.ActionPullRequest
	default:
		return event.Event{}, fmt.Errorf("%w: pull_request action %q", ErrUnsupportedEvent, payload.Action)
	}

	author := pr.User.Login
	if author == "" {
		author = "Unknown"
	}

	return event.Event{
		RequestID:  pr.ID.String(),
		Action:     action,
		Author:     author,
		FromBranch: event.StringPtr(pr.Head.Ref),
		ToBranch:   pr.Base.Ref,
		Timestamp:  p.formatTimestamp(pr.CreatedAt),
	}, nil
}

// formatTimestamp renders an ISO timestamp in display form, falling back to
// the current time when it is missing or unparseable.
func (p Parser) formatTimestamp(iso string) string {
	if t, err := event.ParseTimestamp(iso); err == nil {
		return event.FormatTimestamp(t)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return event.FormatTimestamp(now())
}

// pushedAt reads repository.pushed_at, which GitHub sends as a unix epoch
// number on push deliveries and as an ISO string elsewhere.
func pushedAt(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var secs json.Number
	if err := json.Unmarshal(raw, &secs); err == nil {
		if n, err := strconv.ParseInt(secs.String(), 10, 64); err == nil {
			return time.Unix(n, 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// BranchFromRef strips the refs/heads/ or refs/tags/ prefix from a git ref.
func BranchFromRef(ref string) string {
	if b, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return b
	}
	if t, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
		return t
	}
	return ref
}
