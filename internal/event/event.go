package event

import (
	"errors"
	"strings"
)

// Action is the category of repository activity an [Event] describes.
//
// The known values are [ActionPush], [ActionPullRequest] and [ActionMerge].
// Senders are not trusted to use the canonical spelling, so comparisons go
// through [Action.Normalize]. Unknown actions are preserved verbatim so that
// renderers can fall back to a generic presentation.
type Action string

const (
	// ActionPush is a push of one or more commits to a branch.
	ActionPush Action = "PUSH"

	// ActionPullRequest is a newly opened pull request.
	ActionPullRequest Action = "PULL_REQUEST"

	// ActionMerge is a pull request that was closed by merging it.
	ActionMerge Action = "MERGE"
)

// Normalize returns the canonical spelling of a known action ("push" and
// "Push" both become [ActionPush]). Unknown actions are returned unchanged.
func (a Action) Normalize() Action {
	switch Action(strings.ToUpper(strings.TrimSpace(string(a)))) {
	case ActionPush:
		return ActionPush
	case ActionPullRequest:
		return ActionPullRequest
	case ActionMerge:
		return ActionMerge
	default:
		return a
	}
}

// Known reports whether the action is one of the recognised categories.
func (a Action) Known() bool {
	switch a.Normalize() {
	case ActionPush, ActionPullRequest, ActionMerge:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// Event is one webhook-derived record of repository activity.
//
// RequestID is stable across polls and is the key used to deduplicate and
// merge events. FromBranch is nil for actions that have no source branch
// (pushes).
type Event struct {
	RequestID  string  `json:"request_id"`
	Action     Action  `json:"action"`
	Author     string  `json:"author"`
	ToBranch   string  `json:"to_branch"`
	FromBranch *string `json:"from_branch,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// From returns the source branch, or "" when there is none.
func (e Event) From() string {
	if e.FromBranch == nil {
		return ""
	}
	return *e.FromBranch
}

// Equal reports whether two events carry identical field values.
func (e Event) Equal(o Event) bool {
	return e.RequestID == o.RequestID &&
		e.Action == o.Action &&
		e.Author == o.Author &&
		e.ToBranch == o.ToBranch &&
		e.From() == o.From() &&
		(e.FromBranch == nil) == (o.FromBranch == nil) &&
		e.Timestamp == o.Timestamp
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	if e.FromBranch != nil {
		from := *e.FromBranch
		e.FromBranch = &from
	}
	return e
}

// Validate checks that the fields required for storage are present and the
// action is a known category. Events read back from an endpoint are not
// validated; renderers tolerate missing fields instead.
func (e Event) Validate() error {
	switch {
	case e.RequestID == "":
		return errors.New("request_id is required")
	case e.Author == "":
		return errors.New("author is required")
	case e.Action == "":
		return errors.New("action is required")
	case !e.Action.Known():
		return errors.New("unknown action " + string(e.Action))
	case e.ToBranch == "":
		return errors.New("to_branch is required")
	case e.Timestamp == "":
		return errors.New("timestamp is required")
	}
	return nil
}

// StringPtr returns a pointer to s, or nil when s is empty. It is a
// convenience for populating [Event.FromBranch].
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
