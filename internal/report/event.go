package report

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	CreateEvent       EventType = "CreateEvent"
	ForkEvent         EventType = "ForkEvent"
	IssueCommentEvent EventType = "IssueCommentEvent"
	IssuesEvent       EventType = "IssuesEvent"
	PublicEvent       EventType = "PublicEvent"
	PullRequestEvent  EventType = "PullRequestEvent"
	PushEvent         EventType = "PushEvent"
	WatchEvent        EventType = "WatchEvent"
)

// Event is one record of a user's public event feed.
type Event struct {
	Type      EventType       `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

type Actor struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	DisplayLogin string `json:"display_login"`
	GravatarID   string `json:"gravatar_id"`
	URL          string `json:"url"`
	AvatarURL    string `json:"avatar_url"`
}

type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Payload is the type-specific part of an Event. The set of implementations
// is closed: one per EventType.
type Payload interface {
	lines(e *Event) ([]string, error)
}

type CreatePayload struct {
	Ref     string `json:"ref"`
	RefType string `json:"ref_type"`
}

type ForkPayload struct {
	Forkee Forkee `json:"forkee"`
}

type Forkee struct {
	FullName string `json:"full_name"`
}

// IssueCommentPayload reads forkee.full_name for the repository, as the
// narration always has.
type IssueCommentPayload struct {
	Forkee Forkee `json:"forkee"`
	Issue  Issue  `json:"issue"`
}

type IssuesPayload struct {
	Issue Issue `json:"issue"`
}

type Issue struct {
	Title string `json:"title"`
}

type PublicPayload struct{}

type PullRequestPayload struct {
	PullRequest PullRequest `json:"pull_request"`
}

type PullRequest struct {
	Title string `json:"title"`
}

type PushPayload struct {
	Commits []Commit `json:"commits"`
}

type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

type WatchPayload struct {
	Action string `json:"action"`
}

// ParsePayload decodes the raw payload into the variant selected by Type.
// An absent or null payload leaves the variant zeroed; required fields are
// checked when the event is narrated.
func (e *Event) ParsePayload() (Payload, error) {
	var p Payload
	switch e.Type {
	case CreateEvent:
		p = &CreatePayload{}
	case ForkEvent:
		p = &ForkPayload{}
	case IssueCommentEvent:
		p = &IssueCommentPayload{}
	case IssuesEvent:
		p = &IssuesPayload{}
	case PublicEvent:
		p = &PublicPayload{}
	case PullRequestEvent:
		p = &PullRequestPayload{}
	case PushEvent:
		p = &PushPayload{}
	case WatchEvent:
		p = &WatchPayload{}
	default:
		return nil, &UnrecognizedEventTypeError{Type: string(e.Type)}
	}

	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(e.Payload, p); err != nil {
		return nil, &ParseError{Field: "payload", Err: err}
	}
	return p, nil
}

// UnrecognizedEventTypeError reports a discriminant outside the known set.
type UnrecognizedEventTypeError struct {
	Type string
}

func (e *UnrecognizedEventTypeError) Error() string {
	return fmt.Sprintf("unchecked event type %q", e.Type)
}

// MissingFieldError reports a field the narration needs but the record lacks.
type MissingFieldError struct {
	Type  EventType
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %s", e.Type, e.Field)
}

// ParseError reports a record, or part of one, with the wrong shape.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
