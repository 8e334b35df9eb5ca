package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) *Event {
	t.Helper()
	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	return &e
}

func TestNarrate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "watch",
			raw:  `{"type":"WatchEvent","actor":{"display_login":"alice"},"repo":{"name":"acme/widgets"}}`,
			want: []string{"alice is watching acme/widgets"},
		},
		{
			name: "push emits a line per commit and a trailing public line",
			raw:  `{"type":"PushEvent","actor":{"display_login":"bob"},"repo":{"name":"acme/widgets"},"payload":{"commits":[{"message":"fix bug"},{"message":"add test"}]}}`,
			want: []string{
				"bob pushed new content to acme/widgets with the message fix bug",
				"bob pushed new content to acme/widgets with the message add test",
				"bob made acme/widgets public",
			},
		},
		{
			name: "push with no commits",
			raw:  `{"type":"PushEvent","actor":{"display_login":"bob"},"repo":{"name":"acme/widgets"},"payload":{"commits":[]}}`,
			want: []string{"bob made acme/widgets public"},
		},
		{
			name: "create repository",
			raw:  `{"type":"CreateEvent","actor":{"display_login":"carol"},"repo":{"name":"carol/new"},"payload":{"ref":null,"ref_type":"repository"}}`,
			want: []string{"carol created a new repository named carol/new"},
		},
		{
			name: "create branch",
			raw:  `{"type":"CreateEvent","actor":{"display_login":"carol"},"repo":{"name":"carol/new"},"payload":{"ref":"dev","ref_type":"branch"}}`,
			want: []string{"carol created a new branch named dev in carol/new"},
		},
		{
			name: "create with unhandled ref type",
			raw:  `{"type":"CreateEvent","actor":{"display_login":"carol"},"repo":{"name":"carol/new"},"payload":{"ref":"v1.0","ref_type":"tag"}}`,
			want: []string{"carol created a tag named v1.0 in carol/new (unhandled ref_type)"},
		},
		{
			name: "fork",
			raw:  `{"type":"ForkEvent","actor":{"display_login":"dave"},"repo":{"name":"acme/widgets"},"payload":{"forkee":{"full_name":"dave/widgets"}}}`,
			want: []string{"dave forked from acme/widgets to dave/widgets"},
		},
		{
			name: "issue comment reads forkee",
			raw:  `{"type":"IssueCommentEvent","actor":{"display_login":"erin"},"repo":{"name":"acme/widgets"},"payload":{"forkee":{"full_name":"erin/widgets"},"issue":{"title":"Crash on start"}}}`,
			want: []string{"erin commented an issue in the repo erin/widgets with the title Crash on start"},
		},
		{
			name: "issues",
			raw:  `{"type":"IssuesEvent","actor":{"display_login":"erin"},"repo":{"name":"acme/widgets"},"payload":{"action":"opened","issue":{"title":"Crash on start"}}}`,
			want: []string{"erin opened an issue in acme/widgets with the title Crash on start"},
		},
		{
			name: "public",
			raw:  `{"type":"PublicEvent","actor":{"display_login":"frank"},"repo":{"name":"frank/tool"},"payload":{}}`,
			want: []string{"frank made frank/tool public"},
		},
		{
			name: "pull request",
			raw:  `{"type":"PullRequestEvent","actor":{"display_login":"gina"},"repo":{"name":"acme/widgets"},"payload":{"pull_request":{"title":"Add docs"}}}`,
			want: []string{"gina opened a pull request in acme/widgets with the title Add docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Narrate(decode(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNarrate_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"actor", `{"type":"WatchEvent","repo":{"name":"acme/widgets"}}`, "actor.display_login"},
		{"issue title", `{"type":"IssuesEvent","actor":{"display_login":"erin"},"repo":{"name":"acme/widgets"},"payload":{}}`, "payload.issue.title"},
		{"commits", `{"type":"PushEvent","actor":{"display_login":"bob"},"repo":{"name":"acme/widgets"}}`, "payload.commits"},
		{"commit message", `{"type":"PushEvent","actor":{"display_login":"bob"},"repo":{"name":"acme/widgets"},"payload":{"commits":[{"sha":"abc"}]}}`, "payload.commits[0].message"},
		{"branch ref", `{"type":"CreateEvent","actor":{"display_login":"carol"},"repo":{"name":"carol/new"},"payload":{"ref_type":"branch"}}`, "payload.ref"},
		{"issue comment without forkee", `{"type":"IssueCommentEvent","actor":{"display_login":"erin"},"repo":{"name":"acme/widgets"},"payload":{"issue":{"title":"x"}}}`, "payload.forkee.full_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Narrate(decode(t, tt.raw))
			var mf *MissingFieldError
			require.ErrorAs(t, err, &mf)
			assert.Equal(t, tt.field, mf.Field)
		})
	}
}

func TestNarrate_WrongShape(t *testing.T) {
	e := decode(t, `{"type":"PushEvent","actor":{"display_login":"bob"},"repo":{"name":"acme/widgets"},"payload":{"commits":"oops"}}`)

	_, err := Narrate(e)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "payload", pe.Field)
}

func TestNarrate_UnrecognizedType(t *testing.T) {
	_, err := Narrate(decode(t, `{"type":"DeployEvent"}`))

	var ut *UnrecognizedEventTypeError
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, "DeployEvent", ut.Type)
	assert.EqualError(t, err, `unchecked event type "DeployEvent"`)
}

func TestWrite(t *testing.T) {
	raw := func(s string) json.RawMessage { return json.RawMessage(s) }

	t.Run("halts at unrecognized type and keeps earlier output", func(t *testing.T) {
		var buf bytes.Buffer
		records := []json.RawMessage{
			raw(`{"type":"WatchEvent","actor":{"display_login":"alice"},"repo":{"name":"acme/widgets"}}`),
			raw(`{"type":"DeployEvent"}`),
			raw(`{"type":"WatchEvent","actor":{"display_login":"alice"},"repo":{"name":"acme/other"}}`),
		}

		err := Write(&buf, records, time.Time{})

		var ut *UnrecognizedEventTypeError
		assert.True(t, errors.As(err, &ut))
		assert.Equal(t, "alice is watching acme/widgets\n", buf.String())
	})

	t.Run("bad record shape", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, []json.RawMessage{raw(`{"type":"WatchEvent","actor":"alice"}`)}, time.Time{})

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "event 0", pe.Field)
		assert.Empty(t, buf.String())
	})

	t.Run("skips events before since", func(t *testing.T) {
		var buf bytes.Buffer
		records := []json.RawMessage{
			raw(`{"type":"WatchEvent","actor":{"display_login":"alice"},"repo":{"name":"acme/new"},"created_at":"2026-10-10T12:00:00Z"}`),
			raw(`{"type":"WatchEvent","actor":{"display_login":"alice"},"repo":{"name":"acme/old"},"created_at":"2026-09-01T12:00:00Z"}`),
		}
		since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, Write(&buf, records, since))
		assert.Equal(t, "alice is watching acme/new\n", buf.String())
	})
}
