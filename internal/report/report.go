package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Write narrates records to w in order. It stops at the first record that
// cannot be narrated; lines written for earlier records stay written. Events
// created before since are skipped unless since is zero.
func Write(w io.Writer, records []json.RawMessage, since time.Time) error {
	for i, raw := range records {
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return &ParseError{Field: fmt.Sprintf("event %d", i), Err: err}
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}

		lines, err := Narrate(&e)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
	}
	return nil
}

// Narrate renders the sentences describing a single event.
func Narrate(e *Event) ([]string, error) {
	p, err := e.ParsePayload()
	if err != nil {
		return nil, err
	}
	return p.lines(e)
}

func (p *CreatePayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin, "payload.ref_type", p.RefType); err != nil {
		return nil, err
	}
	who, repo := e.Actor.DisplayLogin, e.Repo.Name

	switch p.RefType {
	case "repository":
		return []string{fmt.Sprintf("%s created a new repository named %s", who, repo)}, nil
	case "branch":
		if err := required(e, "payload.ref", p.Ref); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s created a new branch named %s in %s", who, p.Ref, repo)}, nil
	}
	return []string{fmt.Sprintf("%s created a %s named %s in %s (unhandled ref_type)", who, p.RefType, p.Ref, repo)}, nil
}

func (p *ForkPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "payload.forkee.full_name", p.Forkee.FullName, "actor.display_login", e.Actor.DisplayLogin); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s forked from %s to %s", e.Actor.DisplayLogin, e.Repo.Name, p.Forkee.FullName)}, nil
}

func (p *IssueCommentPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "payload.forkee.full_name", p.Forkee.FullName, "actor.display_login", e.Actor.DisplayLogin, "payload.issue.title", p.Issue.Title); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s commented an issue in the repo %s with the title %s", e.Actor.DisplayLogin, p.Forkee.FullName, p.Issue.Title)}, nil
}

func (p *IssuesPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin, "payload.issue.title", p.Issue.Title); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s opened an issue in %s with the title %s", e.Actor.DisplayLogin, e.Repo.Name, p.Issue.Title)}, nil
}

func (p *PublicPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin); err != nil {
		return nil, err
	}
	return []string{madePublic(e)}, nil
}

func (p *PullRequestPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin, "payload.pull_request.title", p.PullRequest.Title); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s opened a pull request in %s with the title %s", e.Actor.DisplayLogin, e.Repo.Name, p.PullRequest.Title)}, nil
}

// lines emits one line per commit followed by a "made public" line. The
// trailing line has always been part of push narration.
func (p *PushPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin); err != nil {
		return nil, err
	}
	if p.Commits == nil {
		return nil, &MissingFieldError{Type: e.Type, Field: "payload.commits"}
	}

	out := make([]string, 0, len(p.Commits)+1)
	for i, c := range p.Commits {
		if err := required(e, fmt.Sprintf("payload.commits[%d].message", i), c.Message); err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("%s pushed new content to %s with the message %s", e.Actor.DisplayLogin, e.Repo.Name, c.Message))
	}
	return append(out, madePublic(e)), nil
}

func (p *WatchPayload) lines(e *Event) ([]string, error) {
	if err := required(e, "repo.name", e.Repo.Name, "actor.display_login", e.Actor.DisplayLogin); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s is watching %s", e.Actor.DisplayLogin, e.Repo.Name)}, nil
}

func madePublic(e *Event) string {
	return fmt.Sprintf("%s made %s public", e.Actor.DisplayLogin, e.Repo.Name)
}

// required takes alternating field path / value pairs and reports the first
// empty value.
func required(e *Event, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return &MissingFieldError{Type: e.Type, Field: pairs[i]}
		}
	}
	return nil
}
