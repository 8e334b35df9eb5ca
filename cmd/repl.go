package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github-activity/internal/github"
	"github-activity/internal/logger"
	"github-activity/internal/report"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	prompt       = "\nGithub-Activity > "
	closingLine  = "Closing Github-Activity. Bye!"
	lineUsageMsg = "usage: <username> [--since DATE]"
)

var ErrNoArguments = errors.New("no input provided")

// ConsoleIOError wraps a failure to read from the console.
type ConsoleIOError struct {
	Err error
}

func (e *ConsoleIOError) Error() string { return fmt.Sprintf("console error: %v", e.Err) }
func (e *ConsoleIOError) Unwrap() error { return e.Err }

// Fetcher returns the raw event feed body for a username.
type Fetcher interface {
	Fetch(ctx context.Context, username string) (string, error)
}

// Session drives the prompt loop over one console.
type Session struct {
	fetcher Fetcher
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
}

func NewSession(f Fetcher, in io.Reader, out, errOut io.Writer) *Session {
	return &Session{
		fetcher: f,
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		now:     time.Now,
	}
}

// Run prompts for usernames until the user quits or input ends. Errors for a
// single line are printed and the loop goes on; only a console read failure
// is returned, and printing it is left to the caller.
func (s *Session) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, prompt)

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return &ConsoleIOError{Err: err}
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.out, closingLine)
			return nil
		}

		quit, herr := s.handle(ctx, line)
		if quit {
			fmt.Fprintln(s.out, closingLine)
			return nil
		}
		if herr != nil {
			fmt.Fprintln(s.errOut, herr)
		}
	}
}

// Lookup fetches, validates and narrates one user's feed.
func (s *Session) Lookup(ctx context.Context, username string, since time.Time) error {
	body, err := s.fetcher.Fetch(ctx, username)
	if err != nil {
		return err
	}
	records, err := github.Validate(body, username)
	if err != nil {
		return err
	}
	return report.Write(s.out, records, since)
}

func (s *Session) handle(ctx context.Context, line string) (quit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Lg.Error("recovered panic", zap.Any("panic", r))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	input := strings.TrimSpace(line)
	switch strings.ToLower(input) {
	case "q", "quit":
		return true, nil
	case "":
		return false, ErrNoArguments
	}

	fields := strings.Fields(input)
	since, err := s.lineSince(fields[1:])
	if err != nil {
		return false, err
	}
	return false, s.Lookup(ctx, fields[0], since)
}

// lineSince reads --since from the tokens after the username. Anything else
// on the line is ignored.
func (s *Session) lineSince(args []string) (time.Time, error) {
	fs := pflag.NewFlagSet("line", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	since := fs.String("since", "", "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return time.Time{}, errors.New(lineUsageMsg)
		}
		return time.Time{}, err
	}
	return parseSince(*since, s.now())
}
