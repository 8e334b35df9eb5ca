package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github-activity/internal/logger"

	gh "github.com/google/go-github/v68/github"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://api.github.com/"
	DefaultUserAgent = "JustNesh"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyUsername = errors.New("empty username")
)

// FetchError wraps a transport failure while talking to the API.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch error: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not the JSON we expect.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

type NoEventsError struct {
	Username string
}

func (e *NoEventsError) Error() string { return "no events found for " + e.Username }

// APIError is an error object returned by the API other than "Not Found",
// such as a rate limit notice.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return "api error: " + e.Message }

// Client fetches user event feeds.
type Client struct {
	gh   *gh.Client
	http *http.Client
}

// NewClient returns a Client that sends requests to baseURL with the given
// User-Agent. Empty values fall back to the public API and DefaultUserAgent;
// a nil httpClient uses http.DefaultClient.
func NewClient(baseURL, userAgent string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}

	c := gh.NewClient(httpClient)
	c.BaseURL = u
	c.UserAgent = userAgent
	return &Client{gh: c, http: httpClient}, nil
}

// Fetch returns the raw body of GET users/{username}/events. The status code
// is not inspected; error bodies are returned like any other.
func (c *Client) Fetch(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}

	req, err := c.gh.NewRequest(http.MethodGet, fmt.Sprintf("users/%s/events", username), nil)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	req = req.WithContext(ctx)

	logger.Lg.Debug("api_fetch_flight", zap.String("url", req.URL.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Lg.Debug("api_fetch_error", zap.Error(err))
		return "", &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Err: fmt.Errorf("reading body: %w", err)}
	}
	if !utf8.Valid(body) {
		return "", &FetchError{Err: errors.New("response body is not valid UTF-8")}
	}

	logger.Lg.Debug("api_fetch_done",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("content_length", len(body)),
	)
	return string(body), nil
}

// Validate parses a feed response and returns its event records undecoded.
func Validate(body, username string) ([]json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	switch v := doc.(type) {
	case map[string]any:
		msg, _ := v["message"].(string)
		if msg == "Not Found" {
			return nil, ErrUserNotFound
		}
		return nil, &APIError{Message: msg}
	case []any:
		if len(v) == 0 {
			return nil, &NoEventsError{Username: username}
		}
	default:
		return nil, &ParseError{Err: fmt.Errorf("expected an array of events, got %T", doc)}
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		return nil, &ParseError{Err: err}
	}
	return records, nil
}
