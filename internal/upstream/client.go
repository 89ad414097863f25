// Package upstream fetches puzzle inputs from the puzzle site using a
// session cookie.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koltyakov/aocd/internal/domain"
)

// DefaultBaseURL is the puzzle site root.
const DefaultBaseURL = "https://adventofcode.com"

const defaultTimeout = 30 * time.Second
const defaultMaxBodyBytes = 4 * 1024 * 1024
const defaultUserAgent = "aocd"

var (
	// ErrNetwork wraps transport-level failures.
	ErrNetwork = errors.New("upstream unreachable")

	// ErrStatus is matched by every [*StatusError].
	ErrStatus = errors.New("upstream returned non-success status")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %s", e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Options configures a [Client].
type Options struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// Client performs single, non-retried GETs against the input endpoint.
type Client struct {
	baseURL      string
	userAgent    string
	maxBodyBytes int64
	http         *http.Client
}

// New builds a client. Zero option values fall back to defaults.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, userAgent: ua, maxBodyBytes: maxBody, http: hc}
}

// InputURL returns the endpoint for key.
func (c *Client) InputURL(key domain.PuzzleKey) string {
	return fmt.Sprintf("%s/%d/day/%d/input", c.baseURL, key.Year, key.Day)
}

// Fetch downloads the raw input for key. The body is returned unmodified.
func (c *Client) Fetch(ctx context.Context, key domain.PuzzleKey, credential string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.InputURL(key), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", "session="+credential)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := readAllWithLimit(resp.Body, c.maxBodyBytes)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	return string(body), nil
}

func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, errors.New("invalid read limit")
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("content exceeds limit of %d bytes", limit)
	}
	return data, nil
}
