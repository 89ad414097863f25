package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koltyakov/aocd/internal/domain"
)

func TestFetchSendsSessionCookie(t *testing.T) {
	t.Parallel()

	var gotPath, gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("1\n2\n3"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", UserAgent: "aocd-test"})
	text, err := c.Fetch(context.Background(), domain.PuzzleKey{Year: 2023, Day: 1}, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if text != "1\n2\n3" {
		t.Fatalf("unexpected body %q", text)
	}
	if gotPath != "/2023/day/1/input" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotCookie != "abc123" {
		t.Fatalf("expected session cookie abc123, got %q", gotCookie)
	}
	if gotUA != "aocd-test" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "Puzzle inputs differ by user.  Please log in to get your puzzle input.", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL})
	_, err := c.Fetch(context.Background(), domain.PuzzleKey{Year: 2023, Day: 1}, "bad")
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", n)
	}
}

func TestFetchNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Timeout: 2 * time.Second})
	_, err := c.Fetch(context.Background(), domain.PuzzleKey{Year: 2023, Day: 1}, "x")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestFetchBodyLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, MaxBodyBytes: 16})
	if _, err := c.Fetch(context.Background(), domain.PuzzleKey{Year: 2023, Day: 1}, "x"); err == nil {
		t.Fatal("expected oversized body to fail")
	}
}

func TestInputURLDefaultBase(t *testing.T) {
	t.Parallel()

	c := New(Options{})
	if got := c.InputURL(domain.PuzzleKey{Year: 2015, Day: 25}); got != "https://adventofcode.com/2015/day/25/input" {
		t.Fatalf("unexpected url %q", got)
	}
}
