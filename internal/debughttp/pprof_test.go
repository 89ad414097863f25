package debughttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouterServesIndexAndNamedProfiles(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/goroutine?debug=1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		newRouter().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestStartDisabledWhenBlank(t *testing.T) {
	t.Parallel()

	addr, err := Start(context.Background(), "  ", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil || addr != nil {
		t.Fatalf("expected disabled listener, got %v %v", addr, err)
	}
}

func TestStartServesUntilCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	addr, err := Start(ctx, "127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get("http://" + addr.String() + "/debug/pprof/")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "goroutine") {
		t.Fatalf("unexpected pprof index: %d %q", resp.StatusCode, body)
	}
}
