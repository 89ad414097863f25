package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/koltyakov/aocd/internal/cache"
	"github.com/koltyakov/aocd/internal/domain"
	"github.com/koltyakov/aocd/internal/solver"
	"github.com/koltyakov/aocd/internal/store"
	"github.com/koltyakov/aocd/internal/upstream"
)

var key2023d1 = domain.PuzzleKey{Year: 2023, Day: 1}

func sumLines(input string) string {
	total := 0
	for _, line := range strings.Split(input, "\n") {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil {
			total += n
		}
	}
	return strconv.Itoa(total)
}

type countingCache struct {
	inner  *cache.Memory
	putErr error
	gets   atomic.Int32
	puts   atomic.Int32
}

func newCountingCache() *countingCache {
	return &countingCache{inner: cache.NewMemory()}
}

func (c *countingCache) Get(ctx context.Context, key domain.PuzzleKey) (string, bool) {
	c.gets.Add(1)
	return c.inner.Get(ctx, key)
}

func (c *countingCache) Put(ctx context.Context, key domain.PuzzleKey, text string) error {
	c.puts.Add(1)
	if c.putErr != nil {
		return c.putErr
	}
	return c.inner.Put(ctx, key, text)
}

type fakeCredentials struct {
	mu      sync.Mutex
	byUser  map[string]string
	err     error
	lookups int
}

func (f *fakeCredentials) LookupSession(_ context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.byUser[username]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	return v, nil
}

type fakeFetcher struct {
	text     string
	err      error
	calls    atomic.Int32
	lastCred atomic.Value
	ctxErr   atomic.Value
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ domain.PuzzleKey, credential string) (string, error) {
	f.calls.Add(1)
	f.lastCred.Store(credential)
	f.ctxErr.Store(ctx.Err() != nil)
	return f.text, f.err
}

type fixture struct {
	cache   *countingCache
	creds   *fakeCredentials
	fetcher *fakeFetcher
	p       *Pipeline
}

func newFixture(user string) *fixture {
	reg := solver.New()
	reg.Register(key2023d1, sumLines)
	f := &fixture{
		cache:   newCountingCache(),
		creds:   &fakeCredentials{byUser: map[string]string{"bob": "abc123"}},
		fetcher: &fakeFetcher{text: "1\n2\n3"},
	}
	f.p = New(Options{
		User:        user,
		Cache:       f.cache,
		Credentials: f.creds,
		Fetcher:     f.fetcher,
		Solvers:     reg,
	})
	return f
}

func TestResolveMissFetchesOnceAndCaches(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	got, err := f.p.Resolve(context.Background(), key2023d1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "6" {
		t.Fatalf("expected 6, got %q", got)
	}
	if n := f.fetcher.calls.Load(); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}
	if cred, _ := f.fetcher.lastCred.Load().(string); cred != "abc123" {
		t.Fatalf("expected credential abc123, got %q", cred)
	}
	if text, ok := f.cache.inner.Get(context.Background(), key2023d1); !ok || text != "1\n2\n3" {
		t.Fatalf("expected fetched text cached verbatim, got %q, %v", text, ok)
	}
}

func TestResolveHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	if err := f.cache.inner.Put(context.Background(), key2023d1, "10\n20"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		got, err := f.p.Resolve(context.Background(), key2023d1)
		if err != nil {
			t.Fatal(err)
		}
		if got != "30" {
			t.Fatalf("call %d: expected 30, got %q", i, got)
		}
	}
	if n := f.fetcher.calls.Load(); n != 0 {
		t.Fatalf("expected no fetches on cache hits, got %d", n)
	}
	if f.creds.lookups != 0 {
		t.Fatalf("expected no credential lookups on cache hits, got %d", f.creds.lookups)
	}
}

func TestResolveCacheWriteFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	f.cache.putErr = errors.New("read-only file system")

	got, err := f.p.Resolve(context.Background(), key2023d1)
	if err != nil {
		t.Fatalf("expected cache write failure to be swallowed, got %v", err)
	}
	if got != "6" {
		t.Fatalf("expected 6, got %q", got)
	}
	if n := f.cache.puts.Load(); n != 1 {
		t.Fatalf("expected one put attempt, got %d", n)
	}
}

func TestResolveUnsupportedShortCircuits(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	_, err := f.p.Resolve(context.Background(), domain.PuzzleKey{Year: 1900, Day: 1})
	if !errors.Is(err, domain.ErrUnsupportedPuzzle) {
		t.Fatalf("expected ErrUnsupportedPuzzle, got %v", err)
	}
	if domain.KindOf(err) != domain.KindUnsupported {
		t.Fatalf("expected KindUnsupported, got %v", domain.KindOf(err))
	}
	if f.cache.gets.Load() != 0 || f.cache.puts.Load() != 0 {
		t.Fatal("expected no cache operations for unsupported key")
	}
	if f.fetcher.calls.Load() != 0 {
		t.Fatal("expected no fetch for unsupported key")
	}
}

func TestResolveMissingCredentialIsInternal(t *testing.T) {
	t.Parallel()

	f := newFixture("carol")
	_, err := f.p.Resolve(context.Background(), key2023d1)
	if !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
	if kind := domain.KindOf(err); kind != domain.KindStore {
		t.Fatalf("expected KindStore, got %v", kind)
	}
	if f.fetcher.calls.Load() != 0 {
		t.Fatal("expected no fetch without a credential")
	}
}

func TestResolveStoreUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	f.creds.err = errors.New("connection refused")
	_, err := f.p.Resolve(context.Background(), key2023d1)
	if kind := domain.KindOf(err); kind != domain.KindStore {
		t.Fatalf("expected KindStore, got %v (%v)", kind, err)
	}
	if f.fetcher.calls.Load() != 0 {
		t.Fatal("expected no fetch when the store is down")
	}
}

func TestResolveMissingUserIsConfigurationError(t *testing.T) {
	t.Parallel()

	f := newFixture("  ")
	_, err := f.p.Resolve(context.Background(), key2023d1)
	if kind := domain.KindOf(err); kind != domain.KindConfiguration {
		t.Fatalf("expected KindConfiguration, got %v (%v)", kind, err)
	}
	if f.creds.lookups != 0 {
		t.Fatal("expected no lookup without a configured user")
	}
}

func TestResolveFetchFailureIsUpstream(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	f.fetcher.err = upstream.ErrNetwork
	_, err := f.p.Resolve(context.Background(), key2023d1)
	if kind := domain.KindOf(err); kind != domain.KindUpstream {
		t.Fatalf("expected KindUpstream, got %v (%v)", kind, err)
	}
	if f.cache.puts.Load() != 0 {
		t.Fatal("expected no cache write after a failed fetch")
	}
	if n := f.fetcher.calls.Load(); n != 1 {
		t.Fatalf("expected a single attempt without retries, got %d", n)
	}
}

func TestFetchIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.p.Input(ctx, key2023d1); err != nil {
		t.Fatal(err)
	}
	if cancelled, _ := f.fetcher.ctxErr.Load().(bool); cancelled {
		t.Fatal("expected fetch context to be detached from caller cancellation")
	}
	if _, ok := f.cache.inner.Get(context.Background(), key2023d1); !ok {
		t.Fatal("expected input cached despite caller cancellation")
	}
}

func TestInputRejectsInvalidKey(t *testing.T) {
	t.Parallel()

	f := newFixture("bob")
	_, err := f.p.Input(context.Background(), domain.PuzzleKey{Year: 2023})
	if !errors.Is(err, domain.ErrInvalidPuzzleKey) {
		t.Fatalf("expected ErrInvalidPuzzleKey, got %v", err)
	}
	if f.cache.gets.Load() != 0 {
		t.Fatal("expected no cache lookup for invalid key")
	}
}

func TestResolveEndToEnd(t *testing.T) {
	var upstreamCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		if r.URL.Path != "/2023/day/1/input" {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc123" {
			http.Error(w, "bad session", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("1\n2\n3"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "aocd.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if _, err := st.InsertSession(context.Background(), "bob", "abc123"); err != nil {
		t.Fatal(err)
	}

	reg := solver.New()
	reg.Register(key2023d1, sumLines)
	inputs := cache.NewDir(filepath.Join(dir, "inputs"))
	p := New(Options{
		User:        "bob",
		Cache:       inputs,
		Credentials: st,
		Fetcher:     upstream.New(upstream.Options{BaseURL: srv.URL}),
		Solvers:     reg,
	})

	got, err := p.Resolve(context.Background(), key2023d1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "6" {
		t.Fatalf("expected 6, got %q", got)
	}
	text, ok := inputs.Get(context.Background(), key2023d1)
	if !ok || text != "1\n2\n3" {
		t.Fatalf("expected cached input, got %q, %v", text, ok)
	}

	if _, err := p.Resolve(context.Background(), key2023d1); err != nil {
		t.Fatal(err)
	}
	if n := upstreamCalls.Load(); n != 1 {
		t.Fatalf("expected one upstream call across two resolves, got %d", n)
	}
}
