// Package resolve implements the input resolution pipeline: solver
// dispatch, cache-or-fetch, and best-effort write-through caching.
package resolve

import (
	"context"
	"strings"
	"time"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/koltyakov/aocd/internal/cache"
	"github.com/koltyakov/aocd/internal/domain"
	"github.com/koltyakov/aocd/internal/metrics"
	"github.com/koltyakov/aocd/internal/solver"
)

// CredentialLookup returns a session credential for a username, or
// [domain.ErrCredentialNotFound].
type CredentialLookup interface {
	LookupSession(ctx context.Context, username string) (string, error)
}

// Fetcher downloads raw puzzle input using a session credential.
type Fetcher interface {
	Fetch(ctx context.Context, key domain.PuzzleKey, credential string) (string, error)
}

// Options wires a [Pipeline]. User is the account whose credential
// authenticates upstream fetches.
type Options struct {
	User        string
	Cache       cache.Cache
	Credentials CredentialLookup
	Fetcher     Fetcher
	Solvers     *solver.Registry
	Metrics     metrics.Recorder
}

// Pipeline resolves puzzle answers. It holds no per-request state and is
// safe for concurrent use; concurrent misses for the same key may each
// fetch and write, with the last write winning.
type Pipeline struct {
	user    string
	cache   cache.Cache
	creds   CredentialLookup
	fetcher Fetcher
	solvers *solver.Registry
	metrics metrics.Recorder
}

func New(opts Options) *Pipeline {
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Noop()
	}
	return &Pipeline{
		user:    strings.TrimSpace(opts.User),
		cache:   opts.Cache,
		creds:   opts.Credentials,
		fetcher: opts.Fetcher,
		solvers: opts.Solvers,
		metrics: rec,
	}
}

// Resolve returns the solver's answer for key. Unsupported keys fail
// before any cache or network activity.
func (p *Pipeline) Resolve(ctx context.Context, key domain.PuzzleKey) (string, error) {
	start := time.Now()
	out, err := p.resolve(ctx, key)
	p.metrics.Resolve(ctx, key, time.Since(start), err)
	return out, err
}

func (p *Pipeline) resolve(ctx context.Context, key domain.PuzzleKey) (string, error) {
	fn, err := p.solvers.Resolve(key)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindUnsupported, Op: "resolve solver", Key: key, Err: err}
	}
	text, err := p.Input(ctx, key)
	if err != nil {
		return "", err
	}
	return fn(text), nil
}

// Input returns the raw input for key from the cache, fetching and caching
// it on a miss. It does not require a registered solver.
func (p *Pipeline) Input(ctx context.Context, key domain.PuzzleKey) (string, error) {
	if !key.Valid() {
		return "", &domain.Error{Kind: domain.KindUnsupported, Op: "resolve input", Key: key, Err: domain.ErrInvalidPuzzleKey}
	}
	logger := slogcontext.FromCtx(ctx).With("year", key.Year, "day", key.Day)

	if text, ok := p.cache.Get(ctx, key); ok {
		p.metrics.CacheLookup(ctx, true)
		logger.Debug("input cache hit")
		return text, nil
	}
	p.metrics.CacheLookup(ctx, false)

	if p.user == "" {
		return "", &domain.Error{Kind: domain.KindConfiguration, Op: "lookup credential", Key: key, Err: domain.ErrMissingUser}
	}
	credential, err := p.creds.LookupSession(ctx, p.user)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindStore, Op: "lookup credential", Key: key, Err: err}
	}

	// The fetch outlives caller cancellation so a completed download still
	// lands in the cache; the client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	text, err := p.fetcher.Fetch(fetchCtx, key, credential)
	p.metrics.Fetch(ctx, err)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindUpstream, Op: "fetch input", Key: key, Err: err}
	}
	logger.Info("fetched puzzle input", "bytes", len(text))

	werr := p.cache.Put(fetchCtx, key, text)
	p.metrics.CacheWrite(ctx, werr)
	if werr != nil {
		logger.Warn("input cache write failed", "err", &domain.Error{Kind: domain.KindCacheWrite, Op: "cache input", Key: key, Err: werr})
	}
	return text, nil
}
