package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/koltyakov/aocd/internal/cache"
	"github.com/koltyakov/aocd/internal/config"
	"github.com/koltyakov/aocd/internal/metrics"
	"github.com/koltyakov/aocd/internal/resolve"
	"github.com/koltyakov/aocd/internal/solutions"
	"github.com/koltyakov/aocd/internal/solver"
	"github.com/koltyakov/aocd/internal/store"
	"github.com/koltyakov/aocd/internal/upstream"
)

// runtime holds the process-wide collaborators shared by serve, solve and
// warm.
type runtime struct {
	store    *store.Store
	solvers  *solver.Registry
	metrics  *metrics.Provider
	pipeline *resolve.Pipeline
}

func openStore(cfg config.ServerConfig) (*store.Store, error) {
	return store.OpenWithOptions(cfg.DBURL, store.OpenOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
}

func newCache(cfg config.ServerConfig) cache.Cache {
	if cfg.CacheDir == "" {
		return cache.NewMemory()
	}
	return cache.NewDir(cfg.CacheDir)
}

func buildRuntime(cfg config.ServerConfig, withMetrics bool, logger *slog.Logger) (*runtime, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt := &runtime{store: st, solvers: solutions.Registry()}

	var rec metrics.Recorder
	if withMetrics {
		rt.metrics, err = metrics.New()
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		rec = rt.metrics.Recorder()
	}

	if cfg.CurrentUser == "" {
		logger.Warn("no current user configured; cache misses will fail until AOC_USER or CURRENT_USER is set")
	}
	rt.pipeline = resolve.New(resolve.Options{
		User:        cfg.CurrentUser,
		Cache:       newCache(cfg),
		Credentials: st,
		Fetcher: upstream.New(upstream.Options{
			BaseURL:      cfg.UpstreamURL,
			UserAgent:    cfg.UserAgent,
			Timeout:      cfg.FetchTimeout,
			MaxBodyBytes: cfg.MaxInputBytes,
		}),
		Solvers: rt.solvers,
		Metrics: rec,
	})
	return rt, nil
}

func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.metrics != nil {
		errs = append(errs, rt.metrics.Shutdown(ctx))
	}
	errs = append(errs, rt.store.Close())
	return errors.Join(errs...)
}
