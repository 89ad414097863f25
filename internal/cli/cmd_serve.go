package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/koltyakov/aocd/internal/config"
	"github.com/koltyakov/aocd/internal/debughttp"
	ilog "github.com/koltyakov/aocd/internal/log"
	"github.com/koltyakov/aocd/internal/server"
)

func runServe(ctx context.Context, args []string) int {
	cfg, err := config.ParseServerFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server config error:", err)
		return 2
	}
	logger := ilog.New(cfg.LogLevel)

	rt, err := buildRuntime(cfg, cfg.MetricsEnabled, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			logger.Warn("shutdown cleanup failed", "err", err)
		}
	}()

	if _, err := debughttp.Start(ctx, cfg.PprofListen, logger); err != nil {
		fmt.Fprintln(os.Stderr, "server config error: pprof:", err)
		return 2
	}

	var metricsHandler http.Handler
	if rt.metrics != nil {
		metricsHandler = rt.metrics.Handler()
	}
	s, err := server.New(cfg, server.Deps{
		Resolver: rt.pipeline,
		Store:    rt.store,
		Puzzles:  rt.solvers.Keys,
		Metrics:  metricsHandler,
	}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server config error:", err)
		return 2
	}

	logger.Info("aocd starting",
		"version", Version,
		"db_driver", rt.store.Driver(),
		"cache_dir", cfg.CacheDir,
		"user", cfg.CurrentUser,
		"solvers", len(rt.solvers.Keys()),
	)
	if err := s.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		return 1
	}
	return 0
}
