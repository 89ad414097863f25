package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/koltyakov/aocd/internal/config"
	"github.com/koltyakov/aocd/internal/domain"
	ilog "github.com/koltyakov/aocd/internal/log"
)

const maxEventDay = 25

func runWarm(ctx context.Context, args []string) int {
	var (
		year        uint
		days        string
		concurrency int
	)
	cfg, rest, err := config.Parse("warm", args, func(fs *flag.FlagSet) {
		fs.UintVar(&year, "year", 0, "Event year to prefetch")
		fs.StringVar(&days, "days", "1-25", "Days to prefetch: N, A-B, or a comma list")
		fs.IntVar(&concurrency, "concurrency", 4, "Parallel upstream fetches")
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "warm config error:", err)
		return 2
	}
	if len(rest) > 0 {
		fmt.Fprintln(os.Stderr, "warm error: unexpected arguments:", strings.Join(rest, " "))
		return 2
	}
	if year == 0 || year > 1<<32-1 {
		fmt.Fprintln(os.Stderr, "warm error: missing or invalid --year")
		return 2
	}
	if concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "warm error: --concurrency must be > 0")
		return 2
	}
	dayList, err := parseDays(days)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warm error:", err)
		return 2
	}

	logger := ilog.NewWithWriter(os.Stderr, cfg.LogLevel)
	rt, err := buildRuntime(cfg, false, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		return 1
	}
	defer func() { _ = rt.Close(context.Background()) }()

	keys := make([]domain.PuzzleKey, 0, len(dayList))
	for _, d := range dayList {
		keys = append(keys, domain.PuzzleKey{Year: uint32(year), Day: d})
	}
	warmed, failed := warmInputs(ilog.WithLogger(ctx, logger), rt.pipeline, keys, concurrency)
	fmt.Printf("warmed %d/%d inputs\n", warmed, len(keys))
	if len(failed) > 0 {
		for _, f := range failed {
			fmt.Fprintln(os.Stderr, "warm failed:", f)
		}
		return 1
	}
	return 0
}

type inputSource interface {
	Input(ctx context.Context, key domain.PuzzleKey) (string, error)
}

// warmInputs resolves the input for every key with at most limit requests
// in flight. It returns the number of keys warmed and the failures.
// Cancellation of ctx stops scheduling further keys.
func warmInputs(ctx context.Context, src inputSource, keys []domain.PuzzleKey, limit int) (int, []error) {
	var (
		mu     sync.Mutex
		warmed int
		failed []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := src.Input(gctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", key, err))
				return nil
			}
			warmed++
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		failed = append(failed, err)
	}
	return warmed, failed
}

// parseDays accepts "N", "A-B" and comma-separated combinations of both.
// Days are deduplicated and returned in input order.
func parseDays(raw string) ([]uint32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty --days")
	}
	seen := map[uint32]bool{}
	var out []uint32
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			hi = lo
		}
		a, err := parseDay(lo)
		if err != nil {
			return nil, err
		}
		b, err := parseDay(hi)
		if err != nil {
			return nil, err
		}
		if a > b {
			return nil, fmt.Errorf("invalid day range %q", part)
		}
		for d := a; d <= b; d++ {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func parseDay(s string) (uint32, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > maxEventDay {
		return 0, fmt.Errorf("invalid day %q (want 1..%d)", s, maxEventDay)
	}
	return uint32(n), nil
}
