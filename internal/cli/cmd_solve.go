package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/koltyakov/aocd/internal/config"
	"github.com/koltyakov/aocd/internal/domain"
	ilog "github.com/koltyakov/aocd/internal/log"
)

func runSolve(ctx context.Context, args []string) int {
	var inputOnly bool
	cfg, rest, err := config.Parse("solve", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&inputOnly, "input", false, "Print the raw input instead of the answer")
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "solve config error:", err)
		return 2
	}
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: aocd solve [flags] <year> <day>")
		return 2
	}
	key, err := parseKeyArgs(rest[0], rest[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "solve error:", err)
		return 2
	}

	logger := ilog.NewWithWriter(os.Stderr, cfg.LogLevel)
	rt, err := buildRuntime(cfg, false, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		return 1
	}
	defer func() { _ = rt.Close(context.Background()) }()

	ctx = ilog.WithLogger(ctx, logger)
	var out string
	if inputOnly {
		out, err = rt.pipeline.Input(ctx, key)
	} else {
		out, err = rt.pipeline.Resolve(ctx, key)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve %s failed (%s): %v\n", key, domain.KindOf(err), err)
		return 1
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return 0
}

func parseKeyArgs(year, day string) (domain.PuzzleKey, error) {
	y, err := strconv.ParseUint(strings.TrimSpace(year), 10, 32)
	if err != nil {
		return domain.PuzzleKey{}, fmt.Errorf("invalid year %q", year)
	}
	d, err := strconv.ParseUint(strings.TrimSpace(day), 10, 32)
	if err != nil {
		return domain.PuzzleKey{}, fmt.Errorf("invalid day %q", day)
	}
	key := domain.PuzzleKey{Year: uint32(y), Day: uint32(d)}
	if !key.Valid() {
		return domain.PuzzleKey{}, domain.ErrInvalidPuzzleKey
	}
	return key, nil
}
