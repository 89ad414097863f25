package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/koltyakov/aocd/internal/solutions"
)

func printUsage() {
	fmt.Println(`aocd - puzzle input cache and solver service

Fetches puzzle inputs with a stored session cookie, caches them on disk,
and serves solver answers over HTTP.

Usage:
  aocd [flags]                          Start the HTTP server (same as serve)
  aocd serve [flags]                    Start the HTTP server
  aocd solve [flags] <year> <day>       Print the answer for one puzzle
                                        --input prints the raw input instead
  aocd warm --year Y [--days 1-25]      Prefetch inputs into the cache
            [--concurrency N]
  aocd session add --username U --val V Register a session cookie
  aocd session list [--username U]      List stored session cookies (masked)
  aocd solvers                          List compiled-in solvers
  aocd version                          Print version
  aocd help                             Show this help

HTTP API:
  GET  /v1/puzzles                      Registered solvers (JSON)
  GET  /v1/puzzles/{year}/{day}         Solver answer (text)
  GET  /v1/puzzles/{year}/{day}/input   Raw puzzle input (text)
  POST /v1/session                      {"username":"...","val":"..."}
  GET  /v1/ws                           Websocket: {"year":Y,"day":D} per frame
  GET  /healthz, /readyz, /metrics

Environment Variables:
  AOC_LISTEN              Listen address (default: :8080)
  AOC_DB_URL              SQLite path or postgres:// URL (fallback: DATABASE_URL, default: ./aocd.db)
  AOC_USER                Account whose session fetches inputs (fallback: CURRENT_USER)
  AOC_CACHE_DIR           Input cache directory (default: ./inputs, empty for in-memory)
  AOC_UPSTREAM_URL        Puzzle site base URL (default: https://adventofcode.com)
  AOC_FETCH_TIMEOUT       Upstream request timeout (default: 30s)
  AOC_REGISTER_API_KEY    Bearer key required by POST /v1/session (optional)
  AOC_TLS_DOMAIN          Serve HTTPS via ACME for this domain (optional)
  AOC_METRICS             Expose /metrics (default: true)
  AOC_PPROF_LISTEN        Optional pprof listen address (e.g. 127.0.0.1:6060)
  AOC_LOG_LEVEL           Log level: debug|info|warn|error (default: info)

Values are also read from ./.env without overriding the environment.`)
}

// Version is set at build time via -ldflags.
var Version = "dev"

func init() {
	if Version == "dev" {
		if desc, err := exec.Command("git", "describe", "--tags", "--always").Output(); err == nil {
			if v := strings.TrimSpace(string(desc)); v != "" {
				Version = v + "-dev"
			}
		}
	}
	if Version != "dev" && !strings.HasPrefix(Version, "v") {
		Version = "v" + Version
	}
}

func printVersion() {
	fmt.Println("aocd", Version)
}

func runSolvers() int {
	for _, k := range solutions.Registry().Keys() {
		fmt.Println(k)
	}
	return 0
}
