package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/koltyakov/aocd/internal/config"
)

var serverEnvKeys = []string{
	"AOC_LISTEN", "AOC_DB_URL", "AOC_USER", "AOC_CACHE_DIR", "AOC_UPSTREAM_URL",
	"AOC_FETCH_TIMEOUT", "AOC_LOG_LEVEL", "AOC_REGISTER_API_KEY", "AOC_TLS_DOMAIN",
	"AOC_METRICS", "AOC_PPROF_LISTEN", "DATABASE_URL", "CURRENT_USER",
}

func clearServerEnvVarsForTest(t *testing.T) {
	t.Helper()
	for _, k := range serverEnvKeys {
		t.Setenv(k, "")
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadServerEnvFromDotEnvLoadsRecognizedVars(t *testing.T) {
	clearServerEnvVarsForTest(t)
	t.Setenv("OTHER_VAR", "")
	path := writeEnvFile(t, "AOC_USER=alice\nDATABASE_URL=postgres://db/aoc\nCURRENT_USER=bob\nOTHER_VAR=skip\n")

	loadServerEnvFromDotEnv(path)

	if got := os.Getenv("AOC_USER"); got != "alice" {
		t.Fatalf("expected AOC_USER from file, got %q", got)
	}
	if got := os.Getenv("DATABASE_URL"); got != "postgres://db/aoc" {
		t.Fatalf("expected DATABASE_URL from file, got %q", got)
	}
	if got := os.Getenv("CURRENT_USER"); got != "bob" {
		t.Fatalf("expected CURRENT_USER from file, got %q", got)
	}
	if got := os.Getenv("OTHER_VAR"); got != "" {
		t.Fatalf("expected unrelated var not to be loaded, got %q", got)
	}
}

func TestLoadServerEnvFromDotEnvKeepsExistingEnv(t *testing.T) {
	clearServerEnvVarsForTest(t)
	t.Setenv("AOC_USER", "from-env")
	path := writeEnvFile(t, "AOC_USER=from-file\n")

	loadServerEnvFromDotEnv(path)

	if got := os.Getenv("AOC_USER"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}

func TestServerConfigPrefersCLIFlagsOverDotEnv(t *testing.T) {
	clearServerEnvVarsForTest(t)
	path := writeEnvFile(t, "AOC_USER=from-file\nAOC_DB_URL=./from-file.db\n")

	loadServerEnvFromDotEnv(path)
	cfg, err := config.ParseServerFlags([]string{"--user", "from-cli", "--db", "./from-cli.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentUser != "from-cli" {
		t.Fatalf("expected CLI user to win, got %q", cfg.CurrentUser)
	}
	if cfg.DBURL != "./from-cli.db" {
		t.Fatalf("expected CLI db to win, got %q", cfg.DBURL)
	}
}

func TestLoadServerEnvFromMissingFileIsNoop(t *testing.T) {
	clearServerEnvVarsForTest(t)

	loadServerEnvFromDotEnv(filepath.Join(t.TempDir(), "missing.env"))

	if got := os.Getenv("AOC_USER"); got != "" {
		t.Fatalf("expected no change, got %q", got)
	}
}

func TestParseEnvAssignment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		line     string
		key, val string
		ok       bool
	}{
		{"AOC_USER=alice", "AOC_USER", "alice", true},
		{"export AOC_USER=alice", "AOC_USER", "alice", true},
		{`AOC_USER="quoted value"`, "AOC_USER", "quoted value", true},
		{"AOC_USER='single'", "AOC_USER", "single", true},
		{"DATABASE_URL=postgres://u:p@h/db?sslmode=disable", "DATABASE_URL", "postgres://u:p@h/db?sslmode=disable", true},
		{"# comment", "", "", false},
		{"   ", "", "", false},
		{"NOVALUE", "", "", false},
		{"BAD KEY=x", "", "", false},
	}
	for _, tc := range cases {
		key, val, ok := parseEnvAssignment(tc.line)
		if ok != tc.ok || key != tc.key || val != tc.val {
			t.Fatalf("parseEnvAssignment(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.line, key, val, ok, tc.key, tc.val, tc.ok)
		}
	}
}
