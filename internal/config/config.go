package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Listen         string
	ListenHTTP     string
	DBURL          string
	DBMaxOpenConns int
	DBMaxIdleConns int
	CurrentUser    string
	CacheDir       string
	UpstreamURL    string
	UserAgent      string
	FetchTimeout   time.Duration
	MaxInputBytes  int64
	LogLevel       string
	RegisterAPIKey string
	TLSDomain      string
	CertCacheDir   string
	MetricsEnabled bool
	PprofListen    string
}

const defaultListen = ":8080"
const defaultHTTPChallengeListen = ":80"
const defaultDBURL = "./aocd.db"
const defaultCacheDir = "./inputs"
const defaultUpstreamURL = "https://adventofcode.com"
const defaultUserAgent = "github.com/koltyakov/aocd"
const defaultCertCacheDir = "./cert"
const defaultFetchTimeout = 30 * time.Second
const defaultMaxInputBytes = 4 * 1024 * 1024

// ParseServerFlags parses the serve command flags over environment defaults.
func ParseServerFlags(args []string) (ServerConfig, error) {
	cfg, _, err := Parse("serve", args, nil)
	return cfg, err
}

// Parse builds a ServerConfig from environment defaults and args. extra may
// register command-specific flags on the same set. Positional arguments
// left after flag parsing are returned.
func Parse(name string, args []string, extra func(fs *flag.FlagSet)) (ServerConfig, []string, error) {
	cfg := ServerConfig{
		Listen:         envOrDefault("AOC_LISTEN", defaultListen),
		ListenHTTP:     envOrDefault("AOC_LISTEN_HTTP_CHALLENGE", defaultHTTPChallengeListen),
		DBURL:          envOrDefault("AOC_DB_URL", envOrDefault("DATABASE_URL", defaultDBURL)),
		DBMaxOpenConns: envIntOrDefault("AOC_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: envIntOrDefault("AOC_DB_MAX_IDLE_CONNS", 10),
		CurrentUser:    envOrDefault("AOC_USER", envOrDefault("CURRENT_USER", "")),
		CacheDir:       envOrDefault("AOC_CACHE_DIR", defaultCacheDir),
		UpstreamURL:    envOrDefault("AOC_UPSTREAM_URL", defaultUpstreamURL),
		UserAgent:      envOrDefault("AOC_USER_AGENT", defaultUserAgent),
		FetchTimeout:   envDurationOrDefault("AOC_FETCH_TIMEOUT", defaultFetchTimeout),
		MaxInputBytes:  defaultMaxInputBytes,
		LogLevel:       envOrDefault("AOC_LOG_LEVEL", "info"),
		RegisterAPIKey: envOrDefault("AOC_REGISTER_API_KEY", ""),
		TLSDomain:      envOrDefault("AOC_TLS_DOMAIN", ""),
		CertCacheDir:   envOrDefault("AOC_CERT_CACHE_DIR", defaultCertCacheDir),
		MetricsEnabled: envBoolOrDefault("AOC_METRICS", true),
		PprofListen:    envOrDefault("AOC_PPROF_LISTEN", ""),
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP(S) listen address")
	fs.StringVar(&cfg.ListenHTTP, "http-challenge-listen", cfg.ListenHTTP, "HTTP-01 challenge listen address (TLS only)")
	fs.StringVar(&cfg.DBURL, "db", cfg.DBURL, "SQLite path or postgres:// URL")
	fs.IntVar(&cfg.DBMaxOpenConns, "db-max-open-conns", cfg.DBMaxOpenConns, "Max open DB connections")
	fs.IntVar(&cfg.DBMaxIdleConns, "db-max-idle-conns", cfg.DBMaxIdleConns, "Max idle DB connections")
	fs.StringVar(&cfg.CurrentUser, "user", cfg.CurrentUser, "Username whose session fetches inputs")
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Input cache directory (empty for in-memory)")
	fs.StringVar(&cfg.UpstreamURL, "upstream", cfg.UpstreamURL, "Puzzle site base URL")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Upstream request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&cfg.RegisterAPIKey, "register-api-key", cfg.RegisterAPIKey, "Bearer key required by POST /v1/session (optional)")
	fs.StringVar(&cfg.TLSDomain, "tls-domain", cfg.TLSDomain, "Serve HTTPS with ACME certificates for this domain")
	fs.StringVar(&cfg.CertCacheDir, "cert-cache-dir", cfg.CertCacheDir, "TLS cert cache dir")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Expose Prometheus metrics on /metrics")
	fs.StringVar(&cfg.PprofListen, "pprof-listen", cfg.PprofListen, "Optional pprof listen address (e.g. 127.0.0.1:6060)")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	if cfg.DBURL == "" {
		return cfg, nil, errors.New("missing --db or AOC_DB_URL")
	}
	if cfg.DBMaxOpenConns <= 0 {
		return cfg, nil, errors.New("db max open conns must be > 0")
	}
	if cfg.DBMaxIdleConns <= 0 {
		return cfg, nil, errors.New("db max idle conns must be > 0")
	}
	if cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		return cfg, nil, errors.New("db max idle conns cannot exceed max open conns")
	}
	cfg.CurrentUser = strings.TrimSpace(cfg.CurrentUser)
	cfg.CacheDir = strings.TrimSpace(cfg.CacheDir)
	if cfg.FetchTimeout <= 0 {
		return cfg, nil, errors.New("fetch timeout must be > 0")
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return cfg, nil, errors.New("log level must be one of: debug, info, warn, error")
	}
	cfg.UpstreamURL = strings.TrimRight(strings.TrimSpace(cfg.UpstreamURL), "/")
	if !strings.HasPrefix(cfg.UpstreamURL, "http://") && !strings.HasPrefix(cfg.UpstreamURL, "https://") {
		return cfg, nil, errors.New("upstream must be an http(s) URL")
	}
	cfg.TLSDomain = normalizeDomainHost(cfg.TLSDomain)
	cfg.PprofListen = strings.TrimSpace(cfg.PprofListen)

	return cfg, fs.Args(), nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBoolOrDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func normalizeDomainHost(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	if idx := strings.Index(v, "/"); idx >= 0 {
		v = v[:idx]
	}
	if strings.HasPrefix(v, "[") {
		if end := strings.Index(v, "]"); end > 0 {
			v = v[1:end]
		}
	} else if strings.Contains(v, ":") {
		parts := strings.Split(v, ":")
		v = parts[0]
	}
	return strings.TrimSuffix(v, ".")
}
