// Package server exposes the resolution pipeline and session registration
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/koltyakov/aocd/internal/auth"
	"github.com/koltyakov/aocd/internal/config"
	"github.com/koltyakov/aocd/internal/domain"
)

// Resolver answers puzzle requests.
type Resolver interface {
	Resolve(ctx context.Context, key domain.PuzzleKey) (string, error)
	Input(ctx context.Context, key domain.PuzzleKey) (string, error)
}

// SessionStore persists registered credentials.
type SessionStore interface {
	InsertSession(ctx context.Context, username, value string) (domain.SessionCredential, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators a [Server] dispatches to. Metrics may be nil
// to disable /metrics.
type Deps struct {
	Resolver Resolver
	Store    SessionStore
	Puzzles  func() []domain.PuzzleKey
	Metrics  http.Handler
}

type Server struct {
	cfg        config.ServerConfig
	deps       Deps
	log        *slog.Logger
	registerKV *auth.Verifier
	requestSeq atomic.Uint64

	wsMu    sync.Mutex
	wsConns map[*websocket.Conn]struct{}
}

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func New(cfg config.ServerConfig, deps Deps, logger *slog.Logger) (*Server, error) {
	v, err := auth.NewVerifier(cfg.RegisterAPIKey)
	if err != nil {
		return nil, fmt.Errorf("register api key: %w", err)
	}
	if deps.Puzzles == nil {
		deps.Puzzles = func() []domain.PuzzleKey { return nil }
	}
	return &Server{
		cfg:        cfg,
		deps:       deps,
		log:        logger,
		registerKV: v,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/puzzles", s.handleListPuzzles).Methods(http.MethodGet)
	r.HandleFunc("/v1/puzzles/{year:[0-9]+}/{day:[0-9]+}", s.handleSolve).Methods(http.MethodGet)
	r.HandleFunc("/v1/puzzles/{year:[0-9]+}/{day:[0-9]+}/input", s.handleInput).Methods(http.MethodGet)
	r.HandleFunc("/v1/session", s.handleRegisterSession).Methods(http.MethodPost)
	r.HandleFunc("/v1/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics).Methods(http.MethodGet)
	}
	r.Use(s.requestContext)
	return r
}

// Run serves until ctx is cancelled or a listener fails. With a TLS domain
// configured it serves HTTPS with ACME certificates plus the HTTP-01
// challenge listener.
func (s *Server) Run(ctx context.Context) error {
	handler := s.Handler()
	if s.cfg.TLSDomain != "" {
		return s.runTLS(ctx, handler)
	}

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	srv.RegisterOnShutdown(s.closeWebSockets)
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return shutdownServer(srv, shutdownTimeout)
	case err := <-errCh:
		_ = shutdownServer(srv, shutdownTimeout)
		return err
	}
}

func shutdownServer(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
