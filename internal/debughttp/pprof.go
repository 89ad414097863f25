// Package debughttp serves runtime profiling endpoints on a separate,
// operator-only listener.
package debughttp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	httppprof "net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Start binds addr and serves /debug/pprof until ctx is cancelled. A blank
// addr disables the listener and returns a nil address. Bind errors are
// returned synchronously.
func Start(ctx context.Context, addr string, log *slog.Logger) (net.Addr, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info("pprof listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", "err", err)
		}
	}()
	return ln.Addr(), nil
}

func newRouter() *mux.Router {
	r := mux.NewRouter()
	d := r.PathPrefix("/debug/pprof").Subrouter()
	d.HandleFunc("/cmdline", httppprof.Cmdline)
	d.HandleFunc("/profile", httppprof.Profile)
	d.HandleFunc("/symbol", httppprof.Symbol)
	d.HandleFunc("/trace", httppprof.Trace)
	d.PathPrefix("/").HandlerFunc(httppprof.Index)
	return r
}
