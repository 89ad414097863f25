package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/acme/autocert"
)

func (s *Server) certManager() *autocert.Manager {
	return &autocert.Manager{
		Cache:      autocert.DirCache(s.cfg.CertCacheDir),
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(s.cfg.TLSDomain),
	}
}

func (s *Server) runTLS(ctx context.Context, handler http.Handler) error {
	manager := s.certManager()
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		TLSConfig:         tlsConfig,
	}
	httpsServer.RegisterOnShutdown(s.closeWebSockets)
	challengeServer := &http.Server{
		Addr:              s.cfg.ListenHTTP,
		Handler:           manager.HTTPHandler(http.NotFoundHandler()),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		s.log.Info("starting ACME challenge server", "addr", s.cfg.ListenHTTP)
		if err := challengeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("challenge server: %w", err)
		}
	}()
	go func() {
		s.log.Info("starting HTTPS server", "addr", s.cfg.Listen, "domain", s.cfg.TLSDomain)
		if err := httpsServer.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("https server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		var firstErr error
		if err := shutdownServer(httpsServer, shutdownTimeout); err != nil {
			firstErr = err
		}
		if err := shutdownServer(challengeServer, shutdownTimeout); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	case err := <-errCh:
		_ = shutdownServer(httpsServer, shutdownTimeout)
		_ = shutdownServer(challengeServer, shutdownTimeout)
		return err
	}
}
