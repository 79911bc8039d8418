package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

// Server wraps http.Server with the lifecycle cmd/server expects.
type Server struct {
	srv *http.Server
}

// New returns a Server listening on addr with sane timeouts for a
// request/response API driven by humans at a phone.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
// A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	log.Printf("server: listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
