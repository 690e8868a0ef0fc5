// Package server runs the HTTP front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Brownie44l1/analyart/internal/config"
	"go.uber.org/zap"
)

// Server is the HTTP listener with its middleware stack.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Routes is anything that can register its handlers on a mux.
type Routes interface {
	Register(mux *http.ServeMux)
}

// New builds a Server for routes using cfg.
func New(cfg config.ServerConfig, routes Routes, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	routes.Register(mux)

	handler := Chain(
		Recovery(logger),
		Logger(logger),
		CORS(cfg.AllowedOrigins),
		RequestSize(cfg.MaxBodyBytes()),
	)(mux)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
