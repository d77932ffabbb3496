// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultAddr        = ":8000"
	defaultReadTimeout = 10 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// QueryHandler answers one research query.
type QueryHandler interface {
	Handle(ctx context.Context, query string) (types.ResponseRecord, error)
}

// HistoryReader serves previously recorded responses.
type HistoryReader interface {
	Recent(ctx context.Context, opts history.ListOptions) ([]types.HistoryEntry, error)
	Get(ctx context.Context, id string) (types.HistoryEntry, error)
}

// Server is the HTTP front of the research assistant.
type Server struct {
	cfg     types.ServerConfig
	engine  *gin.Engine
	handler QueryHandler
	history HistoryReader
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the /history routes.
func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// New builds the gin engine and attaches routes.
func New(cfg types.ServerConfig, handler QueryHandler, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}

	s := &Server{cfg: cfg, handler: handler, logger: logger}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	s.attachRoutes(r)
	s.engine = r
	return s
}

func (s *Server) attachRoutes(r *gin.Engine) {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.healthz)
	r.POST("/query", s.query)

	if s.history != nil {
		h := r.Group("/history")
		{
			h.GET("", s.listHistory)
			h.GET("/:id", s.getHistory)
		}
	}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("research assistant listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("research assistant stopped")
	return nil
}
