// Package server exposes the aggregation query surface over HTTP: the live
// process table, the zero-activity table, per-process detail, batch
// ingestion, preferences and session deletion, plus Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analysis"
	"github.com/procsight/procsight/internal/config"
)

// Server serves the query API for one registry.
type Server struct {
	registry *analysis.Registry
	logger   *zap.Logger
	httpSrv  *http.Server
}

// New builds the server and its route table.
func New(cfg config.ServerConfig, registry *analysis.Registry, logger *zap.Logger) *Server {
	s := &Server{
		registry: registry,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions/{session}/process", s.handleLiveTable)
	mux.HandleFunc("GET /api/sessions/{session}/process/zero_cpu", s.handleZeroActivity)
	mux.HandleFunc("GET /api/sessions/{session}/process/{process}", s.handleProcessDetail)
	mux.HandleFunc("POST /api/sessions/{session}/track", s.handleTrack)
	mux.HandleFunc("GET /api/sessions/{session}/preferences", s.handleGetPreferences)
	mux.HandleFunc("POST /api/sessions/{session}/preferences", s.handleUpdatePreferences)
	mux.HandleFunc("DELETE /api/sessions/{session}", s.handleDeleteSession)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server configured", zap.String("addr", cfg.Addr))
	return s
}

// Handler returns the route table, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	sugar := s.logger.Sugar()

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("Context cancelled, shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
		return nil
	}
}
