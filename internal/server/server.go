// Package server exposes the screening service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/config"
	"github.com/abhisek/mamacheck/internal/metrics"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server serves the JSON API, health and metrics endpoints.
type Server struct {
	service  *screening.Service
	sessions *session.Manager
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger

	// provider is the resolved LLM provider name, reported by /healthz.
	provider  string
	startTime time.Time

	mux        *http.ServeMux
	httpServer *http.Server
	cfg        config.ServerConfig
}

// New wires the routes. provider is informational and may be empty.
func New(cfg config.ServerConfig, svc *screening.Service, sessions *session.Manager, m *metrics.Metrics, provider string, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		service:   svc,
		sessions:  sessions,
		metrics:   m,
		logger:    logger,
		provider:  provider,
		startTime: time.Now(),
		mux:       http.NewServeMux(),
		cfg:       cfg,
	}

	s.route("POST", "/api/v1/assess", s.handleAssess)
	s.route("POST", "/api/v1/context", s.handleContext)
	s.route("POST", "/api/v1/sessions", s.handleCreateSession)
	s.route("GET", "/api/v1/sessions/{id}", s.handleGetSession)
	s.route("DELETE", "/api/v1/sessions/{id}", s.handleDeleteSession)
	s.route("PUT", "/api/v1/sessions/{id}/patient", s.handleSetPatient)
	s.route("GET", "/api/v1/sessions/{id}/question", s.handleNextQuestion)
	s.route("POST", "/api/v1/sessions/{id}/answers", s.handleAnswer)
	s.route("GET", "/api/v1/sessions/{id}/assessment", s.handleSessionAssessment)
	s.route("GET", "/healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", m.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) route(method, path string, h http.HandlerFunc) {
	s.mux.Handle(method+" "+path, s.instrument(path, h))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
