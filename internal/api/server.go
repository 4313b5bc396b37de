// Package api exposes the optional status and metrics HTTP surface of a
// crawl run.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recrawl/recrawl/internal/crawler"
)

// StatusSource provides a point-in-time view of the running crawl.
type StatusSource interface {
	Snapshot() crawler.Snapshot
}

// Server wires the status routes to a StatusSource.
type Server struct {
	router chi.Router
	source StatusSource
	logger *zap.Logger
}

// NewServer constructs a Server with its routes registered.
func NewServer(source StatusSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		source: source,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/statusz", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router = r
	return s
}

// Handler returns the HTTP handler for the status server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Snapshot()); err != nil {
		s.logger.Warn("encode status snapshot failed", zap.Error(err))
	}
}
