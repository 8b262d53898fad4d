package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
	"github.com/couchcryptid/geo-position-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps conversion request bodies.
const maxBodyBytes = 1 << 16

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the operational endpoints (/healthz, /readyz, /metrics)
// and the synchronous coordinate conversion API under /v1.
type Server struct {
	httpServer *http.Server
	normalizer domain.Normalizer
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires every route onto a fresh ServeMux. A nil normalizer falls
// back to domain.DefaultNormalizer.
func NewServer(addr string, ready ReadinessChecker, normalizer domain.Normalizer, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if normalizer == nil {
		normalizer = domain.DefaultNormalizer
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/dms/parse", s.handleParse)
	mux.HandleFunc("GET /v1/dms/format", s.handleFormat)
	mux.HandleFunc("GET /v1/normalize", s.handleNormalize)
	mux.HandleFunc("POST /v1/positions/normalize", s.handleNormalizePosition)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains open connections before the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the mux so tests can drive the server directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
