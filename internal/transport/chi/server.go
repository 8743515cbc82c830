// Package chi serves the operational HTTP surface: health, metrics, build
// info and debug views of the tag index.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/furnsearch/internal/usecase/health"
	"github.com/kailas-cloud/furnsearch/internal/version"
)

const (
	codeUnauthorized = "UNAUTHORIZED"
	codeInternal     = "INTERNAL_ERROR"
	codeUnavailable  = "UNAVAILABLE"
)

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// TagIndexExporter dumps the pre-computed tag index.
type TagIndexExporter interface {
	Export(w io.Writer) error
}

// Config holds the ops listener settings.
type Config struct {
	Addr            string
	APIKeys         []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the ops HTTP server.
type Server struct {
	health   HealthChecker
	tagIndex TagIndexExporter
	cfg      Config
	srv      *http.Server
	logger   *zap.Logger
}

// NewServer creates an ops server. tagIndex may be nil.
func NewServer(cfg Config, health HealthChecker, tagIndex TagIndexExporter, logger *zap.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{health: health, tagIndex: tagIndex, cfg: cfg, logger: logger}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/version", s.Version)
	r.Get("/debug/tag-index", s.TagIndex)
	return r
}

// Start listens in the background and returns the bound address. Serve
// errors other than a clean shutdown are logged.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ops server error", zap.Error(err))
		}
	}()
	s.logger.Info("Ops server listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Shutdown drains the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown ops server: %w", err)
	}
	return nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

// TagIndex handles GET /debug/tag-index.
func (s *Server) TagIndex(w http.ResponseWriter, _ *http.Request) {
	if s.tagIndex == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "related tags disabled")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := s.tagIndex.Export(w); err != nil {
		s.logger.Error("Tag index export failed", zap.Error(err))
	}
}

type errorResponse struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
