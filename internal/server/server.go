// internal/server/server.go

// Package server exposes the uploader's JSON/HTTP API.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pfs-target-uploader/internal/common/config"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/simulation"
	"pfs-target-uploader/internal/uploads"
)

// RegistryReader is the read side of the upload registry.
type RegistryReader interface {
	GetByID(ctx context.Context, uploadID string) (*uploads.Record, error)
	List(ctx context.Context, limit int) ([]uploads.Record, error)
}

// UploadSearcher answers free-text queries over the upload listing.
type UploadSearcher interface {
	Search(ctx context.Context, query string, size int) ([]uploads.Record, error)
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP API front of the pipeline service.
type Server struct {
	service  *simulation.Service
	queue    *simulation.Queue
	registry RegistryReader
	search   UploadSearcher
	cfg      *config.Config
	logger   logger.Logger
	checks   map[string]HealthCheck
}

// New creates the API server. queue may be nil, disabling async
// simulation requests; search may be nil, in which case listing queries
// fall back to the registry.
func New(
	service *simulation.Service,
	queue *simulation.Queue,
	registry RegistryReader,
	search UploadSearcher,
	cfg *config.Config,
	log logger.Logger,
	checks map[string]HealthCheck,
) *Server {
	return &Server{
		service:  service,
		queue:    queue,
		registry: registry,
		search:   search,
		cfg:      cfg,
		logger:   log,
		checks:   checks,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("GET /api/uploads", s.handleListUploads)
	mux.HandleFunc("GET /api/uploads/{id}", s.handleGetUpload)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// HTTPServer wires the handler into a configured http.Server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}
}
