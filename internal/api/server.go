package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/pipeline"
	"github.com/dgallion1/md2docx/internal/style"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for md2docx.
type Server struct {
	router       chi.Router
	converter    *convert.Converter
	orchestrator *pipeline.Orchestrator
	stats        *metrics.ConversionStats
	metrics      *metrics.Collectors
	defaults     style.Options
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats and collectors
// may be nil.
func NewServer(conv *convert.Converter, orch *pipeline.Orchestrator, stats *metrics.ConversionStats, collectors *metrics.Collectors, log *slog.Logger, cfg config.Config) *Server {
	defaults, err := cfg.StyleDefaults()
	if err != nil {
		log.Warn("invalid style defaults, using built-in", "error", err)
		defaults = style.Default()
	}
	s := &Server{
		converter:    conv,
		orchestrator: orch,
		stats:        stats,
		metrics:      collectors,
		defaults:     defaults,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints, only when a key is configured.
	if s.cfg.ConvertAPIKey != "" {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.cfg.ConvertAPIKey, s.log))

			if s.orchestrator != nil {
				r.Post("/api/jobs", s.handleSubmitJob)
				r.Get("/api/jobs/{jobID}", s.handleJobStatus)
				r.Get("/api/jobs/{jobID}/document", s.handleJobDocument)
			}
			r.Get("/api/stats/conversions", s.handleConversionStats)
		})
	}

	// Browser editor.
	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
