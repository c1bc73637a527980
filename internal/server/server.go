// Package server exposes bakes of one vault over HTTP.
package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agusx1211/notebake"
)

type Config struct {
	// APIKey enables bearer authentication on /api routes when set.
	APIKey string
	// Settings are used for every field a request leaves unset.
	Settings     notebake.Settings
	MaxBodyBytes int64
}

// Server is the HTTP API server for a vault.
type Server struct {
	router chi.Router
	baker  *notebake.Baker
	log    *slog.Logger
	cfg    Config
}

func New(baker *notebake.Baker, log *slog.Logger, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		baker: baker,
		log:   log,
		cfg:   cfg,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Get("/api/bake", s.handleBake)
		r.Post("/api/bake", s.handleBakeToFile)
		r.Get("/api/count", s.handleCount)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
