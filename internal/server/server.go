// Package server exposes the query engine over HTTP and keeps the feed cache
// warm on a cron schedule.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/engine"
)

// RequestTimeout bounds a single API request, including any upstream fetch.
const RequestTimeout = 90 * time.Second

// Config holds server configuration.
type Config struct {
	Addr    string
	Log     zerolog.Logger
	Service *engine.Service
	// AllowedOrigins lists CORS origins; empty allows any.
	AllowedOrigins []string
}

// Server is the HTTP API.
type Server struct {
	router *chi.Mux
	server *http.Server
	svc    *engine.Service
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a server with routes and middleware installed.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    cfg.Service,
		log:    cfg.Log.With().Str("component", "server").Logger(),
		now:    time.Now,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(RequestTimeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Post("/query", s.handleQuery)
		r.Post("/ask", s.handleAsk)
		r.Route("/seasons", func(r chi.Router) {
			r.Get("/", s.handleSeasons)
			r.Get("/{season}", s.handleSeasonInfo)
		})
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
