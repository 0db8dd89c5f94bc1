// Package web provides the HTTP server and handlers for browsing loaded
// colleges and saving them to the database.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/gradebook/internal/college"
	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/store"
	weblog "github.com/JonMunkholm/gradebook/internal/web/middleware"
)

// LoadStore is the persistence the server needs. *store.Store satisfies it.
type LoadStore interface {
	Ping(ctx context.Context) error
	Save(ctx context.Context, repo *core.Repository) (store.SaveResult, error)
	LatestLoad(ctx context.Context, college string) (store.Load, error)
	LoadByID(ctx context.Context, loadID uuid.UUID) (store.Load, error)
	InstructorSummary(ctx context.Context, loadID uuid.UUID) ([]core.InstructorSummary, error)
	DeleteLoad(ctx context.Context, loadID uuid.UUID) error
}

// Server is the HTTP server for the gradebook.
type Server struct {
	colleges *college.Service
	store    LoadStore // nil when no database is configured
	cfg      config.ServerConfig
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server. st may be nil, in which case the
// persistence endpoints answer 503.
func NewServer(colleges *college.Service, st LoadStore, cfg config.ServerConfig) *Server {
	s := &Server{
		colleges: colleges,
		store:    st,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/colleges/{college}/instructors", s.handleInstructorsPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/colleges", s.handleListColleges)
		r.Get("/summaries", s.handleAllSummaries)

		r.Route("/colleges/{college}", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/majors", s.handleMajors)
			r.Get("/students", s.handleStudents)
			r.Get("/instructors", s.handleInstructors)

			// Persistence
			r.Post("/persist", s.handlePersist)
			r.Get("/stored-instructors", s.handleStoredInstructors)
		})

		r.Delete("/loads/{loadID}", s.handleDeleteLoad)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "store", s.store != nil)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		// Pages carry one inline stylesheet and no scripts
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
