// Package web provides the HTTP server and handlers for the import console.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/history"
	"github.com/JonMunkholm/bookimport/internal/importer"
	mw "github.com/JonMunkholm/bookimport/internal/web/middleware"
)

// Deps are the collaborators of the server. Sessions and History are
// required; Metrics may be nil, in which case /metrics is not mounted.
type Deps struct {
	Sessions *Sessions
	History  history.Store
	Limiter  *importer.Limiter
	Metrics  http.Handler
}

// Server is the HTTP server of the import console.
type Server struct {
	cfg      *config.Config
	sessions *Sessions
	history  history.Store
	limiter  *importer.Limiter
	metrics  http.Handler
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server with its middleware and routes.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: deps.Sessions,
		history:  deps.History,
		limiter:  deps.Limiter,
		metrics:  deps.Metrics,
		router:   chi.NewRouter(),
	}
	if s.limiter == nil {
		s.limiter = importer.NewLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(mw.RateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleConsole)

		r.Route("/api", func(r chi.Router) {
			r.Use(mw.APIKeyAuth(s.cfg.Security.RequireAPIKey, s.cfg.Security.APIKeys))

			r.Route("/import", func(r chi.Router) {
				r.Get("/status", s.handleStatus)
				r.Post("/reset", s.handleReset)
				r.Get("/history", s.handleHistory)

				// Loads and sends hit the decoder and the catalog
				// server, so they get their own tighter budget.
				r.Group(func(r chi.Router) {
					if s.cfg.Rate.Enabled {
						r.Use(mw.RateLimit(s.cfg.Rate.UploadLimit))
					}
					r.Post("/file", s.handleLoadFile)
					r.Post("/submit", s.handleSubmit)
				})
			})

			r.Post("/fields/validate", s.handleValidateField)
			r.Post("/fields/validate-record", s.handleValidateRecord)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight decodes.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"time":     time.Now().UTC(),
		"sessions": s.sessions.Len(),
		"decoders": s.limiter.Status(),
	})
}
