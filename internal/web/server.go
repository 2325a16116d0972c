// Package web provides the HTTP server and handlers for the gradebook UI
// and its JSON API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	appmw "github.com/JonMunkholm/gradebook/internal/web/middleware"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and the other fields of an upload.
const multipartOverhead = 1 << 20

// Server is the HTTP server for the gradebook application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics http.Handler
	router  *chi.Mux
	server  *http.Server

	limiters []*appmw.RateLimiter
	stop     context.CancelFunc
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics serves h at the configured metrics path.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)
	s.router.Use(requestMetadata)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

func (s *Server) newLimiter(perMinute int) *appmw.RateLimiter {
	rl := appmw.NewRateLimiter(perMinute)
	rl.OnLimited = func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
	}
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handlePage)
	s.router.Post("/students", s.handleStudentForm)
	s.router.Post("/students/{index}/delete", s.handleDeleteRowForm)
	s.router.Get("/export/{kind}", s.handleExport)

	s.router.Group(func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.newLimiter(s.cfg.Rate.UploadLimit).Handler)
		}
		r.Post("/upload", s.handleUpload)
	})

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/table", s.handleAPITable)
		r.Get("/statistics", s.handleAPIStatistics)
		r.Get("/charts/{grouping}", s.handleAPIChart)
		r.Post("/students", s.handleAPIUpsert)
		r.Delete("/students/{name}", s.handleAPIDeleteStudent)
		r.Delete("/rows/{index}", s.handleAPIDeleteRow)
	})

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics)
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errNoRoute, http.StatusNotFound)
	})
}

// Start begins listening for HTTP requests. It blocks until the server
// stops; after Shutdown it returns http.ErrServerClosed.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	for _, rl := range s.limiters {
		go rl.Cleanup(ctx, time.Minute)
	}

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

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stop != nil {
		s.stop()
	}
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
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if s.cfg.Security.EnableCSP {
			// Inline styles carry the chart bar widths.
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'")
		}

		next.ServeHTTP(w, r)
	})
}

// renderHTML writes a templ component with the given status.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render failed", "path", r.URL.Path, "error", err)
	}
}
