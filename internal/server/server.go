// Package server provides the HTTP server and routing for cropwatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/cropwatch/internal/config"
	"github.com/aristath/cropwatch/internal/di"
	dashboardhandlers "github.com/aristath/cropwatch/internal/modules/dashboard/handlers"
)

// Config holds server dependencies
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container    // DI container with all services
	Jobs      *di.JobInstances // Jobs exposed for manual triggering
}

// Server is the HTTP front of the dashboard
type Server struct {
	router           *chi.Mux
	server           *http.Server
	log              zerolog.Logger
	cfg              *config.Config
	container        *di.Container
	systemHandlers   *SystemHandlers
	dashboardHandler *dashboardhandlers.Handler
	eventsStream     *EventsStreamHandler
}

// New creates the server and its routes
func New(cfg Config) *Server {
	log := cfg.Log.With().Str("component", "server").Logger()

	s := &Server{
		router:    chi.NewRouter(),
		log:       log,
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Container.Orchestrator,
			cfg.Container.Scheduler,
			cfg.Jobs,
			cfg.Log,
		),
		dashboardHandler: dashboardhandlers.NewHandler(
			cfg.Container.Orchestrator,
			cfg.Container.EventBus,
			originPatterns(cfg.Config.CORSOrigins),
			cfg.Log,
		),
		eventsStream: NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.Config.DevMode)

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE and websocket streams are long-lived
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Router exposes the handler tree for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware shared by every route
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(devMode bool) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived streams
		r.Group(func(r chi.Router) {
			r.Get("/events/stream", s.eventsStream.ServeHTTP)
			s.dashboardHandler.RegisterStreamRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Compress responses
			if !devMode {
				r.Use(middleware.Compress(5))
			}

			s.dashboardHandler.RegisterRoutes(r)

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
				r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
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

// originPatterns converts CORS origins into websocket host patterns
func originPatterns(origins []string) []string {
	var patterns []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
