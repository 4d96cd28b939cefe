// Package server provides the HTTP server and routing for the bond trading API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/anadkat/bondtrading/internal/di"
	bondhandlers "github.com/anadkat/bondtrading/internal/modules/bonds/handlers"
	tradinghandlers "github.com/anadkat/bondtrading/internal/modules/trading/handlers"
)

const (
	minRequestTimeout = 60 * time.Second
	responseMargin    = 5 * time.Second
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	requestTimeout time.Duration
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
	quoteStream    *QuoteStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	c := cfg.Container
	requestTimeout, writeTimeout := timeouts(c.Config.MomentHTTPTimeout)

	s := &Server{
		router:         chi.NewRouter(),
		requestTimeout: requestTimeout,
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		container:      c,
		systemHandlers: NewSystemHandlers(
			c.Catalog,
			c.SyncService,
			c.Scheduler,
			c.OrderService.ExecutionMode(),
			cfg.Log,
		),
		quoteStream: NewQuoteStreamHandler(c.Catalog, c.MomentClient, cfg.Log),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// timeouts derives the /api handler deadline and the connection write deadline
// from the upstream client timeout. The handler deadline outlasts one upstream
// call and the write deadline outlasts the handler, so a slow upstream still
// gets its error response onto the wire.
func timeouts(upstream time.Duration) (request, write time.Duration) {
	request = minRequestTimeout
	if upstream+responseMargin > request {
		request = upstream + responseMargin
	}
	return request, request + responseMargin
}

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
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(devMode bool) {
	bondHandler := bondhandlers.NewHandler(
		s.container.Catalog,
		s.container.MomentClient,
		s.container.SyncService,
		s.log,
	)
	orderHandler := tradinghandlers.NewHandler(s.container.OrderService, s.log)

	// Timeout and compression cut off upgraded connections, so /ws sits outside this group
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))
		if !devMode {
			r.Use(middleware.Compress(5))
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

			bondHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
		})
	})

	s.router.Get("/ws", s.quoteStream.ServeHTTP)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
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
