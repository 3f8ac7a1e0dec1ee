package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/config"
	"github.com/sawpanic/selicinsights/internal/interfaces/http/handlers"
	"github.com/sawpanic/selicinsights/internal/net/ratelimit"
	"github.com/sawpanic/selicinsights/internal/stream"
)

// Server represents the read-only HTTP server
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers.Handlers
	metrics  *MetricsRegistry
	hub      *stream.Hub
	limiter  *ratelimit.Limiter
	config   config.ServerConfig
}

// Options carries the collaborators of the server.
type Options struct {
	Deps    handlers.Deps
	Metrics *MetricsRegistry
	// Hub serves /ws when set.
	Hub *stream.Hub
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.ServerConfig, opts Options) (*Server, error) {
	h, err := handlers.NewHandlers(opts.Deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetricsRegistry()
	}

	server := &Server{
		router:   mux.NewRouter(),
		handlers: h,
		metrics:  opts.Metrics,
		hub:      opts.Hub,
		config:   cfg,
	}
	if cfg.RateLimitRPS > 0 {
		server.limiter = ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		server.metrics.TrackLimiterClients(server.limiter.Clients)
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Middleware for all matched routes
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	// Pages
	s.router.Handle("/", s.withTimeout(s.handlers.Dashboard)).Methods("GET")
	s.router.Handle("/code", s.withTimeout(s.handlers.Code)).Methods("GET")
	s.router.Handle("/snippet.py", s.withTimeout(s.handlers.SnippetSource)).Methods("GET")

	// API routes (JSON unless stated otherwise). Registered on the root
	// router so method mismatches reach MethodNotAllowedHandler.
	s.router.Handle("/api/series", s.withTimeout(s.handlers.Series)).Methods("GET")
	s.router.Handle("/api/correlation", s.withTimeout(s.handlers.Correlation)).Methods("GET")
	s.router.Handle("/api/table", s.withTimeout(s.handlers.Table)).Methods("GET")
	s.router.Handle("/api/charts", s.withTimeout(s.handlers.Charts)).Methods("GET")
	s.router.Handle("/api/returns", s.withTimeout(s.handlers.Returns)).Methods("GET")
	s.router.Handle("/api/snippet", s.withTimeout(s.handlers.Snippet)).Methods("GET")
	s.router.Handle("/api/export.csv", s.withTimeout(s.handlers.ExportCSV)).Methods("GET")

	// Operations
	s.router.Handle("/health", s.withTimeout(s.handlers.Health)).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	// WebSocket connections are long-lived and skip the request timeout
	if s.hub != nil {
		s.router.Handle("/ws", s.hub).Methods("GET")
	}

	// Unmatched requests bypass router middleware, so wrap them explicitly
	s.router.NotFoundHandler = s.requestIDMiddleware(s.requestLoggingMiddleware(
		s.rateLimitMiddleware(http.HandlerFunc(s.handlers.NotFound))))
	s.router.MethodNotAllowedHandler = s.requestIDMiddleware(s.requestLoggingMiddleware(
		s.corsMiddleware(s.rateLimitMiddleware(http.HandlerFunc(s.handlers.MethodNotAllowed)))))
}

// requestIDMiddleware adds unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), handlers.RequestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLoggingMiddleware logs all requests with structured format and
// records the request metrics
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := r.Context().Value(handlers.RequestIDKey{}).(string)

		// Capture response status
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		route := routeName(r)
		s.metrics.ObserveRequest(route, wrapper.statusCode, duration)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("REQ")
	})
}

// withTimeout enforces the request timeout on a handler
func (s *Server) withTimeout(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
		defer cancel()
		h(w, r.WithContext(ctx))
	})
}

// corsMiddleware adds CORS headers for local development
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only allow localhost origins
		if origin := r.Header.Get("Origin"); isLocalOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects clients that exceed their token bucket
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(ratelimit.ClientKey(r)) {
			s.metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			s.handlers.TooManyRequests(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isLocalOrigin accepts browser origins served from this machine
func isLocalOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// CheckOrigin is the WebSocket origin policy: same host or localhost.
func CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || isLocalOrigin(origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metrics registry
func (s *Server) Metrics() *MetricsRegistry {
	return s.metrics
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("port %d is busy or unavailable: %w", s.config.Port, err)
	}

	log.Info().Str("addr", s.GetAddress()).Msg("Starting HTTP server (read-only)")

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// GetAddress returns the server address
func (s *Server) GetAddress() string {
	return s.config.Addr()
}

// responseWrapper captures HTTP status codes for logging
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Flush forwards streaming flushes.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
