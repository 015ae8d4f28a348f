// Package web provides the HTTP server for the Spotify Wrapped dashboard API.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/mgarciap/go-spotify-wrapped/internal/config"
	"github.com/mgarciap/go-spotify-wrapped/internal/relay"
	spotifyclient "github.com/mgarciap/go-spotify-wrapped/internal/spotify"
	"github.com/mgarciap/go-spotify-wrapped/internal/stats"
)

// ServerConfig holds server configuration. Exchanger and Sources are
// replaceable for tests; when nil they are built from the credentials.
type ServerConfig struct {
	Config    *config.Config
	Logger    *log.Logger
	Exchanger CodeExchanger
	Sources   SourceFactory
}

// Server is the HTTP server for the dashboard API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *log.Logger
}

// NewServer creates a new web server wired from the given configuration.
func NewServer(cfg ServerConfig) *Server {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.Config.ClientID),
		spotifyauth.WithClientSecret(cfg.Config.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.Config.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserTopRead,
			spotifyauth.ScopeUserReadRecentlyPlayed,
			spotifyauth.ScopeUserReadPrivate,
		),
	)

	exchanger := cfg.Exchanger
	if exchanger == nil {
		exchanger = relay.New(cfg.Config.ClientID, cfg.Config.ClientSecret, cfg.Config.RedirectURI)
	}

	sources := cfg.Sources
	if sources == nil {
		sources = func(ctx context.Context, accessToken string) stats.Source {
			return spotifyclient.FromToken(ctx, accessToken)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	handlers := NewHandlers(exchanger, auth, sources, logger)
	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Config.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router.Post("/token-exchange", s.handlers.TokenExchange)
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/healthz", s.handlers.Health)

	s.router.Get("/api/stats", s.handlers.Stats)
	s.router.Get("/api/top-tracks", s.handlers.TopTracks)
	s.router.Get("/api/top-artists", s.handlers.TopArtists)
	s.router.Get("/api/recently-played", s.handlers.RecentlyPlayed)
	s.router.Get("/api/profile", s.handlers.Profile)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// requestLogger logs one structured line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
