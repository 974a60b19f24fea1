package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/config"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/handoff"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/preview"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/uploads"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/handlers"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	events         *handlers.EventHub
	uploads        *uploads.Store
	handoff        *handoff.Store
	previews       *preview.Manager
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, sessionSecret string) *Server {
	r := chi.NewRouter()

	ttl := cfg.Session.TTL
	sessionManager := middleware.NewSessionManager(sessionSecret, ttl)
	events := handlers.NewEventHub()

	renderer := preview.NewFitzRenderer(cfg.Preview.Scale, cfg.Preview.MaxSize)
	previews := preview.NewManager(renderer, cfg.Preview.Workers, cfg.Preview.Timeout,
		handlers.PreviewResultHandler(sessionManager, events))

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
		events:         events,
		uploads:        uploads.NewStore(ttl, constants.SessionCleanupInterval),
		handoff:        handoff.NewStore(ttl, constants.SessionCleanupInterval),
		previews:       previews,
	}

	// Everything a session owns goes with it.
	sessionManager.OnExpire(s.releaseSession)

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) releaseSession(sessionID string) {
	s.previews.CancelSession(sessionID)
	n := s.uploads.DeleteSession(sessionID)
	s.handoff.Delete(sessionID)
	s.events.Drop(sessionID)
	log.Printf("Released session resources (%d uploads)", n)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Stop the session cleanup goroutine and the render workers
	s.sessionManager.Stop()
	s.previews.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
