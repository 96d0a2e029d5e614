package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kdramahub/kdramahub/internal/auth"
	"github.com/kdramahub/kdramahub/internal/catalog"
	"github.com/kdramahub/kdramahub/internal/profile"
	"github.com/kdramahub/kdramahub/internal/room"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
}

// NewServer creates a new HTTP server
func NewServer(cat catalog.Catalog, rooms room.Manager, profiles profile.Service, verifier *auth.Verifier, port string, verbose bool) *Server {
	handler := NewHandler(cat, rooms, profiles, verifier)

	mux := http.NewServeMux()

	// Catalog endpoints
	mux.HandleFunc("/api/catalog/recent", handler.RecentlyAdded)
	mux.HandleFunc("/api/catalog/popular", handler.Popular)
	mux.HandleFunc("/api/catalog/search", handler.Search)
	mux.HandleFunc("/api/catalog/schedule", handler.Schedule)
	mux.HandleFunc("/api/catalog/rankings", handler.Rankings)
	mux.HandleFunc("/api/catalog/dramas/", handler.DramaDetailHandler)

	// Room endpoints
	mux.HandleFunc("/api/rooms", handler.RoomsHandler)
	mux.HandleFunc("/api/rooms/", handler.RoomsDetailHandler)

	// Profile endpoints
	mux.HandleFunc("/api/profile", handler.ProfileHandler)
	mux.HandleFunc("/api/watchlist", handler.WatchlistHandler)
	mux.HandleFunc("/api/watchlist/", handler.WatchlistDetailHandler)
	mux.HandleFunc("/api/continue-watching", handler.ContinueWatching)
	mux.HandleFunc("/api/progress", handler.SaveProgress)
	mux.HandleFunc("/api/progress/", handler.ClearProgress)

	// Real-time room stream
	mux.HandleFunc("/ws/rooms/", handler.RoomStream)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Wrap with middlewares
	var finalHandler http.Handler = mux

	// Add logging middleware first (outermost)
	if verbose {
		loggingMiddleware := NewLoggingMiddleware(verbose)
		finalHandler = loggingMiddleware.Middleware(finalHandler)
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Server starting on port %s", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Server shutting down...")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
