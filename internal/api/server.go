// Package api provides the HTTP query surface of the inventory daemon.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/microsdeck/microsdeck-server/internal/http/response"
	"github.com/microsdeck/microsdeck-server/internal/scanner"
	"github.com/microsdeck/microsdeck-server/internal/store/sqlite"
	"github.com/microsdeck/microsdeck-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *sqlite.Store
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger

	// Sysfs probes, swappable in tests.
	cardInserted func() bool
	cardCID      func() (string, error)
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, logger *slog.Logger) *Server {
	s := &Server{
		store:        store,
		validator:    validation.New(),
		router:       chi.NewRouter(),
		logger:       logger,
		cardInserted: scanner.IsCardInserted,
		cardCID:      scanner.CardCID,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes. Paths are the wire method names
// the frontend calls; they are flat by contract.
func (s *Server) setupRoutes() {
	s.router.Get("/hello", s.handleHello)
	s.router.Get("/ping", s.handlePing)
	s.router.Get("/status", s.handleStatus)

	s.router.Get("/list_cards", s.handleListCards)
	s.router.Get("/list_games", s.handleListGames)
	s.router.Get("/list_cards_with_games", s.handleListCardsWithGames)
	s.router.Get("/list_games_on_card", s.handleListGamesOnCard)
	s.router.Get("/get_card_for_game", s.handleGetCardForGame)

	s.router.Post("/set_name_for_card", s.handleSetNameForCard)
}

// handleHello returns the daemon's greeting.
func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, fmt.Sprintf("Hello from %s v%s", Name, Version), s.logger)
}

// handlePing answers liveness probes.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, "pong", s.logger)
}

// handleStatus reports daemon identity and the physical slot state.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"name":          Name,
		"version":       Version,
		"card_inserted": s.cardInserted(),
	}

	if cid, err := s.cardCID(); err == nil {
		status["card_cid"] = cid
	}

	response.Success(w, status, s.logger)
}
