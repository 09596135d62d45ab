package api

import (
	"net/http"

	"github.com/microsdeck/microsdeck-server/internal/http/response"
)

// handleListGames returns every known game across all cards.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		s.logger.Error("Failed to list games", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, games, s.logger)
}

// handleListGamesOnCard returns the games held by one card.
func (s *Server) handleListGamesOnCard(w http.ResponseWriter, r *http.Request) {
	cardUID := r.URL.Query().Get("card")
	if cardUID == "" {
		response.BadRequest(w, "card parameter is required", s.logger)
		return
	}

	games, err := s.store.ListGamesOnCard(r.Context(), cardUID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, games, s.logger)
}
