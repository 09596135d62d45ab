package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/microsdeck/microsdeck-server/internal/http/response"
)

// setNameRequest is the body of set_name_for_card.
type setNameRequest struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"name" validate:"required,max=200"`
}

// handleListCards returns every known card with its game uids.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context())
	if err != nil {
		s.logger.Error("Failed to list cards", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cards, s.logger)
}

// handleListCardsWithGames returns every card paired with its expanded games.
func (s *Server) handleListCardsWithGames(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCardsWithGames(r.Context())
	if err != nil {
		s.logger.Error("Failed to list cards with games", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cards, s.logger)
}

// handleGetCardForGame returns the card that currently holds a game.
func (s *Server) handleGetCardForGame(w http.ResponseWriter, r *http.Request) {
	gameUID := r.URL.Query().Get("game")
	if gameUID == "" {
		response.BadRequest(w, "game parameter is required", s.logger)
		return
	}

	card, err := s.store.GetCardForGame(r.Context(), gameUID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, card, s.logger)
}

// handleSetNameForCard renames a card. The name sticks: later scans keep it.
func (s *Server) handleSetNameForCard(w http.ResponseWriter, r *http.Request) {
	var req setNameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.store.SetCardName(r.Context(), req.UID, req.Name); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("card renamed", "card", req.UID, "name", req.Name)
	response.Success(w, map[string]string{
		"uid":  req.UID,
		"name": req.Name,
	}, s.logger)
}
