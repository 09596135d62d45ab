// Package store defines the persistence contract for the card and game
// inventory, plus the error and result types shared by its implementations.
package store

import "github.com/microsdeck/microsdeck-server/internal/domain"

// CardWithGames pairs a card with its fully expanded games list.
// Produced by ListCardsWithGames from a single read snapshot.
type CardWithGames struct {
	Card  *domain.Card   `json:"card"`
	Games []*domain.Game `json:"games"`
}
