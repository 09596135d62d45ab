package domain

import "time"

// Game is one installed game instance. A game belongs to exactly one card;
// Card names the card that held it at the last scan where it appeared. Steam
// can move a game between cards, in which case Card is updated, but game
// records themselves are never deleted.
type Game struct {
	UID  string `json:"uid"`
	Name string `json:"name"`

	// Size is the on-disk size in bytes as reported by Steam at the last scan.
	Size int64 `json:"size"`

	// Card is the uid of the card this game lives on.
	Card string `json:"card"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
