package domain

import "time"

// Card is a microSD card the device has seen at least once. Identity is the
// content id Steam writes into the card's library-root descriptor, which
// survives reformatting of the filesystem label. Cards are never deleted:
// a card absent today may be inserted again tomorrow.
type Card struct {
	UID  string `json:"uid"`
	Name string `json:"name"`

	// UserNamed is set once the owner renames the card. From then on the
	// label read off the card no longer overwrites Name.
	UserNamed bool `json:"user_named"`

	// Games holds the uids of the games recorded on this card.
	Games []string `json:"games"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasGame reports whether the card's games set contains the given game uid.
func (c *Card) HasGame(uid string) bool {
	for _, g := range c.Games {
		if g == uid {
			return true
		}
	}
	return false
}
