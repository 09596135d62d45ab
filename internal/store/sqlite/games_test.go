package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/store"
)

func TestAddGame_UnknownCardRejected(t *testing.T) {
	s := newTestStore(t)

	g := &domain.Game{UID: "12", Name: "Foo", Size: 100, Card: "nope"}
	err := s.AddGame(context.Background(), g)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestAddGame_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addCard(t, s, "C1", "Blue")
	addGame(t, s, "12", "Foo", 100, "C1")

	game, err := s.GetGame(ctx, "12")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.Name != "Foo" || game.Size != 100 || game.Card != "C1" {
		t.Errorf("game = %+v", game)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGame(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAddGame_RefreshesNameAndSize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addCard(t, s, "C1", "Blue")
	addGame(t, s, "12", "Foo", 100, "C1")
	addGame(t, s, "12", "Foo Remastered", 250, "C1")

	game, err := s.GetGame(ctx, "12")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.Name != "Foo Remastered" || game.Size != 250 {
		t.Errorf("game = %+v, want refreshed name and size", game)
	}

	games, err := s.ListGames(ctx)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 {
		t.Errorf("got %d games, want 1", len(games))
	}
}

func TestAddGame_MoveBetweenCards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addCard(t, s, "C1", "Blue")
	addCard(t, s, "C2", "Red")
	addGame(t, s, "99", "Bar", 50, "C2")
	addGame(t, s, "99", "Bar", 50, "C1")

	card, err := s.GetCardForGame(ctx, "99")
	if err != nil {
		t.Fatalf("get card for game: %v", err)
	}
	if card.UID != "C1" {
		t.Errorf("game on card %s, want C1", card.UID)
	}

	// The old card's set must no longer contain the game.
	onC2, err := s.ListGamesOnCard(ctx, "C2")
	if err != nil {
		t.Fatalf("list games on C2: %v", err)
	}
	if len(onC2) != 0 {
		t.Errorf("C2 still holds %d games", len(onC2))
	}

	onC1, err := s.ListGamesOnCard(ctx, "C1")
	if err != nil {
		t.Fatalf("list games on C1: %v", err)
	}
	if len(onC1) != 1 || onC1[0].UID != "99" {
		t.Errorf("C1 games = %+v", onC1)
	}
}

func TestListGamesOnCard_UnknownCard(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ListGamesOnCard(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListGamesOnCard_EmptyCard(t *testing.T) {
	s := newTestStore(t)
	addCard(t, s, "C1", "Blue")

	games, err := s.ListGamesOnCard(context.Background(), "C1")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if games == nil || len(games) != 0 {
		t.Errorf("got %v, want empty non-nil list", games)
	}
}

func TestGetCardForGame_UnknownGame(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCardForGame(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// GetCardForGame and ListGamesOnCard must agree at a quiescent store.
func TestCardGameQueriesAgree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	addCard(t, s, "C1", "Blue")
	addCard(t, s, "C2", "Red")
	addGame(t, s, "12", "Foo", 100, "C1")
	addGame(t, s, "99", "Bar", 50, "C2")

	for _, gameUID := range []string{"12", "99"} {
		card, err := s.GetCardForGame(ctx, gameUID)
		if err != nil {
			t.Fatalf("get card for game %s: %v", gameUID, err)
		}

		games, err := s.ListGamesOnCard(ctx, card.UID)
		if err != nil {
			t.Fatalf("list games on %s: %v", card.UID, err)
		}

		found := false
		for _, g := range games {
			if g.UID == gameUID {
				found = true
			}
		}
		if !found {
			t.Errorf("game %s missing from its own card %s", gameUID, card.UID)
		}
	}
}
