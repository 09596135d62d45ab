package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/store"
)

// cardColumns is the ordered list of columns selected in card queries.
// Must match the scan order in scanCard.
const cardColumns = `uid, name, user_named, created_at, updated_at`

// scanCard scans a sql.Row (or sql.Rows via its Scan method) into a domain.Card.
// The Games slice is left empty; callers attach it from the games table.
func scanCard(scanner interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var card domain.Card

	var (
		userNamed int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&card.UID,
		&card.Name,
		&userNamed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.UserNamed = userNamed != 0

	card.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	card.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &card, nil
}

// querier is implemented by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AddCard upserts a card keyed by its content id. A new card takes the
// scanned label as its name; a known card keeps its stored name while
// user_named is set, otherwise the name follows the latest label.
// The card's games set is derived from the games table and is not written
// here.
func (s *Store) AddCard(ctx context.Context, card *domain.Card) error {
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (uid, name, user_named, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = CASE WHEN cards.user_named = 1 THEN cards.name ELSE excluded.name END,
			updated_at = excluded.updated_at`,
		card.UID,
		card.Name,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.UID, err)
	}
	return nil
}

// GetCard retrieves a card by uid with its games set attached.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) GetCard(ctx context.Context, uid string) (*domain.Card, error) {
	return getCard(ctx, s.db, uid)
}

func getCard(ctx context.Context, q querier, uid string) (*domain.Card, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE uid = ?`, uid)

	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	card.Games, err = gameUIDsOnCard(ctx, q, uid)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// gameUIDsOnCard returns the uids of all games recorded on the given card.
func gameUIDsOnCard(ctx context.Context, q querier, cardUID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT uid FROM games WHERE card_uid = ?`, cardUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uids := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		uids = append(uids, uid)
	}
	return uids, rows.Err()
}

// SetCardName renames a card and marks it user-renamed, so later scans no
// longer overwrite the name with the card's label.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) SetCardName(ctx context.Context, uid, name string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards SET name = ?, user_named = 1, updated_at = ?
		WHERE uid = ?`,
		name,
		formatTime(time.Now()),
		uid,
	)
	if err != nil {
		return fmt.Errorf("rename card %s: %w", uid, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListCards returns all known cards with their games sets attached.
func (s *Store) ListCards(ctx context.Context) ([]*domain.Card, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cards, err := listCards(ctx, tx)
	if err != nil {
		return nil, err
	}
	return cards, tx.Commit()
}

func listCards(ctx context.Context, q querier) ([]*domain.Card, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	byUID := map[string]*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		card.Games = []string{}
		cards = append(cards, card)
		byUID[card.UID] = card
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach membership in one pass instead of a query per card.
	memberRows, err := q.QueryContext(ctx, `SELECT uid, card_uid FROM games`)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var gameUID, cardUID string
		if err := memberRows.Scan(&gameUID, &cardUID); err != nil {
			return nil, err
		}
		if card, ok := byUID[cardUID]; ok {
			card.Games = append(card.Games, gameUID)
		}
	}
	return cards, memberRows.Err()
}

// ListCardsWithGames returns every card paired with its expanded games list.
// The whole result comes from one read transaction, so a game can never
// appear under two cards within a single response.
func (s *Store) ListCardsWithGames(ctx context.Context) ([]*store.CardWithGames, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cards, err := listCards(ctx, tx)
	if err != nil {
		return nil, err
	}

	games, err := listGames(ctx, tx)
	if err != nil {
		return nil, err
	}

	byCard := map[string][]*domain.Game{}
	for _, game := range games {
		byCard[game.Card] = append(byCard[game.Card], game)
	}

	result := make([]*store.CardWithGames, 0, len(cards))
	for _, card := range cards {
		expanded := byCard[card.UID]
		if expanded == nil {
			expanded = []*domain.Game{}
		}
		result = append(result, &store.CardWithGames{
			Card:  card,
			Games: expanded,
		})
	}
	return result, tx.Commit()
}
