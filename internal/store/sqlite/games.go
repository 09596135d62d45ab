package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/store"
)

// gameColumns is the ordered list of columns selected in game queries.
// Must match the scan order in scanGame.
const gameColumns = `uid, name, size, card_uid, created_at, updated_at`

// scanGame scans a sql.Row (or sql.Rows via its Scan method) into a domain.Game.
func scanGame(scanner interface{ Scan(dest ...any) error }) (*domain.Game, error) {
	var game domain.Game

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&game.UID,
		&game.Name,
		&game.Size,
		&game.Card,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	game.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &game, nil
}

// AddGame upserts a game keyed by its app id. Name, size and owning card
// always follow the latest scan; updating card_uid is the single write that
// moves a game between cards, so membership cannot tear.
// Returns store.ErrInvalidInput when the referenced card does not exist.
func (s *Store) AddGame(ctx context.Context, game *domain.Game) error {
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (uid, name, size, card_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			card_uid = excluded.card_uid,
			updated_at = excluded.updated_at`,
		game.UID,
		game.Name,
		game.Size,
		game.Card,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrInvalidInput.WithMessage(
				fmt.Sprintf("game %s references unknown card %s", game.UID, game.Card))
		}
		return fmt.Errorf("upsert game %s: %w", game.UID, err)
	}
	return nil
}

// GetGame retrieves a game by uid.
// Returns store.ErrNotFound if the game does not exist.
func (s *Store) GetGame(ctx context.Context, uid string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE uid = ?`, uid)

	game, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

// ListGames returns all known games.
func (s *Store) ListGames(ctx context.Context) ([]*domain.Game, error) {
	return listGames(ctx, s.db)
}

func listGames(ctx context.Context, q querier) ([]*domain.Game, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// ListGamesOnCard returns the games recorded on the given card.
// Returns store.ErrNotFound if the card itself is unknown; a known card with
// no games yields an empty list.
func (s *Store) ListGamesOnCard(ctx context.Context, cardUID string) ([]*domain.Game, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM cards WHERE uid = ?`, cardUID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE card_uid = ? ORDER BY created_at ASC`, cardUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*domain.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, tx.Commit()
}

// GetCardForGame returns the card holding the given game, with its games set
// attached, read from a single snapshot.
// Returns store.ErrNotFound if the game is unknown.
func (s *Store) GetCardForGame(ctx context.Context, gameUID string) (*domain.Card, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var cardUID string
	err = tx.QueryRowContext(ctx,
		`SELECT card_uid FROM games WHERE uid = ?`, gameUID).Scan(&cardUID)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	card, err := getCard(ctx, tx, cardUID)
	if err != nil {
		return nil, err
	}
	return card, tx.Commit()
}
