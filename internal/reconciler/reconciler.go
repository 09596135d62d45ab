// Package reconciler folds card scans into the inventory store. One tick is
// scan-then-upsert; ticks run at startup and on every bind event.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/microsdeck/microsdeck-server/internal/devmon"
	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/scanner"
)

// Scanner reads the mounted card's library metadata.
type Scanner interface {
	Scan(ctx context.Context) (*domain.LibraryScan, error)
}

// Store is the slice of the inventory store the reconciler writes through.
type Store interface {
	AddCard(ctx context.Context, card *domain.Card) error
	AddGame(ctx context.Context, game *domain.Game) error
}

// Reconciler drives the scan-then-upsert cycle.
type Reconciler struct {
	scanner Scanner
	store   Store
	logger  *slog.Logger
}

// New creates a reconciler.
func New(scanner Scanner, store Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		scanner: scanner,
		store:   store,
		logger:  logger,
	}
}

// Tick runs one reconciliation pass. It is idempotent: re-running it for an
// unchanged card leaves the store as it was.
//
// A mount that is not a library card and a scan that fails on I/O both end
// the tick without error; the next bind event retries. A store failure aborts
// the tick and is returned.
func (r *Reconciler) Tick(ctx context.Context) error {
	log := r.logger.With("tick_id", uuid.NewString())

	scan, err := r.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, scanner.ErrNotACard) {
			log.Debug("no steam library on mounted card")
			return nil
		}
		log.Warn("card scan failed", "error", err)
		return nil
	}

	log.Info("steam card detected",
		"card", scan.ContentID,
		"label", scan.Label,
		"games", len(scan.Apps))

	card := &domain.Card{
		UID:   scan.ContentID,
		Name:  scan.Label,
		Games: scan.AppIDs(),
	}
	if err := r.store.AddCard(ctx, card); err != nil {
		return fmt.Errorf("add card %s: %w", scan.ContentID, err)
	}

	for _, app := range scan.Apps {
		game := &domain.Game{
			UID:  app.AppID,
			Name: app.Name,
			Size: app.SizeOnDisk,
			Card: scan.ContentID,
		}
		if err := r.store.AddGame(ctx, game); err != nil {
			return fmt.Errorf("add game %s: %w", app.AppID, err)
		}
	}

	log.Info("card reconciled", "card", scan.ContentID)
	return nil
}

// Run processes device events until the context is cancelled. Events are
// handled strictly in arrival order: a tick runs to completion before the
// next event is dequeued. A monitor error is fatal and is returned so the
// process can exit and be restarted by its supervisor.
func (r *Reconciler) Run(ctx context.Context, mon *devmon.Monitor) error {
	r.logger.Info("listening for device events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-mon.Events():
			if !ok {
				return nil
			}
			if ev.Action != devmon.ActionBind {
				continue
			}

			r.logger.Info("device bound", "devpath", ev.DevPath)
			if err := r.Tick(ctx); err != nil {
				// Store trouble: drop this tick, the next bind retries.
				r.logger.Error("reconciliation failed", "error", err)
			}

		case err := <-mon.Errors():
			return fmt.Errorf("device monitor: %w", err)
		}
	}
}
