package reconciler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/microsdeck/microsdeck-server/internal/domain"
	"github.com/microsdeck/microsdeck-server/internal/scanner"
	"github.com/microsdeck/microsdeck-server/internal/store/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScanner struct {
	scan *domain.LibraryScan
	err  error
}

func (f *fakeScanner) Scan(ctx context.Context) (*domain.LibraryScan, error) {
	return f.scan, f.err
}

type fakeStore struct {
	cards    []*domain.Card
	games    []*domain.Game
	cardErr  error
	gameErr  error
	gameFail string // AppID that triggers gameErr
}

func (f *fakeStore) AddCard(ctx context.Context, card *domain.Card) error {
	if f.cardErr != nil {
		return f.cardErr
	}
	f.cards = append(f.cards, card)
	return nil
}

func (f *fakeStore) AddGame(ctx context.Context, game *domain.Game) error {
	if f.gameErr != nil && (f.gameFail == "" || f.gameFail == game.UID) {
		return f.gameErr
	}
	f.games = append(f.games, game)
	return nil
}

func testScan() *domain.LibraryScan {
	return &domain.LibraryScan{
		ContentID: "card-1",
		Label:     "Red Card",
		Apps: []domain.AppState{
			{AppID: "620", Name: "Portal 2", SizeOnDisk: 11946817418},
			{AppID: "1145360", Name: "Hades", SizeOnDisk: 15212040192},
		},
	}
}

func TestTickUpsertsCardAndGames(t *testing.T) {
	st := &fakeStore{}
	r := New(&fakeScanner{scan: testScan()}, st, discardLogger())

	if err := r.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(st.cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(st.cards))
	}
	card := st.cards[0]
	if card.UID != "card-1" || card.Name != "Red Card" {
		t.Errorf("card = %q/%q, want card-1/Red Card", card.UID, card.Name)
	}
	if len(card.Games) != 2 {
		t.Errorf("card carries %d games, want 2", len(card.Games))
	}

	if len(st.games) != 2 {
		t.Fatalf("got %d games, want 2", len(st.games))
	}
	for _, g := range st.games {
		if g.Card != "card-1" {
			t.Errorf("game %s assigned to %q, want card-1", g.UID, g.Card)
		}
	}
}

func TestTickNotACardIsSilent(t *testing.T) {
	st := &fakeStore{}
	r := New(&fakeScanner{err: scanner.ErrNotACard}, st, discardLogger())

	if err := r.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.cards) != 0 || len(st.games) != 0 {
		t.Error("store written for a non-library card")
	}
}

func TestTickScanErrorDoesNotFail(t *testing.T) {
	st := &fakeStore{}
	r := New(&fakeScanner{err: errors.New("read libraryfolder.vdf: input/output error")}, st, discardLogger())

	if err := r.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(st.cards) != 0 {
		t.Error("store written after failed scan")
	}
}

func TestTickStoreErrorReturned(t *testing.T) {
	boom := errors.New("database is locked")

	r := New(&fakeScanner{scan: testScan()}, &fakeStore{cardErr: boom}, discardLogger())
	if err := r.Tick(context.Background()); !errors.Is(err, boom) {
		t.Errorf("card write error not surfaced, got %v", err)
	}

	r = New(&fakeScanner{scan: testScan()}, &fakeStore{gameErr: boom, gameFail: "1145360"}, discardLogger())
	if err := r.Tick(context.Background()); !errors.Is(err, boom) {
		t.Errorf("game write error not surfaced, got %v", err)
	}
}

// Against the real store: a second tick for the same card, and a tick after
// the games moved to another card, leave both query directions agreeing.
func TestTickAgainstStore(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "data.db"), discardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	r := New(&fakeScanner{scan: testScan()}, st, discardLogger())

	if err := r.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := r.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}

	card, err := st.GetCard(ctx, "card-1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if len(card.Games) != 2 {
		t.Fatalf("card holds %d games after double tick, want 2", len(card.Games))
	}

	// Same library shows up on a different card.
	moved := testScan()
	moved.ContentID = "card-2"
	moved.Label = "Blue Card"
	r2 := New(&fakeScanner{scan: moved}, st, discardLogger())
	if err := r2.Tick(ctx); err != nil {
		t.Fatalf("moved tick: %v", err)
	}

	old, err := st.GetCard(ctx, "card-1")
	if err != nil {
		t.Fatalf("GetCard card-1: %v", err)
	}
	if len(old.Games) != 0 {
		t.Errorf("card-1 still holds %d games after move", len(old.Games))
	}
	owner, err := st.GetCardForGame(ctx, "620")
	if err != nil {
		t.Fatalf("GetCardForGame: %v", err)
	}
	if owner.UID != "card-2" {
		t.Errorf("game owner = %s, want card-2", owner.UID)
	}
}

// Replaying a set of scans for the same card must yield the union of their
// app ids, no matter in which order the scans arrive.
func TestTickReplayOrderYieldsUnion(t *testing.T) {
	scanA := &domain.LibraryScan{
		ContentID: "C1",
		Label:     "Blue",
		Apps: []domain.AppState{
			{AppID: "12", Name: "Foo", SizeOnDisk: 100},
		},
	}
	scanB := &domain.LibraryScan{
		ContentID: "C1",
		Label:     "Blue",
		Apps: []domain.AppState{
			{AppID: "99", Name: "Bar", SizeOnDisk: 50},
		},
	}

	orders := [][]*domain.LibraryScan{
		{scanA, scanB},
		{scanB, scanA},
	}

	for _, order := range orders {
		st, err := sqlite.Open(filepath.Join(t.TempDir(), "data.db"), discardLogger())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}

		ctx := context.Background()
		for _, scan := range order {
			r := New(&fakeScanner{scan: scan}, st, discardLogger())
			if err := r.Tick(ctx); err != nil {
				t.Fatalf("tick: %v", err)
			}
		}

		card, err := st.GetCard(ctx, "C1")
		if err != nil {
			t.Fatalf("GetCard: %v", err)
		}
		got := map[string]bool{}
		for _, uid := range card.Games {
			got[uid] = true
		}
		if len(got) != 2 || !got["12"] || !got["99"] {
			t.Errorf("games after replay = %v, want union {12, 99}", card.Games)
		}

		st.Close()
	}
}

func TestTickAgainstStorePreservesRename(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "data.db"), discardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	r := New(&fakeScanner{scan: testScan()}, st, discardLogger())

	if err := r.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := st.SetCardName(ctx, "card-1", "Roguelikes"); err != nil {
		t.Fatalf("SetCardName: %v", err)
	}
	if err := r.Tick(ctx); err != nil {
		t.Fatalf("rescan tick: %v", err)
	}

	card, err := st.GetCard(ctx, "card-1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if card.Name != "Roguelikes" {
		t.Errorf("rescan reverted name to %q", card.Name)
	}
}
