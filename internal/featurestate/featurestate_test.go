package featurestate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/database"
	"github.com/mvoronov/cascata/internal/game"
	"github.com/mvoronov/cascata/internal/money"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New("postgres", "host=localhost dbname=cascata sslmode=disable")
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := db.CleanData(); err != nil {
		t.Fatalf("Failed to clean data: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPlayer(t *testing.T, db *database.DB) string {
	t.Helper()

	playerID := uuid.New().String()
	now := time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO players (id, username, email, password_hash, status, registration_date, created_at, updated_at)
		VALUES ($1, $2, $3, 'hash', 'active', $4, $4, $4)
	`, playerID, "player_"+playerID[:8], playerID[:8]+"@example.com", now)
	if err != nil {
		t.Fatalf("Failed to create player: %v", err)
	}

	return playerID
}

func TestLoadMissingIsIdle(t *testing.T) {
	db := setupTestDB(t)
	store := New(db.DB)

	state, err := store.Load(context.Background(), uuid.New().String(), "cascade-classic")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if state.Active {
		t.Error("Missing state should be idle")
	}
	if !state.AccumulatedMultiplier.IsZero() {
		t.Errorf("AccumulatedMultiplier = %s, want 0", state.AccumulatedMultiplier)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	playerID := createTestPlayer(t, db)
	store := New(db.DB)
	ctx := context.Background()

	state := game.FreeSpinState{
		Active:                true,
		SpinsRemaining:        7,
		TotalAwarded:          15,
		AccumulatedMultiplier: decimal.RequireFromString("12.5"),
		FeatureWin:            money.MustFromString("34.20"),
	}

	if err := store.Save(ctx, playerID, "cascade-classic", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, playerID, "cascade-classic")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.Active || loaded.SpinsRemaining != 7 || loaded.TotalAwarded != 15 {
		t.Errorf("Loaded state = %+v, want %+v", loaded, state)
	}
	if !loaded.AccumulatedMultiplier.Equal(state.AccumulatedMultiplier) {
		t.Errorf("AccumulatedMultiplier = %s, want %s", loaded.AccumulatedMultiplier, state.AccumulatedMultiplier)
	}
	if loaded.FeatureWin.String() != "34.20" {
		t.Errorf("FeatureWin = %s, want 34.20", loaded.FeatureWin)
	}
}

func TestSaveUpserts(t *testing.T) {
	db := setupTestDB(t)
	playerID := createTestPlayer(t, db)
	store := New(db.DB)
	ctx := context.Background()

	first := game.EmptyFeatureState()
	first.Active = true
	first.SpinsRemaining = 10
	if err := store.Save(ctx, playerID, "cascade-classic", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := first
	second.SpinsRemaining = 9
	if err := store.Save(ctx, playerID, "cascade-classic", second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, playerID, "cascade-classic")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SpinsRemaining != 9 {
		t.Errorf("SpinsRemaining = %d, want 9", loaded.SpinsRemaining)
	}
}

func TestStateIsPerGame(t *testing.T) {
	db := setupTestDB(t)
	playerID := createTestPlayer(t, db)
	store := New(db.DB)
	ctx := context.Background()

	active := game.EmptyFeatureState()
	active.Active = true
	active.SpinsRemaining = 5
	if err := store.Save(ctx, playerID, "cascade-classic", active); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other, err := store.Load(ctx, playerID, "cascade-megaways")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if other.Active {
		t.Error("State for another game should be idle")
	}
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)
	playerID := createTestPlayer(t, db)
	store := New(db.DB)
	ctx := context.Background()

	state := game.EmptyFeatureState()
	state.Active = true
	if err := store.Save(ctx, playerID, "cascade-classic", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Clear(ctx, playerID, "cascade-classic"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := store.Load(ctx, playerID, "cascade-classic")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Active {
		t.Error("State should be idle after Clear")
	}
}
