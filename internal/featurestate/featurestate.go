// Package featurestate persists the cross-round free-spin state per
// (player, game) pair. The round engine is stateless; the gateway loads
// the prior state before each round and saves the engine's NextFeature
// state after (GLI-19 §4.16 - Interrupted Games).
package featurestate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/game"
)

// Store persists free-spin feature state.
type Store struct {
	db *sql.DB
}

// New creates a feature state store
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the persisted state for a player and game. A missing row
// is the idle state, not an error.
func (s *Store) Load(ctx context.Context, playerID, gameID string) (game.FreeSpinState, error) {
	state := game.EmptyFeatureState()
	var accumulated string

	err := s.db.QueryRowContext(ctx, `
		SELECT active, spins_remaining, total_awarded, accumulated_multiplier, feature_win
		FROM feature_states WHERE player_id = $1 AND game_id = $2
	`, playerID, gameID).Scan(
		&state.Active, &state.SpinsRemaining, &state.TotalAwarded,
		&accumulated, &state.FeatureWin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.EmptyFeatureState(), nil
		}
		return game.FreeSpinState{}, fmt.Errorf("failed to load feature state: %w", err)
	}

	state.AccumulatedMultiplier, err = decimal.NewFromString(accumulated)
	if err != nil {
		return game.FreeSpinState{}, fmt.Errorf("failed to parse accumulated multiplier: %w", err)
	}

	return state, nil
}

// Save upserts the state for a player and game.
func (s *Store) Save(ctx context.Context, playerID, gameID string, state game.FreeSpinState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feature_states (player_id, game_id, active, spins_remaining, total_awarded, accumulated_multiplier, feature_win, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, game_id) DO UPDATE SET
			active = EXCLUDED.active,
			spins_remaining = EXCLUDED.spins_remaining,
			total_awarded = EXCLUDED.total_awarded,
			accumulated_multiplier = EXCLUDED.accumulated_multiplier,
			feature_win = EXCLUDED.feature_win,
			updated_at = EXCLUDED.updated_at
	`, playerID, gameID, state.Active, state.SpinsRemaining, state.TotalAwarded,
		state.AccumulatedMultiplier.String(), state.FeatureWin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save feature state: %w", err)
	}
	return nil
}

// Clear removes the persisted state for a player and game.
func (s *Store) Clear(ctx context.Context, playerID, gameID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM feature_states WHERE player_id = $1 AND game_id = $2",
		playerID, gameID)
	return err
}
