// Package rounds persists resolved rounds for game recall.
// Compliant with GLI-19 §2.8.2: Game Outcome Information, §4.14: Game Recall
package rounds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mvoronov/cascata/internal/domain"
)

var ErrRoundNotFound = errors.New("round not found")

// Store persists round records.
type Store struct {
	db *sql.DB
}

// New creates a round store
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record stores one resolved round.
func (s *Store) Record(ctx context.Context, rec *domain.RoundRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var outcome interface{}
	if len(rec.Outcome) > 0 {
		outcome = string(rec.Outcome)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (round_id, player_id, game_id, bet, mode, wager, total_win, buy_cost, cascades, scatters, free_spin, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.RoundID, rec.PlayerID, rec.GameID, rec.Bet, rec.Mode, rec.Wager,
		rec.TotalWin, rec.BuyCost, rec.Cascades, rec.Scatters, rec.FreeSpin,
		outcome, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}
	return nil
}

// Get retrieves one round by ID for recall display.
func (s *Store) Get(ctx context.Context, roundID string) (*domain.RoundRecord, error) {
	var rec domain.RoundRecord
	var outcome sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT round_id, player_id, game_id, bet, mode, wager, total_win, buy_cost, cascades, scatters, free_spin, outcome, created_at
		FROM rounds WHERE round_id = $1
	`, roundID).Scan(
		&rec.RoundID, &rec.PlayerID, &rec.GameID, &rec.Bet, &rec.Mode,
		&rec.Wager, &rec.TotalWin, &rec.BuyCost, &rec.Cascades, &rec.Scatters,
		&rec.FreeSpin, &outcome, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	if outcome.Valid {
		rec.Outcome = []byte(outcome.String)
	}
	return &rec, nil
}

// History retrieves a player's most recent rounds, newest first.
// GLI-19 §4.14 requires the last rounds to be available for recall.
func (s *Store) History(ctx context.Context, playerID string, limit int) ([]*domain.RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT round_id, player_id, game_id, bet, mode, wager, total_win, buy_cost, cascades, scatters, free_spin, outcome, created_at
		FROM rounds WHERE player_id = $1 ORDER BY created_at DESC LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RoundRecord
	for rows.Next() {
		var rec domain.RoundRecord
		var outcome sql.NullString

		err := rows.Scan(&rec.RoundID, &rec.PlayerID, &rec.GameID, &rec.Bet,
			&rec.Mode, &rec.Wager, &rec.TotalWin, &rec.BuyCost, &rec.Cascades,
			&rec.Scatters, &rec.FreeSpin, &outcome, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}

		if outcome.Valid {
			rec.Outcome = []byte(outcome.String)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
