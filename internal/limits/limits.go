// Package limits provides responsible gaming limits for wagering.
// Compliant with GLI-19 §2.5.5: Limitations and Exclusions
//
// Key Requirements:
//   - Players can set wager and loss limits per period
//   - Limit decreases take effect immediately
//   - Limit increases require a 24-hour cooling-off period
package limits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvoronov/cascata/internal/audit"
	"github.com/mvoronov/cascata/internal/domain"
	"github.com/mvoronov/cascata/internal/money"
)

var (
	ErrInvalidLimit       = errors.New("invalid limit value")
	ErrInvalidPeriod      = errors.New("invalid limit period")
	ErrWagerLimitExceeded = errors.New("wager limit exceeded")
	ErrLossLimitExceeded  = errors.New("loss limit exceeded")
)

// CoolingOffPeriod is the required waiting period for limit increases
// GLI-19 §2.5.5.b - Limit increases require waiting period
const CoolingOffPeriod = 24 * time.Hour

// Service provides player limit management
type Service struct {
	db       *sql.DB
	audit    *audit.Service
	currency string
}

// New creates a new limits service
func New(db *sql.DB, auditSvc *audit.Service, currency string) *Service {
	return &Service{
		db:       db,
		audit:    auditSvc,
		currency: currency,
	}
}

// GetLimits retrieves a player's current limits
// GLI-19 §2.5.5 - Player must be able to view their limits
func (s *Service) GetLimits(ctx context.Context, playerID string) (*domain.WagerLimits, error) {
	var limits domain.WagerLimits
	var dailyWager, weeklyWager, dailyLoss, weeklyLoss sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, player_id, daily_wager, weekly_wager, daily_loss, weekly_loss, effective_at, updated_at
		FROM wager_limits WHERE player_id = $1
	`, playerID).Scan(
		&limits.ID, &limits.PlayerID,
		&dailyWager, &weeklyWager, &dailyLoss, &weeklyLoss,
		&limits.EffectiveAt, &limits.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now().UTC()
			return &domain.WagerLimits{
				PlayerID:    playerID,
				EffectiveAt: now,
				UpdatedAt:   now,
			}, nil
		}
		return nil, fmt.Errorf("failed to get limits: %w", err)
	}

	limits.DailyWager, err = parseNullable(dailyWager)
	if err != nil {
		return nil, err
	}
	limits.WeeklyWager, err = parseNullable(weeklyWager)
	if err != nil {
		return nil, err
	}
	limits.DailyLoss, err = parseNullable(dailyLoss)
	if err != nil {
		return nil, err
	}
	limits.WeeklyLoss, err = parseNullable(weeklyLoss)
	if err != nil {
		return nil, err
	}

	return &limits, nil
}

func parseNullable(v sql.NullString) (*money.Money, error) {
	if !v.Valid {
		return nil, nil
	}
	m, err := money.FromString(v.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored limit: %w", err)
	}
	return &m, nil
}

// SetLimitRequest contains limit update data. A zero Amount removes
// the limit (which counts as an increase and cools off).
type SetLimitRequest struct {
	PlayerID string      `json:"player_id"`
	Period   string      `json:"period"` // daily, weekly
	Amount   money.Money `json:"amount"`
}

// SetWagerLimit updates a player's wager limit
// GLI-19 §2.5.5.a - Wager limits must be supported
func (s *Service) SetWagerLimit(ctx context.Context, req *SetLimitRequest) (*domain.WagerLimits, error) {
	return s.setLimit(ctx, req, "wager")
}

// SetLossLimit updates a player's loss limit
// GLI-19 §2.5.5.a - Loss limits must be supported
func (s *Service) SetLossLimit(ctx context.Context, req *SetLimitRequest) (*domain.WagerLimits, error) {
	return s.setLimit(ctx, req, "loss")
}

func (s *Service) setLimit(ctx context.Context, req *SetLimitRequest, kind string) (*domain.WagerLimits, error) {
	if req.Period != "daily" && req.Period != "weekly" {
		return nil, ErrInvalidPeriod
	}

	current, err := s.GetLimits(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	var existing *money.Money
	switch req.Period + "_" + kind {
	case "daily_wager":
		existing = current.DailyWager
	case "weekly_wager":
		existing = current.WeeklyWager
	case "daily_loss":
		existing = current.DailyLoss
	case "weekly_loss":
		existing = current.WeeklyLoss
	}

	now := time.Now().UTC()
	effectiveAt := now

	// Decreases are immediate; increases and removals cool off
	// (GLI-19 §2.5.5.b)
	if existing != nil && (req.Amount.IsZero() || req.Amount.Cmp(*existing) > 0) {
		effectiveAt = now.Add(CoolingOffPeriod)
	}

	if err := s.upsertLimit(ctx, req.PlayerID, req.Period+"_"+kind, req.Amount, effectiveAt); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.EventLimitChange, domain.SeverityInfo,
		fmt.Sprintf("%s %s limit changed to %s %s", req.Period, kind, req.Amount, s.currency),
		map[string]interface{}{
			"period":       req.Period,
			"kind":         kind,
			"amount":       req.Amount.String(),
			"effective_at": effectiveAt,
			"immediate":    effectiveAt.Equal(now),
		},
		audit.WithPlayer(req.PlayerID))

	return s.GetLimits(ctx, req.PlayerID)
}

// CheckWagerLimit checks if placing a wager would exceed limits
// GLI-19 §2.5.5 - Limits must be enforced
func (s *Service) CheckWagerLimit(ctx context.Context, playerID string, amount money.Money) error {
	limits, err := s.GetLimits(ctx, playerID)
	if err != nil {
		return err
	}
	if limits.DailyWager == nil && limits.WeeklyWager == nil {
		return nil
	}

	now := time.Now().UTC()
	if limits.EffectiveAt.After(now) {
		return nil
	}

	if limits.DailyWager != nil {
		total, err := s.wagerTotal(ctx, playerID, now.Add(-24*time.Hour), now)
		if err != nil {
			return err
		}
		if total.Add(amount).Cmp(*limits.DailyWager) > 0 {
			return fmt.Errorf("daily: %w", ErrWagerLimitExceeded)
		}
	}
	if limits.WeeklyWager != nil {
		total, err := s.wagerTotal(ctx, playerID, now.Add(-7*24*time.Hour), now)
		if err != nil {
			return err
		}
		if total.Add(amount).Cmp(*limits.WeeklyWager) > 0 {
			return fmt.Errorf("weekly: %w", ErrWagerLimitExceeded)
		}
	}

	return nil
}

// CheckLossLimit checks if the player's net loss over the limit
// periods, plus the pending wager, would exceed a loss limit. Loss is
// wagers minus wins over the period; wins in excess of wagers count as
// zero loss.
func (s *Service) CheckLossLimit(ctx context.Context, playerID string, amount money.Money) error {
	limits, err := s.GetLimits(ctx, playerID)
	if err != nil {
		return err
	}
	if limits.DailyLoss == nil && limits.WeeklyLoss == nil {
		return nil
	}

	now := time.Now().UTC()
	if limits.EffectiveAt.After(now) {
		return nil
	}

	if limits.DailyLoss != nil {
		loss, err := s.netLoss(ctx, playerID, now.Add(-24*time.Hour), now)
		if err != nil {
			return err
		}
		if loss.Add(amount).Cmp(*limits.DailyLoss) > 0 {
			return fmt.Errorf("daily: %w", ErrLossLimitExceeded)
		}
	}
	if limits.WeeklyLoss != nil {
		loss, err := s.netLoss(ctx, playerID, now.Add(-7*24*time.Hour), now)
		if err != nil {
			return err
		}
		if loss.Add(amount).Cmp(*limits.WeeklyLoss) > 0 {
			return fmt.Errorf("weekly: %w", ErrLossLimitExceeded)
		}
	}

	return nil
}

// upsertLimit inserts or updates a specific limit column
func (s *Service) upsertLimit(ctx context.Context, playerID, limitType string, amount money.Money, effectiveAt time.Time) error {
	now := time.Now().UTC()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM wager_limits WHERE player_id = $1)", playerID).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO wager_limits (id, player_id, effective_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), playerID, effectiveAt, now)
		if err != nil {
			return err
		}
	}

	var nullableAmount interface{}
	if !amount.IsZero() {
		nullableAmount = amount
	}

	var query string
	switch limitType {
	case "daily_wager":
		query = "UPDATE wager_limits SET daily_wager = $1, effective_at = $2, updated_at = $3 WHERE player_id = $4"
	case "weekly_wager":
		query = "UPDATE wager_limits SET weekly_wager = $1, effective_at = $2, updated_at = $3 WHERE player_id = $4"
	case "daily_loss":
		query = "UPDATE wager_limits SET daily_loss = $1, effective_at = $2, updated_at = $3 WHERE player_id = $4"
	case "weekly_loss":
		query = "UPDATE wager_limits SET weekly_loss = $1, effective_at = $2, updated_at = $3 WHERE player_id = $4"
	default:
		return fmt.Errorf("unknown limit type: %s", limitType)
	}

	_, err = s.db.ExecContext(ctx, query, nullableAmount, effectiveAt, now, playerID)
	return err
}

// wagerTotal sums completed wagers in a time period
func (s *Service) wagerTotal(ctx context.Context, playerID string, from, to time.Time) (money.Money, error) {
	return s.txTotal(ctx, playerID, domain.TxTypeWager, from, to)
}

// netLoss is wagers minus wins over the period, floored at zero
func (s *Service) netLoss(ctx context.Context, playerID string, from, to time.Time) (money.Money, error) {
	wagers, err := s.txTotal(ctx, playerID, domain.TxTypeWager, from, to)
	if err != nil {
		return money.Zero(), err
	}
	wins, err := s.txTotal(ctx, playerID, domain.TxTypeWin, from, to)
	if err != nil {
		return money.Zero(), err
	}
	return wagers.Sub(wins), nil
}

func (s *Service) txTotal(ctx context.Context, playerID string, txType domain.TransactionType, from, to time.Time) (money.Money, error) {
	var total money.Money
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE player_id = $1 AND type = $2 AND status = 'completed'
		AND created_at >= $3 AND created_at <= $4
	`, playerID, txType, from, to).Scan(&total)
	if err != nil {
		return money.Zero(), err
	}
	return total, nil
}
