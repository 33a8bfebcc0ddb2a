// Package wallet provides balance and transaction management for the
// gateway. The round engine itself never touches a balance; the gateway
// debits the reported wager and credits the reported win around each
// resolved round.
// Compliant with GLI-19 §2.5.6: Financial Transactions, §2.5.7: Transaction Log
package wallet

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
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrPlayerNotFound    = errors.New("player not found")
)

// Service provides wallet functionality
type Service struct {
	db       *sql.DB
	audit    *audit.Service
	currency string
}

// New creates a new wallet service
func New(db *sql.DB, auditSvc *audit.Service, currency string) *Service {
	return &Service{
		db:       db,
		audit:    auditSvc,
		currency: currency,
	}
}

// GetBalance retrieves the current balance for a player (GLI-19 §2.5.7)
func (s *Service) GetBalance(ctx context.Context, playerID string) (*domain.Balance, error) {
	var balance domain.Balance
	balance.PlayerID = playerID

	err := s.db.QueryRowContext(ctx, `
		SELECT amount, currency, updated_at FROM balances WHERE player_id = $1
	`, playerID).Scan(&balance.Amount, &balance.Currency, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &balance, nil
}

// apply moves the balance and records the transaction atomically.
// debit subtracts, otherwise the amount is credited.
func (s *Service) apply(ctx context.Context, playerID string, amount money.Money, debit bool, txType domain.TransactionType, reference, description string) (*domain.Transaction, error) {
	balance, err := s.GetBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if debit && balance.Amount.Cmp(amount) < 0 {
		return nil, ErrInsufficientFunds
	}

	newBalance := balance.Amount.Add(amount)
	if debit {
		newBalance = balance.Amount.Sub(amount)
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:            uuid.New().String(),
		PlayerID:      playerID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balance.Amount,
		BalanceAfter:  newBalance,
		Status:        domain.TxStatusCompleted,
		Reference:     reference,
		Description:   description,
		CreatedAt:     now,
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		UPDATE balances SET amount = $1, updated_at = $2 WHERE player_id = $3
	`, newBalance, now, playerID)
	if err != nil {
		return nil, err
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, player_id, type, amount, balance_before, balance_after, status, reference, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, tx.ID, tx.PlayerID, tx.Type, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		tx.Status, tx.Reference, tx.Description, tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}

	return tx, nil
}

// Deposit adds funds to a player's account (GLI-19 §2.5.6)
func (s *Service) Deposit(ctx context.Context, playerID string, amount money.Money, reference string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.apply(ctx, playerID, amount, false, domain.TxTypeDeposit, reference, "Deposit")
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.EventDeposit, domain.SeverityInfo,
		fmt.Sprintf("Deposit of %s %s", amount, s.currency),
		map[string]interface{}{
			"transaction_id": tx.ID,
			"amount":         amount.String(),
			"currency":       s.currency,
		},
		audit.WithPlayer(playerID))

	return tx, nil
}

// Withdraw removes funds from a player's account (GLI-19 §2.5.6)
func (s *Service) Withdraw(ctx context.Context, playerID string, amount money.Money, reference string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.apply(ctx, playerID, amount, true, domain.TxTypeWithdrawal, reference, "Withdrawal")
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.EventWithdrawal, domain.SeverityInfo,
		fmt.Sprintf("Withdrawal of %s %s", amount, s.currency),
		map[string]interface{}{
			"transaction_id": tx.ID,
			"amount":         amount.String(),
			"currency":       s.currency,
		},
		audit.WithPlayer(playerID))

	return tx, nil
}

// PlaceWager deducts the wager for a round (GLI-19 §4.3.3). A zero
// wager (free spin) records no transaction.
func (s *Service) PlaceWager(ctx context.Context, playerID string, amount money.Money, gameID, roundID string) (*domain.Transaction, error) {
	if amount.IsZero() {
		return nil, nil
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	return s.apply(ctx, playerID, amount, true, domain.TxTypeWager, roundID,
		fmt.Sprintf("Wager on %s", gameID))
}

// CreditWin adds winnings to a player's balance (GLI-19 §4.3.3)
func (s *Service) CreditWin(ctx context.Context, playerID string, amount money.Money, gameID, roundID string) (*domain.Transaction, error) {
	if amount.IsZero() {
		return nil, nil // no win to credit
	}

	return s.apply(ctx, playerID, amount, false, domain.TxTypeWin, roundID,
		fmt.Sprintf("Win on %s", gameID))
}

// Refund returns a held wager after a round failed to resolve
// (GLI-19 §4.16 - Interrupted Games).
func (s *Service) Refund(ctx context.Context, playerID string, amount money.Money, roundID string) (*domain.Transaction, error) {
	if amount.IsZero() {
		return nil, nil
	}

	return s.apply(ctx, playerID, amount, false, domain.TxTypeRefund, roundID, "Round refund")
}

// GetTransactions retrieves transaction history for a player (GLI-19 §2.5.7)
func (s *Service) GetTransactions(ctx context.Context, playerID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, type, amount, balance_before, balance_after, status, reference, description, created_at
		FROM transactions WHERE player_id = $1 ORDER BY created_at DESC LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var reference, description sql.NullString

		err := rows.Scan(&tx.ID, &tx.PlayerID, &tx.Type, &tx.Amount,
			&tx.BalanceBefore, &tx.BalanceAfter, &tx.Status,
			&reference, &description, &tx.CreatedAt)
		if err != nil {
			return nil, err
		}

		tx.Reference = reference.String
		tx.Description = description.String
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
