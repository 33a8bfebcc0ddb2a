// Package domain contains the gateway-side models wrapped around the
// round engine: player accounts, sessions, financial transactions, and
// persisted round records.
// Based on GLI-19 Standards for Interactive Gaming Systems V3.0
//
// Key GLI-19 References:
//   - §2.5: Player Account Management
//   - §2.5.6/§2.5.7: Financial Transactions
//   - §2.8.2: Game Outcome Information
//   - §4.3.3: Game Cycle Requirements
package domain

import (
	"encoding/json"
	"time"

	"github.com/mvoronov/cascata/internal/money"
)

// PlayerStatus represents the status of a player account (GLI-19 §2.5)
type PlayerStatus string

const (
	PlayerStatusActive    PlayerStatus = "active"
	PlayerStatusSuspended PlayerStatus = "suspended"
	PlayerStatusExcluded  PlayerStatus = "excluded"
	PlayerStatusClosed    PlayerStatus = "closed"
)

// Player represents a registered player (GLI-19 §2.5.2)
type Player struct {
	ID               string       `json:"id" db:"id"`
	Username         string       `json:"username" db:"username"`
	Email            string       `json:"email" db:"email"`
	PasswordHash     string       `json:"-" db:"password_hash"`
	Status           PlayerStatus `json:"status" db:"status"`
	RegistrationDate time.Time    `json:"registration_date" db:"registration_date"`
	LastLoginAt      *time.Time   `json:"last_login_at" db:"last_login_at"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// SessionStatus represents session state (GLI-19 §2.5.3)
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusExpired   SessionStatus = "expired"
	SessionStatusLoggedOut SessionStatus = "logged_out"
)

// Session represents a player session (GLI-19 §2.5.3, §2.5.4)
type Session struct {
	ID             string        `json:"id" db:"id"`
	PlayerID       string        `json:"player_id" db:"player_id"`
	Token          string        `json:"-" db:"token"`
	IPAddress      string        `json:"ip_address" db:"ip_address"`
	UserAgent      string        `json:"user_agent" db:"user_agent"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	LastActivityAt time.Time     `json:"last_activity_at" db:"last_activity_at"`
	ExpiresAt      time.Time     `json:"expires_at" db:"expires_at"`
	Status         SessionStatus `json:"status" db:"status"`
}

// TransactionType represents transaction types
// GLI-19 §2.5.6 - Financial Transactions: All financial transactions must be logged
type TransactionType string

const (
	TxTypeDeposit    TransactionType = "deposit"
	TxTypeWithdrawal TransactionType = "withdrawal"
	TxTypeWager      TransactionType = "wager"
	TxTypeWin        TransactionType = "win"
	TxTypeRefund     TransactionType = "refund"
)

// TransactionStatus represents transaction state
type TransactionStatus string

const (
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
)

// Transaction represents a financial transaction (GLI-19 §2.5.6, §2.5.7)
type Transaction struct {
	ID            string            `json:"id" db:"id"`
	PlayerID      string            `json:"player_id" db:"player_id"`
	Type          TransactionType   `json:"type" db:"type"`
	Amount        money.Money       `json:"amount" db:"amount"`
	BalanceBefore money.Money       `json:"balance_before" db:"balance_before"`
	BalanceAfter  money.Money       `json:"balance_after" db:"balance_after"`
	Status        TransactionStatus `json:"status" db:"status"`
	Reference     string            `json:"reference" db:"reference"`
	Description   string            `json:"description" db:"description"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// Balance represents player balance (GLI-19 §2.5.7)
type Balance struct {
	PlayerID  string      `json:"player_id"`
	Amount    money.Money `json:"amount"`
	Currency  string      `json:"currency"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RoundRecord is the persisted form of one resolved round
// (GLI-19 §2.8.2 - Game Outcome Information, §4.14 - Game Recall).
// Outcome holds the serialized RoundResult for recall display.
type RoundRecord struct {
	RoundID   string          `json:"round_id" db:"round_id"`
	PlayerID  string          `json:"player_id" db:"player_id"`
	GameID    string          `json:"game_id" db:"game_id"`
	Bet       money.Money     `json:"bet" db:"bet"`
	Mode      string          `json:"mode" db:"mode"`
	Wager     money.Money     `json:"wager" db:"wager"`
	TotalWin  money.Money     `json:"total_win" db:"total_win"`
	BuyCost   money.Money     `json:"buy_cost" db:"buy_cost"`
	Cascades  int             `json:"cascades" db:"cascades"`
	Scatters  int             `json:"scatters" db:"scatters"`
	FreeSpin  bool            `json:"free_spin" db:"free_spin"`
	Outcome   json.RawMessage `json:"outcome" db:"outcome"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// EventSeverity represents audit event severity
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// AuditEvent represents a significant event
// GLI-19 §2.8.8 - Significant Event Information: System must log all significant
// events including failed logins, program errors, large wins, and RNG failures
type AuditEvent struct {
	ID          string          `json:"id" db:"id"`
	Type        string          `json:"type" db:"type"`
	Severity    EventSeverity   `json:"severity" db:"severity"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	PlayerID    *string         `json:"player_id,omitempty" db:"player_id"`
	SessionID   *string         `json:"session_id,omitempty" db:"session_id"`
	Description string          `json:"description" db:"description"`
	Data        json.RawMessage `json:"data,omitempty" db:"data"`
	IPAddress   string          `json:"ip_address" db:"ip_address"`
	Component   string          `json:"component" db:"component"`
}

// WagerLimits represents player-imposed responsible gaming limits
// GLI-19 §2.5.5 - Limitations and Exclusions: limit decreases are
// immediate; limit increases require a cooling-off period.
type WagerLimits struct {
	ID          string       `json:"id" db:"id"`
	PlayerID    string       `json:"player_id" db:"player_id"`
	DailyWager  *money.Money `json:"daily_wager,omitempty" db:"daily_wager"`
	WeeklyWager *money.Money `json:"weekly_wager,omitempty" db:"weekly_wager"`
	DailyLoss   *money.Money `json:"daily_loss,omitempty" db:"daily_loss"`
	WeeklyLoss  *money.Money `json:"weekly_loss,omitempty" db:"weekly_loss"`
	EffectiveAt time.Time    `json:"effective_at" db:"effective_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// GameInfo is the public description of a configured game.
type GameInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Megaways   bool        `json:"megaways"`
	MinBet     money.Money `json:"min_bet"`
	MaxBet     money.Money `json:"max_bet"`
	BuyEnabled bool        `json:"buy_enabled"`
}
