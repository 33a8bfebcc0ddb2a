// Package database provides database access for the gateway.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates all required tables
// Based on GLI-19 §2.8 Information to be Maintained
func (db *DB) Migrate() error {
	schema := `
	-- Players table (GLI-19 §2.5, §2.8.5)
	CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		registration_date TIMESTAMP NOT NULL,
		last_login_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Sessions table (GLI-19 §2.5.3)
	CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		token TEXT NOT NULL,
		ip_address VARCHAR(45) NOT NULL,
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL,
		last_activity_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'active'
	);

	-- Balances table (GLI-19 §2.5.7)
	CREATE TABLE IF NOT EXISTS balances (
		player_id UUID PRIMARY KEY REFERENCES players(id),
		amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		updated_at TIMESTAMP NOT NULL
	);

	-- Transactions table (GLI-19 §2.5.6, §2.5.7, §2.8.5)
	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		type VARCHAR(50) NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		balance_before NUMERIC(14,2) NOT NULL,
		balance_after NUMERIC(14,2) NOT NULL,
		status VARCHAR(50) NOT NULL,
		reference VARCHAR(255),
		description TEXT,
		created_at TIMESTAMP NOT NULL
	);

	-- Rounds table (GLI-19 §2.8.2, §4.3.3)
	CREATE TABLE IF NOT EXISTS rounds (
		round_id UUID PRIMARY KEY,
		player_id UUID NOT NULL REFERENCES players(id),
		game_id VARCHAR(255) NOT NULL,
		bet NUMERIC(14,2) NOT NULL,
		mode VARCHAR(20) NOT NULL,
		wager NUMERIC(14,2) NOT NULL,
		total_win NUMERIC(14,2) NOT NULL DEFAULT 0,
		buy_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		cascades INTEGER NOT NULL DEFAULT 0,
		scatters INTEGER NOT NULL DEFAULT 0,
		free_spin BOOLEAN NOT NULL DEFAULT FALSE,
		outcome JSONB,
		created_at TIMESTAMP NOT NULL
	);

	-- Feature states table: the persisted cross-round engine state
	-- per (player, game) pair (GLI-19 §4.16)
	CREATE TABLE IF NOT EXISTS feature_states (
		player_id UUID NOT NULL REFERENCES players(id),
		game_id VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		spins_remaining INTEGER NOT NULL DEFAULT 0,
		total_awarded INTEGER NOT NULL DEFAULT 0,
		accumulated_multiplier NUMERIC(14,4) NOT NULL DEFAULT 0,
		feature_win NUMERIC(14,2) NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (player_id, game_id)
	);

	-- Wager limits table (GLI-19 §2.5.5)
	CREATE TABLE IF NOT EXISTS wager_limits (
		id UUID PRIMARY KEY,
		player_id UUID UNIQUE NOT NULL REFERENCES players(id),
		daily_wager NUMERIC(14,2),
		weekly_wager NUMERIC(14,2),
		daily_loss NUMERIC(14,2),
		weekly_loss NUMERIC(14,2),
		effective_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Audit Events table (GLI-19 §2.8.8)
	CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		type VARCHAR(100) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		player_id UUID,
		session_id UUID,
		description TEXT NOT NULL,
		data JSONB,
		ip_address VARCHAR(45),
		component VARCHAR(100) NOT NULL
	);

	-- Failed Login Attempts table (GLI-19 §2.8.8)
	CREATE TABLE IF NOT EXISTS failed_logins (
		id UUID PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		ip_address VARCHAR(45) NOT NULL,
		attempted_at TIMESTAMP NOT NULL
	);

	-- System state table (GLI-19 §2.4)
	CREATE TABLE IF NOT EXISTS system_state (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		updated_by VARCHAR(255)
	);

	-- Disabled games table (GLI-19 §2.4)
	CREATE TABLE IF NOT EXISTS disabled_games (
		game_id VARCHAR(255) PRIMARY KEY,
		reason TEXT,
		disabled_at TIMESTAMP NOT NULL,
		disabled_by VARCHAR(255)
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_sessions_player ON sessions(player_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
	CREATE INDEX IF NOT EXISTS idx_transactions_player ON transactions(player_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at);
	CREATE INDEX IF NOT EXISTS idx_rounds_player ON rounds(player_id);
	CREATE INDEX IF NOT EXISTS idx_rounds_created ON rounds(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_events_player ON audit_events(player_id);
	CREATE INDEX IF NOT EXISTS idx_failed_logins_username ON failed_logins(username);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Reset drops all tables (for testing)
func (db *DB) Reset() error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS disabled_games CASCADE;
		DROP TABLE IF EXISTS system_state CASCADE;
		DROP TABLE IF EXISTS failed_logins CASCADE;
		DROP TABLE IF EXISTS audit_events CASCADE;
		DROP TABLE IF EXISTS wager_limits CASCADE;
		DROP TABLE IF EXISTS feature_states CASCADE;
		DROP TABLE IF EXISTS rounds CASCADE;
		DROP TABLE IF EXISTS transactions CASCADE;
		DROP TABLE IF EXISTS balances CASCADE;
		DROP TABLE IF EXISTS sessions CASCADE;
		DROP TABLE IF EXISTS players CASCADE;
	`)
	return err
}

// CleanData truncates all tables without dropping them (for testing)
func (db *DB) CleanData() error {
	_, err := db.Exec(`
		TRUNCATE TABLE disabled_games, system_state, failed_logins, audit_events,
		               wager_limits, feature_states, rounds, transactions,
		               balances, sessions, players CASCADE;
	`)
	return err
}
