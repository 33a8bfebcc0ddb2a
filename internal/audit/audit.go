// Package audit provides audit logging for the gateway.
// Compliant with GLI-19 §2.8.8: Significant Event Information
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvoronov/cascata/internal/domain"
)

// Event types per GLI-19 §2.8.8
const (
	EventPlayerRegistered = "player_registered"
	EventPlayerLogin      = "player_login"
	EventPlayerLogout     = "player_logout"
	EventLoginFailed      = "login_failed"
	EventDeposit          = "deposit"
	EventWithdrawal       = "withdrawal"
	EventRoundCompleted   = "round_completed"
	EventLargeWin         = "large_win"
	EventFeatureTriggered = "feature_triggered"
	EventFeatureExhausted = "feature_exhausted"
	EventFeatureBuy       = "feature_buy"
	EventRNGFallback      = "rng_fallback"
	EventRNGHealthCheck   = "rng_health_check"
	EventLimitChange      = "limit_change"
	EventSystemError      = "system_error"
)

// Service records significant events to the database and echoes them to
// the structured log.
type Service struct {
	db  *sql.DB
	log zerolog.Logger
}

// New creates a new audit service
func New(db *sql.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log}
}

// LogEvent records a significant event
func (s *Service) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	s.log.Info().
		Str("event_type", event.Type).
		Str("severity", string(event.Severity)).
		Str("component", event.Component).
		Msg(event.Description)

	var data interface{}
	if len(event.Data) > 0 {
		data = string(event.Data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, type, severity, timestamp, player_id, session_id, description, data, ip_address, component)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, event.ID, event.Type, event.Severity, event.Timestamp, event.PlayerID, event.SessionID,
		event.Description, data, event.IPAddress, event.Component)

	return err
}

// Log is a convenience method for logging events
func (s *Service) Log(ctx context.Context, eventType string, severity domain.EventSeverity, description string, data interface{}, opts ...EventOption) error {
	event := &domain.AuditEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
		Description: description,
		Component:   "gateway",
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err == nil {
			event.Data = jsonData
		}
	}

	for _, opt := range opts {
		opt(event)
	}

	return s.LogEvent(ctx, event)
}

// EventOption is a functional option for configuring audit events
type EventOption func(*domain.AuditEvent)

// WithPlayer sets the player ID for the event
func WithPlayer(playerID string) EventOption {
	return func(e *domain.AuditEvent) {
		e.PlayerID = &playerID
	}
}

// WithSession sets the session ID for the event
func WithSession(sessionID string) EventOption {
	return func(e *domain.AuditEvent) {
		e.SessionID = &sessionID
	}
}

// WithIP sets the IP address for the event
func WithIP(ip string) EventOption {
	return func(e *domain.AuditEvent) {
		e.IPAddress = ip
	}
}

// WithComponent sets the component for the event
func WithComponent(component string) EventOption {
	return func(e *domain.AuditEvent) {
		e.Component = component
	}
}

// EventFilter defines criteria for filtering audit events
type EventFilter struct {
	PlayerID string
	Type     string
	From     time.Time
	To       time.Time
	Limit    int
}

// GetEvents retrieves audit events with optional filtering
func (s *Service) GetEvents(ctx context.Context, filter *EventFilter) ([]*domain.AuditEvent, error) {
	query := `SELECT id, type, severity, timestamp, player_id, session_id, description, data, ip_address, component
			  FROM audit_events WHERE 1=1`
	args := []interface{}{}
	paramIdx := 1

	if filter != nil {
		if filter.PlayerID != "" {
			query += fmt.Sprintf(" AND player_id = $%d", paramIdx)
			args = append(args, filter.PlayerID)
			paramIdx++
		}
		if filter.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", paramIdx)
			args = append(args, filter.Type)
			paramIdx++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND timestamp >= $%d", paramIdx)
			args = append(args, filter.From)
			paramIdx++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND timestamp <= $%d", paramIdx)
			args = append(args, filter.To)
			paramIdx++
		}
	}

	query += " ORDER BY timestamp DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", paramIdx)
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var event domain.AuditEvent
		var playerID, sessionID sql.NullString
		var data sql.NullString

		err := rows.Scan(&event.ID, &event.Type, &event.Severity, &event.Timestamp,
			&playerID, &sessionID, &event.Description, &data, &event.IPAddress, &event.Component)
		if err != nil {
			return nil, err
		}

		if playerID.Valid {
			event.PlayerID = &playerID.String
		}
		if sessionID.Valid {
			event.SessionID = &sessionID.String
		}
		if data.Valid && data.String != "" {
			event.Data = json.RawMessage(data.String)
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
