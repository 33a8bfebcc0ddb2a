package audit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvoronov/cascata/internal/database"
	"github.com/mvoronov/cascata/internal/domain"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New("postgres", "host=localhost dbname=cascata sslmode=disable")
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.CleanData(); err != nil {
		t.Fatalf("clean: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLogAndGetEvents(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db.DB, zerolog.Nop())
	ctx := context.Background()

	err := svc.Log(ctx, EventDeposit, domain.SeverityInfo, "Deposit of 100.00",
		map[string]string{"amount": "100.00"}, WithPlayer("p-1"), WithIP("10.0.0.1"))
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := svc.Log(ctx, EventLargeWin, domain.SeverityWarning, "Win of 500x", nil, WithPlayer("p-2")); err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := svc.GetEvents(ctx, &EventFilter{PlayerID: "p-1"})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events for p-1, want 1", len(events))
	}
	ev := events[0]
	if ev.Type != EventDeposit {
		t.Errorf("Type = %s, want %s", ev.Type, EventDeposit)
	}
	if ev.IPAddress != "10.0.0.1" {
		t.Errorf("IPAddress = %s, want 10.0.0.1", ev.IPAddress)
	}
	if len(ev.Data) == 0 {
		t.Error("event data not persisted")
	}
}

func TestGetEventsFilterByType(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db.DB, zerolog.Nop())
	ctx := context.Background()

	for _, typ := range []string{EventPlayerLogin, EventPlayerLogin, EventPlayerLogout} {
		if err := svc.Log(ctx, typ, domain.SeverityInfo, typ, nil); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	events, err := svc.GetEvents(ctx, &EventFilter{Type: EventPlayerLogin})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d login events, want 2", len(events))
	}
}

func TestGetEventsTimeWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := New(db.DB, zerolog.Nop())
	ctx := context.Background()

	old := &domain.AuditEvent{
		Type:        EventSystemError,
		Severity:    domain.SeverityCritical,
		Timestamp:   time.Now().UTC().Add(-48 * time.Hour),
		Description: "stale",
		Component:   "gateway",
	}
	if err := svc.LogEvent(ctx, old); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := svc.Log(ctx, EventSystemError, domain.SeverityCritical, "fresh", nil); err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := svc.GetEvents(ctx, &EventFilter{From: time.Now().UTC().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 || events[0].Description != "fresh" {
		t.Fatalf("window returned %d events, want only the fresh one", len(events))
	}
}
