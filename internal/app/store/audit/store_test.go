package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/labportal/internal/app/store/audit"
	"github.com/dalemusser/labportal/internal/testutil"
)

func TestStore_Log_DefaultsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     "root",
		IP:        "192.168.1.1",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v should be after %v", events[0].Timestamp, before)
	}
}

func TestStore_Query(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	events := []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventGroupCreated, Actor: "root", Target: "G1", Success: true, Timestamp: base},
		{Category: audit.CategoryAdmin, EventType: audit.EventSlotCreated, Actor: "root", Target: "s1", Success: true, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Actor: "mallory", FailureReason: "bad credentials", Timestamp: base.Add(2 * time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventGroupDeleted, Actor: "other", Target: "G1", Success: true, Timestamp: base.Add(3 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"by category", audit.QueryFilter{Category: audit.CategoryAdmin}, 3},
		{"by event type", audit.QueryFilter{EventType: audit.EventGroupCreated}, 1},
		{"by actor", audit.QueryFilter{Actor: "root"}, 2},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}

	recent, _ := store.Query(ctx, audit.QueryFilter{Limit: 1})
	if len(recent) != 1 || recent[0].EventType != audit.EventGroupDeleted {
		t.Errorf("newest event should come first, got %+v", recent)
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil || n != 1 {
		t.Errorf("CountByFilter = %d, %v; want 1", n, err)
	}

	failed, err := store.Query(ctx, audit.QueryFilter{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginFailed,
		StartTime: &base,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Actor != "mallory" {
		t.Errorf("failed logins = %+v", failed)
	}
}
