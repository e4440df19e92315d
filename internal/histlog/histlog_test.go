package histlog

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func advisory(i int, ts time.Time) reminder.Advisory {
	return reminder.Advisory{
		ID:        fmt.Sprintf("01HZTEST%022d", i),
		Timestamp: ts,
		Type:      "supply_critical",
		Category:  reminder.CategorySupply,
		Title:     "Supply Critical",
		Message:   fmt.Sprintf("SUPPLY BLOCKED! %d/200", 190+i),
		Urgency:   reminder.UrgencyCritical,
	}
}

func TestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := s.Append(advisory(i, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(50)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent = %d records, want 3", len(got))
	}
	// Oldest first.
	if !got[0].Timestamp.Before(got[2].Timestamp) {
		t.Error("records should be oldest first")
	}
	if got[0].Message != "SUPPLY BLOCKED! 190/200" {
		t.Errorf("message = %q", got[0].Message)
	}
	if got[0].Urgency != reminder.UrgencyCritical {
		t.Errorf("urgency = %q", got[0].Urgency)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 10; i++ {
		if err := s.Append(advisory(i, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(4)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Recent(4) = %d records", len(got))
	}
	// The limit keeps the newest records.
	if got[3].Message != "SUPPLY BLOCKED! 199/200" {
		t.Errorf("newest record = %q", got[3].Message)
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent on empty store = %d records", len(got))
	}
}

func TestRecentClosedStoreReadCode(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = s.Recent(10)
	if err == nil {
		t.Fatal("expected error reading a closed store")
	}
	if !apperrors.IsCode(err, apperrors.CodeStorageReadFailed) {
		t.Errorf("Recent error = %v, want CodeStorageReadFailed", err)
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	a := advisory(1, time.Now())
	if err := s.Append(a); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(a); err == nil {
		t.Fatal("expected primary key violation for duplicate ID")
	}
}
