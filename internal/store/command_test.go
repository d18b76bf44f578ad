package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommandRepository_Create(t *testing.T) {
	s := newTestStore(t)

	rec := &CommandRecord{
		Command:   "B",
		LeftHand:  "Motor 1",
		RightHand: "Rotate Clockwise",
		Transport: "websocket",
	}
	if err := s.Commands().Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if rec.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if rec.SentAt.IsZero() {
		t.Error("expected SentAt to be assigned")
	}

	got, err := s.Commands().GetByID(rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Command != "B" || got.LeftHand != "Motor 1" || got.RightHand != "Rotate Clockwise" || got.Transport != "websocket" {
		t.Errorf("unexpected record %+v", got)
	}
	if !got.Delivered() {
		t.Error("record without error should be delivered")
	}
}

func TestCommandRepository_RejectsLongCommand(t *testing.T) {
	s := newTestStore(t)

	err := s.Commands().Create(&CommandRecord{Command: "AB", LeftHand: "x", RightHand: "y"})
	if err == nil {
		t.Error("expected check constraint violation")
	}
}

func TestCommandRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commands().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestCommandRepository_List(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, c := range []string{"A", "B", "C", "A"} {
		rec := &CommandRecord{
			Command:   c,
			LeftHand:  "Motor 1",
			RightHand: "No Gesture",
			SentAt:    base.Add(time.Duration(i) * time.Second),
		}
		if c == "C" {
			rec.Error = "link down"
		}
		if err := s.Commands().Create(rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("newest first with limit", func(t *testing.T) {
		records, err := s.Commands().List(2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		if records[0].Command != "A" || records[1].Command != "C" {
			t.Errorf("unexpected order: %s, %s", records[0].Command, records[1].Command)
		}
		if records[1].Delivered() {
			t.Error("record with error should not be delivered")
		}
	})

	t.Run("non-positive limit returns everything", func(t *testing.T) {
		records, err := s.Commands().List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 4 {
			t.Errorf("got %d records, want 4", len(records))
		}
	})

	t.Run("count and prune", func(t *testing.T) {
		n, err := s.Commands().Count()
		if err != nil || n != 4 {
			t.Fatalf("Count() = %d, %v", n, err)
		}

		removed, err := s.Commands().DeleteBefore(base.Add(2 * time.Second))
		if err != nil {
			t.Fatalf("DeleteBefore() error = %v", err)
		}
		if removed != 2 {
			t.Errorf("removed %d, want 2", removed)
		}

		n, _ = s.Commands().Count()
		if n != 2 {
			t.Errorf("Count() after prune = %d, want 2", n)
		}
	})
}

func TestCommandRepository_MixedZones(t *testing.T) {
	s := newTestStore(t)
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	india := time.FixedZone("IST", 5*3600+1800)

	// Written in +05:30, one hour either side of the UTC cutoff.
	for _, rec := range []*CommandRecord{
		{Command: "B", LeftHand: "Motor 1", RightHand: "Rotate Clockwise", SentAt: cutoff.Add(-time.Hour).In(india)},
		{Command: "C", LeftHand: "Motor 1", RightHand: "Rotate Anticlockwise", SentAt: cutoff.Add(time.Hour).In(india)},
	} {
		if err := s.Commands().Create(rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	// Written in UTC between the two.
	if err := s.Commands().Create(&CommandRecord{Command: "A", LeftHand: "Fist (Do Nothing)", RightHand: "No Gesture", SentAt: cutoff.Add(30 * time.Minute)}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	records, err := s.Commands().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var order string
	for _, r := range records {
		order += r.Command
	}
	if order != "CAB" {
		t.Errorf("List() order = %s, want CAB", order)
	}

	removed, err := s.Commands().DeleteBefore(cutoff.In(time.FixedZone("PST", -8*3600)))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d, want 1", removed)
	}
	if _, err := s.Commands().GetByID(records[2].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("record before the cutoff should be gone, got %v", err)
	}
}
