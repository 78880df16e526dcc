package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	steps := []struct {
		stage  Stage
		status Status
		detail string
	}{
		{StageProfile, StatusCompleted, ""},
		{StageResearch, StatusCompleted, ""},
		{StageFlashcards, StatusFailed, "unparsable model response"},
	}
	for _, st := range steps {
		if err := s.Append(ctx, "alice", st.stage, st.status, st.detail); err != nil {
			t.Fatalf("Append(%s): %v", st.stage, err)
		}
	}

	runs, err := s.Recent(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent returned %d runs, want 3", len(runs))
	}

	// Newest-first ordering.
	if runs[0].Stage != StageFlashcards || runs[0].Status != StatusFailed {
		t.Errorf("runs[0] = %+v, want the flashcards failure", runs[0])
	}
	if runs[0].Detail != "unparsable model response" {
		t.Errorf("detail = %q", runs[0].Detail)
	}
	if runs[2].Stage != StageProfile {
		t.Errorf("runs[2] = %+v, want the profile record", runs[2])
	}
	for _, r := range runs {
		if r.UserID != "alice" {
			t.Errorf("UserID = %q, want alice", r.UserID)
		}
		if r.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	}
}

func TestRecentLimitsAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "alice", StageProfile, StatusCompleted, ""); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Append(ctx, "bob", StageProfile, StatusSkipped, "no documents"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	runs, err := s.Recent(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("limit not applied: got %d runs", len(runs))
	}

	bobRuns, err := s.Recent(ctx, "bob", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(bobRuns) != 1 || bobRuns[0].Status != StatusSkipped {
		t.Errorf("per-user isolation broken: %+v", bobRuns)
	}

	if none, err := s.Recent(ctx, "carol", 10); err != nil || len(none) != 0 {
		t.Errorf("Recent for unknown user = (%v, %v), want empty", none, err)
	}
}

func TestAppendRejectsUnknownStage(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Append(ctx, "alice", Stage("bogus"), StatusCompleted, ""); err == nil {
		t.Error("unknown stage accepted despite CHECK constraint")
	}
}
