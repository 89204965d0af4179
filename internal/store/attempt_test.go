package store

import (
	"fmt"
	"testing"
	"time"
)

func TestAttemptRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attempts()

	attempt := &Attempt{
		ID:         "attempt-1",
		Expected:   "A",
		Recognized: "A",
		Confidence: 0.92,
		Correct:    true,
		ComboCount: 3,
		Stars:      4,
	}
	if err := repo.Create(attempt); err != nil {
		t.Fatalf("failed to create attempt: %v", err)
	}
	if attempt.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	attempts, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("failed to list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(attempts))
	}

	got := attempts[0]
	if got.Expected != "A" || got.Recognized != "A" {
		t.Errorf("expected A/A, got %q/%q", got.Expected, got.Recognized)
	}
	if !got.Correct {
		t.Error("expected attempt marked correct")
	}
	if got.ComboCount != 3 || got.Stars != 4 {
		t.Errorf("expected combo 3 stars 4, got %d/%d", got.ComboCount, got.Stars)
	}
}

func TestAttemptRepository_ListRecentOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attempts()

	for i := 0; i < 5; i++ {
		err := repo.Create(&Attempt{
			ID:         fmt.Sprintf("attempt-%d", i),
			Expected:   "A",
			Recognized: "B",
		})
		if err != nil {
			t.Fatalf("failed to create attempt %d: %v", i, err)
		}
		// created_at has sub-millisecond resolution, but keep ordering
		// unambiguous across filesystems.
		time.Sleep(2 * time.Millisecond)
	}

	attempts, err := repo.ListRecent(3)
	if err != nil {
		t.Fatalf("failed to list attempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts with limit 3, got %d", len(attempts))
	}

	// Newest first.
	if attempts[0].ID != "attempt-4" {
		t.Errorf("expected newest attempt first, got %q", attempts[0].ID)
	}
}

func TestAttemptRepository_StatsByExpected(t *testing.T) {
	s := newTestStore(t)
	repo := s.Attempts()

	records := []struct {
		expected string
		correct  bool
	}{
		{"A", true},
		{"A", true},
		{"A", false},
		{"B", false},
	}
	for i, r := range records {
		err := repo.Create(&Attempt{
			ID:       fmt.Sprintf("attempt-%d", i),
			Expected: r.expected,
			Correct:  r.correct,
		})
		if err != nil {
			t.Fatalf("failed to create attempt %d: %v", i, err)
		}
	}

	stats, err := repo.StatsByExpected()
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 signs, got %d", len(stats))
	}

	a := stats[0]
	if a.Expected != "A" || a.Attempts != 3 || a.Correct != 2 {
		t.Errorf("unexpected stats for A: %+v", a)
	}
	if acc := a.Accuracy(); acc < 0.66 || acc > 0.67 {
		t.Errorf("expected accuracy ~0.667 for A, got %f", acc)
	}

	b := stats[1]
	if b.Expected != "B" || b.Attempts != 1 || b.Correct != 0 {
		t.Errorf("unexpected stats for B: %+v", b)
	}
	if b.Accuracy() != 0 {
		t.Errorf("expected accuracy 0 for B, got %f", b.Accuracy())
	}
}

func TestSignStats_AccuracyEmpty(t *testing.T) {
	var s SignStats
	if s.Accuracy() != 0 {
		t.Errorf("expected 0 accuracy with no attempts, got %f", s.Accuracy())
	}
}
