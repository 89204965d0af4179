package store

import (
	"database/sql"
	"time"
)

// Attempt records one stable recognition during a practice session:
// what the learner was asked to sign, what the classifier saw, and the
// combo state at that moment.
type Attempt struct {
	ID         string
	Expected   string
	Recognized string
	Confidence float64
	Correct    bool
	ComboCount int
	Stars      int
	CreatedAt  time.Time
}

// SignStats aggregates attempt history for a single expected sign.
type SignStats struct {
	Expected string
	Attempts int
	Correct  int
}

// Accuracy returns the fraction of correct attempts, or 0 with no attempts.
func (s SignStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// AttemptRepository provides persistence for practice attempts.
type AttemptRepository struct {
	db *sql.DB
}

// Attempts returns the attempt repository for this store.
func (s *Store) Attempts() *AttemptRepository {
	return &AttemptRepository{db: s.db}
}

// Create inserts a new attempt.
func (r *AttemptRepository) Create(a *Attempt) error {
	a.CreatedAt = time.Now()

	correct := 0
	if a.Correct {
		correct = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO attempts (id, expected, recognized, confidence, correct, combo_count, stars, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Expected, a.Recognized, a.Confidence, correct, a.ComboCount, a.Stars, a.CreatedAt,
	)
	return err
}

// ListRecent returns the most recent attempts, newest first.
func (r *AttemptRepository) ListRecent(limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, expected, recognized, confidence, correct, combo_count, stars, created_at
		 FROM attempts ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		a := &Attempt{}
		var correct int
		if err := rows.Scan(&a.ID, &a.Expected, &a.Recognized, &a.Confidence,
			&correct, &a.ComboCount, &a.Stars, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Correct = correct != 0
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}

// StatsByExpected aggregates attempts per expected sign.
func (r *AttemptRepository) StatsByExpected() ([]SignStats, error) {
	rows, err := r.db.Query(
		`SELECT expected, COUNT(*), SUM(correct)
		 FROM attempts GROUP BY expected ORDER BY expected`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SignStats
	for rows.Next() {
		var s SignStats
		if err := rows.Scan(&s.Expected, &s.Attempts, &s.Correct); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
