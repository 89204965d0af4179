package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "lia-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}

	// Migrations should have created all tables.
	for _, table := range []string{"signs", "sign_samples", "attempts"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist: %v", table, err)
		}
	}
}

func TestNew_Reopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "lia-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Signs().Create(&Sign{ID: "sign-a", Name: "A"}); err != nil {
		t.Fatalf("failed to create sign: %v", err)
	}
	s.Close()

	// Reopening must run migrations idempotently and keep the data.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	sign, err := s2.Signs().GetByID("sign-a")
	if err != nil {
		t.Fatalf("failed to read sign after reopen: %v", err)
	}
	if sign.Name != "A" {
		t.Errorf("expected sign A after reopen, got %q", sign.Name)
	}
}
