package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/liaweb/lia-engine/internal/inference"
	"github.com/liaweb/lia-engine/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()

	metaPath := filepath.Join(t.TempDir(), "metadata.json")
	meta := `{
		"modelVersion": "test-mock",
		"status": "mock",
		"classes": ["A", "B"]
	}`
	if err := os.WriteFile(metaPath, []byte(meta), 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}

	engine := inference.NewEngine()
	if err := engine.LoadModel("", metaPath); err != nil {
		t.Fatalf("failed to load mock model: %v", err)
	}
	t.Cleanup(engine.Dispose)

	s := session.New(session.Config{Engine: engine})
	t.Cleanup(s.Stop)
	return s
}

func TestPracticeHandler_Status(t *testing.T) {
	handler := NewPracticeHandler(newTestSession(t))

	req := httptest.NewRequest(http.MethodGet, "/api/practice", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response practiceStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Running {
		t.Error("session should not be running before start")
	}
	if response.Expected != "" {
		t.Errorf("expected no practice sign, got %q", response.Expected)
	}
}

func TestPracticeHandler_StartAndStop(t *testing.T) {
	handler := NewPracticeHandler(newTestSession(t))

	body, _ := json.Marshal(startPracticeRequest{Expected: "a"})
	req := httptest.NewRequest(http.MethodPost, "/api/practice", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response practiceStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Running {
		t.Error("session should be running after start")
	}
	if response.Expected != "A" {
		t.Errorf("expected practice sign A, got %q", response.Expected)
	}

	// Retargeting while running keeps the session alive.
	body, _ = json.Marshal(startPracticeRequest{Expected: "B"})
	req = httptest.NewRequest(http.MethodPost, "/api/practice", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Running || response.Expected != "B" {
		t.Errorf("expected running session retargeted to B, got %+v", response)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/practice", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Running {
		t.Error("session should be stopped after delete")
	}
	if response.Expected != "" {
		t.Errorf("expected practice sign cleared, got %q", response.Expected)
	}
}

func TestPracticeHandler_StartValidation(t *testing.T) {
	handler := NewPracticeHandler(newTestSession(t))

	// Missing expected sign.
	req := httptest.NewRequest(http.MethodPost, "/api/practice", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// Malformed body.
	req = httptest.NewRequest(http.MethodPost, "/api/practice", bytes.NewReader([]byte(`{bad`)))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
