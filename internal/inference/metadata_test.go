package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liaweb/lia-engine/internal/feature"
)

func writeMetadata(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
	return path
}

func TestLoadMetadata(t *testing.T) {
	path := writeMetadata(t, `{
		"modelVersion": "1.0.0",
		"status": "ready",
		"inputShape": [1, 30, 126],
		"timesteps": 30,
		"features": 126,
		"classes": ["A", "B", "C"],
		"numClasses": 3,
		"minConfidenceThreshold": 0.7,
		"bufferSize": 30,
		"resetThreshold": 10
	}`)

	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}

	if meta.ModelVersion != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", meta.ModelVersion)
	}
	if meta.IsMock() {
		t.Error("ready model reported as mock")
	}
	if len(meta.Classes) != 3 {
		t.Errorf("expected 3 classes, got %d", len(meta.Classes))
	}
	if meta.WindowSize() != 30 {
		t.Errorf("expected window size 30, got %d", meta.WindowSize())
	}
	if meta.MinConfidenceThreshold != 0.7 {
		t.Errorf("expected threshold 0.7, got %f", meta.MinConfidenceThreshold)
	}
}

func TestLoadMetadata_MockStatus(t *testing.T) {
	path := writeMetadata(t, `{
		"modelVersion": "0.1.0-mock",
		"status": "mock",
		"note": "placeholder until the trained model is converted",
		"classes": ["A", "B"]
	}`)

	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if !meta.IsMock() {
		t.Error("expected mock status to be recognized")
	}
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing metadata file")
	}
}

func TestLoadMetadata_InvalidJSON(t *testing.T) {
	path := writeMetadata(t, `{not json`)
	if _, err := LoadMetadata(path); err == nil {
		t.Error("expected error for malformed metadata")
	}
}

func TestLoadMetadata_NoClasses(t *testing.T) {
	path := writeMetadata(t, `{"status": "ready", "classes": []}`)
	if _, err := LoadMetadata(path); err == nil {
		t.Error("expected error for metadata with no classes")
	}
}

func TestLoadMetadata_FeatureMismatch(t *testing.T) {
	path := writeMetadata(t, `{"status": "ready", "classes": ["A"], "features": 63}`)
	if _, err := LoadMetadata(path); err == nil {
		t.Error("expected error for feature length mismatch")
	}
}

func TestLoadMetadata_DerivesNumClasses(t *testing.T) {
	path := writeMetadata(t, `{"status": "ready", "classes": ["A", "B", "C", "D"]}`)
	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if meta.NumClasses != 4 {
		t.Errorf("expected derived numClasses 4, got %d", meta.NumClasses)
	}
}

func TestModelMetadata_ClassLabel(t *testing.T) {
	meta := &ModelMetadata{Classes: []string{"A", "B"}}

	if got := meta.ClassLabel(1); got != "B" {
		t.Errorf("expected B, got %q", got)
	}
	if got := meta.ClassLabel(-1); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for negative index, got %q", got)
	}
	if got := meta.ClassLabel(2); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for out-of-range index, got %q", got)
	}
}

func TestModelMetadata_WindowSizeFallbacks(t *testing.T) {
	// timesteps wins when present
	meta := &ModelMetadata{Timesteps: 20, InputShape: []int{1, 30, 126}}
	if got := meta.WindowSize(); got != 20 {
		t.Errorf("expected 20 from timesteps, got %d", got)
	}

	// then the input shape
	meta = &ModelMetadata{InputShape: []int{1, 40, 126}}
	if got := meta.WindowSize(); got != 40 {
		t.Errorf("expected 40 from input shape, got %d", got)
	}

	// then the pipeline default
	meta = &ModelMetadata{}
	if got := meta.WindowSize(); got != feature.DefaultBufferSize {
		t.Errorf("expected default %d, got %d", feature.DefaultBufferSize, got)
	}
}
