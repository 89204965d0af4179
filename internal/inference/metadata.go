// Package inference owns the trained gesture classifier: metadata and
// weight loading, warmup, per-window prediction and a degraded mock mode
// for when no real model is available.
package inference

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liaweb/lia-engine/internal/feature"
)

// Model status values carried by the metadata sidecar.
const (
	// StatusReady marks a fully trained, converted model.
	StatusReady = "ready"
	// StatusMock marks a placeholder: no weights exist yet and the
	// engine should serve pseudo-random predictions.
	StatusMock = "mock"
)

// ModelMetadata is the sidecar document shipped next to the model
// weights by the training pipeline's conversion step.
type ModelMetadata struct {
	ModelVersion           string   `json:"modelVersion"`
	Status                 string   `json:"status"`
	Note                   string   `json:"note,omitempty"`
	InputShape             []int    `json:"inputShape"`
	OutputShape            []int    `json:"outputShape"`
	Timesteps              int      `json:"timesteps"`
	Features               int      `json:"features"`
	FeatureDescription     string   `json:"featureDescription,omitempty"`
	Classes                []string `json:"classes"`
	NumClasses             int      `json:"numClasses"`
	MinConfidenceThreshold float64  `json:"minConfidenceThreshold"`
	BufferSize             int      `json:"bufferSize"`
	ResetThreshold         int      `json:"resetThreshold"`
}

// LoadMetadata reads and validates a metadata sidecar file.
func LoadMetadata(path string) (*ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("metadata %s declares no classes", path)
	}
	if meta.NumClasses == 0 {
		meta.NumClasses = len(meta.Classes)
	}
	if meta.Features != 0 && meta.Features != feature.FeatureLength {
		return nil, fmt.Errorf("metadata declares %d features, classifier pipeline produces %d",
			meta.Features, feature.FeatureLength)
	}

	return &meta, nil
}

// IsMock reports whether the metadata marks the model as a placeholder.
func (m *ModelMetadata) IsMock() bool {
	return m.Status == StatusMock
}

// ClassLabel maps a class index to its label, falling back to "UNKNOWN"
// when the index is outside the declared label list.
func (m *ModelMetadata) ClassLabel(index int) string {
	if index < 0 || index >= len(m.Classes) {
		return "UNKNOWN"
	}
	return m.Classes[index]
}

// WindowSize returns the declared inference window length, defaulting to
// the pipeline's standard buffer size when the metadata omits it.
func (m *ModelMetadata) WindowSize() int {
	if m.Timesteps > 0 {
		return m.Timesteps
	}
	if len(m.InputShape) >= 2 && m.InputShape[1] > 0 {
		return m.InputShape[1]
	}
	return feature.DefaultBufferSize
}
