package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/liaweb/lia-engine/internal/feature"
	"github.com/liaweb/lia-engine/internal/store"
)

// SamplesHandler handles HTTP requests for recorded sign samples.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/signs/{id}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/signs/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	signID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, signID)
	case http.MethodPost:
		h.create(w, r, signID)
	case http.MethodDelete:
		h.delete(w, r, signID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request types

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

// recordedSample is the payload shape produced by the collection client:
// one full window of normalized feature frames.
type recordedSample struct {
	Frames [][]float64 `json:"frames"`
}

// Response types

type sampleResponse struct {
	ID          int64           `json:"id"`
	SignID      string          `json:"sign_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// validateSample checks that a recorded sample is a window the training
// pipeline can consume: at least one frame, each of feature length.
func validateSample(raw json.RawMessage) error {
	var sample recordedSample
	if err := json.Unmarshal(raw, &sample); err != nil {
		return fmt.Errorf("invalid sample payload: %w", err)
	}
	if len(sample.Frames) == 0 {
		return errors.New("sample has no frames")
	}
	for i, frame := range sample.Frames {
		if len(frame) != feature.FeatureLength {
			return fmt.Errorf("frame %d has %d features, expected %d",
				i, len(frame), feature.FeatureLength)
		}
	}
	return nil
}

// list handles GET /api/signs/{id}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, signID string) {
	samples, err := h.store.Samples().GetBySignID(signID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			SignID:      s.SignID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/signs/{id}/samples
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, signID string) {
	if _, err := h.store.Signs().GetByID(signID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify sign")
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	for i, raw := range req.Samples {
		if err := validateSample(raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Sample %d: %v", i, err))
			return
		}
	}

	if err := h.store.Samples().Create(signID, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// delete handles DELETE /api/signs/{id}/samples
func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request, signID string) {
	if _, err := h.store.Signs().GetByID(signID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify sign")
		return
	}

	if err := h.store.Samples().DeleteBySignID(signID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
