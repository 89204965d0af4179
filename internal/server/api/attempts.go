package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/liaweb/lia-engine/internal/store"
)

// AttemptsHandler serves recorded practice attempts and their aggregates.
type AttemptsHandler struct {
	store *store.Store
}

// NewAttemptsHandler creates a new AttemptsHandler with the given store.
func NewAttemptsHandler(s *store.Store) *AttemptsHandler {
	return &AttemptsHandler{store: s}
}

type attemptResponse struct {
	ID         string  `json:"id"`
	Expected   string  `json:"expected"`
	Recognized string  `json:"recognized"`
	Confidence float64 `json:"confidence"`
	Correct    bool    `json:"correct"`
	ComboCount int     `json:"combo_count"`
	Stars      int     `json:"stars"`
	CreatedAt  string  `json:"created_at"`
}

type listAttemptsResponse struct {
	Attempts []attemptResponse `json:"attempts"`
}

type signStatsResponse struct {
	Expected string  `json:"expected"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type listStatsResponse struct {
	Stats []signStatsResponse `json:"stats"`
}

// ServeHTTP routes GET /api/attempts and GET /api/attempts/stats.
func (h *AttemptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if strings.HasSuffix(r.URL.Path, "/stats") {
		h.stats(w, r)
		return
	}
	h.list(w, r)
}

// list handles GET /api/attempts?limit=N
func (h *AttemptsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	attempts, err := h.store.Attempts().ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attempts")
		return
	}

	response := listAttemptsResponse{
		Attempts: make([]attemptResponse, 0, len(attempts)),
	}
	for _, a := range attempts {
		response.Attempts = append(response.Attempts, attemptResponse{
			ID:         a.ID,
			Expected:   a.Expected,
			Recognized: a.Recognized,
			Confidence: a.Confidence,
			Correct:    a.Correct,
			ComboCount: a.ComboCount,
			Stars:      a.Stars,
			CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// stats handles GET /api/attempts/stats
func (h *AttemptsHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Attempts().StatsByExpected()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate attempts")
		return
	}

	response := listStatsResponse{
		Stats: make([]signStatsResponse, 0, len(stats)),
	}
	for _, s := range stats {
		response.Stats = append(response.Stats, signStatsResponse{
			Expected: s.Expected,
			Attempts: s.Attempts,
			Correct:  s.Correct,
			Accuracy: s.Accuracy(),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
