package api

import (
	"encoding/json"
	"net/http"

	"github.com/liaweb/lia-engine/internal/session"
)

// PracticeHandler controls the practice session lifecycle: which sign
// the learner is working on and whether the pipeline is running.
type PracticeHandler struct {
	session *session.Session
}

// NewPracticeHandler creates a new PracticeHandler for the session.
func NewPracticeHandler(s *session.Session) *PracticeHandler {
	return &PracticeHandler{session: s}
}

type startPracticeRequest struct {
	Expected string `json:"expected"`
}

type practiceStatusResponse struct {
	Running  bool   `json:"running"`
	Expected string `json:"expected"`
	Combo    int    `json:"combo"`
	Frames   int    `json:"frames"`
}

// ServeHTTP routes practice session requests.
// GET returns status, POST starts (or retargets) a session, DELETE stops it.
func (h *PracticeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.status(w, r)
	case http.MethodPost:
		h.start(w, r)
	case http.MethodDelete:
		h.stop(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PracticeHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, practiceStatusResponse{
		Running:  h.session.Running(),
		Expected: h.session.Expected(),
		Combo:    h.session.Combo().Count(),
		Frames:   h.session.Buffer().FrameCount(),
	})
}

func (h *PracticeHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startPracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Expected == "" {
		writeError(w, http.StatusBadRequest, "Expected sign is required")
		return
	}

	h.session.SetExpected(req.Expected)

	if !h.session.Running() {
		if err := h.session.Start(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to start session")
			return
		}
	}

	h.status(w, r)
}

func (h *PracticeHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.session.Stop()
	h.session.SetExpected("")
	h.status(w, r)
}
