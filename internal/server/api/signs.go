// Package api provides HTTP API handlers for the LIA sign recognition engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/liaweb/lia-engine/internal/store"
)

// SignHandler handles HTTP requests for sign catalog resources.
type SignHandler struct {
	store *store.Store
}

// NewSignHandler creates a new SignHandler with the given store.
func NewSignHandler(s *store.Store) *SignHandler {
	return &SignHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods. Expected paths: /api/signs or /api/signs/{id}.
func (h *SignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/signs")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createSignRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type updateSignRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type signResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Samples   int    `json:"samples"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listSignsResponse struct {
	Signs []signResponse `json:"signs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Sign to a signResponse.
func toResponse(s *store.Sign) signResponse {
	return signResponse{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Samples:   s.Samples,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validCategory reports whether the category is one the catalog accepts.
func validCategory(category string) bool {
	switch category {
	case store.CategoryAlphabet, store.CategoryGreeting, store.CategoryPhrase:
		return true
	}
	return false
}

// list handles GET /api/signs and returns all signs.
func (h *SignHandler) list(w http.ResponseWriter, r *http.Request) {
	signs, err := h.store.Signs().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list signs")
		return
	}

	response := listSignsResponse{
		Signs: make([]signResponse, 0, len(signs)),
	}
	for _, s := range signs {
		response.Signs = append(response.Signs, toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/signs/{id} and returns a single sign.
func (h *SignHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sign, err := h.store.Signs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sign")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sign))
}

// create handles POST /api/signs and creates a new sign.
func (h *SignHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	category := req.Category
	if category == "" {
		category = store.CategoryAlphabet
	}
	if !validCategory(category) {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}

	sign := &store.Sign{
		ID:       uuid.New().String(),
		Name:     strings.ToUpper(req.Name),
		Category: category,
	}

	if err := h.store.Signs().Create(sign); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create sign")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(sign))
}

// update handles PUT /api/signs/{id} and updates an existing sign.
func (h *SignHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	sign, err := h.store.Signs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sign")
		return
	}

	var req updateSignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		sign.Name = strings.ToUpper(req.Name)
	}
	if req.Category != "" {
		if !validCategory(req.Category) {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		sign.Category = req.Category
	}

	if err := h.store.Signs().Update(sign); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update sign")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sign))
}

// delete handles DELETE /api/signs/{id}.
func (h *SignHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Signs().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sign")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
