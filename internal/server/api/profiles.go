// Package api provides HTTP API handlers for the Drishti facial analysis system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/drishti/internal/store"
)

// ProfileHandler handles HTTP requests for tuning profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles, /api/profiles/{id}, /api/profiles/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/profiles
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

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	// Item endpoint: /api/profiles/{id}
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

type profileRequest struct {
	Name              string  `json:"name"`
	EARCloseThreshold float64 `json:"ear_close_threshold"`
	EAROpenThreshold  float64 `json:"ear_open_threshold"`
	MinClosedFrames   int     `json:"min_closed_frames"`
	MatchDistanceFrac float64 `json:"match_distance_frac"`
	EvictAfterMissed  int     `json:"evict_after_missed"`
}

type profileResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	EARCloseThreshold float64 `json:"ear_close_threshold"`
	EAROpenThreshold  float64 `json:"ear_open_threshold"`
	MinClosedFrames   int     `json:"min_closed_frames"`
	MatchDistanceFrac float64 `json:"match_distance_frac"`
	EvictAfterMissed  int     `json:"evict_after_missed"`
	Active            bool    `json:"active"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:                p.ID,
		Name:              p.Name,
		EARCloseThreshold: p.EARCloseThreshold,
		EAROpenThreshold:  p.EAROpenThreshold,
		MinClosedFrames:   p.MinClosedFrames,
		MatchDistanceFrac: p.MatchDistanceFrac,
		EvictAfterMissed:  p.EvictAfterMissed,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
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

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles and creates a new profile.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	profile := &store.Profile{
		ID:                uuid.New().String(),
		Name:              req.Name,
		EARCloseThreshold: defaultFloat(req.EARCloseThreshold, 0.21),
		EAROpenThreshold:  defaultFloat(req.EAROpenThreshold, 0.25),
		MinClosedFrames:   defaultInt(req.MinClosedFrames, 2),
		MatchDistanceFrac: defaultFloat(req.MatchDistanceFrac, 0.15),
		EvictAfterMissed:  defaultInt(req.EvictAfterMissed, 15),
	}

	if profile.EAROpenThreshold < profile.EARCloseThreshold {
		writeError(w, http.StatusBadRequest, "Open threshold must not be below close threshold")
		return
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	// First, get the existing profile
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.EARCloseThreshold != 0 {
		profile.EARCloseThreshold = req.EARCloseThreshold
	}
	if req.EAROpenThreshold != 0 {
		profile.EAROpenThreshold = req.EAROpenThreshold
	}
	if req.MinClosedFrames != 0 {
		profile.MinClosedFrames = req.MinClosedFrames
	}
	if req.MatchDistanceFrac != 0 {
		profile.MatchDistanceFrac = req.MatchDistanceFrac
	}
	if req.EvictAfterMissed != 0 {
		profile.EvictAfterMissed = req.EvictAfterMissed
	}

	if profile.EAROpenThreshold < profile.EARCloseThreshold {
		writeError(w, http.StatusBadRequest, "Open threshold must not be below close threshold")
		return
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/profiles/{id}/activate and makes the
// profile the one applied to new sessions.
func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().SetActive(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
