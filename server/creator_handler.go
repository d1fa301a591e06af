package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"packvault/model"
)

type creatorRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

// CreateCreatorHandler registers a new creator profile.
func (h *APIHandler) CreateCreatorHandler(w http.ResponseWriter, r *http.Request) {
	var req creatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Creator name is required", http.StatusBadRequest)
		return
	}

	creator := &model.Creator{
		Name:      req.Name,
		Bio:       sql.NullString{String: req.Bio, Valid: req.Bio != ""},
		AvatarURL: sql.NullString{String: req.AvatarURL, Valid: req.AvatarURL != ""},
		IsActive:  true,
	}
	id, err := h.creatorRepo.CreateCreator(r.Context(), creator)
	if err != nil {
		http.Error(w, "Failed to create creator", http.StatusInternalServerError)
		return
	}
	creator.ID = id
	writeJSON(w, http.StatusCreated, creator)
}

// GetCreatorsHandler lists all creators.
func (h *APIHandler) GetCreatorsHandler(w http.ResponseWriter, r *http.Request) {
	creators, err := h.creatorRepo.ListCreators(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve creators", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, creators)
}

// UpdateCreatorHandler updates a creator profile.
func (h *APIHandler) UpdateCreatorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid creator ID", http.StatusBadRequest)
		return
	}

	var req creatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Creator name is required", http.StatusBadRequest)
		return
	}

	creator, err := h.creatorRepo.GetCreatorByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve creator", http.StatusInternalServerError)
		return
	}
	if creator == nil {
		http.Error(w, "Creator not found", http.StatusNotFound)
		return
	}

	creator.Name = req.Name
	creator.Bio = sql.NullString{String: req.Bio, Valid: req.Bio != ""}
	creator.AvatarURL = sql.NullString{String: req.AvatarURL, Valid: req.AvatarURL != ""}

	if err := h.creatorRepo.UpdateCreator(r.Context(), creator); err != nil {
		http.Error(w, "Failed to update creator", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, creator)
}

// SetCreatorActiveHandler enables or disables a creator.
func (h *APIHandler) SetCreatorActiveHandler(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid creator ID", http.StatusBadRequest)
			return
		}
		if err := h.creatorRepo.SetCreatorActive(r.Context(), id, active); err != nil {
			http.Error(w, "Failed to update creator", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// DeleteCreatorHandler hard-deletes a creator with no packs; creators
// with packs can only be disabled.
func (h *APIHandler) DeleteCreatorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid creator ID", http.StatusBadRequest)
		return
	}

	if err := h.delGuard.CanDelete(r.Context(), "creator", id); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.creatorRepo.DeleteCreator(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete creator", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
