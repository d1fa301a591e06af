package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"packvault/model"
	"packvault/repository"
)

type taxonomyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// taxonomyHandlers serves the CRUD surface shared by categories,
// genres and moods; only the repository and guard entity name differ.
type taxonomyHandlers struct {
	api    *APIHandler
	repo   repository.TaxonomyRepository
	entity string
}

func (h *APIHandler) categoryHandlers() *taxonomyHandlers {
	return &taxonomyHandlers{api: h, repo: h.categories, entity: "category"}
}

func (h *APIHandler) genreHandlers() *taxonomyHandlers {
	return &taxonomyHandlers{api: h, repo: h.genres, entity: "genre"}
}

func (h *APIHandler) moodHandlers() *taxonomyHandlers {
	return &taxonomyHandlers{api: h, repo: h.moods, entity: "mood"}
}

func (t *taxonomyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req taxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	entry := &model.Taxonomy{
		Name:        req.Name,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		IsActive:    true,
	}
	id, err := t.repo.Create(r.Context(), entry)
	if err != nil {
		http.Error(w, "Failed to create "+t.entity, http.StatusInternalServerError)
		return
	}
	entry.ID = id
	writeJSON(w, http.StatusCreated, entry)
}

func (t *taxonomyHandlers) List(w http.ResponseWriter, r *http.Request) {
	entries, err := t.repo.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve entries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (t *taxonomyHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	var req taxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	entry, err := t.repo.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve "+t.entity, http.StatusInternalServerError)
		return
	}
	if entry == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	entry.Name = req.Name
	entry.Description = sql.NullString{String: req.Description, Valid: req.Description != ""}
	if err := t.repo.Update(r.Context(), entry); err != nil {
		http.Error(w, "Failed to update "+t.entity, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (t *taxonomyHandlers) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		if err := t.repo.SetActive(r.Context(), id, active); err != nil {
			http.Error(w, "Failed to update "+t.entity, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// Delete hard-deletes an entry when no pack or sample references it;
// referenced entries can only be disabled.
func (t *taxonomyHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := t.api.delGuard.CanDelete(r.Context(), t.entity, id); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := t.repo.Delete(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete "+t.entity, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
