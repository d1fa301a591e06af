package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"packvault/cache"
	"packvault/logger"
	"packvault/model"
)

func validatePopupRequest(req *model.CreatePopupRequest) string {
	if req.Title == "" {
		return "Popup title is required"
	}
	if req.Body == "" {
		return "Popup body is required"
	}
	if req.Audience == "" {
		req.Audience = model.AudienceAll
	}
	if !req.Audience.Valid() {
		return "Unknown audience"
	}
	if req.Frequency == "" {
		req.Frequency = model.FrequencyOnce
	}
	if !req.Frequency.Valid() {
		return "Unknown frequency"
	}
	return ""
}

// CreatePopupHandler creates a popup, optionally activating it when
// the slot is free.
func (h *APIHandler) CreatePopupHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreatePopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validatePopupRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	popup := model.NewPopup(req, userID)
	if err := h.popupRepo.CreatePopup(r.Context(), popup); err != nil {
		logger.Error("failed to create popup", logger.ErrorField(err))
		http.Error(w, "Failed to create popup", http.StatusInternalServerError)
		return
	}

	if req.Activate {
		if err := h.popupSlot.Activate(r.Context(), popup.ID); err != nil {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"popup": popup,
				"error": err.Error(),
			})
			return
		}
		popup.IsActive = true
		cache.InvalidateShowcase(r.Context())
	}

	writeJSON(w, http.StatusCreated, popup)
}

// GetPopupsHandler lists all popups.
func (h *APIHandler) GetPopupsHandler(w http.ResponseWriter, r *http.Request) {
	popups, err := h.popupRepo.ListPopups(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve popups", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, popups)
}

// UpdatePopupHandler updates popup content.
func (h *APIHandler) UpdatePopupHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.CreatePopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validatePopupRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	popup, err := h.popupRepo.GetPopupByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve popup", http.StatusInternalServerError)
		return
	}
	if popup == nil {
		http.Error(w, "Popup not found", http.StatusNotFound)
		return
	}

	popup.Title = req.Title
	popup.Body = req.Body
	popup.Audience = req.Audience
	popup.Frequency = req.Frequency

	if err := h.popupRepo.UpdatePopup(r.Context(), popup); err != nil {
		http.Error(w, "Failed to update popup", http.StatusInternalServerError)
		return
	}

	if popup.IsActive {
		cache.InvalidateShowcase(r.Context())
	}
	writeJSON(w, http.StatusOK, popup)
}

// ActivatePopupHandler claims the single active popup slot.
func (h *APIHandler) ActivatePopupHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.popupSlot.Activate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	cache.InvalidateShowcase(r.Context())
	w.WriteHeader(http.StatusOK)
}

// DeactivatePopupHandler releases the active popup slot.
func (h *APIHandler) DeactivatePopupHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.popupSlot.Deactivate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	cache.InvalidateShowcase(r.Context())
	w.WriteHeader(http.StatusOK)
}

// DeletePopupHandler removes a popup; active popups must be
// deactivated first.
func (h *APIHandler) DeletePopupHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	popup, err := h.popupRepo.GetPopupByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve popup", http.StatusInternalServerError)
		return
	}
	if popup == nil {
		http.Error(w, "Popup not found", http.StatusNotFound)
		return
	}
	if popup.IsActive {
		http.Error(w, "Deactivate the popup before deleting it", http.StatusConflict)
		return
	}

	if err := h.popupRepo.DeletePopup(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete popup", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ShowcaseHandler is the public endpoint the storefront polls for the
// currently active banner and popup. Results are served from Redis
// when warm.
func (h *APIHandler) ShowcaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	banner, ok := cache.GetActiveBanner(ctx)
	if !ok {
		var err error
		banner, err = h.bannerRepo.GetActiveBanner(ctx)
		if err != nil {
			http.Error(w, "Failed to retrieve showcase", http.StatusInternalServerError)
			return
		}
		cache.SetActiveBanner(ctx, banner)
	}

	popup, ok := cache.GetActivePopup(ctx)
	if !ok {
		var err error
		popup, err = h.popupRepo.GetActivePopup(ctx)
		if err != nil {
			http.Error(w, "Failed to retrieve showcase", http.StatusInternalServerError)
			return
		}
		cache.SetActivePopup(ctx, popup)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"banner": banner,
		"popup":  popup,
	})
}
