package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"packvault/cache"
	"packvault/logger"
	"packvault/model"
)

func validateBannerRequest(req *model.CreateBannerRequest) string {
	if req.Title == "" {
		return "Banner title is required"
	}
	if req.ImageURL == "" {
		return "Banner image is required"
	}
	if (req.CTALabel == "") != (req.CTAURL == "") {
		return "CTA label and CTA URL must be set together"
	}
	if req.Audience == "" {
		req.Audience = model.AudienceAll
	}
	if !req.Audience.Valid() {
		return "Unknown audience"
	}
	return ""
}

// CreateBannerHandler creates a banner, optionally activating it in
// the same request when the slot is free.
func (h *APIHandler) CreateBannerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreateBannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validateBannerRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	banner := model.NewBanner(req, userID)
	if err := h.bannerRepo.CreateBanner(r.Context(), banner); err != nil {
		logger.Error("failed to create banner", logger.ErrorField(err))
		http.Error(w, "Failed to create banner", http.StatusInternalServerError)
		return
	}

	if req.Activate {
		if err := h.bannerSlot.Activate(r.Context(), banner.ID); err != nil {
			// Banner exists but the slot was taken; report the
			// conflict, the client can retry activation later.
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"banner": banner,
				"error":  err.Error(),
			})
			return
		}
		banner.IsActive = true
		cache.InvalidateShowcase(r.Context())
	}

	writeJSON(w, http.StatusCreated, banner)
}

// GetBannersHandler lists all banners.
func (h *APIHandler) GetBannersHandler(w http.ResponseWriter, r *http.Request) {
	banners, err := h.bannerRepo.ListBanners(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve banners", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// UpdateBannerHandler updates banner content. Activation state is not
// touched here; that goes through the activate endpoints.
func (h *APIHandler) UpdateBannerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.CreateBannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if msg := validateBannerRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	banner, err := h.bannerRepo.GetBannerByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve banner", http.StatusInternalServerError)
		return
	}
	if banner == nil {
		http.Error(w, "Banner not found", http.StatusNotFound)
		return
	}

	banner.Title = req.Title
	banner.ImageURL = req.ImageURL
	banner.LinkURL = req.LinkURL
	banner.CTALabel = req.CTALabel
	banner.CTAURL = req.CTAURL
	banner.Audience = req.Audience

	if err := h.bannerRepo.UpdateBanner(r.Context(), banner); err != nil {
		http.Error(w, "Failed to update banner", http.StatusInternalServerError)
		return
	}

	if banner.IsActive {
		cache.InvalidateShowcase(r.Context())
	}
	writeJSON(w, http.StatusOK, banner)
}

// ActivateBannerHandler claims the single active banner slot.
func (h *APIHandler) ActivateBannerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.bannerSlot.Activate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	cache.InvalidateShowcase(r.Context())
	w.WriteHeader(http.StatusOK)
}

// DeactivateBannerHandler releases the active banner slot.
func (h *APIHandler) DeactivateBannerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.bannerSlot.Deactivate(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	cache.InvalidateShowcase(r.Context())
	w.WriteHeader(http.StatusOK)
}

// DeleteBannerHandler removes a banner. An active banner must be
// deactivated first so the slot is never deleted out from under the
// public site.
func (h *APIHandler) DeleteBannerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	banner, err := h.bannerRepo.GetBannerByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve banner", http.StatusInternalServerError)
		return
	}
	if banner == nil {
		http.Error(w, "Banner not found", http.StatusNotFound)
		return
	}
	if banner.IsActive {
		http.Error(w, "Deactivate the banner before deleting it", http.StatusConflict)
		return
	}

	if err := h.bannerRepo.DeleteBanner(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete banner", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
