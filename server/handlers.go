package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"packvault/config"
	"packvault/core/active"
	"packvault/core/guard"
	"packvault/core/publish"
	"packvault/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo    repository.UserRepository
	creatorRepo repository.CreatorRepository
	packRepo    repository.PackRepository
	sampleRepo  repository.SampleRepository
	categories  repository.TaxonomyRepository
	genres      repository.TaxonomyRepository
	moods       repository.TaxonomyRepository
	bannerRepo  *repository.BannerRepository
	popupRepo   *repository.PopupRepository

	publisher *publish.Publisher
	lifecycle *publish.Lifecycle
	delGuard  *guard.Guard

	bannerSlot *active.Enforcer
	popupSlot  *active.Enforcer

	progress *ProgressHub
	cfg      *config.Config
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps core errors onto HTTP statuses. Validation
// failures are handled before this point; everything arriving here
// already passed the form checks.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		blocked    *guard.BlockedError
		transition *publish.TransitionError
		upload     *publish.UploadError
		write      *publish.WriteError
	)

	switch {
	case errors.Is(err, active.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, active.ErrSlotOccupied), errors.As(err, &blocked), errors.As(err, &transition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &upload):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &write):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
