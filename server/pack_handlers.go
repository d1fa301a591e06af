package server

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"packvault/core/publish"
	"packvault/logger"
	"packvault/model"
)

const maxUploadBytes = 500 << 20 // whole multipart form

// sampleForm is the JSON descriptor of one new sample inside the pack
// form; its files travel as sample_{i} and stem_{i}_{j} parts.
type sampleForm struct {
	Name       string           `json:"name"`
	BPM        int64            `json:"bpm"`
	Key        string           `json:"key"`
	Length     float64          `json:"length"`
	SampleType model.SampleType `json:"sampleType"`
	MoodID     int64            `json:"moodId"`
	CreditCost int64            `json:"creditCost"`
	HasStems   bool             `json:"hasStems"`
	Stems      []string         `json:"stems"` // stem display names
}

type packForm struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatorID   int64            `json:"creatorId"`
	CategoryID  int64            `json:"categoryId"`
	Tags        []string         `json:"tags"`
	Premium     bool             `json:"premium"`
	GenreIDs    []int64          `json:"genreIds"`
	Status      model.PackStatus `json:"status"`
	ProgressID  string           `json:"progressId"`

	Samples []sampleForm `json:"samples"` // create path

	// Edit path.
	NewSamples       []sampleForm           `json:"newSamples"`
	UpdatedSamples   []publish.SampleUpdate `json:"updatedSamples"`
	RemovedSampleIDs []int64                `json:"removedSampleIds"`
}

// openAsset turns one multipart file into a pipeline asset. The
// returned closer must run after the pipeline finishes.
func openAsset(header *multipart.FileHeader) (publish.Asset, func(), error) {
	file, err := header.Open()
	if err != nil {
		return publish.Asset{}, nil, err
	}
	return publish.Asset{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, func() { file.Close() }, nil
}

// buildSubmission validates the form and assembles the pipeline
// submission. All validation happens here, before any network call.
func buildSubmission(r *http.Request, form *packForm, samples []sampleForm, requireCreateFields bool) (*publish.PackSubmission, func(), error) {
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if requireCreateFields {
		if form.Name == "" {
			return nil, closeAll, fmt.Errorf("pack name is required")
		}
		if form.CreatorID <= 0 || form.CategoryID <= 0 {
			return nil, closeAll, fmt.Errorf("creator and category are required")
		}
	}

	sub := &publish.PackSubmission{
		Name:        form.Name,
		Description: form.Description,
		CreatorID:   form.CreatorID,
		CategoryID:  form.CategoryID,
		Tags:        form.Tags,
		Premium:     form.Premium,
		GenreIDs:    form.GenreIDs,
	}

	if headers := r.MultipartForm.File["cover"]; len(headers) > 0 {
		asset, closer, err := openAsset(headers[0])
		if err != nil {
			return nil, closeAll, fmt.Errorf("cover file unreadable: %w", err)
		}
		closers = append(closers, closer)
		sub.Cover = &asset
	}

	for i, sf := range samples {
		if sf.Name == "" {
			return nil, closeAll, fmt.Errorf("sample %d: name is required", i)
		}
		if !sf.SampleType.Valid() {
			return nil, closeAll, fmt.Errorf("sample %d: type must be loop or oneshot", i)
		}

		headers := r.MultipartForm.File[fmt.Sprintf("sample_%d", i)]
		if len(headers) == 0 {
			return nil, closeAll, fmt.Errorf("sample %d: audio file is missing", i)
		}
		asset, closer, err := openAsset(headers[0])
		if err != nil {
			return nil, closeAll, fmt.Errorf("sample %d: audio file unreadable: %w", i, err)
		}
		closers = append(closers, closer)

		ss := publish.SampleSubmission{
			Name:       sf.Name,
			Audio:      asset,
			BPM:        sf.BPM,
			Key:        sf.Key,
			Length:     sf.Length,
			SampleType: sf.SampleType,
			MoodID:     sf.MoodID,
			CreditCost: sf.CreditCost,
			HasStems:   sf.HasStems,
		}

		if sf.HasStems {
			if len(sf.Stems) == 0 {
				return nil, closeAll, fmt.Errorf("sample %d: hasStems set but no stems listed", i)
			}
			for j, stemName := range sf.Stems {
				stemHeaders := r.MultipartForm.File[fmt.Sprintf("stem_%d_%d", i, j)]
				if len(stemHeaders) == 0 {
					return nil, closeAll, fmt.Errorf("sample %d: stem file %d is missing", i, j)
				}
				stemAsset, stemCloser, err := openAsset(stemHeaders[0])
				if err != nil {
					return nil, closeAll, fmt.Errorf("sample %d: stem file %d unreadable: %w", i, j, err)
				}
				closers = append(closers, stemCloser)
				ss.Stems = append(ss.Stems, publish.StemSubmission{Name: stemName, Audio: stemAsset})
			}
		}

		sub.Samples = append(sub.Samples, ss)
	}

	return sub, closeAll, nil
}

// parsePackForm parses the multipart body and its embedded JSON
// descriptor.
func parsePackForm(r *http.Request) (*packForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("failed to parse upload form: %w", err)
	}

	raw := r.FormValue("pack")
	if raw == "" {
		return nil, fmt.Errorf("missing 'pack' descriptor")
	}

	form := &packForm{}
	if err := json.Unmarshal([]byte(raw), form); err != nil {
		return nil, fmt.Errorf("malformed 'pack' descriptor: %w", err)
	}
	return form, nil
}

// startProgress registers the run with the hub and returns the
// callback handed to the pipeline.
func (h *APIHandler) startProgress(form *packForm) (string, publish.ProgressFunc) {
	jobID := form.ProgressID
	if jobID == "" {
		jobID = uuid.New().String()
	}
	h.progress.Create(jobID)
	return jobID, func(percent int) {
		h.progress.Publish(jobID, percent)
	}
}

// CreatePackHandler ingests a new pack: cover, samples and stems are
// uploaded first, then the aggregate is written in one transaction.
func (h *APIHandler) CreatePackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form, err := parsePackForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := form.Status
	if status == "" {
		status = model.PackDraft
	}
	if status != model.PackDraft && status != model.PackPublished {
		http.Error(w, "Initial status must be draft or published", http.StatusBadRequest)
		return
	}

	sub, closeFiles, err := buildSubmission(r, form, form.Samples, true)
	defer closeFiles()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID, progressFn := h.startProgress(form)
	defer h.progress.Finish(jobID)

	logger.Info("pack ingestion started",
		logger.Int64("userId", userID),
		logger.String("name", form.Name),
		logger.Int("samples", len(sub.Samples)),
		logger.String("job", jobID))

	pack, err := h.publisher.CreatePack(r.Context(), sub, status, progressFn)
	if err != nil {
		logger.Error("pack ingestion failed", logger.String("job", jobID), logger.ErrorField(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"pack": pack,
		"job":  jobID,
	})
}

// EditPackHandler reruns the pipeline for an existing pack with a
// three-way sample diff.
func (h *APIHandler) EditPackHandler(w http.ResponseWriter, r *http.Request) {
	packID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid pack ID", http.StatusBadRequest)
		return
	}

	form, err := parsePackForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, closeFiles, err := buildSubmission(r, form, form.NewSamples, true)
	defer closeFiles()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	edit := &publish.EditSubmission{
		Pack:             *sub,
		UpdatedSamples:   form.UpdatedSamples,
		RemovedSampleIDs: form.RemovedSampleIDs,
	}

	jobID, progressFn := h.startProgress(form)
	defer h.progress.Finish(jobID)

	pack, err := h.publisher.EditPack(r.Context(), packID, edit, progressFn)
	if err != nil {
		logger.Error("pack edit failed",
			logger.Int64("packId", packID),
			logger.ErrorField(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pack": pack,
		"job":  jobID,
	})
}

// GetPacksHandler lists all packs for the console.
func (h *APIHandler) GetPacksHandler(w http.ResponseWriter, r *http.Request) {
	packs, err := h.packRepo.ListPacks(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve packs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, packs)
}

// GetPackHandler returns one pack with all of its samples, deleted
// ones included -- this is the admin view.
func (h *APIHandler) GetPackHandler(w http.ResponseWriter, r *http.Request) {
	packID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid pack ID", http.StatusBadRequest)
		return
	}

	pack, err := h.packRepo.GetPackByID(r.Context(), packID)
	if err != nil {
		http.Error(w, "Failed to retrieve pack", http.StatusInternalServerError)
		return
	}
	if pack == nil {
		http.Error(w, "Pack not found", http.StatusNotFound)
		return
	}

	samples, err := h.sampleRepo.GetSamplesByPackID(r.Context(), packID)
	if err != nil {
		http.Error(w, "Failed to retrieve samples", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, model.PackWithSamples{Pack: *pack, Samples: samples})
}

// UpdatePackStatusHandler drives the pack lifecycle state machine.
func (h *APIHandler) UpdatePackStatusHandler(w http.ResponseWriter, r *http.Request) {
	packID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid pack ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status model.PackStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, "Unknown pack status", http.StatusBadRequest)
		return
	}

	if err := h.lifecycle.TransitionPack(r.Context(), packID, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// UpdateSampleStatusHandler drives the sample lifecycle state
// machine: enable, disable, or soft delete.
func (h *APIHandler) UpdateSampleStatusHandler(w http.ResponseWriter, r *http.Request) {
	sampleID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid sample ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status model.SampleStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, "Unknown sample status", http.StatusBadRequest)
		return
	}

	if err := h.lifecycle.TransitionSample(r.Context(), sampleID, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeletePackHandler hard-deletes a pack, but only when the deletion
// guard clears it: any download history blocks deletion permanently.
func (h *APIHandler) DeletePackHandler(w http.ResponseWriter, r *http.Request) {
	packID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid pack ID", http.StatusBadRequest)
		return
	}

	if err := h.delGuard.CanDelete(r.Context(), "pack", packID); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.packRepo.DeletePack(r.Context(), packID); err != nil {
		http.Error(w, "Failed to delete pack", http.StatusInternalServerError)
		return
	}

	logger.Info("pack deleted", logger.Int64("packId", packID))
	w.WriteHeader(http.StatusOK)
}

// RecordDownloadHandler appends one download to the ledger and bumps
// both counters.
func (h *APIHandler) RecordDownloadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sampleID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid sample ID", http.StatusBadRequest)
		return
	}

	sample, err := h.sampleRepo.GetSampleByID(r.Context(), sampleID)
	if err != nil {
		http.Error(w, "Failed to retrieve sample", http.StatusInternalServerError)
		return
	}
	if sample == nil {
		http.Error(w, "Sample not found", http.StatusNotFound)
		return
	}

	if err := h.sampleRepo.RecordDownload(r.Context(), sampleID, userID); err != nil {
		http.Error(w, "Failed to record download", http.StatusInternalServerError)
		return
	}
	if err := h.packRepo.IncrementDownloadCount(r.Context(), sample.PackID); err != nil {
		logger.Warn("pack download counter not bumped",
			logger.Int64("packId", sample.PackID),
			logger.ErrorField(err))
	}

	w.WriteHeader(http.StatusOK)
}

// BrowsePackHandler is the non-admin read path: it returns a pack
// only when published, with the visibility predicate re-derived for
// every sample.
func (h *APIHandler) BrowsePackHandler(w http.ResponseWriter, r *http.Request) {
	packID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid pack ID", http.StatusBadRequest)
		return
	}

	pack, err := h.packRepo.GetPackByID(r.Context(), packID)
	if err != nil {
		http.Error(w, "Failed to retrieve pack", http.StatusInternalServerError)
		return
	}
	if pack == nil || pack.Status != model.PackPublished {
		http.Error(w, "Pack not found", http.StatusNotFound)
		return
	}

	samples, err := h.sampleRepo.GetSamplesByPackID(r.Context(), packID)
	if err != nil {
		http.Error(w, "Failed to retrieve samples", http.StatusInternalServerError)
		return
	}

	visible := make([]*model.Sample, 0, len(samples))
	for _, sample := range samples {
		if publish.Visible(sample, pack) {
			visible = append(visible, sample)
		}
	}

	writeJSON(w, http.StatusOK, model.PackWithSamples{Pack: *pack, Samples: visible})
}
