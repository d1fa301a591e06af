package publish

import (
	"context"
	"database/sql"
	"fmt"

	"packvault/logger"
	"packvault/model"
)

// AggregateWriter persists a pack submission plus its uploaded URLs
// as one unit: the pack row, its genre joins, sample rows and stem
// rows commit or roll back together.
type AggregateWriter struct {
	packs   PackStore
	samples SampleStore
}

// NewAggregateWriter creates a writer over the two stores.
func NewAggregateWriter(packs PackStore, samples SampleStore) *AggregateWriter {
	return &AggregateWriter{packs: packs, samples: samples}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func nullFloat64(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

// Create inserts the full aggregate with the requested initial pack
// status. Samples always start Active.
func (w *AggregateWriter) Create(ctx context.Context, sub *PackSubmission, assets *UploadedAssets, status model.PackStatus) (*model.Pack, error) {
	if status != model.PackDraft && status != model.PackPublished {
		return nil, &TransitionError{Entity: "pack", From: "(new)", To: string(status), Reason: "packs are created as draft or published"}
	}
	if status == model.PackPublished && len(sub.Samples) == 0 {
		return nil, &TransitionError{Entity: "pack", From: "(new)", To: string(status), Reason: "publishing requires at least one sample"}
	}

	tx, err := w.packs.BeginTx()
	if err != nil {
		return nil, &WriteError{Step: "begin", Err: err}
	}
	defer w.packs.RollbackTx(tx)

	pack := &model.Pack{
		Name:        sub.Name,
		Description: nullString(sub.Description),
		CreatorID:   sub.CreatorID,
		CategoryID:  sub.CategoryID,
		CoverURL:    assets.CoverURL,
		Tags:        model.JoinTags(sub.Tags),
		IsPremium:   sub.Premium,
		Status:      status,
	}
	packID, err := w.packs.CreatePackTx(tx, pack)
	if err != nil {
		return nil, &WriteError{Step: "pack insert", Err: err}
	}
	pack.ID = packID

	if err := w.packs.ReplacePackGenresTx(tx, packID, sub.GenreIDs); err != nil {
		return nil, &WriteError{Step: "genre joins", Err: err}
	}

	if err := w.insertSamplesTx(tx, packID, sub.Samples, assets); err != nil {
		return nil, err
	}

	if err := w.packs.CommitTx(tx); err != nil {
		return nil, &WriteError{Step: "commit", Err: err}
	}

	logger.Info("pack aggregate created",
		logger.Int64("packId", packID),
		logger.Int("samples", len(sub.Samples)),
		logger.String("status", string(status)))

	return w.packs.GetPackByID(ctx, packID)
}

// Edit applies a three-way sample diff and overwrites the pack-level
// fields wholesale. Removed samples are soft-deleted, never dropped,
// so historical downloads stay attributable.
func (w *AggregateWriter) Edit(ctx context.Context, packID int64, edit *EditSubmission, assets *UploadedAssets) (*model.Pack, error) {
	existing, err := w.packs.GetPackByID(ctx, packID)
	if err != nil {
		return nil, &WriteError{Step: "pack load", Err: err}
	}
	if existing == nil {
		return nil, &WriteError{Step: "pack load", Err: fmt.Errorf("pack %d not found", packID)}
	}

	tx, err := w.packs.BeginTx()
	if err != nil {
		return nil, &WriteError{Step: "begin", Err: err}
	}
	defer w.packs.RollbackTx(tx)

	sub := &edit.Pack
	coverURL := existing.CoverURL
	if assets.CoverURL != "" {
		coverURL = assets.CoverURL
	}

	pack := &model.Pack{
		ID:          packID,
		Name:        sub.Name,
		Description: nullString(sub.Description),
		CreatorID:   sub.CreatorID,
		CategoryID:  sub.CategoryID,
		CoverURL:    coverURL,
		Tags:        model.JoinTags(sub.Tags),
		IsPremium:   sub.Premium,
	}
	if err := w.packs.UpdatePackTx(tx, pack); err != nil {
		return nil, &WriteError{Step: "pack update", Err: err}
	}

	if err := w.packs.ReplacePackGenresTx(tx, packID, sub.GenreIDs); err != nil {
		return nil, &WriteError{Step: "genre joins", Err: err}
	}

	for _, id := range edit.RemovedSampleIDs {
		if err := w.samples.UpdateSampleStatusTx(tx, id, model.SampleDeleted); err != nil {
			return nil, &WriteError{Step: "sample soft delete", Err: err}
		}
	}

	for _, upd := range edit.UpdatedSamples {
		sample := &model.Sample{
			ID:         upd.ID,
			Name:       upd.Name,
			BPM:        nullInt64(upd.BPM),
			Key:        nullString(upd.Key),
			Length:     nullFloat64(upd.Length),
			SampleType: upd.SampleType,
			MoodID:     nullInt64(upd.MoodID),
			CreditCost: nullInt64(upd.CreditCost),
		}
		if err := w.samples.UpdateSampleTx(tx, sample); err != nil {
			return nil, &WriteError{Step: "sample update", Err: err}
		}
	}

	if err := w.insertSamplesTx(tx, packID, sub.Samples, assets); err != nil {
		return nil, err
	}

	if err := w.packs.CommitTx(tx); err != nil {
		return nil, &WriteError{Step: "commit", Err: err}
	}

	logger.Info("pack aggregate edited",
		logger.Int64("packId", packID),
		logger.Int("added", len(sub.Samples)),
		logger.Int("updated", len(edit.UpdatedSamples)),
		logger.Int("removed", len(edit.RemovedSampleIDs)))

	return w.packs.GetPackByID(ctx, packID)
}

// insertSamplesTx runs the create path for new samples: sample rows
// first, then each sample's stems, in descriptor order.
func (w *AggregateWriter) insertSamplesTx(tx *sql.Tx, packID int64, subs []SampleSubmission, assets *UploadedAssets) error {
	for i := range subs {
		s := &subs[i]
		sample := &model.Sample{
			PackID:     packID,
			Name:       s.Name,
			AudioURL:   assets.SampleURLs[i],
			BPM:        nullInt64(s.BPM),
			Key:        nullString(s.Key),
			Length:     nullFloat64(s.Length),
			SampleType: s.SampleType,
			MoodID:     nullInt64(s.MoodID),
			CreditCost: nullInt64(s.CreditCost),
			HasStems:   s.HasStems && len(s.Stems) > 0,
			Status:     model.SampleActive,
		}
		sampleID, err := w.samples.CreateSampleTx(tx, sample)
		if err != nil {
			return &WriteError{Step: "sample insert", Err: err}
		}

		if !sample.HasStems {
			continue
		}
		for j := range s.Stems {
			stem := &model.Stem{
				SampleID:  sampleID,
				Name:      s.Stems[j].Name,
				AudioURL:  assets.StemURLs[i][j],
				SizeBytes: s.Stems[j].Audio.Size,
			}
			if _, err := w.samples.CreateStemTx(tx, stem); err != nil {
				return &WriteError{Step: "stem insert", Err: err}
			}
		}
	}
	return nil
}
