package publish

import (
	"context"
	"fmt"

	"packvault/logger"
	"packvault/model"
)

// Lifecycle enforces the pack and sample status state machines. Every
// transition is admin-triggered; a transition bumps updated_at and
// touches nothing else.
type Lifecycle struct {
	packs   PackStore
	samples SampleStore
}

// NewLifecycle creates a lifecycle controller over the two stores.
func NewLifecycle(packs PackStore, samples SampleStore) *Lifecycle {
	return &Lifecycle{packs: packs, samples: samples}
}

// packTransitionAllowed encodes the pack graph: draft -> published,
// published <-> disabled, draft -> disabled.
func packTransitionAllowed(from, to model.PackStatus) bool {
	switch from {
	case model.PackDraft:
		return to == model.PackPublished || to == model.PackDisabled
	case model.PackPublished:
		return to == model.PackDisabled
	case model.PackDisabled:
		return to == model.PackPublished
	}
	return false
}

// sampleTransitionAllowed encodes the sample graph: active <->
// disabled, both -> deleted. Deleted is terminal.
func sampleTransitionAllowed(from, to model.SampleStatus) bool {
	switch from {
	case model.SampleActive:
		return to == model.SampleDisabled || to == model.SampleDeleted
	case model.SampleDisabled:
		return to == model.SampleActive || to == model.SampleDeleted
	case model.SampleDeleted:
		return false
	}
	return false
}

// TransitionPack moves a pack to a new status. Publishing requires at
// least one non-deleted sample at the moment of transition.
func (l *Lifecycle) TransitionPack(ctx context.Context, id int64, to model.PackStatus) error {
	if !to.Valid() {
		return &TransitionError{Entity: "pack", From: "?", To: string(to), Reason: "unknown status"}
	}

	pack, err := l.packs.GetPackByID(ctx, id)
	if err != nil {
		return err
	}
	if pack == nil {
		return fmt.Errorf("pack %d not found", id)
	}
	if pack.Status == to {
		return nil
	}
	if !packTransitionAllowed(pack.Status, to) {
		return &TransitionError{Entity: "pack", From: string(pack.Status), To: string(to)}
	}

	if to == model.PackPublished {
		live, err := l.samples.CountLiveByPackID(ctx, id)
		if err != nil {
			return err
		}
		if live == 0 {
			return &TransitionError{Entity: "pack", From: string(pack.Status), To: string(to), Reason: "publishing requires at least one sample"}
		}
	}

	if err := l.packs.UpdatePackStatus(ctx, id, to); err != nil {
		return err
	}

	logger.Info("pack status changed",
		logger.Int64("packId", id),
		logger.String("from", string(pack.Status)),
		logger.String("to", string(to)))
	return nil
}

// TransitionSample moves a sample to a new status. Deleted samples
// never come back.
func (l *Lifecycle) TransitionSample(ctx context.Context, id int64, to model.SampleStatus) error {
	if !to.Valid() {
		return &TransitionError{Entity: "sample", From: "?", To: string(to), Reason: "unknown status"}
	}

	sample, err := l.samples.GetSampleByID(ctx, id)
	if err != nil {
		return err
	}
	if sample == nil {
		return fmt.Errorf("sample %d not found", id)
	}
	if sample.Status == to {
		return nil
	}
	if !sampleTransitionAllowed(sample.Status, to) {
		return &TransitionError{Entity: "sample", From: string(sample.Status), To: string(to)}
	}

	if err := l.samples.UpdateSampleStatus(ctx, id, to); err != nil {
		return err
	}

	logger.Info("sample status changed",
		logger.Int64("sampleId", id),
		logger.String("from", string(sample.Status)),
		logger.String("to", string(to)))
	return nil
}

// Visible is the end-user visibility predicate. It is a pure function
// of the two statuses and must be re-derived on every non-admin read
// path; it is never stored or cached.
func Visible(sample *model.Sample, pack *model.Pack) bool {
	return sample.Status == model.SampleActive && pack.Status == model.PackPublished
}
