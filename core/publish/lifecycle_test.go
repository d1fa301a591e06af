package publish_test

import (
	"context"
	"errors"
	"testing"

	"packvault/core/publish"
	"packvault/model"
)

func lifecycleFixture(t *testing.T, packStatus model.PackStatus, sampleStatuses ...model.SampleStatus) (*publish.Lifecycle, *fakePackStore, *fakeSampleStore) {
	t.Helper()
	log := &opLog{}
	packs := newFakePackStore(log)
	samples := newFakeSampleStore(log)

	packID, err := packs.CreatePackTx(nil, &model.Pack{Name: "p", Status: packStatus})
	if err != nil {
		t.Fatalf("seed pack: %v", err)
	}
	for _, status := range sampleStatuses {
		if _, err := samples.CreateSampleTx(nil, &model.Sample{PackID: packID, Name: "s", Status: status}); err != nil {
			t.Fatalf("seed sample: %v", err)
		}
	}
	return publish.NewLifecycle(packs, samples), packs, samples
}

func TestPackTransitions(t *testing.T) {
	cases := []struct {
		from    model.PackStatus
		to      model.PackStatus
		allowed bool
	}{
		{model.PackDraft, model.PackPublished, true},
		{model.PackDraft, model.PackDisabled, true},
		{model.PackPublished, model.PackDisabled, true},
		{model.PackDisabled, model.PackPublished, true},
		{model.PackPublished, model.PackDraft, false},
		{model.PackDisabled, model.PackDraft, false},
	}
	for _, tc := range cases {
		lc, _, _ := lifecycleFixture(t, tc.from, model.SampleActive)
		err := lc.TransitionPack(context.Background(), 1, tc.to)
		if tc.allowed && err != nil {
			t.Fatalf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.allowed {
			var te *publish.TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("%s -> %s should be rejected, got %v", tc.from, tc.to, err)
			}
		}
	}
}

func TestPackTransitionToSameStatusIsNoOp(t *testing.T) {
	lc, packs, _ := lifecycleFixture(t, model.PackPublished, model.SampleActive)
	if err := lc.TransitionPack(context.Background(), 1, model.PackPublished); err != nil {
		t.Fatalf("same-status transition must succeed, got %v", err)
	}
	for _, op := range packs.log.ops {
		if op == "pack status 1 -> published" {
			t.Fatal("same-status transition touched the store")
		}
	}
}

func TestPublishingRequiresALiveSample(t *testing.T) {
	// One sample, already soft-deleted.
	lc, _, _ := lifecycleFixture(t, model.PackDraft, model.SampleDeleted)
	err := lc.TransitionPack(context.Background(), 1, model.PackPublished)
	var te *publish.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}

	// A disabled sample still counts as live.
	lc, _, _ = lifecycleFixture(t, model.PackDraft, model.SampleDisabled)
	if err := lc.TransitionPack(context.Background(), 1, model.PackPublished); err != nil {
		t.Fatalf("disabled samples must satisfy the publish check, got %v", err)
	}
}

func TestSampleTransitions(t *testing.T) {
	cases := []struct {
		from    model.SampleStatus
		to      model.SampleStatus
		allowed bool
	}{
		{model.SampleActive, model.SampleDisabled, true},
		{model.SampleDisabled, model.SampleActive, true},
		{model.SampleActive, model.SampleDeleted, true},
		{model.SampleDisabled, model.SampleDeleted, true},
		{model.SampleDeleted, model.SampleActive, false},
		{model.SampleDeleted, model.SampleDisabled, false},
	}
	for _, tc := range cases {
		lc, _, samples := lifecycleFixture(t, model.PackPublished, tc.from)
		err := lc.TransitionSample(context.Background(), 1, tc.to)
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
			}
			s, _ := samples.GetSampleByID(context.Background(), 1)
			if s.Status != tc.to {
				t.Fatalf("status not persisted: %q", s.Status)
			}
			continue
		}
		var te *publish.TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("%s -> %s should be rejected, got %v", tc.from, tc.to, err)
		}
	}
}

func TestVisibleRequiresBothStatuses(t *testing.T) {
	cases := []struct {
		sample  model.SampleStatus
		pack    model.PackStatus
		visible bool
	}{
		{model.SampleActive, model.PackPublished, true},
		{model.SampleActive, model.PackDraft, false},
		{model.SampleActive, model.PackDisabled, false},
		{model.SampleDisabled, model.PackPublished, false},
		{model.SampleDeleted, model.PackPublished, false},
	}
	for _, tc := range cases {
		sample := &model.Sample{Status: tc.sample}
		pack := &model.Pack{Status: tc.pack}
		if got := publish.Visible(sample, pack); got != tc.visible {
			t.Fatalf("Visible(%s, %s) = %v, want %v", tc.sample, tc.pack, got, tc.visible)
		}
	}
}
