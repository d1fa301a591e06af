package publish_test

import (
	"context"
	"errors"
	"testing"

	"packvault/core/publish"
	"packvault/model"
)

func writerFixture() (*publish.AggregateWriter, *fakePackStore, *fakeSampleStore, *opLog) {
	log := &opLog{}
	packs := newFakePackStore(log)
	samples := newFakeSampleStore(log)
	return publish.NewAggregateWriter(packs, samples), packs, samples, log
}

func createAssets(sub *publish.PackSubmission) *publish.UploadedAssets {
	assets := &publish.UploadedAssets{
		SampleURLs: make([]string, len(sub.Samples)),
		StemURLs:   make([][]string, len(sub.Samples)),
	}
	if sub.Cover != nil {
		assets.CoverURL = "url://covers/" + sub.Cover.Name
	}
	for i, s := range sub.Samples {
		assets.SampleURLs[i] = "url://samples/" + s.Audio.Name
		if s.HasStems {
			assets.StemURLs[i] = make([]string, len(s.Stems))
			for j, stem := range s.Stems {
				assets.StemURLs[i][j] = "url://stems/" + stem.Audio.Name
			}
		}
	}
	return assets
}

func TestCreateRejectsDisabledInitialStatus(t *testing.T) {
	writer, _, _, _ := writerFixture()
	sub := submissionWithStems()

	_, err := writer.Create(context.Background(), sub, createAssets(sub), model.PackDisabled)
	var te *publish.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
}

func TestCreateRejectsPublishedWithoutSamples(t *testing.T) {
	writer, _, _, _ := writerFixture()
	sub := &publish.PackSubmission{Name: "Empty", CreatorID: 1, CategoryID: 1}

	_, err := writer.Create(context.Background(), sub, createAssets(sub), model.PackPublished)
	var te *publish.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected a transition error, got %v", err)
	}
}

func TestCreateWritesAggregateInOneTransaction(t *testing.T) {
	writer, _, samples, log := writerFixture()
	sub := submissionWithStems()
	sub.Tags = []string{"deep", "house", "deep"}
	sub.GenreIDs = []int64{4, 7}
	cover := asset("cover.jpg")
	sub.Cover = &cover

	pack, err := writer.Create(context.Background(), sub, createAssets(sub), model.PackPublished)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if pack == nil || pack.ID == 0 {
		t.Fatal("expected a persisted pack")
	}
	if pack.Status != model.PackPublished {
		t.Fatalf("unexpected status %q", pack.Status)
	}
	if pack.CoverURL != "url://covers/cover.jpg" {
		t.Fatalf("unexpected cover URL %q", pack.CoverURL)
	}
	if got := pack.TagList(); len(got) != 2 || got[0] != "deep" || got[1] != "house" {
		t.Fatalf("tags not deduplicated: %v", got)
	}
	if len(pack.GenreIDs) != 2 {
		t.Fatalf("genre joins not written: %v", pack.GenreIDs)
	}

	if len(samples.samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples.samples))
	}
	for _, s := range samples.samples {
		if s.Status != model.SampleActive {
			t.Fatalf("sample %q did not start active: %q", s.Name, s.Status)
		}
	}
	if len(samples.stems) != 2 {
		t.Fatalf("expected 2 stems, got %d", len(samples.stems))
	}

	// Everything between begin and commit, pack row first.
	ops := log.ops
	if ops[0] != "begin" || ops[1] != "pack insert 1" {
		t.Fatalf("unexpected op order: %v", ops)
	}
	if ops[len(ops)-2] != "commit" || ops[len(ops)-1] != "rollback" {
		// the deferred rollback after commit is a no-op
		t.Fatalf("transaction not committed: %v", ops)
	}
}

func TestCreateRollsBackOnSampleInsertFailure(t *testing.T) {
	writer, _, samples, log := writerFixture()
	samples.insertErr = errors.New("column too long")
	sub := submissionWithStems()

	_, err := writer.Create(context.Background(), sub, createAssets(sub), model.PackDraft)
	var we *publish.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected a write error, got %v", err)
	}
	for _, op := range log.ops {
		if op == "commit" {
			t.Fatalf("transaction committed despite failure: %v", log.ops)
		}
	}
}

func TestEditAppliesThreeWayDiff(t *testing.T) {
	writer, _, samples, _ := writerFixture()

	// Seed: a pack with samples A, B.
	seed := submissionWithStems()
	seed.Samples = seed.Samples[:2] // kick (A), bass (B)
	created, err := writer.Create(context.Background(), seed, createAssets(seed), model.PackDraft)
	if err != nil {
		t.Fatalf("seed Create returned error: %v", err)
	}

	// Edit: delete A, retag B, add C.
	edit := &publish.EditSubmission{
		Pack: publish.PackSubmission{
			Name:       "Deep House Vol 1 (2026)",
			CreatorID:  seed.CreatorID,
			CategoryID: seed.CategoryID,
			GenreIDs:   []int64{9},
			Samples: []publish.SampleSubmission{
				{Name: "hat", Audio: asset("hat.wav"), SampleType: "oneshot"},
			},
		},
		UpdatedSamples: []publish.SampleUpdate{
			{ID: 2, Name: "bass", BPM: 124, Key: "Fm", SampleType: "loop"},
		},
		RemovedSampleIDs: []int64{1},
	}

	pack, err := writer.Edit(context.Background(), created.ID, edit, createAssets(&edit.Pack))
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if pack.Name != "Deep House Vol 1 (2026)" {
		t.Fatalf("pack fields not overwritten: %q", pack.Name)
	}
	if pack.Status != model.PackDraft {
		t.Fatalf("edit must not change pack status, got %q", pack.Status)
	}

	// A soft-deleted, row still present.
	a, _ := samples.GetSampleByID(context.Background(), 1)
	if a == nil {
		t.Fatal("removed sample row was dropped")
	}
	if a.Status != model.SampleDeleted {
		t.Fatalf("removed sample status %q, want deleted", a.Status)
	}

	// B updated in place.
	b, _ := samples.GetSampleByID(context.Background(), 2)
	if b.BPM.Int64 != 124 || b.Key.String != "Fm" {
		t.Fatalf("sample update not applied: %+v", b)
	}
	if b.AudioURL == "" {
		t.Fatal("edit replaced the audio URL of an existing sample")
	}

	// C inserted and active.
	c, _ := samples.GetSampleByID(context.Background(), 3)
	if c == nil || c.Name != "hat" {
		t.Fatalf("added sample missing: %+v", c)
	}
	if c.Status != model.SampleActive {
		t.Fatalf("added sample status %q, want active", c.Status)
	}
}

func TestEditKeepsExistingCoverWhenNoneUploaded(t *testing.T) {
	writer, _, _, _ := writerFixture()

	seed := submissionWithStems()
	cover := asset("cover.jpg")
	seed.Cover = &cover
	created, err := writer.Create(context.Background(), seed, createAssets(seed), model.PackDraft)
	if err != nil {
		t.Fatalf("seed Create returned error: %v", err)
	}

	edit := &publish.EditSubmission{Pack: publish.PackSubmission{
		Name: created.Name, CreatorID: 1, CategoryID: 1,
	}}
	pack, err := writer.Edit(context.Background(), created.ID, edit, &publish.UploadedAssets{})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if pack.CoverURL != "url://covers/cover.jpg" {
		t.Fatalf("existing cover lost on edit: %q", pack.CoverURL)
	}
}
