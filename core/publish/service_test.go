package publish_test

import (
	"context"
	"errors"
	"testing"

	"packvault/core/publish"
	"packvault/model"
)

// spyWriter records whether the aggregate write ran.
type spyWriter struct {
	created bool
	edited  bool
}

func (s *spyWriter) Create(ctx context.Context, sub *publish.PackSubmission, assets *publish.UploadedAssets, status model.PackStatus) (*model.Pack, error) {
	s.created = true
	return &model.Pack{ID: 1, Name: sub.Name, Status: status}, nil
}

func (s *spyWriter) Edit(ctx context.Context, packID int64, edit *publish.EditSubmission, assets *publish.UploadedAssets) (*model.Pack, error) {
	s.edited = true
	return &model.Pack{ID: packID, Name: edit.Pack.Name}, nil
}

func TestCreatePackNeverWritesAfterUploadFailure(t *testing.T) {
	uploader := newFakeUploader()
	uploader.failOn["pad.wav"] = &publish.UploadError{Stage: "samples", Name: "pad.wav", Err: errors.New("timeout")}
	writer := &spyWriter{}
	pub := publish.NewPublisher(publish.NewOrchestrator(uploader, uploader), writer)

	_, err := pub.CreatePack(context.Background(), submissionWithStems(), model.PackDraft, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if writer.created {
		t.Fatal("aggregate writer ran despite a failed upload")
	}
}

func TestCreatePackReportsHundredPercentOnSuccess(t *testing.T) {
	uploader := newFakeUploader()
	writer := &spyWriter{}
	pub := publish.NewPublisher(publish.NewOrchestrator(uploader, uploader), writer)

	rec := &progressRecorder{}
	pack, err := pub.CreatePack(context.Background(), submissionWithStems(), model.PackPublished, rec.fn)
	if err != nil {
		t.Fatalf("CreatePack returned error: %v", err)
	}
	if !writer.created {
		t.Fatal("aggregate writer did not run")
	}
	if pack.Status != model.PackPublished {
		t.Fatalf("unexpected status %q", pack.Status)
	}
	if !rec.monotone() || rec.last() != 100 {
		t.Fatalf("bad progress sequence: %v", rec.percents)
	}
}

func TestEditPackUploadsOnlyNewAssets(t *testing.T) {
	uploader := newFakeUploader()
	writer := &spyWriter{}
	pub := publish.NewPublisher(publish.NewOrchestrator(uploader, uploader), writer)

	edit := &publish.EditSubmission{
		Pack: publish.PackSubmission{
			Name:       "p",
			CreatorID:  1,
			CategoryID: 1,
			Samples: []publish.SampleSubmission{
				{Name: "clap", Audio: asset("clap.wav"), SampleType: "oneshot"},
			},
		},
		UpdatedSamples:   []publish.SampleUpdate{{ID: 7, Name: "old"}},
		RemovedSampleIDs: []int64{3},
	}

	if _, err := pub.EditPack(context.Background(), 1, edit, nil); err != nil {
		t.Fatalf("EditPack returned error: %v", err)
	}
	if !writer.edited {
		t.Fatal("aggregate writer did not run")
	}
	if len(uploader.calls) != 1 || uploader.calls[0] != "samples/clap.wav" {
		t.Fatalf("expected exactly the new sample upload, got %v", uploader.calls)
	}
}
