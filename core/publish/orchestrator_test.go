package publish_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"packvault/core/publish"
)

// progressRecorder collects reported percentages.
type progressRecorder struct {
	mu       sync.Mutex
	percents []int
}

func (r *progressRecorder) fn(percent int) {
	r.mu.Lock()
	r.percents = append(r.percents, percent)
	r.mu.Unlock()
}

func (r *progressRecorder) last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.percents) == 0 {
		return -1
	}
	return r.percents[len(r.percents)-1]
}

func (r *progressRecorder) monotone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 1; i < len(r.percents); i++ {
		if r.percents[i] < r.percents[i-1] {
			return false
		}
	}
	return true
}

func submissionWithStems() *publish.PackSubmission {
	return &publish.PackSubmission{
		Name:       "Deep House Vol 1",
		CreatorID:  1,
		CategoryID: 1,
		Samples: []publish.SampleSubmission{
			{Name: "kick", Audio: asset("kick.wav"), SampleType: "oneshot"},
			{Name: "bass", Audio: asset("bass.wav"), SampleType: "loop", HasStems: true, Stems: []publish.StemSubmission{
				{Name: "low", Audio: asset("bass_low.wav")},
				{Name: "high", Audio: asset("bass_high.wav")},
			}},
			{Name: "pad", Audio: asset("pad.wav"), SampleType: "loop"},
		},
	}
}

func TestProgressTotalWithoutCoverOrStems(t *testing.T) {
	sub := &publish.PackSubmission{
		Samples: []publish.SampleSubmission{
			{Name: "a", Audio: asset("a.wav")},
			{Name: "b", Audio: asset("b.wav")},
		},
	}
	if got := publish.NewProgress(sub, nil).Total(); got != 3 {
		t.Fatalf("expected 3 steps (2 samples + write), got %d", got)
	}
}

func TestProgressTotalWithCoverAndStems(t *testing.T) {
	sub := submissionWithStems()
	cover := asset("cover.jpg")
	sub.Cover = &cover
	// cover + 3 samples + stems phase + final write
	if got := publish.NewProgress(sub, nil).Total(); got != 6 {
		t.Fatalf("expected 6 steps, got %d", got)
	}
}

func TestRunUploadsCoverBeforeSamples(t *testing.T) {
	uploader := newFakeUploader()
	orch := publish.NewOrchestrator(uploader, uploader)

	sub := submissionWithStems()
	cover := asset("cover.jpg")
	sub.Cover = &cover

	assets, err := orch.Run(context.Background(), sub, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if assets.CoverURL != "url://covers/cover.jpg" {
		t.Fatalf("unexpected cover URL: %q", assets.CoverURL)
	}
	if len(uploader.calls) == 0 || uploader.calls[0] != "covers/cover.jpg" {
		t.Fatalf("cover was not the first upload: %v", uploader.calls)
	}
}

func TestRunStemsStartAfterAllSamplesFinish(t *testing.T) {
	uploader := newFakeUploader()
	orch := publish.NewOrchestrator(uploader, uploader)

	if _, err := orch.Run(context.Background(), submissionWithStems(), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	firstStem := -1
	lastSample := -1
	for i, call := range uploader.calls {
		if strings.HasPrefix(call, "stems/") && firstStem == -1 {
			firstStem = i
		}
		if strings.HasPrefix(call, "samples/") {
			lastSample = i
		}
	}
	if firstStem == -1 {
		t.Fatal("no stem uploads recorded")
	}
	if lastSample > firstStem {
		t.Fatalf("stem upload started before sample uploads finished: %v", uploader.calls)
	}
}

func TestRunMapsURLsToDescriptorOrder(t *testing.T) {
	uploader := newFakeUploader()
	orch := publish.NewOrchestrator(uploader, uploader)

	assets, err := orch.Run(context.Background(), submissionWithStems(), nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"url://samples/kick.wav", "url://samples/bass.wav", "url://samples/pad.wav"}
	for i, url := range want {
		if assets.SampleURLs[i] != url {
			t.Fatalf("sample %d: got %q want %q", i, assets.SampleURLs[i], url)
		}
	}
	if len(assets.StemURLs[1]) != 2 {
		t.Fatalf("expected 2 stem URLs for sample 1, got %v", assets.StemURLs[1])
	}
	if assets.StemURLs[1][0] != "url://stems/bass_low.wav" || assets.StemURLs[1][1] != "url://stems/bass_high.wav" {
		t.Fatalf("stem URLs out of order: %v", assets.StemURLs[1])
	}
	if assets.StemURLs[0] != nil || assets.StemURLs[2] != nil {
		t.Fatalf("samples without stems should have nil stem URLs: %v", assets.StemURLs)
	}
}

func TestRunReportsMonotoneProgressEndingAtHundred(t *testing.T) {
	uploader := newFakeUploader()
	orch := publish.NewOrchestrator(uploader, uploader)

	sub := submissionWithStems()
	rec := &progressRecorder{}
	prog := publish.NewProgress(sub, rec.fn)

	if _, err := orch.Run(context.Background(), sub, prog); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	prog.Step() // the aggregate write, reported by the publisher

	if !rec.monotone() {
		t.Fatalf("progress went backwards: %v", rec.percents)
	}
	if rec.last() != 100 {
		t.Fatalf("final progress is %d, want 100: %v", rec.last(), rec.percents)
	}
	// 3 samples + stems phase + write = 5 reports
	if len(rec.percents) != 5 {
		t.Fatalf("expected 5 progress reports, got %v", rec.percents)
	}
}

func TestRunFailureRemovesAlreadyUploadedAssets(t *testing.T) {
	uploader := newFakeUploader()
	bang := errors.New("bucket unavailable")
	uploader.failOn["bass.wav"] = &publish.UploadError{Stage: "samples", Name: "bass.wav", Err: bang}
	orch := publish.NewOrchestrator(uploader, uploader)

	sub := submissionWithStems()
	cover := asset("cover.jpg")
	sub.Cover = &cover

	_, err := orch.Run(context.Background(), sub, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var ue *publish.UploadError
	if !errors.As(err, &ue) || ue.Name != "bass.wav" {
		t.Fatalf("unexpected error: %v", err)
	}

	// No stem upload may have started.
	for _, call := range uploader.calls {
		if strings.HasPrefix(call, "stems/") {
			t.Fatalf("stem upload ran after a sample failure: %v", uploader.calls)
		}
	}

	// Everything that made it up must have been removed.
	if len(uploader.removed) != len(uploader.urls) {
		t.Fatalf("removed %d of %d uploaded assets: removed=%v uploaded=%v",
			len(uploader.removed), len(uploader.urls), uploader.removed, uploader.urls)
	}
	removed := map[string]bool{}
	for _, url := range uploader.removed {
		removed[url] = true
	}
	for _, url := range uploader.urls {
		if !removed[url] {
			t.Fatalf("orphaned asset %q was not removed", url)
		}
	}
}

func TestRunNilProgressIsSafe(t *testing.T) {
	uploader := newFakeUploader()
	orch := publish.NewOrchestrator(uploader, uploader)
	if _, err := orch.Run(context.Background(), submissionWithStems(), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
