package publish

import (
	"context"
	"math"
	"sync"

	"packvault/logger"
)

// ProgressFunc observes pipeline progress as a rounded percentage.
// Values are monotonically non-decreasing and reach 100 on success.
type ProgressFunc func(percent int)

// Progress counts the discrete units of one pipeline run: the cover
// (if present), each sample upload, the stems phase (if any stems
// exist), and the final aggregate write.
type Progress struct {
	mu    sync.Mutex
	total int
	done  int
	fn    ProgressFunc
}

// NewProgress sizes a progress tracker for the given submission.
func NewProgress(sub *PackSubmission, fn ProgressFunc) *Progress {
	total := len(sub.Samples) + 1 // +1 for the final write
	if sub.Cover != nil {
		total++
	}
	if submissionHasStems(sub) {
		total++
	}
	return &Progress{total: total, fn: fn}
}

// Total returns the number of observable steps.
func (p *Progress) Total() int {
	if p == nil {
		return 0
	}
	return p.total
}

// Step marks one unit complete and reports the new percentage.
func (p *Progress) Step() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.fn != nil {
		p.fn(int(math.Round(float64(p.done) / float64(p.total) * 100)))
	}
}

func submissionHasStems(sub *PackSubmission) bool {
	for _, s := range sub.Samples {
		if s.HasStems && len(s.Stems) > 0 {
			return true
		}
	}
	return false
}

const (
	folderCovers  = "covers"
	folderSamples = "samples"
	folderStems   = "stems"
)

// Orchestrator sequences the uploads of one pack submission: cover
// first, then all sample audio files concurrently, then the stem
// groups concurrently, joining between phases. Cancellation mid-run is
// not supported; callers wait for success or the first failure.
type Orchestrator struct {
	uploader AssetUploader
	remover  AssetRemover
}

// NewOrchestrator creates an orchestrator. remover may be nil, which
// disables compensation of already-uploaded assets on failure.
func NewOrchestrator(uploader AssetUploader, remover AssetRemover) *Orchestrator {
	return &Orchestrator{uploader: uploader, remover: remover}
}

// Run uploads every file of the submission and returns the URL map
// for the aggregate writer, with results remapped to descriptor
// order. On any failure the first error is returned and assets
// uploaded by already-successful calls are removed best-effort.
func (o *Orchestrator) Run(ctx context.Context, sub *PackSubmission, prog *Progress) (*UploadedAssets, error) {
	assets := &UploadedAssets{
		SampleURLs: make([]string, len(sub.Samples)),
		StemURLs:   make([][]string, len(sub.Samples)),
	}

	var (
		mu       sync.Mutex
		uploaded []string
		firstErr error
	)
	record := func(url string) {
		mu.Lock()
		uploaded = append(uploaded, url)
		mu.Unlock()
	}
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	// Phase 1: cover, alone and first.
	if sub.Cover != nil {
		url, err := o.uploader.Upload(ctx, *sub.Cover, folderCovers)
		if err != nil {
			return nil, err
		}
		assets.CoverURL = url
		record(url)
		prog.Step()
	}

	// Phase 2: all sample audio files, fan-out then join.
	var wg sync.WaitGroup
	for i := range sub.Samples {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := o.uploader.Upload(ctx, sub.Samples[i].Audio, folderSamples)
			if err != nil {
				recordErr(err)
				return
			}
			mu.Lock()
			assets.SampleURLs[i] = url
			mu.Unlock()
			record(url)
			prog.Step()
		}(i)
	}
	wg.Wait()
	if firstErr != nil {
		o.compensate(uploaded)
		return nil, firstErr
	}

	// Phase 3: stem groups, only after every sample upload finished.
	if submissionHasStems(sub) {
		for i := range sub.Samples {
			s := &sub.Samples[i]
			if !s.HasStems || len(s.Stems) == 0 {
				continue
			}
			assets.StemURLs[i] = make([]string, len(s.Stems))
			for j := range s.Stems {
				wg.Add(1)
				go func(i, j int) {
					defer wg.Done()
					url, err := o.uploader.Upload(ctx, sub.Samples[i].Stems[j].Audio, folderStems)
					if err != nil {
						recordErr(err)
						return
					}
					mu.Lock()
					assets.StemURLs[i][j] = url
					mu.Unlock()
					record(url)
				}(i, j)
			}
		}
		wg.Wait()
		if firstErr != nil {
			o.compensate(uploaded)
			return nil, firstErr
		}
		prog.Step()
	}

	return assets, nil
}

// compensate removes assets uploaded before a failure. Best effort:
// removal errors are logged and swallowed.
func (o *Orchestrator) compensate(urls []string) {
	if o.remover == nil {
		return
	}
	for _, url := range urls {
		if err := o.remover.Remove(context.Background(), url); err != nil {
			logger.Warn("failed to remove orphaned asset",
				logger.String("url", url),
				logger.ErrorField(err))
		}
	}
}
