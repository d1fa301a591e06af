package publish

import (
	"io"

	"packvault/model"
)

// Asset is one binary file handed to the pipeline: the form input has
// already validated type and size, the pipeline only moves bytes.
type Asset struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// StemSubmission is one stem file inside a sample submission.
type StemSubmission struct {
	Name  string
	Audio Asset
}

// SampleSubmission describes one new sample: its audio file, optional
// metadata, and stem files when HasStems is set.
type SampleSubmission struct {
	Name       string
	Audio      Asset
	BPM        int64 // 0 = unset
	Key        string
	Length     float64 // seconds, 0 = unset
	SampleType model.SampleType
	MoodID     int64 // 0 = unset
	CreditCost int64 // 0 = plan default
	HasStems   bool
	Stems      []StemSubmission
}

// PackSubmission is a candidate pack: pack-level fields, an optional
// cover file and the new samples to ingest. On the edit path Samples
// holds only the samples being added; existing ones travel in
// EditSubmission.
type PackSubmission struct {
	Name        string
	Description string
	CreatorID   int64
	CategoryID  int64
	Tags        []string
	Premium     bool
	GenreIDs    []int64
	Cover       *Asset
	Samples     []SampleSubmission
}

// SampleUpdate carries in-place metadata edits for an existing
// sample. The uploaded audio asset is never replaced by an edit.
type SampleUpdate struct {
	ID         int64
	Name       string
	BPM        int64
	Key        string
	Length     float64
	SampleType model.SampleType
	MoodID     int64
	CreditCost int64
}

// EditSubmission is the three-way diff an edit resolves to: pack
// fields plus new samples (Pack), metadata updates, and removals.
type EditSubmission struct {
	Pack             PackSubmission
	UpdatedSamples   []SampleUpdate
	RemovedSampleIDs []int64
}

// UploadedAssets maps a submission's descriptors to their uploaded
// URLs, preserving descriptor order for the writer.
type UploadedAssets struct {
	CoverURL   string     // empty when no cover was submitted
	SampleURLs []string   // index-aligned with PackSubmission.Samples
	StemURLs   [][]string // index-aligned; nil for samples without stems
}
