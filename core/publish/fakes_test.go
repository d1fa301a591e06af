package publish_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"packvault/core/publish"
	"packvault/model"
)

// fakeUploader returns deterministic URLs and can be told to fail for
// specific asset names.
type fakeUploader struct {
	mu      sync.Mutex
	calls   []string // "folder/name" in call order
	urls    []string // successful uploads only
	failOn  map[string]error
	removed []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{failOn: map[string]error{}}
}

func (f *fakeUploader) Upload(ctx context.Context, asset publish.Asset, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, folder+"/"+asset.Name)
	if err, ok := f.failOn[asset.Name]; ok {
		return "", err
	}
	url := "url://" + folder + "/" + asset.Name
	f.urls = append(f.urls, url)
	return url, nil
}

func (f *fakeUploader) Remove(ctx context.Context, url string) error {
	f.mu.Lock()
	f.removed = append(f.removed, url)
	f.mu.Unlock()
	return nil
}

// opLog records store operations in call order, shared between the
// two fake stores so cross-store ordering is visible.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

type fakePackStore struct {
	log    *opLog
	packs  map[int64]*model.Pack
	nextID int64

	statusErr error
}

func newFakePackStore(log *opLog) *fakePackStore {
	return &fakePackStore{log: log, packs: map[int64]*model.Pack{}, nextID: 1}
}

func (f *fakePackStore) BeginTx() (*sql.Tx, error) {
	f.log.add("begin")
	return nil, nil
}

func (f *fakePackStore) RollbackTx(tx *sql.Tx) {
	f.log.add("rollback")
}

func (f *fakePackStore) CommitTx(tx *sql.Tx) error {
	f.log.add("commit")
	return nil
}

func (f *fakePackStore) CreatePackTx(tx *sql.Tx, pack *model.Pack) (int64, error) {
	id := f.nextID
	f.nextID++
	stored := *pack
	stored.ID = id
	f.packs[id] = &stored
	f.log.add("pack insert %d", id)
	return id, nil
}

func (f *fakePackStore) UpdatePackTx(tx *sql.Tx, pack *model.Pack) error {
	existing, ok := f.packs[pack.ID]
	if !ok {
		return fmt.Errorf("pack %d not found", pack.ID)
	}
	status := existing.Status
	downloads := existing.DownloadCount
	updated := *pack
	updated.Status = status
	updated.DownloadCount = downloads
	f.packs[pack.ID] = &updated
	f.log.add("pack update %d", pack.ID)
	return nil
}

func (f *fakePackStore) ReplacePackGenresTx(tx *sql.Tx, packID int64, genreIDs []int64) error {
	if p, ok := f.packs[packID]; ok {
		p.GenreIDs = genreIDs
	}
	f.log.add("genres %d", packID)
	return nil
}

func (f *fakePackStore) GetPackByID(ctx context.Context, id int64) (*model.Pack, error) {
	p, ok := f.packs[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePackStore) UpdatePackStatus(ctx context.Context, id int64, status model.PackStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	p, ok := f.packs[id]
	if !ok {
		return fmt.Errorf("pack %d not found", id)
	}
	p.Status = status
	f.log.add("pack status %d -> %s", id, status)
	return nil
}

type fakeSampleStore struct {
	log     *opLog
	samples map[int64]*model.Sample
	stems   []*model.Stem
	nextID  int64

	insertErr error
}

func newFakeSampleStore(log *opLog) *fakeSampleStore {
	return &fakeSampleStore{log: log, samples: map[int64]*model.Sample{}, nextID: 1}
}

func (f *fakeSampleStore) CreateSampleTx(tx *sql.Tx, sample *model.Sample) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	id := f.nextID
	f.nextID++
	stored := *sample
	stored.ID = id
	f.samples[id] = &stored
	f.log.add("sample insert %s", sample.Name)
	return id, nil
}

func (f *fakeSampleStore) UpdateSampleTx(tx *sql.Tx, sample *model.Sample) error {
	existing, ok := f.samples[sample.ID]
	if !ok {
		return fmt.Errorf("sample %d not found", sample.ID)
	}
	sample.PackID = existing.PackID
	sample.AudioURL = existing.AudioURL
	sample.Status = existing.Status
	sample.HasStems = existing.HasStems
	f.samples[sample.ID] = sample
	f.log.add("sample update %d", sample.ID)
	return nil
}

func (f *fakeSampleStore) UpdateSampleStatusTx(tx *sql.Tx, id int64, status model.SampleStatus) error {
	s, ok := f.samples[id]
	if !ok {
		return fmt.Errorf("sample %d not found", id)
	}
	s.Status = status
	f.log.add("sample status %d -> %s", id, status)
	return nil
}

func (f *fakeSampleStore) CreateStemTx(tx *sql.Tx, stem *model.Stem) (int64, error) {
	stored := *stem
	stored.ID = int64(len(f.stems) + 1)
	f.stems = append(f.stems, &stored)
	f.log.add("stem insert %s", stem.Name)
	return stored.ID, nil
}

func (f *fakeSampleStore) GetSampleByID(ctx context.Context, id int64) (*model.Sample, error) {
	s, ok := f.samples[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSampleStore) UpdateSampleStatus(ctx context.Context, id int64, status model.SampleStatus) error {
	s, ok := f.samples[id]
	if !ok {
		return fmt.Errorf("sample %d not found", id)
	}
	s.Status = status
	return nil
}

func (f *fakeSampleStore) CountLiveByPackID(ctx context.Context, packID int64) (int64, error) {
	var n int64
	for _, s := range f.samples {
		if s.PackID == packID && s.Status != model.SampleDeleted {
			n++
		}
	}
	return n, nil
}

// asset builds a throwaway upload asset.
func asset(name string) publish.Asset {
	return publish.Asset{
		Name:        name,
		ContentType: "audio/wav",
		Size:        int64(len(name)) * 1024,
		Reader:      strings.NewReader(name),
	}
}
