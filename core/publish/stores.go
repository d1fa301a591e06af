package publish

import (
	"context"
	"database/sql"

	"packvault/model"
)

// PackStore is the slice of the pack repository the pipeline needs.
// Satisfied by repository.MySQLPackRepository.
type PackStore interface {
	BeginTx() (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error
	CreatePackTx(tx *sql.Tx, pack *model.Pack) (int64, error)
	UpdatePackTx(tx *sql.Tx, pack *model.Pack) error
	ReplacePackGenresTx(tx *sql.Tx, packID int64, genreIDs []int64) error
	GetPackByID(ctx context.Context, id int64) (*model.Pack, error)
	UpdatePackStatus(ctx context.Context, id int64, status model.PackStatus) error
}

// SampleStore is the slice of the sample repository the pipeline
// needs. Satisfied by repository.MySQLSampleRepository.
type SampleStore interface {
	CreateSampleTx(tx *sql.Tx, sample *model.Sample) (int64, error)
	UpdateSampleTx(tx *sql.Tx, sample *model.Sample) error
	UpdateSampleStatusTx(tx *sql.Tx, id int64, status model.SampleStatus) error
	CreateStemTx(tx *sql.Tx, stem *model.Stem) (int64, error)
	GetSampleByID(ctx context.Context, id int64) (*model.Sample, error)
	UpdateSampleStatus(ctx context.Context, id int64, status model.SampleStatus) error
	CountLiveByPackID(ctx context.Context, packID int64) (int64, error)
}
