package repository

import (
	"context"
	"database/sql"
	"time"

	"packvault/model"
)

// SampleRepository defines sample and stem database operations. Like
// the pack repository, aggregate writes take an explicit transaction.
type SampleRepository interface {
	CreateSampleTx(tx *sql.Tx, sample *model.Sample) (int64, error)
	UpdateSampleTx(tx *sql.Tx, sample *model.Sample) error
	UpdateSampleStatusTx(tx *sql.Tx, id int64, status model.SampleStatus) error
	CreateStemTx(tx *sql.Tx, stem *model.Stem) (int64, error)

	GetSampleByID(ctx context.Context, id int64) (*model.Sample, error)
	GetSamplesByPackID(ctx context.Context, packID int64) ([]*model.Sample, error)
	GetStemsBySampleID(ctx context.Context, sampleID int64) ([]*model.Stem, error)
	UpdateSampleStatus(ctx context.Context, id int64, status model.SampleStatus) error
	CountLiveByPackID(ctx context.Context, packID int64) (int64, error)
	CountByMood(ctx context.Context, moodID int64) (int64, error)

	RecordDownload(ctx context.Context, sampleID, userID int64) error
	CountDownloadsBySampleID(ctx context.Context, sampleID int64) (int64, error)
}

// MySQLSampleRepository is the MySQL-backed sample repository.
type MySQLSampleRepository struct {
	db *sql.DB
}

// NewMySQLSampleRepository creates a new MySQL sample repository instance.
func NewMySQLSampleRepository(db *sql.DB) *MySQLSampleRepository {
	return &MySQLSampleRepository{db: db}
}

const sampleColumns = "id, pack_id, name, audio_url, bpm, `key`, length, sample_type, mood_id, credit_cost, has_stems, status, download_count, created_at, updated_at"

func scanSample(row interface{ Scan(...interface{}) error }) (*model.Sample, error) {
	sample := &model.Sample{}
	err := row.Scan(
		&sample.ID,
		&sample.PackID,
		&sample.Name,
		&sample.AudioURL,
		&sample.BPM,
		&sample.Key,
		&sample.Length,
		&sample.SampleType,
		&sample.MoodID,
		&sample.CreditCost,
		&sample.HasStems,
		&sample.Status,
		&sample.DownloadCount,
		&sample.CreatedAt,
		&sample.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// CreateSampleTx inserts a sample row inside the given transaction.
func (r *MySQLSampleRepository) CreateSampleTx(tx *sql.Tx, sample *model.Sample) (int64, error) {
	query := `
		INSERT INTO samples (pack_id, name, audio_url, bpm, ` + "`key`" + `, length, sample_type, mood_id, credit_cost, has_stems, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := tx.Exec(query,
		sample.PackID,
		sample.Name,
		sample.AudioURL,
		sample.BPM,
		sample.Key,
		sample.Length,
		sample.SampleType,
		sample.MoodID,
		sample.CreditCost,
		sample.HasStems,
		sample.Status,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// UpdateSampleTx updates a sample's metadata in place inside the
// given transaction. The audio URL is untouched: edits never replace
// the uploaded asset, they adjust its description.
func (r *MySQLSampleRepository) UpdateSampleTx(tx *sql.Tx, sample *model.Sample) error {
	query := `
		UPDATE samples
		SET name = ?, bpm = ?, ` + "`key`" + ` = ?, length = ?, sample_type = ?, mood_id = ?, credit_cost = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := tx.Exec(query,
		sample.Name,
		sample.BPM,
		sample.Key,
		sample.Length,
		sample.SampleType,
		sample.MoodID,
		sample.CreditCost,
		time.Now(),
		sample.ID,
	)
	return err
}

// UpdateSampleStatusTx sets the sample status inside the given
// transaction. Removal during an edit is always this, never DELETE.
func (r *MySQLSampleRepository) UpdateSampleStatusTx(tx *sql.Tx, id int64, status model.SampleStatus) error {
	query := `UPDATE samples SET status = ?, updated_at = ? WHERE id = ?`
	_, err := tx.Exec(query, status, time.Now(), id)
	return err
}

// CreateStemTx inserts a stem row inside the given transaction.
func (r *MySQLSampleRepository) CreateStemTx(tx *sql.Tx, stem *model.Stem) (int64, error) {
	query := `
		INSERT INTO stems (sample_id, name, audio_url, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.Exec(query,
		stem.SampleID,
		stem.Name,
		stem.AudioURL,
		stem.SizeBytes,
		time.Now(),
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// GetSampleByID fetches a sample by id, returning nil when absent.
// Deleted samples remain selectable.
func (r *MySQLSampleRepository) GetSampleByID(ctx context.Context, id int64) (*model.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE id = ?`

	sample, err := scanSample(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return sample, nil
}

// GetSamplesByPackID returns every sample of a pack, including
// deleted ones, in insertion order.
func (r *MySQLSampleRepository) GetSamplesByPackID(ctx context.Context, packID int64) ([]*model.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE pack_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*model.Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

// GetStemsBySampleID returns a sample's stems in insertion order.
func (r *MySQLSampleRepository) GetStemsBySampleID(ctx context.Context, sampleID int64) ([]*model.Stem, error) {
	query := `
		SELECT id, sample_id, name, audio_url, size_bytes, created_at
		FROM stems
		WHERE sample_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, sampleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stems []*model.Stem
	for rows.Next() {
		stem := &model.Stem{}
		err := rows.Scan(
			&stem.ID,
			&stem.SampleID,
			&stem.Name,
			&stem.AudioURL,
			&stem.SizeBytes,
			&stem.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}

	return stems, rows.Err()
}

// UpdateSampleStatus sets the sample status outside a transaction,
// bumping updated_at only.
func (r *MySQLSampleRepository) UpdateSampleStatus(ctx context.Context, id int64, status model.SampleStatus) error {
	query := `UPDATE samples SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

// CountLiveByPackID counts a pack's non-deleted samples. Publishing
// requires at least one.
func (r *MySQLSampleRepository) CountLiveByPackID(ctx context.Context, packID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM samples WHERE pack_id = ? AND status != ?`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, packID, model.SampleDeleted).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountByMood counts samples tagged with a mood.
func (r *MySQLSampleRepository) CountByMood(ctx context.Context, moodID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM samples WHERE mood_id = ?`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, moodID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecordDownload appends a ledger row and bumps the sample counter.
// The pack counter is bumped separately by the pack repository.
func (r *MySQLSampleRepository) RecordDownload(ctx context.Context, sampleID, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sample_downloads (sample_id, user_id, created_at) VALUES (?, ?, ?)`,
		sampleID, userID, time.Now()); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE samples SET download_count = download_count + 1 WHERE id = ?`, sampleID)
	return err
}

// CountDownloadsBySampleID counts ledger rows for one sample.
func (r *MySQLSampleRepository) CountDownloadsBySampleID(ctx context.Context, sampleID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM sample_downloads WHERE sample_id = ?`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, sampleID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
