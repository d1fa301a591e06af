package repository

import (
	"context"
	"database/sql"
	"time"

	"packvault/logger"
	"packvault/model"
)

// PackRepository defines pack-related database operations. Writes that
// belong to the aggregate (pack + genres + samples + stems) take an
// explicit transaction so the publishing writer can commit them as a
// unit.
type PackRepository interface {
	BeginTx() (*sql.Tx, error)
	RollbackTx(tx *sql.Tx)
	CommitTx(tx *sql.Tx) error

	CreatePackTx(tx *sql.Tx, pack *model.Pack) (int64, error)
	UpdatePackTx(tx *sql.Tx, pack *model.Pack) error
	ReplacePackGenresTx(tx *sql.Tx, packID int64, genreIDs []int64) error

	GetPackByID(ctx context.Context, id int64) (*model.Pack, error)
	ListPacks(ctx context.Context) ([]*model.Pack, error)
	UpdatePackStatus(ctx context.Context, id int64, status model.PackStatus) error
	DeletePack(ctx context.Context, id int64) error
	IncrementDownloadCount(ctx context.Context, id int64) error

	CountByCreator(ctx context.Context, creatorID int64) (int64, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	CountByGenre(ctx context.Context, genreID int64) (int64, error)
	CountDownloadHistory(ctx context.Context, packID int64) (int64, error)
}

// MySQLPackRepository is the MySQL-backed pack repository.
type MySQLPackRepository struct {
	db *sql.DB
}

// NewMySQLPackRepository creates a new MySQL pack repository instance.
func NewMySQLPackRepository(db *sql.DB) *MySQLPackRepository {
	return &MySQLPackRepository{db: db}
}

// BeginTx starts a new transaction.
func (r *MySQLPackRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

// RollbackTx rolls back a transaction. Safe to call after commit.
func (r *MySQLPackRepository) RollbackTx(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logger.Warn("transaction rollback failed", logger.ErrorField(err))
	}
}

// CommitTx commits a transaction.
func (r *MySQLPackRepository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// CreatePackTx inserts the pack row inside the given transaction.
func (r *MySQLPackRepository) CreatePackTx(tx *sql.Tx, pack *model.Pack) (int64, error) {
	query := `
		INSERT INTO packs (name, description, creator_id, category_id, cover_url, tags, is_premium, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := tx.Exec(query,
		pack.Name,
		pack.Description,
		pack.CreatorID,
		pack.CategoryID,
		pack.CoverURL,
		pack.Tags,
		pack.IsPremium,
		pack.Status,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// UpdatePackTx overwrites the pack-level fields wholesale inside the
// given transaction. Status and download_count are not touched here.
func (r *MySQLPackRepository) UpdatePackTx(tx *sql.Tx, pack *model.Pack) error {
	query := `
		UPDATE packs
		SET name = ?, description = ?, creator_id = ?, category_id = ?, cover_url = ?, tags = ?, is_premium = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := tx.Exec(query,
		pack.Name,
		pack.Description,
		pack.CreatorID,
		pack.CategoryID,
		pack.CoverURL,
		pack.Tags,
		pack.IsPremium,
		time.Now(),
		pack.ID,
	)
	return err
}

// ReplacePackGenresTx deletes and reinserts the genre join rows. The
// genre set is overwritten, not diffed.
func (r *MySQLPackRepository) ReplacePackGenresTx(tx *sql.Tx, packID int64, genreIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM pack_genres WHERE pack_id = ?`, packID); err != nil {
		return err
	}

	for _, genreID := range genreIDs {
		if _, err := tx.Exec(`INSERT INTO pack_genres (pack_id, genre_id) VALUES (?, ?)`, packID, genreID); err != nil {
			return err
		}
	}
	return nil
}

// GetPackByID fetches a pack with its genre ids, returning nil when absent.
func (r *MySQLPackRepository) GetPackByID(ctx context.Context, id int64) (*model.Pack, error) {
	query := `
		SELECT id, name, description, creator_id, category_id, cover_url, tags, is_premium, status, download_count, created_at, updated_at
		FROM packs
		WHERE id = ?
	`

	pack := &model.Pack{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pack.ID,
		&pack.Name,
		&pack.Description,
		&pack.CreatorID,
		&pack.CategoryID,
		&pack.CoverURL,
		&pack.Tags,
		&pack.IsPremium,
		&pack.Status,
		&pack.DownloadCount,
		&pack.CreatedAt,
		&pack.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT genre_id FROM pack_genres WHERE pack_id = ? ORDER BY genre_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var genreID int64
		if err := rows.Scan(&genreID); err != nil {
			return nil, err
		}
		pack.GenreIDs = append(pack.GenreIDs, genreID)
	}

	return pack, rows.Err()
}

// ListPacks returns all packs, newest first, without genre ids.
func (r *MySQLPackRepository) ListPacks(ctx context.Context) ([]*model.Pack, error) {
	query := `
		SELECT id, name, description, creator_id, category_id, cover_url, tags, is_premium, status, download_count, created_at, updated_at
		FROM packs
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []*model.Pack
	for rows.Next() {
		pack := &model.Pack{}
		err := rows.Scan(
			&pack.ID,
			&pack.Name,
			&pack.Description,
			&pack.CreatorID,
			&pack.CategoryID,
			&pack.CoverURL,
			&pack.Tags,
			&pack.IsPremium,
			&pack.Status,
			&pack.DownloadCount,
			&pack.CreatedAt,
			&pack.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}

	return packs, rows.Err()
}

// UpdatePackStatus sets the lifecycle status and bumps updated_at.
// Nothing else is touched by a transition.
func (r *MySQLPackRepository) UpdatePackStatus(ctx context.Context, id int64, status model.PackStatus) error {
	query := `UPDATE packs SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

// DeletePack hard-deletes a pack and its genre joins. Callers must
// consult the deletion guard first.
func (r *MySQLPackRepository) DeletePack(ctx context.Context, id int64) error {
	query := `DELETE FROM packs WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// IncrementDownloadCount adds one download to the pack counter.
func (r *MySQLPackRepository) IncrementDownloadCount(ctx context.Context, id int64) error {
	query := `UPDATE packs SET download_count = download_count + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// CountByCreator counts packs attributed to a creator.
func (r *MySQLPackRepository) CountByCreator(ctx context.Context, creatorID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM packs WHERE creator_id = ?`, creatorID)
}

// CountByCategory counts packs in a category.
func (r *MySQLPackRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM packs WHERE category_id = ?`, categoryID)
}

// CountByGenre counts packs associated with a genre.
func (r *MySQLPackRepository) CountByGenre(ctx context.Context, genreID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM pack_genres WHERE genre_id = ?`, genreID)
}

// CountDownloadHistory sums the pack download counter with the sample
// download ledger. Non-zero blocks hard deletion permanently.
func (r *MySQLPackRepository) CountDownloadHistory(ctx context.Context, packID int64) (int64, error) {
	packDownloads, err := r.count(ctx, `SELECT download_count FROM packs WHERE id = ?`, packID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}

	ledger, err := r.count(ctx, `
		SELECT COUNT(*)
		FROM sample_downloads d
		JOIN samples s ON s.id = d.sample_id
		WHERE s.pack_id = ?`, packID)
	if err != nil {
		return 0, err
	}

	return packDownloads + ledger, nil
}

func (r *MySQLPackRepository) count(ctx context.Context, query string, arg interface{}) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
