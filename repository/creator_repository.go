package repository

import (
	"context"
	"database/sql"
	"time"

	"packvault/model"
)

// CreatorRepository defines creator-related database operations.
type CreatorRepository interface {
	CreateCreator(ctx context.Context, creator *model.Creator) (int64, error)
	GetCreatorByID(ctx context.Context, id int64) (*model.Creator, error)
	ListCreators(ctx context.Context) ([]*model.Creator, error)
	UpdateCreator(ctx context.Context, creator *model.Creator) error
	SetCreatorActive(ctx context.Context, id int64, active bool) error
	DeleteCreator(ctx context.Context, id int64) error
}

// MySQLCreatorRepository is the MySQL-backed creator repository.
type MySQLCreatorRepository struct {
	db *sql.DB
}

// NewMySQLCreatorRepository creates a new MySQL creator repository instance.
func NewMySQLCreatorRepository(db *sql.DB) *MySQLCreatorRepository {
	return &MySQLCreatorRepository{db: db}
}

// CreateCreator inserts a new creator.
func (r *MySQLCreatorRepository) CreateCreator(ctx context.Context, creator *model.Creator) (int64, error) {
	query := `
		INSERT INTO creators (name, bio, avatar_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		creator.Name,
		creator.Bio,
		creator.AvatarURL,
		creator.IsActive,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// GetCreatorByID fetches a creator by id, returning nil when absent.
func (r *MySQLCreatorRepository) GetCreatorByID(ctx context.Context, id int64) (*model.Creator, error) {
	query := `
		SELECT id, name, bio, avatar_url, is_active, created_at, updated_at
		FROM creators
		WHERE id = ?
	`

	creator := &model.Creator{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&creator.ID,
		&creator.Name,
		&creator.Bio,
		&creator.AvatarURL,
		&creator.IsActive,
		&creator.CreatedAt,
		&creator.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return creator, nil
}

// ListCreators returns all creators, newest first.
func (r *MySQLCreatorRepository) ListCreators(ctx context.Context) ([]*model.Creator, error) {
	query := `
		SELECT id, name, bio, avatar_url, is_active, created_at, updated_at
		FROM creators
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creators []*model.Creator
	for rows.Next() {
		creator := &model.Creator{}
		err := rows.Scan(
			&creator.ID,
			&creator.Name,
			&creator.Bio,
			&creator.AvatarURL,
			&creator.IsActive,
			&creator.CreatedAt,
			&creator.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		creators = append(creators, creator)
	}

	return creators, rows.Err()
}

// UpdateCreator updates a creator's profile fields.
func (r *MySQLCreatorRepository) UpdateCreator(ctx context.Context, creator *model.Creator) error {
	query := `
		UPDATE creators
		SET name = ?, bio = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		creator.Name,
		creator.Bio,
		creator.AvatarURL,
		time.Now(),
		creator.ID,
	)
	return err
}

// SetCreatorActive toggles the disable/enable flag.
func (r *MySQLCreatorRepository) SetCreatorActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE creators SET is_active = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	return err
}

// DeleteCreator hard-deletes a creator. Callers must consult the
// deletion guard first.
func (r *MySQLCreatorRepository) DeleteCreator(ctx context.Context, id int64) error {
	query := `DELETE FROM creators WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
