package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"packvault/model"
)

// TaxonomyRepository covers the classification entities that share
// one shape: categories, genres and moods. The same implementation is
// instantiated once per table.
type TaxonomyRepository interface {
	Create(ctx context.Context, t *model.Taxonomy) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Taxonomy, error)
	List(ctx context.Context) ([]*model.Taxonomy, error)
	Update(ctx context.Context, t *model.Taxonomy) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// MySQLTaxonomyRepository is the MySQL taxonomy repository for one of
// the taxonomy tables.
type MySQLTaxonomyRepository struct {
	db    *sql.DB
	table string
}

// NewMySQLCategoryRepository creates the repository over the categories table.
func NewMySQLCategoryRepository(db *sql.DB) *MySQLTaxonomyRepository {
	return &MySQLTaxonomyRepository{db: db, table: "categories"}
}

// NewMySQLGenreRepository creates the repository over the genres table.
func NewMySQLGenreRepository(db *sql.DB) *MySQLTaxonomyRepository {
	return &MySQLTaxonomyRepository{db: db, table: "genres"}
}

// NewMySQLMoodRepository creates the repository over the moods table.
func NewMySQLMoodRepository(db *sql.DB) *MySQLTaxonomyRepository {
	return &MySQLTaxonomyRepository{db: db, table: "moods"}
}

// Create inserts a new taxonomy row.
func (r *MySQLTaxonomyRepository) Create(ctx context.Context, t *model.Taxonomy) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.table)

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, t.Name, t.Description, t.IsActive, now, now)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// GetByID fetches one row, returning nil when absent.
func (r *MySQLTaxonomyRepository) GetByID(ctx context.Context, id int64) (*model.Taxonomy, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, is_active, created_at, updated_at
		FROM %s
		WHERE id = ?
	`, r.table)

	t := &model.Taxonomy{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return t, nil
}

// List returns all rows ordered by name.
func (r *MySQLTaxonomyRepository) List(ctx context.Context) ([]*model.Taxonomy, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, is_active, created_at, updated_at
		FROM %s
		ORDER BY name
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.Taxonomy
	for rows.Next() {
		t := &model.Taxonomy{}
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}

	return items, rows.Err()
}

// Update overwrites name and description.
func (r *MySQLTaxonomyRepository) Update(ctx context.Context, t *model.Taxonomy) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, r.table)

	_, err := r.db.ExecContext(ctx, query, t.Name, t.Description, time.Now(), t.ID)
	return err
}

// SetActive toggles the disable/enable flag.
func (r *MySQLTaxonomyRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = ?, updated_at = ? WHERE id = ?`, r.table)
	_, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	return err
}

// Delete hard-deletes a row. Callers must consult the deletion guard
// first; the store itself does not enforce it.
func (r *MySQLTaxonomyRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
