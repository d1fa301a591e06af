package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"packvault/model"
)

// ErrDuplicateUser is returned when a username or email is taken.
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository defines operator-account database operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
}

// MySQLUserRepository is the MySQL-backed user repository.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL user repository instance.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// CreateUser inserts a new operator account.
func (r *MySQLUserRepository) CreateUser(user *model.User) (int64, error) {
	query := `
		INSERT INTO users (username, email, password_hash, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.Exec(query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, err
	}

	return result.LastInsertId()
}

// GetUserByID fetches an account by id, returning nil when absent.
func (r *MySQLUserRepository) GetUserByID(id int64) (*model.User, error) {
	return r.getUserBy("id = ?", id)
}

// GetUserByUsername fetches an account by username, returning nil when absent.
func (r *MySQLUserRepository) GetUserByUsername(username string) (*model.User, error) {
	return r.getUserBy("username = ?", username)
}

// GetUserByEmail fetches an account by email, returning nil when absent.
func (r *MySQLUserRepository) GetUserByEmail(email string) (*model.User, error) {
	return r.getUserBy("email = ?", email)
}

func (r *MySQLUserRepository) getUserBy(where string, arg interface{}) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, display_name, created_at, updated_at
		FROM users
		WHERE ` + where

	user := &model.User{}
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
