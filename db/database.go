package db

import (
	"database/sql"
	"fmt"
	"log"

	"packvault/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB creates the schema if it does not exist yet.
func InitDB() error {
	statements := []struct {
		name  string
		query string
	}{
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			display_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"creators", `
		CREATE TABLE IF NOT EXISTS creators (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			bio TEXT,
			avatar_url VARCHAR(767),
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"genres", `
		CREATE TABLE IF NOT EXISTS genres (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"moods", `
		CREATE TABLE IF NOT EXISTS moods (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"packs", `
		CREATE TABLE IF NOT EXISTS packs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			creator_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			cover_url VARCHAR(767),
			tags VARCHAR(1024) NOT NULL DEFAULT '',
			is_premium TINYINT(1) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			download_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_pack_creator FOREIGN KEY (creator_id) REFERENCES creators(id),
			CONSTRAINT fk_pack_category FOREIGN KEY (category_id) REFERENCES categories(id)
		);`},
		{"pack_genres", `
		CREATE TABLE IF NOT EXISTS pack_genres (
			pack_id BIGINT NOT NULL,
			genre_id BIGINT NOT NULL,
			PRIMARY KEY (pack_id, genre_id),
			CONSTRAINT fk_pg_pack FOREIGN KEY (pack_id) REFERENCES packs(id) ON DELETE CASCADE,
			CONSTRAINT fk_pg_genre FOREIGN KEY (genre_id) REFERENCES genres(id)
		);`},
		{"samples", `
		CREATE TABLE IF NOT EXISTS samples (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			pack_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			audio_url VARCHAR(767) NOT NULL,
			bpm INT,
			` + "`key`" + ` VARCHAR(10),
			length FLOAT,
			sample_type VARCHAR(20) NOT NULL DEFAULT 'loop',
			mood_id BIGINT,
			credit_cost INT,
			has_stems TINYINT(1) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			download_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT fk_sample_pack FOREIGN KEY (pack_id) REFERENCES packs(id)
		);`},
		{"stems", `
		CREATE TABLE IF NOT EXISTS stems (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sample_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			audio_url VARCHAR(767) NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_stem_sample FOREIGN KEY (sample_id) REFERENCES samples(id)
		);`},
		{"sample_downloads", `
		CREATE TABLE IF NOT EXISTS sample_downloads (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sample_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_dl_sample FOREIGN KEY (sample_id) REFERENCES samples(id)
		);`},
		{"banners", `
		CREATE TABLE IF NOT EXISTS banners (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			image_url VARCHAR(767) NOT NULL,
			link_url VARCHAR(767),
			cta_label VARCHAR(100),
			cta_url VARCHAR(767),
			audience VARCHAR(20) NOT NULL DEFAULT 'all',
			is_active TINYINT(1) NOT NULL DEFAULT 0,
			created_by BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
		{"popups", `
		CREATE TABLE IF NOT EXISTS popups (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			audience VARCHAR(20) NOT NULL DEFAULT 'all',
			frequency VARCHAR(20) NOT NULL DEFAULT 'once',
			is_active TINYINT(1) NOT NULL DEFAULT 0,
			created_by BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		);`},
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}

	log.Println("Database schema initialized (or already present).")
	return nil
}
