package model

import (
	"database/sql"
	"time"
)

// Taxonomy is the shared shape of the simple classification entities
// (categories, genres, moods): a name, an optional description, an
// enable flag and a derived usage counter.
type Taxonomy struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// UsageCount is computed from referencing packs/samples at read
	// time; it is never stored.
	UsageCount int64 `json:"usageCount"`
}

// Category classifies packs. Every pack has exactly one.
type Category struct {
	Taxonomy
}

// Genre classifies packs many-to-many via pack_genres.
type Genre struct {
	Taxonomy
}

// Mood classifies samples for browse filters.
type Mood struct {
	Taxonomy
}

// Creator is the artist or label a pack is attributed to.
type Creator struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Bio       sql.NullString `json:"bio"`
	AvatarURL sql.NullString `json:"avatarUrl"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
