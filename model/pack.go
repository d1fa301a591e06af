package model

import (
	"database/sql"
	"strings"
	"time"
)

// PackStatus is the pack lifecycle state.
type PackStatus string

const (
	PackDraft     PackStatus = "draft"
	PackPublished PackStatus = "published"
	PackDisabled  PackStatus = "disabled"
)

// Valid reports whether the status is one of the known pack states.
func (s PackStatus) Valid() bool {
	switch s {
	case PackDraft, PackPublished, PackDisabled:
		return true
	}
	return false
}

// Pack represents a sample pack in the catalog. A pack always has
// exactly one creator and one category, and zero or more genres.
type Pack struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   sql.NullString `json:"description"`
	CreatorID     int64          `json:"creatorId"`
	CategoryID    int64          `json:"categoryId"`
	CoverURL      string         `json:"coverUrl"`
	Tags          string         `json:"-"` // comma-joined, see TagList
	IsPremium     bool           `json:"isPremium"`
	Status        PackStatus     `json:"status"`
	DownloadCount int64          `json:"downloadCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	// GenreIDs is populated from the pack_genres join table, not a column.
	GenreIDs []int64 `json:"genreIds"`
}

// TagList splits the stored tag string into its tag set.
func (p *Pack) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags normalizes a tag set into the stored comma-joined form.
func JoinTags(tags []string) string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// PackWithSamples bundles a pack with its samples for detail views.
type PackWithSamples struct {
	Pack    Pack      `json:"pack"`
	Samples []*Sample `json:"samples"`
}
