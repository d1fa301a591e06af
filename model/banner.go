package model

import (
	"time"

	"github.com/google/uuid"
)

// Audience selects which user segment an on-site announcement targets.
type Audience string

const (
	AudienceAll         Audience = "all"
	AudienceFree        Audience = "free"
	AudienceSubscribers Audience = "subscribers"
)

// Valid reports whether the audience is one of the known segments.
func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceFree, AudienceSubscribers:
		return true
	}
	return false
}

// Banner is an on-site announcement strip. At most one banner may be
// active at any time; activation goes through the slot enforcer.
type Banner struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	Title     string    `json:"title" gorm:"column:title;not null"`
	ImageURL  string    `json:"imageUrl" gorm:"column:image_url;not null"`
	LinkURL   string    `json:"linkUrl" gorm:"column:link_url"`
	CTALabel  string    `json:"ctaLabel" gorm:"column:cta_label"`
	CTAURL    string    `json:"ctaUrl" gorm:"column:cta_url"`
	Audience  Audience  `json:"audience" gorm:"column:audience;not null"`
	IsActive  bool      `json:"isActive" gorm:"column:is_active;not null"`
	CreatedBy int64     `json:"createdBy" gorm:"column:created_by"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName sets the banners table name for GORM.
func (Banner) TableName() string {
	return "banners"
}

// CreateBannerRequest is the banner create/update payload.
type CreateBannerRequest struct {
	Title    string   `json:"title"`
	ImageURL string   `json:"imageUrl"`
	LinkURL  string   `json:"linkUrl"`
	CTALabel string   `json:"ctaLabel"`
	CTAURL   string   `json:"ctaUrl"`
	Audience Audience `json:"audience"`
	Activate bool     `json:"activate"`
}

// NewBanner builds a banner from a create request. The banner starts
// inactive; activation is a separate, slot-guarded step.
func NewBanner(req CreateBannerRequest, userID int64) *Banner {
	now := time.Now()
	return &Banner{
		ID:        uuid.New().String(),
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		CTALabel:  req.CTALabel,
		CTAURL:    req.CTAURL,
		Audience:  req.Audience,
		IsActive:  false,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
