package model

import (
	"time"

	"github.com/google/uuid"
)

// Frequency controls how often an active pop-up is shown to the same
// visitor.
type Frequency string

const (
	FrequencyOnce       Frequency = "once"
	FrequencyDaily      Frequency = "daily"
	FrequencyEveryVisit Frequency = "every_visit"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyEveryVisit:
		return true
	}
	return false
}

// Popup is an on-site modal announcement. Like banners, at most one
// popup may be active at any time.
type Popup struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	Title     string    `json:"title" gorm:"column:title;not null"`
	Body      string    `json:"body" gorm:"column:body;not null"`
	Audience  Audience  `json:"audience" gorm:"column:audience;not null"`
	Frequency Frequency `json:"frequency" gorm:"column:frequency;not null"`
	IsActive  bool      `json:"isActive" gorm:"column:is_active;not null"`
	CreatedBy int64     `json:"createdBy" gorm:"column:created_by"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName sets the popups table name for GORM.
func (Popup) TableName() string {
	return "popups"
}

// CreatePopupRequest is the popup create/update payload.
type CreatePopupRequest struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Audience  Audience  `json:"audience"`
	Frequency Frequency `json:"frequency"`
	Activate  bool      `json:"activate"`
}

// NewPopup builds a popup from a create request, starting inactive.
func NewPopup(req CreatePopupRequest, userID int64) *Popup {
	now := time.Now()
	return &Popup{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Body:      req.Body,
		Audience:  req.Audience,
		Frequency: req.Frequency,
		IsActive:  false,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
