package model

import (
	"database/sql"
	"time"
)

// SampleStatus is the sample lifecycle state. Deleted is terminal:
// rows are never physically removed so historical downloads stay
// attributable.
type SampleStatus string

const (
	SampleActive   SampleStatus = "active"
	SampleDisabled SampleStatus = "disabled"
	SampleDeleted  SampleStatus = "deleted"
)

// Valid reports whether the status is one of the known sample states.
func (s SampleStatus) Valid() bool {
	switch s {
	case SampleActive, SampleDisabled, SampleDeleted:
		return true
	}
	return false
}

// SampleType distinguishes loops from one-shots.
type SampleType string

const (
	SampleLoop    SampleType = "loop"
	SampleOneShot SampleType = "oneshot"
)

// Valid reports whether the type is one of the known sample types.
func (t SampleType) Valid() bool {
	return t == SampleLoop || t == SampleOneShot
}

// Sample is a single audio asset belonging to exactly one pack.
type Sample struct {
	ID            int64           `json:"id"`
	PackID        int64           `json:"packId"`
	Name          string          `json:"name"`
	AudioURL      string          `json:"audioUrl"`
	BPM           sql.NullInt64   `json:"bpm"`
	Key           sql.NullString  `json:"key"`
	Length        sql.NullFloat64 `json:"length"` // seconds
	SampleType    SampleType      `json:"sampleType"`
	MoodID        sql.NullInt64   `json:"moodId"`
	CreditCost    sql.NullInt64   `json:"creditCost"` // overrides the plan default when set
	HasStems      bool            `json:"hasStems"`
	Status        SampleStatus    `json:"status"`
	DownloadCount int64           `json:"downloadCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Stem is an auxiliary audio asset attached to a sample that has
// stems. Stems are only ever created as part of their sample.
type Stem struct {
	ID        int64     `json:"id"`
	SampleID  int64     `json:"sampleId"`
	Name      string    `json:"name"`
	AudioURL  string    `json:"audioUrl"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// SampleDownload is one row of the download ledger. The ledger is why
// sample removal is always a soft delete.
type SampleDownload struct {
	ID        int64     `json:"id"`
	SampleID  int64     `json:"sampleId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
