package model

import (
	"time"

	"gorm.io/gorm"
)

// LinkStatus is the outcome of validating one hyperlink.
type LinkStatus string

const (
	LinkValid        LinkStatus = "valid"
	LinkBroken       LinkStatus = "broken"
	LinkTimeout      LinkStatus = "timeout"
	LinkUnknown      LinkStatus = "unknown"
	LinkLocalOK      LinkStatus = "local_ok"
	LinkLocalMissing LinkStatus = "local_missing"
	LinkSkipped      LinkStatus = "skipped"
)

// Healthy reports whether the status counts toward the valid tally.
func (s LinkStatus) Healthy() bool {
	return s == LinkValid || s == LinkLocalOK
}

// Unhealthy reports whether the status counts toward the broken tally.
func (s LinkStatus) Unhealthy() bool {
	return s == LinkBroken || s == LinkLocalMissing || s == LinkTimeout
}

// LinkRecord is one hyperlink pulled out of a document, in document order.
// Status and ErrorDetail start zero-valued (unknown) and are filled in
// exactly once when its check completes.
type LinkRecord struct {
	URL         string     `json:"url"`
	DisplayText string     `json:"display_text"`
	Status      LinkStatus `json:"status"`
	ErrorDetail string     `json:"error_detail"`
}

// NewLinkRecord returns a record in the unknown state.
func NewLinkRecord(url, text string) LinkRecord {
	return LinkRecord{URL: url, DisplayText: text, Status: LinkUnknown}
}

// CheckLink persists one LinkRecord of a stored check run. Position keeps
// the document order stable across reads.
type CheckLink struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CheckRunID  uint           `gorm:"not null;index" json:"check_run_id"`
	Position    int            `gorm:"not null" json:"position"`
	Href        string         `gorm:"type:text;not null" json:"href"`
	DisplayText string         `gorm:"type:text" json:"display_text"`
	Status      string         `gorm:"size:20;not null" json:"status"`
	ErrorDetail string         `gorm:"type:text" json:"error_detail"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the name of the table for CheckLink.
func (CheckLink) TableName() string {
	return "check_links"
}

// ToRecord converts a stored row back to the in-memory record form.
func (l *CheckLink) ToRecord() LinkRecord {
	return LinkRecord{
		URL:         l.Href,
		DisplayText: l.DisplayText,
		Status:      LinkStatus(l.Status),
		ErrorDetail: l.ErrorDetail,
	}
}

// CheckLinkFromRecord maps a checked record to its persistence row.
func CheckLinkFromRecord(runID uint, position int, rec LinkRecord) *CheckLink {
	return &CheckLink{
		CheckRunID:  runID,
		Position:    position,
		Href:        rec.URL,
		DisplayText: rec.DisplayText,
		Status:      string(rec.Status),
		ErrorDetail: rec.ErrorDetail,
	}
}
