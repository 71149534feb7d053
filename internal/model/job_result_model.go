package model

import (
	"time"

	"gorm.io/gorm"
)

// BatchItem persists the outcome of one work item of a batch run. Position
// keeps submission order stable across reads.
type BatchItem struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchRunID   uint           `gorm:"not null;index" json:"batch_run_id"`
	Position     int            `gorm:"not null" json:"position"`
	SourceRef    string         `gorm:"type:text;not null" json:"source_ref"`
	OutputRef    string         `gorm:"type:text" json:"output_ref"`
	Success      bool           `json:"success"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the name of the table for BatchItem.
func (BatchItem) TableName() string {
	return "batch_items"
}

// JobResultDTO is the per-item outcome in batch run responses.
type JobResultDTO struct {
	SourceRef    string `json:"source_ref"`
	OutputRef    string `json:"output_ref,omitempty"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// ToDTO converts a BatchItem to its response shape.
func (i *BatchItem) ToDTO() JobResultDTO {
	return JobResultDTO{
		SourceRef:    i.SourceRef,
		OutputRef:    i.OutputRef,
		Success:      i.Success,
		ErrorMessage: i.ErrorMessage,
	}
}
