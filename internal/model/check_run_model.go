package model

import (
	"time"

	"gorm.io/gorm"
)

// CheckRun represents one link-check invocation over a document.
type CheckRun struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID        string         `gorm:"size:36;not null;uniqueIndex" json:"job_id"`
	SourcePath   string         `gorm:"type:text;not null" json:"source_path"`
	TotalCount   int            `json:"total_count"`
	ValidCount   int            `json:"valid_count"`
	BrokenCount  int            `json:"broken_count"`
	Success      bool           `json:"success"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the name of the table for CheckRun.
func (CheckRun) TableName() string {
	return "check_runs"
}

// CheckRunDTO is the response shape for a check run, links in document order.
type CheckRunDTO struct {
	JobID        string       `json:"job_id"`
	SourcePath   string       `json:"source_path"`
	TotalCount   int          `json:"total_count"`
	ValidCount   int          `json:"valid_count"`
	BrokenCount  int          `json:"broken_count"`
	Success      bool         `json:"success"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Links        []LinkRecord `json:"links"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ToDTO converts a CheckRun and its ordered links to a CheckRunDTO.
func (r *CheckRun) ToDTO(links []LinkRecord) *CheckRunDTO {
	return &CheckRunDTO{
		JobID:        r.JobID,
		SourcePath:   r.SourcePath,
		TotalCount:   r.TotalCount,
		ValidCount:   r.ValidCount,
		BrokenCount:  r.BrokenCount,
		Success:      r.Success,
		ErrorMessage: r.ErrorMessage,
		Links:        links,
		CreatedAt:    r.CreatedAt,
	}
}

// CheckRequestInput defines a link-check request. Either SourcePath (links
// are extracted from the document via the automation bridge) or URLs must be
// provided.
type CheckRequestInput struct {
	SourcePath     string   `json:"source_path"`
	URLs           []string `json:"urls"`
	MaxConcurrency int      `json:"max_concurrency" binding:"omitempty,gte=1"`
	CacheEnabled   *bool    `json:"cache_enabled"`
	TimeoutSeconds int      `json:"timeout_seconds" binding:"omitempty,gte=1"`
	Allowlist      []string `json:"allowlist"`
}
