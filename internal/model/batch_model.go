package model

import (
	"time"

	"gorm.io/gorm"
)

// Batch run states. A run only leaves running through one of the three
// terminal states: finished (all items processed), cancelled (stop request
// honoured between items), error (automation setup failed before any item).
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateFinished  = "finished"
	StateCancelled = "cancelled"
	StateError     = "error"
)

// Batch operations accepted by the API.
const (
	OpConvert       = "convert"
	OpWatermark     = "watermark"
	OpStripMetadata = "strip_metadata"
	OpHeaderFooter  = "header_footer"
	OpMask          = "mask"
	OpSplit         = "split"
	OpMerge         = "merge"
	OpInject        = "inject"
)

// KnownOperation reports whether op is a supported batch operation.
func KnownOperation(op string) bool {
	switch op {
	case OpConvert, OpWatermark, OpStripMetadata, OpHeaderFooter, OpMask, OpSplit, OpMerge, OpInject:
		return true
	}
	return false
}

// BatchRun represents one batch invocation and its aggregate outcome.
type BatchRun struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID        string         `gorm:"size:36;not null;uniqueIndex" json:"job_id"`
	Operation    string         `gorm:"size:30;not null" json:"operation"`
	State        string         `gorm:"size:20;not null" json:"state"`
	TotalCount   int            `json:"total_count"`
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	Cancelled    bool           `json:"cancelled"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	OutputDir    string         `gorm:"type:text" json:"output_dir"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the name of the table for BatchRun.
func (BatchRun) TableName() string {
	return "batch_runs"
}

// BatchRunDTO is the response shape for a batch run with per-item results.
type BatchRunDTO struct {
	JobID        string         `json:"job_id"`
	Operation    string         `json:"operation"`
	State        string         `json:"state"`
	TotalCount   int            `json:"total_count"`
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	Cancelled    bool           `json:"cancelled"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
	OutputDir    string         `json:"output_dir,omitempty"`
	Results      []JobResultDTO `json:"results"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ToDTO converts a BatchRun and its ordered item results to a BatchRunDTO.
// Batch-level success means every processed item succeeded and the run was
// neither cancelled nor aborted during setup.
func (b *BatchRun) ToDTO(results []JobResultDTO) *BatchRunDTO {
	return &BatchRunDTO{
		JobID:        b.JobID,
		Operation:    b.Operation,
		State:        b.State,
		TotalCount:   b.TotalCount,
		SuccessCount: b.SuccessCount,
		FailCount:    b.FailCount,
		Cancelled:    b.Cancelled,
		Success:      b.State == StateFinished && b.FailCount == 0,
		ErrorMessage: b.ErrorMessage,
		OutputDir:    b.OutputDir,
		Results:      results,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// WatermarkInput describes the stamp applied by the watermark operation.
type WatermarkInput struct {
	Text     string `json:"text" binding:"required"`
	FontSize int    `json:"font_size"`
	Opacity  int    `json:"opacity" binding:"omitempty,gte=0,lte=100"`
	Angle    int    `json:"angle"`
}

// HeaderFooterInput describes header/footer text for the header_footer operation.
type HeaderFooterInput struct {
	HeaderText  string `json:"header_text"`
	FooterText  string `json:"footer_text"`
	PageNumbers bool   `json:"page_numbers"`
}

// SubmitBatchInput defines a batch submission. Files carries the input
// documents for file-oriented operations; Rows carries the data rows for
// templated generation (inject).
type SubmitBatchInput struct {
	Operation     string              `json:"operation" binding:"required"`
	Files         []string            `json:"files"`
	OutputDir     string              `json:"output_dir"`
	OutputName    string              `json:"output_name"`
	TargetFormat  string              `json:"target_format"`
	Watermark     *WatermarkInput     `json:"watermark"`
	HeaderFooter  *HeaderFooterInput  `json:"header_footer"`
	Pattern       string              `json:"pattern"`
	Replacement   string              `json:"replacement"`
	TemplatePath  string              `json:"template_path"`
	Rows          []map[string]string `json:"rows"`
	FilenameField string              `json:"filename_field"`
}
