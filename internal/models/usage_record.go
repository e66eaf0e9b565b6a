package models

import "time"

// Usage record statuses.
const (
	UsageStatusSuccess  = "success"
	UsageStatusDegraded = "degraded"
	UsageStatusError    = "error"
)

// UsageRecord is an append-only log entry for one generation attempt. Rows are
// never updated after insert.
type UsageRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RequestID        string    `gorm:"size:64;index" json:"request_id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	ToolID           string    `gorm:"size:64;index;not null" json:"tool_id"`
	ToolName         string    `gorm:"size:100" json:"tool_name"`
	Input            string    `gorm:"type:text" json:"input"`
	Output           *string   `gorm:"type:text" json:"output"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Status           string    `gorm:"size:20;index" json:"status"`
	AIGenerated      bool      `json:"ai_generated"`
	ErrorKind        string    `gorm:"size:50" json:"error_kind,omitempty"`
	ErrorMessage     string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (UsageRecord) TableName() string { return "usage_records" }
