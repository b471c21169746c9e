// Package model provides data models for the docpipe service.
package model

import (
	"time"
)

// ProcessingStatus is the state of a document in the processing pipeline.
type ProcessingStatus string

const (
	// StatusPending means the document is waiting to be processed.
	StatusPending ProcessingStatus = "pending"
	// StatusProcessing means a processing job is currently running.
	StatusProcessing ProcessingStatus = "processing"
	// StatusCompleted means chunking and embedding finished successfully.
	StatusCompleted ProcessingStatus = "completed"
	// StatusFailed means the last processing attempt failed.
	StatusFailed ProcessingStatus = "failed"
	// StatusSkipped means processing was deliberately skipped.
	StatusSkipped ProcessingStatus = "skipped"
)

// ProcessingMode is the policy governing when a document is processed.
type ProcessingMode string

const (
	// ModeImmediate triggers an async processing job right after creation.
	ModeImmediate ProcessingMode = "immediate"
	// ModeBatch leaves the document pending for the periodic sweep.
	ModeBatch ProcessingMode = "batch"
	// ModeManual takes no automatic action.
	ModeManual ProcessingMode = "manual"
)

// Document represents an uploaded document tracked by the pipeline.
// File content itself lives outside the database; the pipeline receives
// bytes through a ContentProvider at processing time.
type Document struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(26)"`
	OwnerID  uint64 `json:"owner_id" gorm:"index;not null"`
	Filename string `json:"filename" gorm:"type:varchar(255);not null"`
	DocType  string `json:"doc_type" gorm:"type:varchar(32);default:'other'"`
	// SizeBytes is the declared size of the uploaded file.
	SizeBytes int64 `json:"size_bytes" gorm:"default:0"`

	// Processing bookkeeping, mutated only by the orchestrator and by
	// explicit operator retry actions.
	Status      ProcessingStatus `json:"status" gorm:"type:varchar(16);index;default:'pending'"`
	Mode        ProcessingMode   `json:"mode" gorm:"type:varchar(16);index;default:''"`
	RetryCount  int              `json:"retry_count" gorm:"default:0"`
	LastError   string           `json:"last_error,omitempty" gorm:"type:text"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}
