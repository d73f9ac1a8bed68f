package upload

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// BatchStatus represents the lifecycle of an upload batch
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"    // Created, nothing dispatched yet
	BatchStatusProcessing BatchStatus = "processing" // At least one resume in flight
	BatchStatusCompleted  BatchStatus = "completed"  // Every resume processed
	BatchStatusFailed     BatchStatus = "failed"     // Finished with at least one failure
)

// ResumeStatus represents the processing state of one uploaded file
type ResumeStatus string

const (
	ResumeStatusPending   ResumeStatus = "pending"
	ResumeStatusProcessed ResumeStatus = "processed"
	ResumeStatusFailed    ResumeStatus = "failed"
)

// UploadBatch groups the resumes uploaded in one request.
type UploadBatch struct {
	ID        kernel.BatchID `db:"id" json:"id"`
	UserID    kernel.UserID  `db:"user_id" json:"user_id"`
	BatchName *string        `db:"batch_name" json:"batch_name,omitempty"`
	Status    BatchStatus    `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether no further status transitions are expected.
func (b *UploadBatch) IsTerminal() bool {
	return b.Status == BatchStatusCompleted || b.Status == BatchStatusFailed
}

// Resume is one uploaded file and everything derived from it.
type Resume struct {
	ID            kernel.ResumeID  `db:"id" json:"id"`
	BatchID       kernel.BatchID   `db:"batch_id" json:"batch_id"`
	Filename      string           `db:"filename" json:"filename"`
	FilePath      string           `db:"file_path" json:"-"`
	FileSize      int64            `db:"file_size" json:"file_size"`
	ExtractedText *string          `db:"extracted_text" json:"-"`
	Embedding     kernel.Embedding `db:"embedding" json:"-"`
	Status        ResumeStatus     `db:"status" json:"status"`
	ErrorMessage  *string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// IsProcessed reports whether the resume already ran through the pipeline
// successfully. Used for idempotent redelivery handling.
func (r *Resume) IsProcessed() bool {
	return r.Status == ResumeStatusProcessed
}
