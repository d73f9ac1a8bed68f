package upload

import (
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// Upload constraints
const (
	MaxFilesPerBatch = 20
	MaxFileSizeBytes = 10 * 1024 * 1024
)

// FileUpload is one file's content as received from the transport layer.
type FileUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

type CreateBatchRequest struct {
	UserID    kernel.UserID
	BatchName *string
	Files     []FileUpload
}

// ProcessingTask is the queue payload for one resume.
type ProcessingTask struct {
	ResumeID kernel.ResumeID `json:"resume_id"`
	FilePath string          `json:"file_path"`
}

// BatchCounts summarizes resume states inside a batch.
type BatchCounts struct {
	Total     int64 `db:"total" json:"total"`
	Pending   int64 `db:"pending" json:"pending"`
	Processed int64 `db:"processed" json:"processed"`
	Failed    int64 `db:"failed" json:"failed"`
}

type BatchResponse struct {
	ID        kernel.BatchID `json:"id"`
	BatchName *string        `json:"batch_name,omitempty"`
	Status    BatchStatus    `json:"status"`
	Counts    BatchCounts    `json:"counts"`
	CreatedAt time.Time      `json:"created_at"`
}

type BatchDetailResponse struct {
	BatchResponse
	Resumes []ResumeResponse `json:"resumes"`
}

type ResumeResponse struct {
	ID           kernel.ResumeID `json:"id"`
	Filename     string          `json:"filename"`
	FileSize     int64           `json:"file_size"`
	Status       ResumeStatus    `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func ToResumeResponse(r *Resume) ResumeResponse {
	return ResumeResponse{
		ID:           r.ID,
		Filename:     r.Filename,
		FileSize:     r.FileSize,
		Status:       r.Status,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}
