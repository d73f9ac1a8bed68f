package upload

import (
	"context"
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

type BatchRepository interface {
	// Create creates a new upload batch
	Create(ctx context.Context, batch *UploadBatch) error

	// GetByID retrieves a batch by ID
	GetByID(ctx context.Context, id kernel.BatchID) (*UploadBatch, error)

	// ListByUser retrieves a user's batches with pagination
	ListByUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[UploadBatch], error)

	// UpdateStatus transitions the batch status
	UpdateStatus(ctx context.Context, id kernel.BatchID, status BatchStatus) error

	// Delete removes a batch and, via FK cascade, its resumes
	Delete(ctx context.Context, id kernel.BatchID) error
}

type ResumeRepository interface {
	// Create creates a new resume row
	Create(ctx context.Context, resume *Resume) error

	// GetByID retrieves a resume by ID
	GetByID(ctx context.Context, id kernel.ResumeID) (*Resume, error)

	// ListByBatch retrieves all resumes of a batch
	ListByBatch(ctx context.Context, batchID kernel.BatchID) ([]Resume, error)

	// MarkProcessed stores the extracted text and embedding and flips status
	MarkProcessed(ctx context.Context, id kernel.ResumeID, extractedText string, embedding kernel.Embedding) error

	// MarkFailed records a failure reason and flips status
	MarkFailed(ctx context.Context, id kernel.ResumeID, errorMessage string) error

	// CountByBatchAndStatus counts a batch's resumes in one status
	CountByBatchAndStatus(ctx context.Context, batchID kernel.BatchID, status ResumeStatus) (int64, error)

	// CountsByBatch aggregates per-status counts for a batch
	CountsByBatch(ctx context.Context, batchID kernel.BatchID) (*BatchCounts, error)
}

// Dispatcher hands a stored resume to the processing pipeline. The queue
// implementation pushes to Redis; the inline implementation processes
// synchronously for development setups without a worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, task ProcessingTask) error
}

// JobQueue is the transport behind the queue-backed dispatcher.
type JobQueue interface {
	Enqueue(ctx context.Context, task ProcessingTask) error
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
