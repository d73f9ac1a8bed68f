package jd

import (
	"context"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

type Repository interface {
	// Create creates a new job description
	Create(ctx context.Context, jd *JobDescription) error

	// GetByID retrieves a job description by ID
	GetByID(ctx context.Context, id kernel.JobDescriptionID) (*JobDescription, error)

	// ListByUser retrieves a user's job descriptions with pagination
	ListByUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[JobDescription], error)

	// Update stores new title and raw text
	Update(ctx context.Context, id kernel.JobDescriptionID, title, rawText string) error

	// Delete removes a job description and its runs
	Delete(ctx context.Context, id kernel.JobDescriptionID) error

	// GetEmbedding returns the cached embedding, reporting whether one exists
	GetEmbedding(ctx context.Context, id kernel.JobDescriptionID) (kernel.Embedding, bool, error)

	// SetEmbedding caches a freshly computed embedding
	SetEmbedding(ctx context.Context, id kernel.JobDescriptionID, embedding kernel.Embedding) error

	// ClearEmbedding invalidates the cache after a text change
	ClearEmbedding(ctx context.Context, id kernel.JobDescriptionID) error
}
