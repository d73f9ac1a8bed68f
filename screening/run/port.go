package run

import (
	"context"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// RankQuery filters the vector search.
type RankQuery struct {
	Embedding kernel.Embedding
	BatchID   *kernel.BatchID
	MinScore  *float64
	Limit     int
}

// Ranker performs cosine-similarity search over processed resumes.
type Ranker interface {
	RankResumes(ctx context.Context, query RankQuery) ([]RankedResume, error)
}

// RunWithCount pairs a run with how many results it snapshotted.
type RunWithCount struct {
	ScreeningRun
	JobDescriptionTitle string `db:"jd_title" json:"job_description_title"`
	ResultCount         int64  `db:"result_count" json:"result_count"`
}

type Repository interface {
	// CreateRun persists a run header
	CreateRun(ctx context.Context, r *ScreeningRun) error

	// AddResults snapshots the ranked resumes of a run
	AddResults(ctx context.Context, runID kernel.RunID, results []ScreeningResult) error

	// GetRunByID retrieves a run header
	GetRunByID(ctx context.Context, id kernel.RunID) (*ScreeningRun, error)

	// GetRunOwner returns the user owning the run's job description
	GetRunOwner(ctx context.Context, id kernel.RunID) (kernel.UserID, error)

	// ListRunsForUser lists runs across the user's job descriptions
	ListRunsForUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[RunWithCount], error)

	// ListResults returns a run's snapshot ordered by rank
	ListResults(ctx context.Context, runID kernel.RunID) ([]ScreeningResult, error)
}
