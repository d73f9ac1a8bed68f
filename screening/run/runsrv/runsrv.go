package runsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/cvscreen/internal/ai/embeddings"
	"github.com/Abraxas-365/cvscreen/pkg/errx"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/screening/jd"
	"github.com/Abraxas-365/cvscreen/screening/run"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// TextEmbedder is the slice of the embeddings provider ranking needs.
type TextEmbedder interface {
	EmbedTextGuarded(ctx context.Context, text string) ([]float32, error)
}

// Service executes ranking requests and keeps their immutable snapshots.
type Service struct {
	jdRepo    jd.Repository
	batchRepo upload.BatchRepository
	runRepo   run.Repository
	ranker    run.Ranker
	embedder  TextEmbedder
}

func NewService(
	jdRepo jd.Repository,
	batchRepo upload.BatchRepository,
	runRepo run.Repository,
	ranker run.Ranker,
	embedder TextEmbedder,
) *Service {
	return &Service{
		jdRepo:    jdRepo,
		batchRepo: batchRepo,
		runRepo:   runRepo,
		ranker:    ranker,
		embedder:  embedder,
	}
}

// Rank scores processed resumes against a job description and freezes the
// outcome as a new screening run. The run is recorded even when no resume
// matches, so an empty result is reproducible later.
func (s *Service) Rank(ctx context.Context, userID kernel.UserID, req run.RankRequest) (*run.RankResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = run.DefaultLimit
	}
	if limit < 1 || limit > run.MaxLimit {
		return nil, run.ErrInvalidLimit().WithDetail("limit", req.Limit)
	}
	if req.MinScore != nil && (*req.MinScore < 0 || *req.MinScore > 1) {
		return nil, run.ErrInvalidMinScore().WithDetail("min_score", *req.MinScore)
	}

	jobDesc, err := s.jdRepo.GetByID(ctx, req.JobDescriptionID)
	if err != nil {
		return nil, err
	}
	if jobDesc.UserID != userID {
		return nil, jd.ErrAccessDenied()
	}

	if req.BatchID != nil {
		batch, err := s.batchRepo.GetByID(ctx, *req.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.UserID != userID {
			return nil, upload.ErrAccessDenied()
		}
	}

	embedding, err := s.jdEmbedding(ctx, jobDesc)
	if err != nil {
		return nil, err
	}

	ranked, err := s.ranker.RankResumes(ctx, run.RankQuery{
		Embedding: embedding,
		BatchID:   req.BatchID,
		MinScore:  req.MinScore,
		Limit:     limit,
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to rank resumes", errx.TypeInternal)
	}

	screeningRun := &run.ScreeningRun{
		ID:               kernel.NewRunID(kernel.GenerateID()),
		JobDescriptionID: jobDesc.ID,
		BatchID:          req.BatchID,
		MinScore:         req.MinScore,
		ResultLimit:      limit,
		CreatedAt:        time.Now(),
	}

	if err := s.runRepo.CreateRun(ctx, screeningRun); err != nil {
		return nil, errx.Wrap(err, "failed to create screening run", errx.TypeInternal)
	}

	results := make([]run.ScreeningResult, 0, len(ranked))
	for i := range ranked {
		results = append(results, run.ScreeningResult{
			RunID:      screeningRun.ID,
			ResumeID:   ranked[i].ResumeID,
			Filename:   ranked[i].Filename,
			Similarity: ranked[i].Similarity,
			Rank:       i + 1,
		})
	}

	if err := s.runRepo.AddResults(ctx, screeningRun.ID, results); err != nil {
		return nil, errx.Wrap(err, "failed to store screening results", errx.TypeInternal)
	}

	return &run.RankResponse{
		Run:     *screeningRun,
		Results: results,
	}, nil
}

// jdEmbedding returns the cached job description embedding, computing and
// caching it on first use. Breaker rejections propagate as unavailable
// errors so the API can answer 503 instead of hanging.
func (s *Service) jdEmbedding(ctx context.Context, jobDesc *jd.JobDescription) (kernel.Embedding, error) {
	cached, ok, err := s.jdRepo.GetEmbedding(ctx, jobDesc.ID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load cached embedding", errx.TypeInternal)
	}
	if ok {
		return cached, nil
	}

	vec, err := s.embedder.EmbedTextGuarded(ctx, jobDesc.RawText)
	if err != nil {
		return nil, err
	}
	if len(vec) != embeddings.Dimensions {
		return nil, run.ErrRegistry.New(run.CodeDimensionMismatch).
			WithDetail("got", len(vec)).
			WithDetail("want", embeddings.Dimensions)
	}

	embedding := kernel.Embedding(vec)
	if err := s.jdRepo.SetEmbedding(ctx, jobDesc.ID, embedding); err != nil {
		// Next rank recomputes; this request can still answer.
		logx.Warnf("Failed to cache embedding for job description %s: %v", jobDesc.ID, err)
	}

	return embedding, nil
}

// GetRun returns a run with its snapshot, enforcing ownership.
func (s *Service) GetRun(ctx context.Context, userID kernel.UserID, runID kernel.RunID) (*run.RankResponse, error) {
	owner, err := s.runRepo.GetRunOwner(ctx, runID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, run.ErrAccessDenied()
	}

	screeningRun, err := s.runRepo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	results, err := s.runRepo.ListResults(ctx, runID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load screening results", errx.TypeInternal)
	}

	return &run.RankResponse{
		Run:     *screeningRun,
		Results: results,
	}, nil
}

// ListRuns lists the user's runs, newest first.
func (s *Service) ListRuns(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[run.RunWithCount], error) {
	page, err := s.runRepo.ListRunsForUser(ctx, userID, pagination)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list screening runs", errx.TypeInternal)
	}
	return page, nil
}
