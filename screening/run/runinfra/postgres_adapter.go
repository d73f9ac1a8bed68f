package runinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/run"
)

// PostgresRanker runs cosine-similarity search inside Postgres. Only
// processed resumes with a stored embedding participate; ties keep the
// order Postgres returns for equal distances.
type PostgresRanker struct {
	db *sqlx.DB
}

func NewPostgresRanker(db *sqlx.DB) run.Ranker {
	return &PostgresRanker{db: db}
}

func (r *PostgresRanker) RankResumes(ctx context.Context, query run.RankQuery) ([]run.RankedResume, error) {
	// An empty query vector can't rank anything; don't bother Postgres.
	if len(query.Embedding) == 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(query.Embedding)

	var sb strings.Builder
	sb.WriteString(`
		SELECT r.id, r.filename,
			(1 - (r.embedding <=> $1)) AS similarity,
			r.batch_id
		FROM resumes r
		WHERE r.status = 'processed' AND r.embedding IS NOT NULL
	`)

	args := []any{vec}
	if query.BatchID != nil {
		args = append(args, *query.BatchID)
		fmt.Fprintf(&sb, " AND r.batch_id = $%d", len(args))
	}
	if query.MinScore != nil {
		args = append(args, *query.MinScore)
		fmt.Fprintf(&sb, " AND (1 - (r.embedding <=> $1)) >= $%d", len(args))
	}

	args = append(args, query.Limit)
	fmt.Fprintf(&sb, " ORDER BY r.embedding <=> $1 LIMIT $%d", len(args))

	ranked := []run.RankedResume{}
	if err := r.db.SelectContext(ctx, &ranked, sb.String(), args...); err != nil {
		return nil, err
	}

	return ranked, nil
}

type PostgresRunRepository struct {
	db *sqlx.DB
}

func NewPostgresRunRepository(db *sqlx.DB) run.Repository {
	return &PostgresRunRepository{db: db}
}

// CreateRun persists a run header
func (r *PostgresRunRepository) CreateRun(ctx context.Context, sr *run.ScreeningRun) error {
	query := `
		INSERT INTO screening_runs (
			id, job_description_id, batch_id, min_score, result_limit, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		sr.ID,
		sr.JobDescriptionID,
		sr.BatchID,
		sr.MinScore,
		sr.ResultLimit,
		sr.CreatedAt,
	)

	return err
}

// AddResults snapshots the ranked resumes of a run
func (r *PostgresRunRepository) AddResults(ctx context.Context, runID kernel.RunID, results []run.ScreeningResult) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO screening_results (
			run_id, resume_id, filename, similarity, rank
		) VALUES (
			:run_id, :resume_id, :filename, :similarity, :rank
		)
	`

	rows := make([]run.ScreeningResult, len(results))
	copy(rows, results)
	for i := range rows {
		rows[i].RunID = runID
	}

	_, err := r.db.NamedExecContext(ctx, query, rows)
	return err
}

// GetRunByID retrieves a run header
func (r *PostgresRunRepository) GetRunByID(ctx context.Context, id kernel.RunID) (*run.ScreeningRun, error) {
	query := `
		SELECT id, job_description_id, batch_id, min_score, result_limit, created_at
		FROM screening_runs
		WHERE id = $1
	`

	var sr run.ScreeningRun
	err := r.db.GetContext(ctx, &sr, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, run.ErrRunNotFound()
		}
		return nil, err
	}

	return &sr, nil
}

// GetRunOwner returns the user owning the run's job description
func (r *PostgresRunRepository) GetRunOwner(ctx context.Context, id kernel.RunID) (kernel.UserID, error) {
	query := `
		SELECT jd.user_id
		FROM screening_runs sr
		JOIN job_descriptions jd ON jd.id = sr.job_description_id
		WHERE sr.id = $1
	`

	var owner kernel.UserID
	err := r.db.GetContext(ctx, &owner, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", run.ErrRunNotFound()
		}
		return "", err
	}

	return owner, nil
}

// ListRunsForUser lists runs across the user's job descriptions
func (r *PostgresRunRepository) ListRunsForUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[run.RunWithCount], error) {
	pagination = pagination.Normalize()

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM screening_runs sr
		JOIN job_descriptions jd ON jd.id = sr.job_description_id
		WHERE jd.user_id = $1
	`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT sr.id, sr.job_description_id, sr.batch_id, sr.min_score,
			sr.result_limit, sr.created_at,
			jd.title AS jd_title,
			(SELECT COUNT(*) FROM screening_results res WHERE res.run_id = sr.id) AS result_count
		FROM screening_runs sr
		JOIN job_descriptions jd ON jd.id = sr.job_description_id
		WHERE jd.user_id = $1
		ORDER BY sr.created_at DESC
		LIMIT $2 OFFSET $3
	`

	runs := []run.RunWithCount{}
	offset := (pagination.Page - 1) * pagination.PageSize
	if err := r.db.SelectContext(ctx, &runs, query, userID, pagination.PageSize, offset); err != nil {
		return nil, err
	}

	return kernel.NewPaginated(runs, pagination.Page, pagination.PageSize, int(total)), nil
}

// ListResults returns a run's snapshot ordered by rank
func (r *PostgresRunRepository) ListResults(ctx context.Context, runID kernel.RunID) ([]run.ScreeningResult, error) {
	query := `
		SELECT run_id, resume_id, filename, similarity, rank
		FROM screening_results
		WHERE run_id = $1
		ORDER BY rank ASC
	`

	results := []run.ScreeningResult{}
	if err := r.db.SelectContext(ctx, &results, query, runID); err != nil {
		return nil, err
	}

	return results, nil
}
