package jdinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/jd"
)

type PostgresJDRepository struct {
	db *sqlx.DB
}

func NewPostgresJDRepository(db *sqlx.DB) jd.Repository {
	return &PostgresJDRepository{db: db}
}

// Create creates a new job description
func (r *PostgresJDRepository) Create(ctx context.Context, j *jd.JobDescription) error {
	query := `
		INSERT INTO job_descriptions (
			id, user_id, title, raw_text, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.UserID,
		j.Title,
		j.RawText,
		j.CreatedAt,
		j.UpdatedAt,
	)

	return err
}

// GetByID retrieves a job description by ID
func (r *PostgresJDRepository) GetByID(ctx context.Context, id kernel.JobDescriptionID) (*jd.JobDescription, error) {
	query := `
		SELECT id, user_id, title, raw_text,
			(embedding IS NOT NULL) AS has_embedding,
			created_at, updated_at
		FROM job_descriptions
		WHERE id = $1
	`

	var j jd.JobDescription
	err := r.db.GetContext(ctx, &j, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jd.ErrNotFound()
		}
		return nil, err
	}

	return &j, nil
}

// ListByUser retrieves a user's job descriptions with pagination
func (r *PostgresJDRepository) ListByUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[jd.JobDescription], error) {
	pagination = pagination.Normalize()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM job_descriptions WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, title, raw_text,
			(embedding IS NOT NULL) AS has_embedding,
			created_at, updated_at
		FROM job_descriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	items := []jd.JobDescription{}
	offset := (pagination.Page - 1) * pagination.PageSize
	if err := r.db.SelectContext(ctx, &items, query, userID, pagination.PageSize, offset); err != nil {
		return nil, err
	}

	return kernel.NewPaginated(items, pagination.Page, pagination.PageSize, int(total)), nil
}

// Update stores new title and raw text
func (r *PostgresJDRepository) Update(ctx context.Context, id kernel.JobDescriptionID, title, rawText string) error {
	query := `
		UPDATE job_descriptions
		SET title = $2, raw_text = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, title, rawText, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return jd.ErrNotFound()
	}

	return nil
}

// Delete removes a job description; runs cascade via FK
func (r *PostgresJDRepository) Delete(ctx context.Context, id kernel.JobDescriptionID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM job_descriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return jd.ErrNotFound()
	}

	return nil
}

// GetEmbedding returns the cached embedding, reporting whether one exists
func (r *PostgresJDRepository) GetEmbedding(ctx context.Context, id kernel.JobDescriptionID) (kernel.Embedding, bool, error) {
	query := `SELECT embedding FROM job_descriptions WHERE id = $1 AND embedding IS NOT NULL`

	var vec pgvector.Vector
	err := r.db.GetContext(ctx, &vec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return kernel.Embedding(vec.Slice()), true, nil
}

// SetEmbedding caches a freshly computed embedding
func (r *PostgresJDRepository) SetEmbedding(ctx context.Context, id kernel.JobDescriptionID, embedding kernel.Embedding) error {
	query := `UPDATE job_descriptions SET embedding = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, pgvector.NewVector(embedding), time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return jd.ErrNotFound()
	}

	return nil
}

// ClearEmbedding invalidates the cache after a text change
func (r *PostgresJDRepository) ClearEmbedding(ctx context.Context, id kernel.JobDescriptionID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE job_descriptions SET embedding = NULL WHERE id = $1`, id)
	return err
}
