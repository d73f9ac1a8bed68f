package uploadinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

type PostgresBatchRepository struct {
	db *sqlx.DB
}

func NewPostgresBatchRepository(db *sqlx.DB) upload.BatchRepository {
	return &PostgresBatchRepository{db: db}
}

// Create creates a new upload batch
func (r *PostgresBatchRepository) Create(ctx context.Context, batch *upload.UploadBatch) error {
	query := `
		INSERT INTO upload_batches (
			id, user_id, batch_name, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		batch.ID,
		batch.UserID,
		batch.BatchName,
		batch.Status,
		batch.CreatedAt,
		batch.UpdatedAt,
	)

	return err
}

// GetByID retrieves a batch by ID
func (r *PostgresBatchRepository) GetByID(ctx context.Context, id kernel.BatchID) (*upload.UploadBatch, error) {
	query := `
		SELECT id, user_id, batch_name, status, created_at, updated_at
		FROM upload_batches
		WHERE id = $1
	`

	var batch upload.UploadBatch
	err := r.db.GetContext(ctx, &batch, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, upload.ErrBatchNotFound()
		}
		return nil, err
	}

	return &batch, nil
}

// ListByUser retrieves a user's batches with pagination
func (r *PostgresBatchRepository) ListByUser(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[upload.UploadBatch], error) {
	pagination = pagination.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM upload_batches WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, batch_name, status, created_at, updated_at
		FROM upload_batches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	batches := []upload.UploadBatch{}
	offset := (pagination.Page - 1) * pagination.PageSize
	if err := r.db.SelectContext(ctx, &batches, query, userID, pagination.PageSize, offset); err != nil {
		return nil, err
	}

	return kernel.NewPaginated(batches, pagination.Page, pagination.PageSize, int(total)), nil
}

// UpdateStatus transitions the batch status
func (r *PostgresBatchRepository) UpdateStatus(ctx context.Context, id kernel.BatchID, status upload.BatchStatus) error {
	query := `UPDATE upload_batches SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return upload.ErrBatchNotFound()
	}

	return nil
}

// Delete removes a batch; resumes go with it via ON DELETE CASCADE
func (r *PostgresBatchRepository) Delete(ctx context.Context, id kernel.BatchID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM upload_batches WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return upload.ErrBatchNotFound()
	}

	return nil
}

type PostgresResumeRepository struct {
	db *sqlx.DB
}

func NewPostgresResumeRepository(db *sqlx.DB) upload.ResumeRepository {
	return &PostgresResumeRepository{db: db}
}

// Create creates a new resume row
func (r *PostgresResumeRepository) Create(ctx context.Context, resume *upload.Resume) error {
	query := `
		INSERT INTO resumes (
			id, batch_id, filename, file_path, file_size, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		resume.ID,
		resume.BatchID,
		resume.Filename,
		resume.FilePath,
		resume.FileSize,
		resume.Status,
		resume.CreatedAt,
		resume.UpdatedAt,
	)

	return err
}

// GetByID retrieves a resume by ID. The embedding column is skipped; the
// ranking queries work on it inside Postgres and nothing else reads it back.
func (r *PostgresResumeRepository) GetByID(ctx context.Context, id kernel.ResumeID) (*upload.Resume, error) {
	query := `
		SELECT id, batch_id, filename, file_path, file_size, extracted_text,
			status, error_message, created_at, updated_at
		FROM resumes
		WHERE id = $1
	`

	var resume upload.Resume
	err := r.db.GetContext(ctx, &resume, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, upload.ErrResumeNotFound()
		}
		return nil, err
	}

	return &resume, nil
}

// ListByBatch retrieves all resumes of a batch
func (r *PostgresResumeRepository) ListByBatch(ctx context.Context, batchID kernel.BatchID) ([]upload.Resume, error) {
	query := `
		SELECT id, batch_id, filename, file_path, file_size, extracted_text,
			status, error_message, created_at, updated_at
		FROM resumes
		WHERE batch_id = $1
		ORDER BY created_at ASC, filename ASC
	`

	resumes := []upload.Resume{}
	if err := r.db.SelectContext(ctx, &resumes, query, batchID); err != nil {
		return nil, err
	}

	return resumes, nil
}

// MarkProcessed stores the extracted text and embedding and flips status
func (r *PostgresResumeRepository) MarkProcessed(ctx context.Context, id kernel.ResumeID, extractedText string, embedding kernel.Embedding) error {
	query := `
		UPDATE resumes
		SET extracted_text = $2,
			embedding = $3,
			status = $4,
			error_message = NULL,
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		id,
		extractedText,
		pgvector.NewVector(embedding),
		upload.ResumeStatusProcessed,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return upload.ErrResumeNotFound()
	}

	return nil
}

// MarkFailed records a failure reason and flips status
func (r *PostgresResumeRepository) MarkFailed(ctx context.Context, id kernel.ResumeID, errorMessage string) error {
	query := `
		UPDATE resumes
		SET status = $2,
			error_message = $3,
			updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, upload.ResumeStatusFailed, errorMessage, time.Now())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return upload.ErrResumeNotFound()
	}

	return nil
}

// CountByBatchAndStatus counts a batch's resumes in one status
func (r *PostgresResumeRepository) CountByBatchAndStatus(ctx context.Context, batchID kernel.BatchID, status upload.ResumeStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM resumes WHERE batch_id = $1 AND status = $2`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, batchID, status); err != nil {
		return 0, err
	}

	return count, nil
}

// CountsByBatch aggregates per-status counts for a batch
func (r *PostgresResumeRepository) CountsByBatch(ctx context.Context, batchID kernel.BatchID) (*upload.BatchCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'processed') AS processed,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM resumes
		WHERE batch_id = $1
	`

	var counts upload.BatchCounts
	if err := r.db.GetContext(ctx, &counts, query, batchID); err != nil {
		return nil, err
	}

	return &counts, nil
}
