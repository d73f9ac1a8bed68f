package uploadsrv

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Abraxas-365/cvscreen/internal/extract"
	"github.com/Abraxas-365/cvscreen/pkg/errx"
	"github.com/Abraxas-365/cvscreen/pkg/fsx"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// Service handles upload batch lifecycle: validation, storage, dispatch.
type Service struct {
	batchRepo  upload.BatchRepository
	resumeRepo upload.ResumeRepository
	fileSystem fsx.FileSystem
	dispatcher upload.Dispatcher
}

func NewService(
	batchRepo upload.BatchRepository,
	resumeRepo upload.ResumeRepository,
	fileSystem fsx.FileSystem,
	dispatcher upload.Dispatcher,
) *Service {
	return &Service{
		batchRepo:  batchRepo,
		resumeRepo: resumeRepo,
		fileSystem: fileSystem,
		dispatcher: dispatcher,
	}
}

// CreateBatch validates the files, persists them, and dispatches each
// resume for asynchronous processing. Validation failures reject the whole
// batch before anything is stored.
func (s *Service) CreateBatch(ctx context.Context, req upload.CreateBatchRequest) (*upload.BatchDetailResponse, error) {
	if len(req.Files) == 0 {
		return nil, upload.ErrNoFiles()
	}
	if len(req.Files) > upload.MaxFilesPerBatch {
		return nil, upload.ErrTooManyFiles().
			WithDetail("max_files", upload.MaxFilesPerBatch).
			WithDetail("received", len(req.Files))
	}

	for _, f := range req.Files {
		if extract.FileTypeFromName(f.Filename) == extract.FileTypeUnsupported {
			return nil, upload.ErrUnsupportedFileType().WithDetail("filename", f.Filename)
		}
		if f.Size > upload.MaxFileSizeBytes {
			return nil, upload.ErrFileTooLarge().
				WithDetail("filename", f.Filename).
				WithDetail("max_bytes", upload.MaxFileSizeBytes)
		}
		if f.Size == 0 || len(f.Data) == 0 {
			return nil, upload.ErrEmptyFile().WithDetail("filename", f.Filename)
		}
	}

	now := time.Now()
	batch := &upload.UploadBatch{
		ID:        kernel.NewBatchID(kernel.GenerateID()),
		UserID:    req.UserID,
		BatchName: req.BatchName,
		Status:    upload.BatchStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, errx.Wrap(err, "failed to create batch", errx.TypeInternal)
	}

	resumes := make([]upload.Resume, 0, len(req.Files))
	for _, f := range req.Files {
		resumeID := kernel.NewResumeID(kernel.GenerateID())

		// Stored under an opaque name so duplicate or hostile filenames
		// can't collide or traverse.
		storedName := kernel.GenerateID() + filepath.Ext(f.Filename)
		storagePath := s.fileSystem.Join("resumes", batch.ID.String(), storedName)

		if err := s.fileSystem.WriteFile(ctx, storagePath, f.Data); err != nil {
			return nil, upload.ErrRegistry.NewWithCause(upload.CodeStorageFailed, err).
				WithDetail("filename", f.Filename)
		}

		resume := upload.Resume{
			ID:        resumeID,
			BatchID:   batch.ID,
			Filename:  f.Filename,
			FilePath:  storagePath,
			FileSize:  f.Size,
			Status:    upload.ResumeStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.resumeRepo.Create(ctx, &resume); err != nil {
			return nil, errx.Wrap(err, "failed to create resume", errx.TypeInternal)
		}

		resumes = append(resumes, resume)
	}

	if err := s.batchRepo.UpdateStatus(ctx, batch.ID, upload.BatchStatusProcessing); err != nil {
		return nil, errx.Wrap(err, "failed to update batch status", errx.TypeInternal)
	}
	batch.Status = upload.BatchStatusProcessing

	for i := range resumes {
		task := upload.ProcessingTask{
			ResumeID: resumes[i].ID,
			FilePath: resumes[i].FilePath,
		}
		if err := s.dispatcher.Dispatch(ctx, task); err != nil {
			// The resume stays visible in the batch; its failure message
			// tells the user what went wrong.
			logx.Errorf("Failed to dispatch resume %s: %v", resumes[i].ID, err)
			if markErr := s.resumeRepo.MarkFailed(ctx, resumes[i].ID, "Failed to queue for processing"); markErr != nil {
				logx.Errorf("Failed to mark resume %s as failed: %v", resumes[i].ID, markErr)
			}
		}
	}

	return s.buildDetailResponse(ctx, batch)
}

// GetBatch returns a batch with per-resume states, enforcing ownership.
func (s *Service) GetBatch(ctx context.Context, userID kernel.UserID, batchID kernel.BatchID) (*upload.BatchDetailResponse, error) {
	batch, err := s.ownedBatch(ctx, userID, batchID)
	if err != nil {
		return nil, err
	}
	return s.buildDetailResponse(ctx, batch)
}

// ListBatches returns the user's batches with aggregated counts.
func (s *Service) ListBatches(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[upload.BatchResponse], error) {
	page, err := s.batchRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list batches", errx.TypeInternal)
	}

	responses := make([]upload.BatchResponse, 0, len(page.Items))
	for i := range page.Items {
		counts, err := s.resumeRepo.CountsByBatch(ctx, page.Items[i].ID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to count resumes", errx.TypeInternal)
		}
		responses = append(responses, upload.BatchResponse{
			ID:        page.Items[i].ID,
			BatchName: page.Items[i].BatchName,
			Status:    page.Items[i].Status,
			Counts:    *counts,
			CreatedAt: page.Items[i].CreatedAt,
		})
	}

	return &kernel.Paginated[upload.BatchResponse]{
		Items: responses,
		Page:  page.Page,
		Empty: len(responses) == 0,
	}, nil
}

// DeleteBatch removes a batch, its resumes, and their stored files.
func (s *Service) DeleteBatch(ctx context.Context, userID kernel.UserID, batchID kernel.BatchID) error {
	batch, err := s.ownedBatch(ctx, userID, batchID)
	if err != nil {
		return err
	}

	resumes, err := s.resumeRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		return errx.Wrap(err, "failed to list resumes", errx.TypeInternal)
	}

	if err := s.batchRepo.Delete(ctx, batch.ID); err != nil {
		return errx.Wrap(err, "failed to delete batch", errx.TypeInternal)
	}

	// Best-effort file cleanup after the rows are gone.
	for i := range resumes {
		if err := s.fileSystem.DeleteFile(ctx, resumes[i].FilePath); err != nil {
			logx.Warnf("Failed to delete file %s: %v", resumes[i].FilePath, err)
		}
	}

	return nil
}

func (s *Service) ownedBatch(ctx context.Context, userID kernel.UserID, batchID kernel.BatchID) (*upload.UploadBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.UserID != userID {
		return nil, upload.ErrAccessDenied()
	}
	return batch, nil
}

func (s *Service) buildDetailResponse(ctx context.Context, batch *upload.UploadBatch) (*upload.BatchDetailResponse, error) {
	counts, err := s.resumeRepo.CountsByBatch(ctx, batch.ID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to count resumes", errx.TypeInternal)
	}

	resumes, err := s.resumeRepo.ListByBatch(ctx, batch.ID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list resumes", errx.TypeInternal)
	}

	responses := make([]upload.ResumeResponse, 0, len(resumes))
	for i := range resumes {
		responses = append(responses, upload.ToResumeResponse(&resumes[i]))
	}

	return &upload.BatchDetailResponse{
		BatchResponse: upload.BatchResponse{
			ID:        batch.ID,
			BatchName: batch.BatchName,
			Status:    batch.Status,
			Counts:    *counts,
			CreatedAt: batch.CreatedAt,
		},
		Resumes: responses,
	}, nil
}
