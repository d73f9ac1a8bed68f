package jdsrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/jd"
)

type Service struct {
	jdRepo jd.Repository
}

func NewService(jdRepo jd.Repository) *Service {
	return &Service{jdRepo: jdRepo}
}

// Create creates a job description. No embedding yet; the first rank
// against it computes and caches one.
func (s *Service) Create(ctx context.Context, userID kernel.UserID, req jd.CreateRequest) (*jd.JobDescription, error) {
	title := strings.TrimSpace(req.Title)
	rawText := strings.TrimSpace(req.RawText)
	if title == "" {
		return nil, jd.ErrEmptyTitle()
	}
	if rawText == "" {
		return nil, jd.ErrEmptyText()
	}

	now := time.Now()
	newJD := &jd.JobDescription{
		ID:        kernel.NewJobDescriptionID(kernel.GenerateID()),
		UserID:    userID,
		Title:     title,
		RawText:   rawText,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.jdRepo.Create(ctx, newJD); err != nil {
		return nil, errx.Wrap(err, "failed to create job description", errx.TypeInternal)
	}

	return newJD, nil
}

// Get retrieves a job description, enforcing ownership.
func (s *Service) Get(ctx context.Context, userID kernel.UserID, id kernel.JobDescriptionID) (*jd.JobDescription, error) {
	return s.owned(ctx, userID, id)
}

// List returns the user's job descriptions.
func (s *Service) List(ctx context.Context, userID kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[jd.JobDescription], error) {
	page, err := s.jdRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list job descriptions", errx.TypeInternal)
	}
	return page, nil
}

// Update changes title and/or text. A text change invalidates the cached
// embedding so the next rank re-embeds.
func (s *Service) Update(ctx context.Context, userID kernel.UserID, id kernel.JobDescriptionID, req jd.UpdateRequest) (*jd.JobDescription, error) {
	existing, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	title := existing.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, jd.ErrEmptyTitle()
		}
	}

	rawText := existing.RawText
	textChanged := false
	if req.RawText != nil {
		rawText = strings.TrimSpace(*req.RawText)
		if rawText == "" {
			return nil, jd.ErrEmptyText()
		}
		textChanged = rawText != existing.RawText
	}

	if err := s.jdRepo.Update(ctx, id, title, rawText); err != nil {
		return nil, errx.Wrap(err, "failed to update job description", errx.TypeInternal)
	}

	if textChanged {
		if err := s.jdRepo.ClearEmbedding(ctx, id); err != nil {
			return nil, errx.Wrap(err, "failed to invalidate embedding", errx.TypeInternal)
		}
		existing.HasEmbedding = false
	}

	existing.Title = title
	existing.RawText = rawText
	existing.UpdatedAt = time.Now()

	return existing, nil
}

// Delete removes a job description and, through the schema, its runs.
func (s *Service) Delete(ctx context.Context, userID kernel.UserID, id kernel.JobDescriptionID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.jdRepo.Delete(ctx, id); err != nil {
		return errx.Wrap(err, "failed to delete job description", errx.TypeInternal)
	}

	return nil
}

func (s *Service) owned(ctx context.Context, userID kernel.UserID, id kernel.JobDescriptionID) (*jd.JobDescription, error) {
	existing, err := s.jdRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, jd.ErrAccessDenied()
	}
	return existing, nil
}
