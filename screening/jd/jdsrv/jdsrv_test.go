package jdsrv

import (
	"context"
	"testing"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/jd"
)

type fakeRepo struct {
	jds        map[kernel.JobDescriptionID]*jd.JobDescription
	embeddings map[kernel.JobDescriptionID]kernel.Embedding
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jds:        map[kernel.JobDescriptionID]*jd.JobDescription{},
		embeddings: map[kernel.JobDescriptionID]kernel.Embedding{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, j *jd.JobDescription) error {
	cp := *j
	f.jds[j.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id kernel.JobDescriptionID) (*jd.JobDescription, error) {
	j, ok := f.jds[id]
	if !ok {
		return nil, jd.ErrNotFound()
	}
	cp := *j
	cp.HasEmbedding = len(f.embeddings[id]) > 0
	return &cp, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID kernel.UserID, p kernel.PaginationOptions) (*kernel.Paginated[jd.JobDescription], error) {
	return kernel.NewPaginated([]jd.JobDescription{}, 1, 20, 0), nil
}

func (f *fakeRepo) Update(ctx context.Context, id kernel.JobDescriptionID, title, rawText string) error {
	j, ok := f.jds[id]
	if !ok {
		return jd.ErrNotFound()
	}
	j.Title = title
	j.RawText = rawText
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id kernel.JobDescriptionID) error {
	delete(f.jds, id)
	return nil
}

func (f *fakeRepo) GetEmbedding(ctx context.Context, id kernel.JobDescriptionID) (kernel.Embedding, bool, error) {
	vec, ok := f.embeddings[id]
	return vec, ok, nil
}

func (f *fakeRepo) SetEmbedding(ctx context.Context, id kernel.JobDescriptionID, e kernel.Embedding) error {
	f.embeddings[id] = e
	return nil
}

func (f *fakeRepo) ClearEmbedding(ctx context.Context, id kernel.JobDescriptionID) error {
	delete(f.embeddings, id)
	return nil
}

func seed(repo *fakeRepo, userID kernel.UserID) kernel.JobDescriptionID {
	id := kernel.NewJobDescriptionID(kernel.GenerateID())
	repo.jds[id] = &jd.JobDescription{
		ID:      id,
		UserID:  userID,
		Title:   "Backend Engineer",
		RawText: "Go, Postgres, Redis",
	}
	return id
}

func TestCreateValidates(t *testing.T) {
	s := NewService(newFakeRepo())
	userID := kernel.NewUserID("u1")

	if _, err := s.Create(context.Background(), userID, jd.CreateRequest{Title: " ", RawText: "text"}); err == nil {
		t.Error("expected empty title error")
	}
	if _, err := s.Create(context.Background(), userID, jd.CreateRequest{Title: "t", RawText: "  "}); err == nil {
		t.Error("expected empty text error")
	}

	created, err := s.Create(context.Background(), userID, jd.CreateRequest{Title: "  Engineer  ", RawText: "Go"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Engineer" {
		t.Errorf("title = %q, want trimmed", created.Title)
	}
	if created.HasEmbedding {
		t.Error("new job description must not claim an embedding")
	}
}

func TestUpdateTextChangeInvalidatesEmbedding(t *testing.T) {
	repo := newFakeRepo()
	userID := kernel.NewUserID("u1")
	id := seed(repo, userID)
	repo.embeddings[id] = make(kernel.Embedding, 3)

	s := NewService(repo)
	newText := "Rust, Kafka"
	if _, err := s.Update(context.Background(), userID, id, jd.UpdateRequest{RawText: &newText}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := repo.embeddings[id]; ok {
		t.Error("embedding should be invalidated after a text change")
	}
}

func TestUpdateTitleOnlyKeepsEmbedding(t *testing.T) {
	repo := newFakeRepo()
	userID := kernel.NewUserID("u1")
	id := seed(repo, userID)
	repo.embeddings[id] = make(kernel.Embedding, 3)

	s := NewService(repo)
	newTitle := "Staff Engineer"
	if _, err := s.Update(context.Background(), userID, id, jd.UpdateRequest{Title: &newTitle}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := repo.embeddings[id]; !ok {
		t.Error("title-only update must keep the cached embedding")
	}
}

func TestUpdateSameTextKeepsEmbedding(t *testing.T) {
	repo := newFakeRepo()
	userID := kernel.NewUserID("u1")
	id := seed(repo, userID)
	repo.embeddings[id] = make(kernel.Embedding, 3)

	s := NewService(repo)
	sameText := "Go, Postgres, Redis"
	if _, err := s.Update(context.Background(), userID, id, jd.UpdateRequest{RawText: &sameText}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, ok := repo.embeddings[id]; !ok {
		t.Error("identical text must not invalidate the embedding")
	}
}

func TestOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	id := seed(repo, kernel.NewUserID("owner"))
	s := NewService(repo)

	if _, err := s.Get(context.Background(), kernel.NewUserID("intruder"), id); err == nil {
		t.Error("expected access denied on Get")
	}
	if err := s.Delete(context.Background(), kernel.NewUserID("intruder"), id); err == nil {
		t.Error("expected access denied on Delete")
	}
}
