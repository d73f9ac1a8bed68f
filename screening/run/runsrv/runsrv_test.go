package runsrv

import (
	"context"
	"testing"

	"github.com/Abraxas-365/cvscreen/internal/ai/embeddings"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/jd"
	"github.com/Abraxas-365/cvscreen/screening/run"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// Fakes

type fakeJDRepo struct {
	jds        map[kernel.JobDescriptionID]*jd.JobDescription
	embeddings map[kernel.JobDescriptionID]kernel.Embedding
}

func newFakeJDRepo() *fakeJDRepo {
	return &fakeJDRepo{
		jds:        map[kernel.JobDescriptionID]*jd.JobDescription{},
		embeddings: map[kernel.JobDescriptionID]kernel.Embedding{},
	}
}

func (f *fakeJDRepo) Create(ctx context.Context, j *jd.JobDescription) error {
	f.jds[j.ID] = j
	return nil
}

func (f *fakeJDRepo) GetByID(ctx context.Context, id kernel.JobDescriptionID) (*jd.JobDescription, error) {
	j, ok := f.jds[id]
	if !ok {
		return nil, jd.ErrNotFound()
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJDRepo) ListByUser(ctx context.Context, userID kernel.UserID, p kernel.PaginationOptions) (*kernel.Paginated[jd.JobDescription], error) {
	return kernel.NewPaginated([]jd.JobDescription{}, 1, 20, 0), nil
}

func (f *fakeJDRepo) Update(ctx context.Context, id kernel.JobDescriptionID, title, rawText string) error {
	return nil
}

func (f *fakeJDRepo) Delete(ctx context.Context, id kernel.JobDescriptionID) error { return nil }

func (f *fakeJDRepo) GetEmbedding(ctx context.Context, id kernel.JobDescriptionID) (kernel.Embedding, bool, error) {
	vec, ok := f.embeddings[id]
	return vec, ok, nil
}

func (f *fakeJDRepo) SetEmbedding(ctx context.Context, id kernel.JobDescriptionID, e kernel.Embedding) error {
	f.embeddings[id] = e
	return nil
}

func (f *fakeJDRepo) ClearEmbedding(ctx context.Context, id kernel.JobDescriptionID) error {
	delete(f.embeddings, id)
	return nil
}

type fakeBatchRepo struct {
	batches map[kernel.BatchID]*upload.UploadBatch
}

func (f *fakeBatchRepo) Create(ctx context.Context, b *upload.UploadBatch) error { return nil }

func (f *fakeBatchRepo) GetByID(ctx context.Context, id kernel.BatchID) (*upload.UploadBatch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, upload.ErrBatchNotFound()
	}
	return b, nil
}

func (f *fakeBatchRepo) ListByUser(ctx context.Context, userID kernel.UserID, p kernel.PaginationOptions) (*kernel.Paginated[upload.UploadBatch], error) {
	return kernel.NewPaginated([]upload.UploadBatch{}, 1, 20, 0), nil
}

func (f *fakeBatchRepo) UpdateStatus(ctx context.Context, id kernel.BatchID, s upload.BatchStatus) error {
	return nil
}

func (f *fakeBatchRepo) Delete(ctx context.Context, id kernel.BatchID) error { return nil }

type fakeRunRepo struct {
	runs    map[kernel.RunID]*run.ScreeningRun
	results map[kernel.RunID][]run.ScreeningResult
	owners  map[kernel.RunID]kernel.UserID
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		runs:    map[kernel.RunID]*run.ScreeningRun{},
		results: map[kernel.RunID][]run.ScreeningResult{},
		owners:  map[kernel.RunID]kernel.UserID{},
	}
}

func (f *fakeRunRepo) CreateRun(ctx context.Context, r *run.ScreeningRun) error {
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeRunRepo) AddResults(ctx context.Context, runID kernel.RunID, results []run.ScreeningResult) error {
	f.results[runID] = results
	return nil
}

func (f *fakeRunRepo) GetRunByID(ctx context.Context, id kernel.RunID) (*run.ScreeningRun, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, run.ErrRunNotFound()
	}
	return r, nil
}

func (f *fakeRunRepo) GetRunOwner(ctx context.Context, id kernel.RunID) (kernel.UserID, error) {
	owner, ok := f.owners[id]
	if !ok {
		return "", run.ErrRunNotFound()
	}
	return owner, nil
}

func (f *fakeRunRepo) ListRunsForUser(ctx context.Context, userID kernel.UserID, p kernel.PaginationOptions) (*kernel.Paginated[run.RunWithCount], error) {
	return kernel.NewPaginated([]run.RunWithCount{}, 1, 20, 0), nil
}

func (f *fakeRunRepo) ListResults(ctx context.Context, runID kernel.RunID) ([]run.ScreeningResult, error) {
	return f.results[runID], nil
}

type fakeRanker struct {
	ranked    []run.RankedResume
	lastQuery run.RankQuery
}

func (f *fakeRanker) RankResumes(ctx context.Context, q run.RankQuery) ([]run.RankedResume, error) {
	f.lastQuery = q
	if q.Limit < len(f.ranked) {
		return f.ranked[:q.Limit], nil
	}
	return f.ranked, nil
}

type fakeEmbedder struct {
	calls int
	err   error
	dims  int
}

func (f *fakeEmbedder) EmbedTextGuarded(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	dims := f.dims
	if dims == 0 {
		dims = embeddings.Dimensions
	}
	return make([]float32, dims), nil
}

// Fixture

type rankFixture struct {
	jdRepo   *fakeJDRepo
	batches  *fakeBatchRepo
	runRepo  *fakeRunRepo
	ranker   *fakeRanker
	embedder *fakeEmbedder
	service  *Service

	userID kernel.UserID
	jdID   kernel.JobDescriptionID
}

func newRankFixture() *rankFixture {
	f := &rankFixture{
		jdRepo:   newFakeJDRepo(),
		batches:  &fakeBatchRepo{batches: map[kernel.BatchID]*upload.UploadBatch{}},
		runRepo:  newFakeRunRepo(),
		ranker:   &fakeRanker{},
		embedder: &fakeEmbedder{},
		userID:   kernel.NewUserID("u1"),
		jdID:     kernel.NewJobDescriptionID("jd1"),
	}
	f.jdRepo.jds[f.jdID] = &jd.JobDescription{
		ID:      f.jdID,
		UserID:  f.userID,
		Title:   "Backend Engineer",
		RawText: "Go, Postgres, Redis",
	}
	f.service = NewService(f.jdRepo, f.batches, f.runRepo, f.ranker, f.embedder)
	return f
}

func ranked(n int) []run.RankedResume {
	out := make([]run.RankedResume, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, run.RankedResume{
			ResumeID:   kernel.NewResumeID(kernel.GenerateID()),
			Filename:   "cv.pdf",
			Similarity: 1 - float64(i)*0.1,
		})
	}
	return out
}

// Tests

func TestRankAssignsDensePositions(t *testing.T) {
	f := newRankFixture()
	f.ranker.ranked = ranked(3)

	resp, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	for i, r := range resp.Results {
		if r.Rank != i+1 {
			t.Errorf("result %d rank = %d, want %d", i, r.Rank, i+1)
		}
	}
	if resp.Run.ResultLimit != run.DefaultLimit {
		t.Errorf("result limit = %d, want default %d", resp.Run.ResultLimit, run.DefaultLimit)
	}
}

func TestRankComputesAndCachesEmbedding(t *testing.T) {
	f := newRankFixture()

	if _, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID}); err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls != 1 {
		t.Fatalf("embedder calls = %d, want 1", f.embedder.calls)
	}
	if _, ok := f.jdRepo.embeddings[f.jdID]; !ok {
		t.Fatal("embedding not cached")
	}

	// Second rank reuses the cache.
	if _, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID}); err != nil {
		t.Fatal(err)
	}
	if f.embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 (cache hit)", f.embedder.calls)
	}
}

func TestRankEmbedderUnavailable(t *testing.T) {
	f := newRankFixture()
	f.embedder.err = embeddings.ErrUnavailable()

	_, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID})
	if err == nil {
		t.Fatal("expected unavailable error")
	}
	if len(f.runRepo.runs) != 0 {
		t.Error("no run should be recorded when embedding fails")
	}
}

func TestRankEmptyResultStillRecordsRun(t *testing.T) {
	f := newRankFixture()
	f.ranker.ranked = nil

	resp, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %d, want 0", len(resp.Results))
	}
	if len(f.runRepo.runs) != 1 {
		t.Errorf("runs recorded = %d, want 1", len(f.runRepo.runs))
	}
}

func TestRankForeignJobDescriptionDenied(t *testing.T) {
	f := newRankFixture()

	_, err := f.service.Rank(context.Background(), kernel.NewUserID("intruder"), run.RankRequest{JobDescriptionID: f.jdID})
	if err == nil {
		t.Fatal("expected access denied")
	}
}

func TestRankLimitTruncatesResults(t *testing.T) {
	f := newRankFixture()
	f.ranker.ranked = ranked(10)

	resp, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{
		JobDescriptionID: f.jdID,
		Limit:            4,
	})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(resp.Results) != 4 {
		t.Fatalf("results = %d, want 4", len(resp.Results))
	}
	// Limit prefix property: the top 4 of a larger query.
	for i, r := range resp.Results {
		if r.ResumeID != f.ranker.ranked[i].ResumeID {
			t.Errorf("result %d is not the prefix of the full ranking", i)
		}
	}
}

func TestRankValidatesLimitAndMinScore(t *testing.T) {
	f := newRankFixture()

	if _, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{
		JobDescriptionID: f.jdID,
		Limit:            run.MaxLimit + 1,
	}); err == nil {
		t.Error("expected invalid limit error")
	}

	bad := 1.5
	if _, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{
		JobDescriptionID: f.jdID,
		MinScore:         &bad,
	}); err == nil {
		t.Error("expected invalid min score error")
	}
}

func TestRankBatchOwnershipChecked(t *testing.T) {
	f := newRankFixture()
	foreignBatch := kernel.NewBatchID("b-foreign")
	f.batches.batches[foreignBatch] = &upload.UploadBatch{
		ID:     foreignBatch,
		UserID: kernel.NewUserID("someone-else"),
	}

	_, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{
		JobDescriptionID: f.jdID,
		BatchID:          &foreignBatch,
	})
	if err == nil {
		t.Fatal("expected access denied for foreign batch")
	}
}

func TestGetRunEnforcesOwnership(t *testing.T) {
	f := newRankFixture()
	f.ranker.ranked = ranked(2)

	resp, err := f.service.Rank(context.Background(), f.userID, run.RankRequest{JobDescriptionID: f.jdID})
	if err != nil {
		t.Fatal(err)
	}
	f.runRepo.owners[resp.Run.ID] = f.userID

	got, err := f.service.GetRun(context.Background(), f.userID, resp.Run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(got.Results) != 2 {
		t.Errorf("results = %d, want 2", len(got.Results))
	}

	if _, err := f.service.GetRun(context.Background(), kernel.NewUserID("intruder"), resp.Run.ID); err == nil {
		t.Error("expected access denied")
	}
}
