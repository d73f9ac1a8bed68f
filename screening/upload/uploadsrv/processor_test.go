package uploadsrv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// In-memory doubles

type memBatchRepo struct {
	mu      sync.Mutex
	batches map[kernel.BatchID]*upload.UploadBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: map[kernel.BatchID]*upload.UploadBatch{}}
}

func (m *memBatchRepo) Create(ctx context.Context, b *upload.UploadBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.batches[b.ID] = &cp
	return nil
}

func (m *memBatchRepo) GetByID(ctx context.Context, id kernel.BatchID) (*upload.UploadBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, upload.ErrBatchNotFound()
	}
	cp := *b
	return &cp, nil
}

func (m *memBatchRepo) ListByUser(ctx context.Context, userID kernel.UserID, p kernel.PaginationOptions) (*kernel.Paginated[upload.UploadBatch], error) {
	return kernel.NewPaginated([]upload.UploadBatch{}, 1, 20, 0), nil
}

func (m *memBatchRepo) UpdateStatus(ctx context.Context, id kernel.BatchID, status upload.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return upload.ErrBatchNotFound()
	}
	b.Status = status
	return nil
}

func (m *memBatchRepo) Delete(ctx context.Context, id kernel.BatchID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.batches, id)
	return nil
}

func (m *memBatchRepo) status(id kernel.BatchID) upload.BatchStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[id].Status
}

type memResumeRepo struct {
	mu      sync.Mutex
	resumes map[kernel.ResumeID]*upload.Resume
}

func newMemResumeRepo() *memResumeRepo {
	return &memResumeRepo{resumes: map[kernel.ResumeID]*upload.Resume{}}
}

func (m *memResumeRepo) Create(ctx context.Context, r *upload.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.resumes[r.ID] = &cp
	return nil
}

func (m *memResumeRepo) GetByID(ctx context.Context, id kernel.ResumeID) (*upload.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, upload.ErrResumeNotFound()
	}
	cp := *r
	return &cp, nil
}

func (m *memResumeRepo) ListByBatch(ctx context.Context, batchID kernel.BatchID) ([]upload.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []upload.Resume
	for _, r := range m.resumes {
		if r.BatchID == batchID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memResumeRepo) MarkProcessed(ctx context.Context, id kernel.ResumeID, text string, embedding kernel.Embedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return upload.ErrResumeNotFound()
	}
	r.Status = upload.ResumeStatusProcessed
	r.ExtractedText = &text
	r.Embedding = embedding
	r.ErrorMessage = nil
	return nil
}

func (m *memResumeRepo) MarkFailed(ctx context.Context, id kernel.ResumeID, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return upload.ErrResumeNotFound()
	}
	r.Status = upload.ResumeStatusFailed
	r.ErrorMessage = &msg
	return nil
}

func (m *memResumeRepo) CountByBatchAndStatus(ctx context.Context, batchID kernel.BatchID, status upload.ResumeStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.resumes {
		if r.BatchID == batchID && r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memResumeRepo) CountsByBatch(ctx context.Context, batchID kernel.BatchID) (*upload.BatchCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := upload.BatchCounts{}
	for _, r := range m.resumes {
		if r.BatchID != batchID {
			continue
		}
		counts.Total++
		switch r.Status {
		case upload.ResumeStatusPending:
			counts.Pending++
		case upload.ResumeStatusProcessed:
			counts.Processed++
		case upload.ResumeStatusFailed:
			counts.Failed++
		}
	}
	return &counts, nil
}

func (m *memResumeRepo) get(id kernel.ResumeID) upload.Resume {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.resumes[id]
}

type memFileReader struct {
	files map[string][]byte
}

func (m *memFileReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return data, nil
}

func (m *memFileReader) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := m.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeExtractor struct {
	// text returned per filename; "" means extraction yields no text
	texts map[string]string
	err   error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[filename], nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// Fixtures

type pipelineFixture struct {
	batches   *memBatchRepo
	resumes   *memResumeRepo
	files     *memFileReader
	extractor *fakeExtractor
	embedder  *fakeEmbedder
	processor *Processor
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		batches:   newMemBatchRepo(),
		resumes:   newMemResumeRepo(),
		files:     &memFileReader{files: map[string][]byte{}},
		extractor: &fakeExtractor{texts: map[string]string{}},
		embedder:  &fakeEmbedder{},
	}
	f.processor = NewProcessor(f.batches, f.resumes, f.files, f.extractor, f.embedder)
	return f
}

func (f *pipelineFixture) addResume(batchID kernel.BatchID, filename, path, text string) kernel.ResumeID {
	id := kernel.NewResumeID(kernel.GenerateID())
	f.resumes.Create(context.Background(), &upload.Resume{
		ID:        id,
		BatchID:   batchID,
		Filename:  filename,
		FilePath:  path,
		FileSize:  100,
		Status:    upload.ResumeStatusPending,
		CreatedAt: time.Now(),
	})
	f.files.files[path] = []byte("file-bytes")
	f.extractor.texts[filename] = text
	return id
}

func (f *pipelineFixture) addBatch() kernel.BatchID {
	id := kernel.NewBatchID(kernel.GenerateID())
	f.batches.Create(context.Background(), &upload.UploadBatch{
		ID:     id,
		UserID: kernel.NewUserID("u1"),
		Status: upload.BatchStatusProcessing,
	})
	return id
}

// Tests

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture()
	batchID := f.addBatch()
	resumeID := f.addResume(batchID, "cv.pdf", "resumes/b/cv.pdf", "Go engineer with ten years experience")

	err := f.processor.Process(context.Background(), upload.ProcessingTask{ResumeID: resumeID, FilePath: "resumes/b/cv.pdf"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	r := f.resumes.get(resumeID)
	if r.Status != upload.ResumeStatusProcessed {
		t.Errorf("status = %s, want processed", r.Status)
	}
	if r.ExtractedText == nil || *r.ExtractedText == "" {
		t.Error("extracted text not stored")
	}
	if len(r.Embedding) == 0 {
		t.Error("embedding not stored")
	}
	if got := f.batches.status(batchID); got != upload.BatchStatusCompleted {
		t.Errorf("batch status = %s, want completed", got)
	}
}

func TestProcessIdempotent(t *testing.T) {
	f := newPipelineFixture()
	batchID := f.addBatch()
	resumeID := f.addResume(batchID, "cv.pdf", "p", "some text")

	task := upload.ProcessingTask{ResumeID: resumeID, FilePath: "p"}
	if err := f.processor.Process(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if err := f.processor.Process(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	if f.embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 (redelivery must be a no-op)", f.embedder.calls)
	}
}

func TestProcessEmptyTextFails(t *testing.T) {
	f := newPipelineFixture()
	batchID := f.addBatch()
	resumeID := f.addResume(batchID, "scan.pdf", "p", "   \n\t  ")

	if err := f.processor.Process(context.Background(), upload.ProcessingTask{ResumeID: resumeID, FilePath: "p"}); err != nil {
		t.Fatal(err)
	}

	r := f.resumes.get(resumeID)
	if r.Status != upload.ResumeStatusFailed {
		t.Fatalf("status = %s, want failed", r.Status)
	}
	if r.ErrorMessage == nil || *r.ErrorMessage != emptyTextMessage {
		t.Errorf("error message = %v, want %q", r.ErrorMessage, emptyTextMessage)
	}
	if f.embedder.calls != 0 {
		t.Errorf("embedder should not be called for empty text, got %d calls", f.embedder.calls)
	}
	if got := f.batches.status(batchID); got != upload.BatchStatusFailed {
		t.Errorf("batch status = %s, want failed", got)
	}
}

func TestProcessEmbeddingFailure(t *testing.T) {
	f := newPipelineFixture()
	f.embedder.err = errors.New("embedding service temporarily unavailable")
	batchID := f.addBatch()
	resumeID := f.addResume(batchID, "cv.pdf", "p", "real text")

	if err := f.processor.Process(context.Background(), upload.ProcessingTask{ResumeID: resumeID, FilePath: "p"}); err != nil {
		t.Fatal(err)
	}

	r := f.resumes.get(resumeID)
	if r.Status != upload.ResumeStatusFailed {
		t.Fatalf("status = %s, want failed", r.Status)
	}
	if r.ErrorMessage == nil || !strings.Contains(*r.ErrorMessage, "unavailable") {
		t.Errorf("error message = %v, want embedding failure reason", r.ErrorMessage)
	}
}

func TestProcessUnknownResumeDropsTask(t *testing.T) {
	f := newPipelineFixture()

	err := f.processor.Process(context.Background(), upload.ProcessingTask{
		ResumeID: kernel.NewResumeID("missing"),
		FilePath: "p",
	})
	if err != nil {
		t.Fatalf("unknown resume should be dropped silently, got %v", err)
	}
}

func TestProcessTruncatesStoredText(t *testing.T) {
	f := newPipelineFixture()
	batchID := f.addBatch()
	resumeID := f.addResume(batchID, "cv.pdf", "p", strings.Repeat("a", MaxStoredChars+1000))

	if err := f.processor.Process(context.Background(), upload.ProcessingTask{ResumeID: resumeID, FilePath: "p"}); err != nil {
		t.Fatal(err)
	}

	r := f.resumes.get(resumeID)
	if r.ExtractedText == nil {
		t.Fatal("no stored text")
	}
	if len(*r.ExtractedText) > MaxStoredChars {
		t.Errorf("stored text len = %d, want <= %d", len(*r.ExtractedText), MaxStoredChars)
	}
}

func TestProcessConcurrentBatchCompletion(t *testing.T) {
	f := newPipelineFixture()
	batchID := f.addBatch()

	var ids []kernel.ResumeID
	for i := 0; i < 8; i++ {
		ids = append(ids, f.addResume(batchID, "cv.pdf", "p", "text"))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id kernel.ResumeID) {
			defer wg.Done()
			f.processor.Process(context.Background(), upload.ProcessingTask{ResumeID: id, FilePath: "p"})
		}(id)
	}
	wg.Wait()

	if got := f.batches.status(batchID); got != upload.BatchStatusCompleted {
		t.Errorf("batch status = %s, want completed", got)
	}
	for _, id := range ids {
		if r := f.resumes.get(id); r.Status != upload.ResumeStatusProcessed {
			t.Errorf("resume %s status = %s, want processed", id, r.Status)
		}
	}
}
