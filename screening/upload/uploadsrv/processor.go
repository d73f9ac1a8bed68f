package uploadsrv

import (
	"context"

	"github.com/Abraxas-365/cvscreen/internal/extract"
	"github.com/Abraxas-365/cvscreen/pkg/fsx"
	"github.com/Abraxas-365/cvscreen/pkg/kernel"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/pkg/textx"
	"github.com/Abraxas-365/cvscreen/screening/upload"
)

// MaxStoredChars caps the extracted text persisted per resume.
const MaxStoredChars = 50_000

const emptyTextMessage = "Empty or unreadable text"

// TextEmbedder is the slice of the embeddings provider the pipeline needs.
// Workers use the blocking convention: retries ride out provider outages
// inside the call, and concurrency is already bounded by the pool size.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// TextExtractor turns file bytes into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// Processor runs one resume through extract -> normalize -> embed -> store.
// Failures are recorded on the resume row, not returned: a poisoned file
// must not make the queue redeliver it forever.
type Processor struct {
	batchRepo  upload.BatchRepository
	resumeRepo upload.ResumeRepository
	fileReader fsx.FileReader
	extractor  TextExtractor
	embedder   TextEmbedder
}

func NewProcessor(
	batchRepo upload.BatchRepository,
	resumeRepo upload.ResumeRepository,
	fileReader fsx.FileReader,
	extractor TextExtractor,
	embedder TextEmbedder,
) *Processor {
	return &Processor{
		batchRepo:  batchRepo,
		resumeRepo: resumeRepo,
		fileReader: fileReader,
		extractor:  extractor,
		embedder:   embedder,
	}
}

var _ TextExtractor = (*extract.Extractor)(nil)

// Process handles a single queued task. Safe to call more than once for
// the same resume: already-processed rows are left untouched.
func (p *Processor) Process(ctx context.Context, task upload.ProcessingTask) error {
	resume, err := p.resumeRepo.GetByID(ctx, task.ResumeID)
	if err != nil {
		// The row may have been deleted between dispatch and delivery.
		logx.Warnf("Resume %s not found, dropping task", task.ResumeID)
		return nil
	}

	if resume.IsProcessed() {
		logx.Infof("Resume %s already processed, skipping", resume.ID)
		return nil
	}

	// Whatever happens to this resume, the batch status gets re-evaluated.
	defer p.maybeCompleteBatch(ctx, resume.BatchID)

	data, err := p.fileReader.ReadFile(ctx, resume.FilePath)
	if err != nil {
		return p.fail(ctx, resume.ID, "Failed to read stored file: "+err.Error())
	}

	text, err := p.extractor.ExtractText(ctx, resume.Filename, data)
	if err != nil {
		return p.fail(ctx, resume.ID, err.Error())
	}

	normalized := textx.Normalize(text, textx.DefaultMaxChars)
	if normalized == "" {
		return p.fail(ctx, resume.ID, emptyTextMessage)
	}

	embedding, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return p.fail(ctx, resume.ID, err.Error())
	}

	stored := normalized
	if len(stored) > MaxStoredChars {
		stored = stored[:MaxStoredChars]
	}

	if err := p.resumeRepo.MarkProcessed(ctx, resume.ID, stored, kernel.Embedding(embedding)); err != nil {
		logx.Errorf("Failed to mark resume %s processed: %v", resume.ID, err)
		return err
	}

	logx.Infof("Resume %s processed", resume.ID)
	return nil
}

func (p *Processor) fail(ctx context.Context, id kernel.ResumeID, message string) error {
	logx.Warnf("Resume %s failed: %s", id, message)
	if err := p.resumeRepo.MarkFailed(ctx, id, message); err != nil {
		logx.Errorf("Failed to mark resume %s failed: %v", id, err)
		return err
	}
	return nil
}

// maybeCompleteBatch re-queries the batch's pending count instead of
// trusting any in-memory tally, so concurrent workers finishing the last
// two resumes converge on the same terminal status.
func (p *Processor) maybeCompleteBatch(ctx context.Context, batchID kernel.BatchID) {
	pending, err := p.resumeRepo.CountByBatchAndStatus(ctx, batchID, upload.ResumeStatusPending)
	if err != nil {
		logx.Errorf("Failed to count pending resumes for batch %s: %v", batchID, err)
		return
	}
	if pending > 0 {
		return
	}

	failed, err := p.resumeRepo.CountByBatchAndStatus(ctx, batchID, upload.ResumeStatusFailed)
	if err != nil {
		logx.Errorf("Failed to count failed resumes for batch %s: %v", batchID, err)
		return
	}

	status := upload.BatchStatusCompleted
	if failed > 0 {
		status = upload.BatchStatusFailed
	}

	if err := p.batchRepo.UpdateStatus(ctx, batchID, status); err != nil {
		logx.Errorf("Failed to update batch %s status: %v", batchID, err)
		return
	}

	logx.Infof("Batch %s finished with status %s", batchID, status)
}

// InlineDispatcher processes resumes synchronously in the request
// goroutine. Development setups without Redis and workers use it.
type InlineDispatcher struct {
	processor *Processor
}

func NewInlineDispatcher(processor *Processor) upload.Dispatcher {
	return &InlineDispatcher{processor: processor}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, task upload.ProcessingTask) error {
	return d.processor.Process(ctx, task)
}
