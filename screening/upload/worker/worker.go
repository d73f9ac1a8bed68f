package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/screening/upload"
	"github.com/Abraxas-365/cvscreen/screening/upload/uploadsrv"
)

// ResumeWorker runs a pool of goroutines draining the processing queue.
type ResumeWorker struct {
	processor *uploadsrv.Processor
	queue     upload.JobQueue
	workers   int
}

func NewResumeWorker(processor *uploadsrv.Processor, queue upload.JobQueue, workers int) *ResumeWorker {
	return &ResumeWorker{
		processor: processor,
		queue:     queue,
		workers:   workers,
	}
}

func (w *ResumeWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d resume workers", w.workers)

	for i := 0; i < w.workers; i++ {
		go w.processTasks(ctx, i)
	}
}

func (w *ResumeWorker) processTasks(ctx context.Context, workerID int) {
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
			// Dequeue with 5 second timeout
			data, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				logx.Errorf("Worker %d dequeue error: %v", workerID, err)
				continue
			}

			// Timeout with no tasks available
			if len(data) == 0 {
				continue
			}

			var task upload.ProcessingTask
			if err := json.Unmarshal(data, &task); err != nil {
				logx.Errorf("Worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
				continue
			}

			logx.Infof("Worker %d processing resume: %s", workerID, task.ResumeID)
			if err := w.processor.Process(ctx, task); err != nil {
				logx.Errorf("Worker %d task failed: %v", workerID, err)
			}
		}
	}
}
