// Package worker runs queued processing jobs in the background.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"slidemark/internal/models"
	"slidemark/internal/storage"
)

// JobHandler processes a single job of a registered type
type JobHandler func(ctx context.Context, job *models.ProcessingJob) error

// 失敗したジョブを再キューする上限回数
const maxRetries = 3

const defaultPollInterval = time.Second

// Worker polls the job queue and dispatches jobs to registered handlers.
// Jobs are drained in priority order each tick until the queue is empty.
type Worker struct {
	jobs     *storage.JobRepository
	interval time.Duration

	mu       sync.RWMutex
	handlers map[string]JobHandler

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewWorker creates a worker over the given job repository
func NewWorker(jobs *storage.JobRepository) *Worker {
	return &Worker{
		jobs:     jobs,
		interval: defaultPollInterval,
		handlers: make(map[string]JobHandler),
		quit:     make(chan struct{}),
	}
}

// RegisterHandler maps a job type to its handler
func (w *Worker) RegisterHandler(jobType string, h JobHandler) {
	w.mu.Lock()
	w.handlers[jobType] = h
	w.mu.Unlock()
}

// SetInterval overrides the polling interval. Call before Start.
func (w *Worker) SetInterval(d time.Duration) {
	w.interval = d
}

// Start launches the polling loop in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
	log.Println("worker: started")
}

// Stop shuts the loop down and waits for an in-flight job to finish
func (w *Worker) Stop() {
	close(w.quit)
	w.wg.Wait()
	log.Println("worker: stopped")
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.quit:
			return
		case <-ticker.C:
			// キューが空になるまで連続して処理する
			for w.dispatchOne(ctx) {
				select {
				case <-ctx.Done():
					return
				case <-w.quit:
					return
				default:
				}
			}
		}
	}
}

// dispatchOne claims and runs the highest-priority queued job.
// Returns false when the queue is empty or the claim failed.
func (w *Worker) dispatchOne(ctx context.Context) bool {
	job, err := w.jobs.GetNextQueued(ctx)
	if err != nil {
		log.Printf("worker: queue poll failed: %v", err)
		return false
	}
	if job == nil {
		return false
	}

	w.mu.RLock()
	handler := w.handlers[job.Type]
	w.mu.RUnlock()

	if handler == nil {
		log.Printf("worker: job %s has unknown type %q", job.ID, job.Type)
		_ = w.jobs.Fail(ctx, job.ID, "no handler registered for job type: "+job.Type)
		return true
	}

	if err := w.jobs.Start(ctx, job.ID); err != nil {
		log.Printf("worker: could not start job %s: %v", job.ID, err)
		return false
	}

	log.Printf("worker: job %s started (%s, source %s)", job.ID, job.Type, job.SourceID)

	if err := handler(ctx, job); err != nil {
		w.retryOrFail(ctx, job, err)
		return true
	}

	if err := w.jobs.Complete(ctx, job.ID); err != nil {
		log.Printf("worker: could not complete job %s: %v", job.ID, err)
		return true
	}

	log.Printf("worker: job %s completed", job.ID)
	return true
}

// retryOrFail requeues the job until the retry ceiling, then marks it failed
func (w *Worker) retryOrFail(ctx context.Context, job *models.ProcessingJob, cause error) {
	if job.RetryCount >= maxRetries {
		log.Printf("worker: job %s failed permanently: %v", job.ID, cause)
		if err := w.jobs.Fail(ctx, job.ID, cause.Error()); err != nil {
			log.Printf("worker: could not mark job %s failed: %v", job.ID, err)
		}
		return
	}

	log.Printf("worker: job %s failed, requeueing (%d/%d): %v", job.ID, job.RetryCount+1, maxRetries, cause)
	if err := w.jobs.Retry(ctx, job.ID); err != nil {
		log.Printf("worker: could not requeue job %s: %v", job.ID, err)
	}
}

// SubmitJob queues a new job and returns it with its assigned ID
func (w *Worker) SubmitJob(ctx context.Context, jobType, sourceID string, priority int) (*models.ProcessingJob, error) {
	job := &models.ProcessingJob{
		Type:     jobType,
		SourceID: sourceID,
		Priority: priority,
	}
	if err := w.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
