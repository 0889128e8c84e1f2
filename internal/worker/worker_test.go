package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"slidemark/internal/models"
	"slidemark/internal/storage"
)

func openTestRepo(t *testing.T) *storage.JobRepository {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewJobRepository(db)
}

func waitForStatus(t *testing.T, repo *storage.JobRepository, id, status string) *models.ProcessingJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job != nil && job.Status == status {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %q in time", id, status)
	return nil
}

func TestWorker_ProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := openTestRepo(t)
	w := NewWorker(repo)
	w.SetInterval(20 * time.Millisecond)

	processed := make(chan string, 1)
	w.RegisterHandler(models.JobTypeDetect, func(ctx context.Context, job *models.ProcessingJob) error {
		processed <- job.ID
		return nil
	})

	job, err := w.SubmitJob(ctx, models.JobTypeDetect, "source-1", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	w.Start(ctx)
	defer w.Stop()

	select {
	case id := <-processed:
		if id != job.ID {
			t.Errorf("handler got job %s, want %s", id, job.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	done := waitForStatus(t, repo, job.ID, models.JobStatusCompleted)
	if done.Progress != 100 {
		t.Errorf("progress = %d, want 100", done.Progress)
	}
}

func TestWorker_RetriesThenFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := openTestRepo(t)
	w := NewWorker(repo)
	w.SetInterval(20 * time.Millisecond)

	var attempts atomic.Int32
	w.RegisterHandler(models.JobTypeDetect, func(ctx context.Context, job *models.ProcessingJob) error {
		attempts.Add(1)
		return errors.New("model not found")
	})

	job, err := w.SubmitJob(ctx, models.JobTypeDetect, "source-1", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	w.Start(ctx)
	defer w.Stop()

	failed := waitForStatus(t, repo, job.ID, models.JobStatusFailed)
	if failed.Error != "model not found" {
		t.Errorf("error = %q, want %q", failed.Error, "model not found")
	}
	if failed.RetryCount != 3 {
		t.Errorf("retry count = %d, want 3", failed.RetryCount)
	}
	if got := attempts.Load(); got != 4 {
		t.Errorf("handler called %d times, want 4 (1 initial + 3 retries)", got)
	}
}

func TestWorker_NoHandlerFailsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := openTestRepo(t)
	w := NewWorker(repo)
	w.SetInterval(20 * time.Millisecond)

	job, err := w.SubmitJob(ctx, "unknown", "source-1", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	w.Start(ctx)
	defer w.Stop()

	waitForStatus(t, repo, job.ID, models.JobStatusFailed)
}
