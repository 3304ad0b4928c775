package checkjobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// Runner executes check jobs in the background, one goroutine per job. It
// keeps the store current after every batch so the API can report progress
// while the job is still running.
type Runner struct {
	store     Store
	scheduler *urlchecker.Scheduler

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewRunner(store Store, scheduler *urlchecker.Scheduler) *Runner {
	return &Runner{
		store:     store,
		scheduler: scheduler,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// SetScheduler swaps the scheduler used by jobs started from now on.
// Already running jobs keep the one they started with.
func (r *Runner) SetScheduler(s *urlchecker.Scheduler) {
	r.mu.Lock()
	r.scheduler = s
	r.mu.Unlock()
}

// Start marks the job running and launches it. The job must already be in
// the store.
func (r *Runner) Start(job *CheckJob, urls []string) {
	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancels[job.JobID] = cancel
	scheduler := r.scheduler
	r.mu.Unlock()

	job.Status = StatusRunning
	job.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateJob(job); err != nil {
		log.Printf("Jobs: failed to mark job %s running: %v", job.JobID, err)
	}

	go r.run(ctx, scheduler, job.JobID, urls)
}

func (r *Runner) run(ctx context.Context, scheduler *urlchecker.Scheduler, jobID string, urls []string) {
	defer r.dropCancel(jobID)

	results, runErr := scheduler.Run(ctx, urls, func(p urlchecker.BatchProgress) {
		if err := r.store.AppendResults(jobID, p.Batch); err != nil {
			log.Printf("Jobs: failed to append results for job %s: %v", jobID, err)
			return
		}
		job, err := r.store.GetJob(jobID)
		if err != nil {
			log.Printf("Jobs: progress update for job %s: %v", jobID, err)
			return
		}
		job.ProcessedURLs = p.Done
		job.Progress = p.Percent
		job.UpdatedAt = time.Now().UTC()
		if err := r.store.UpdateJob(job); err != nil {
			log.Printf("Jobs: progress update for job %s: %v", jobID, err)
		}
	})

	job, err := r.store.GetJob(jobID)
	if err != nil {
		log.Printf("Jobs: job %s vanished before completion: %v", jobID, err)
		return
	}
	job.UpdatedAt = time.Now().UTC()
	switch {
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		job.Status = StatusCancelled
		log.Printf("Jobs: job %s cancelled after %d of %d URLs", jobID, len(results), job.TotalURLs)
	case runErr != nil:
		job.Status = StatusFailed
		job.Error = runErr.Error()
		log.Printf("Jobs: job %s failed: %v", jobID, runErr)
	default:
		job.Status = StatusCompleted
		job.ProcessedURLs = len(results)
		job.Progress = 100
		summary := urlchecker.Summarize(results)
		job.Summary = &summary
		log.Printf("Jobs: job %s completed, %d URLs checked", jobID, len(results))
	}
	if err := r.store.UpdateJob(job); err != nil {
		log.Printf("Jobs: failed to finalize job %s: %v", jobID, err)
	}
}

// Cancel stops a running job. It reports whether a cancellable job with that
// ID was found; the job's final status is written by the run goroutine.
func (r *Runner) Cancel(jobID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func (r *Runner) dropCancel(jobID string) {
	r.mu.Lock()
	if cancel, ok := r.cancels[jobID]; ok {
		cancel()
		delete(r.cancels, jobID)
	}
	r.mu.Unlock()
}
