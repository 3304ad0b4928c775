package checkjobs

import (
	"errors"

	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// ErrNotFound reports a job ID unknown to the store. Implementations wrap it
// so callers can test with errors.Is.
var ErrNotFound = errors.New("check job not found")

// Store defines the interface for job and result storage. Implementations
// must be safe for concurrent use; the runner and the API handlers share one
// store.
type Store interface {
	// CreateJob saves a new job. The job ID must not already exist.
	CreateJob(job *CheckJob) error

	// GetJob retrieves a job by its ID.
	GetJob(jobID string) (*CheckJob, error)

	// UpdateJob replaces the stored job carrying the same ID.
	UpdateJob(job *CheckJob) error

	// DeleteJob removes a job and its results.
	DeleteJob(jobID string) error

	// ListJobs retrieves jobs, newest first. statusFilter narrows the list
	// to one status when non-empty.
	ListJobs(statusFilter string) ([]*CheckJob, error)

	// AppendResults adds a finished batch to the job's result list.
	AppendResults(jobID string, results []urlchecker.StatusResult) error

	// GetResults retrieves all results accumulated so far.
	GetResults(jobID string) ([]urlchecker.StatusResult, error)
}
