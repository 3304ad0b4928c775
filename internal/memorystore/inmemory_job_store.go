package memorystore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/statusflowhq/statusflow/backend/internal/checkjobs"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// InMemoryJobStore provides an in-memory implementation of the checkjobs
// Store interface. Jobs and results are cloned on the way in and out so
// callers never share mutable state with the store.
type InMemoryJobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*checkjobs.CheckJob
	results map[string][]urlchecker.StatusResult
}

// NewInMemoryJobStore creates a new instance of InMemoryJobStore.
func NewInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:    make(map[string]*checkjobs.CheckJob),
		results: make(map[string][]urlchecker.StatusResult),
	}
}

func cloneJob(job *checkjobs.CheckJob) *checkjobs.CheckJob {
	clone := *job
	if job.Summary != nil {
		summary := *job.Summary
		clone.Summary = &summary
	}
	return &clone
}

// CreateJob saves a new job to the store.
func (s *InMemoryJobStore) CreateJob(job *checkjobs.CheckJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.JobID]; exists {
		return fmt.Errorf("check job with ID %s already exists", job.JobID)
	}
	s.jobs[job.JobID] = cloneJob(job)
	s.results[job.JobID] = nil
	return nil
}

// GetJob retrieves a specific job by its ID.
func (s *InMemoryJobStore) GetJob(jobID string) (*checkjobs.CheckJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("check job %s: %w", jobID, checkjobs.ErrNotFound)
	}
	return cloneJob(job), nil
}

// UpdateJob updates an existing job.
func (s *InMemoryJobStore) UpdateJob(job *checkjobs.CheckJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.JobID]; !exists {
		return fmt.Errorf("check job %s: %w", job.JobID, checkjobs.ErrNotFound)
	}
	s.jobs[job.JobID] = cloneJob(job)
	return nil
}

// DeleteJob removes a job and its results from the store.
func (s *InMemoryJobStore) DeleteJob(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[jobID]; !exists {
		return fmt.Errorf("check job %s: %w", jobID, checkjobs.ErrNotFound)
	}
	delete(s.jobs, jobID)
	delete(s.results, jobID)
	return nil
}

// ListJobs retrieves jobs newest first, optionally narrowed to one status.
func (s *InMemoryJobStore) ListJobs(statusFilter string) ([]*checkjobs.CheckJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*checkjobs.CheckJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if statusFilter != "" && string(job.Status) != statusFilter {
			continue
		}
		jobs = append(jobs, cloneJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// AppendResults adds a finished batch to the job's result list.
func (s *InMemoryJobStore) AppendResults(jobID string, results []urlchecker.StatusResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[jobID]; !exists {
		return fmt.Errorf("check job %s: %w", jobID, checkjobs.ErrNotFound)
	}
	s.results[jobID] = append(s.results[jobID], results...)
	return nil
}

// GetResults retrieves a copy of all results accumulated so far.
func (s *InMemoryJobStore) GetResults(jobID string) ([]urlchecker.StatusResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, exists := s.jobs[jobID]; !exists {
		return nil, fmt.Errorf("check job %s: %w", jobID, checkjobs.ErrNotFound)
	}
	stored := s.results[jobID]
	out := make([]urlchecker.StatusResult, len(stored))
	copy(out, stored)
	return out, nil
}

// Ensure InMemoryJobStore implements the Store interface from the checkjobs package
var _ checkjobs.Store = (*InMemoryJobStore)(nil)
