package checkjobs

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// JobStatus defines the possible statuses of a check job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusCancelled JobStatus = "cancelled"
	StatusFailed    JobStatus = "failed"
)

// CheckJob tracks one asynchronous URL checking run.
type CheckJob struct {
	JobID         string              `json:"jobId"`
	Name          string              `json:"name,omitempty"`
	Status        JobStatus           `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	TotalURLs     int                 `json:"totalUrls"`
	ProcessedURLs int                 `json:"processedUrls"`
	Progress      int                 `json:"progress"` // 0 to 100
	Error         string              `json:"error,omitempty"`
	Summary       *urlchecker.Summary `json:"summary,omitempty"`
}

// NewJob builds a pending job with a fresh ID.
func NewJob(name string, totalURLs int) *CheckJob {
	now := time.Now().UTC()
	return &CheckJob{
		JobID:     newJobID(),
		Name:      name,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		TotalURLs: totalURLs,
	}
}

func newJobID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("job-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
