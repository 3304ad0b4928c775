// File: backend/internal/api/job_handlers.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/statusflowhq/statusflow/backend/internal/checkjobs"
	"github.com/statusflowhq/statusflow/backend/internal/exporter"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// --- DTOs ---

// CreateCheckJobRequest defines the expected payload for creating a check job.
type CreateCheckJobRequest struct {
	Name string   `json:"name,omitempty"`
	URLs []string `json:"urls"`
}

type CheckJobResultsResponse struct {
	JobID   string                    `json:"jobId"`
	Total   int                       `json:"total"`
	Results []urlchecker.StatusResult `json:"results"`
}

// --- Handlers ---

// CreateCheckJobHandler creates a job and starts checking in the background.
// POST /api/v1/check/jobs
func (h *APIHandler) CreateCheckJobHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	urls := compactURLs(req.URLs)
	if len(urls) == 0 {
		respondWithError(w, http.StatusBadRequest, "No URLs provided")
		return
	}

	h.configMutex.RLock()
	maxURLs := h.Config.Checker.MaxURLsPerRequest
	h.configMutex.RUnlock()
	if maxURLs > 0 && len(urls) > maxURLs {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Too many URLs. Max %d per request.", maxURLs))
		return
	}

	job := checkjobs.NewJob(req.Name, len(urls))
	if err := h.JobStore.CreateJob(job); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create job: "+err.Error())
		return
	}
	h.Runner.Start(job, urls)

	log.Printf("API Jobs: Created job %s with %d URLs.", job.JobID, len(urls))
	respondWithJSON(w, http.StatusAccepted, job)
}

// ListCheckJobsHandler lists jobs newest first.
// GET /api/v1/check/jobs
func (h *APIHandler) ListCheckJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.JobStore.ListJobs(r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list jobs: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, jobs)
}

// GetCheckJobHandler fetches a specific check job.
// GET /api/v1/check/jobs/{jobId}
func (h *APIHandler) GetCheckJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	job, err := h.JobStore.GetJob(jobID)
	if err != nil {
		if errors.Is(err, checkjobs.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Check job with ID %s not found", jobID))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch job: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

// GetCheckJobResultsHandler fetches the results accumulated so far,
// optionally narrowed to one status group.
// GET /api/v1/check/jobs/{jobId}/results
func (h *APIHandler) GetCheckJobResultsHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	group := r.URL.Query().Get("group")
	if group != "" && !validGroup(group) {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid group: '%s'", group))
		return
	}

	results, err := h.JobStore.GetResults(jobID)
	if err != nil {
		if errors.Is(err, checkjobs.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Check job with ID %s not found", jobID))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch results: "+err.Error())
		return
	}

	if group != "" {
		filtered := make([]urlchecker.StatusResult, 0, len(results))
		for _, res := range results {
			if string(urlchecker.Classify(res)) == group {
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}
	respondWithJSON(w, http.StatusOK, CheckJobResultsResponse{JobID: jobID, Total: len(results), Results: results})
}

// DeleteCheckJobHandler cancels a running job or deletes a finished one.
// DELETE /api/v1/check/jobs/{jobId}
func (h *APIHandler) DeleteCheckJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	job, err := h.JobStore.GetJob(jobID)
	if err != nil {
		if errors.Is(err, checkjobs.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Check job with ID %s not found", jobID))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch job: "+err.Error())
		return
	}

	if job.Status == checkjobs.StatusRunning || job.Status == checkjobs.StatusPending {
		if h.Runner.Cancel(jobID) {
			log.Printf("API Jobs: Cancelling job %s.", jobID)
			respondWithJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID, "status": "cancelling"})
			return
		}
	}

	if err := h.JobStore.DeleteJob(jobID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete job: "+err.Error())
		return
	}
	log.Printf("API Jobs: Deleted job %s.", jobID)
	respondWithJSON(w, http.StatusOK, map[string]string{"jobId": jobID, "status": "deleted"})
}

// ExportCheckJobResultsHandler downloads a job's results as CSV or JSON.
// GET /api/v1/check/jobs/{jobId}/export
func (h *APIHandler) ExportCheckJobResultsHandler(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	results, err := h.JobStore.GetResults(jobID)
	if err != nil {
		if errors.Is(err, checkjobs.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Check job with ID %s not found", jobID))
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch results: "+err.Error())
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statusflow-%s.csv", jobID))
		if err := exporter.WriteCSV(w, results); err != nil {
			log.Printf("API Jobs: CSV export for job %s failed mid-write: %v", jobID, err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statusflow-%s.json", jobID))
		if err := exporter.WriteJSON(w, results); err != nil {
			log.Printf("API Jobs: JSON export for job %s failed mid-write: %v", jobID, err)
		}
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format: '%s'", format))
	}
}

func validGroup(group string) bool {
	switch urlchecker.StatusGroup(group) {
	case urlchecker.GroupLive, urlchecker.GroupRedirect, urlchecker.GroupClientError, urlchecker.GroupServerError:
		return true
	}
	return false
}
