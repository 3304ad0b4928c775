// File: backend/internal/api/check_handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// --- Structs for Check Handlers ---

type CheckURLsRequest struct {
	URLs []string `json:"urls"`
}

type CheckURLsResponse struct {
	Results []urlchecker.StatusResult `json:"results"`
	Summary urlchecker.Summary        `json:"summary"`
}

// compactURLs trims whitespace and drops blank entries.
func compactURLs(raw []string) []string {
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

// CheckURLsHandler runs a synchronous batch check and responds with all
// results plus a summary once the whole run is done.
func (h *APIHandler) CheckURLsHandler(w http.ResponseWriter, r *http.Request) {
	var req CheckURLsRequest
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

	log.Printf("API Check Batch: Checking %d URLs.", len(urls))
	results, err := h.scheduler().Run(r.Context(), urls, nil)
	if err != nil {
		// The client went away mid-run; there is nobody left to answer.
		log.Printf("API Check Batch: Run aborted after %d of %d URLs: %v", len(results), len(urls), err)
		return
	}
	respondWithJSON(w, http.StatusOK, CheckURLsResponse{Results: results, Summary: urlchecker.Summarize(results)})
}

// CheckURLsStreamHandler streams check results over SSE as batches complete,
// followed by a summary event and a final done event.
func (h *APIHandler) CheckURLsStreamHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Printf("API Error: CheckURLsStreamHandler - Streaming unsupported.")
		respondWithError(w, http.StatusInternalServerError, "Streaming unsupported!")
		return
	}

	urls := compactURLs(r.URL.Query()["url"])
	if len(urls) == 0 {
		log.Printf("API Error: CheckURLsStreamHandler - No URLs provided.")
		respondWithError(w, http.StatusBadRequest, "No URLs provided")
		return
	}

	h.configMutex.RLock()
	maxURLs := h.Config.Checker.MaxURLsPerRequest
	h.configMutex.RUnlock()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventID := 0
	writeEvent := func(event string, payload interface{}) {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			log.Printf("API Error: CheckURLsStreamHandler - Marshal error: %v", err)
			return
		}
		eventID++
		fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", eventID, event, string(jsonData))
		flusher.Flush()
	}

	if maxURLs > 0 && len(urls) > maxURLs {
		log.Printf("API Error: CheckURLsStreamHandler - Too many URLs requested (%d) vs max allowed (%d).", len(urls), maxURLs)
		w.WriteHeader(http.StatusOK)
		writeEvent("error", map[string]string{"error": fmt.Sprintf("Too many URLs. Max %d per request.", maxURLs)})
		return
	}

	log.Printf("API Check Stream: Checking %d URLs.", len(urls))
	results, err := h.scheduler().Run(r.Context(), urls, func(p urlchecker.BatchProgress) {
		for _, result := range p.Batch {
			writeEvent("check_result", result)
		}
		writeEvent("check_progress", map[string]int{"done": p.Done, "total": p.Total, "percent": p.Percent})
	})
	if err != nil {
		log.Printf("API Check Stream: Client disconnected after %d of %d URLs: %v", len(results), len(urls), err)
		return
	}

	writeEvent("summary", urlchecker.Summarize(results))
	fmt.Fprintf(w, "event: done\ndata: {\"status\": \"complete\"}\n\n")
	flusher.Flush()
	log.Printf("API Check Stream: Completed %d URLs.", len(urls))
}

// DiagnoseDNSHandler resolves one host through the configured resolvers and
// reports what came back.
func (h *APIHandler) DiagnoseDNSHandler(w http.ResponseWriter, r *http.Request) {
	host := strings.TrimSpace(r.URL.Query().Get("host"))
	if host == "" {
		respondWithError(w, http.StatusBadRequest, "No host provided")
		return
	}

	h.configMutex.RLock()
	checker := h.DNS
	h.configMutex.RUnlock()
	if checker == nil {
		respondWithError(w, http.StatusServiceUnavailable, "DNS diagnosis is disabled")
		return
	}
	respondWithJSON(w, http.StatusOK, checker.Resolve(r.Context(), host))
}
