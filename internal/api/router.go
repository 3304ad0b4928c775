// File: backend/internal/api/router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires all routes. metricsHandler serves GET /metrics and may be
// nil to leave the endpoint unregistered.
func NewRouter(apiHandler *APIHandler, metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/ping", apiHandler.PingHandler).Methods(http.MethodGet, http.MethodOptions)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet, http.MethodOptions)
	}

	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(APIKeyAuthMiddleware(apiHandler.Config.Server.APIKey))

	// URL Checking
	apiV1.HandleFunc("/check", apiHandler.CheckURLsHandler).Methods(http.MethodPost, http.MethodOptions)
	apiV1.HandleFunc("/check/stream", apiHandler.CheckURLsStreamHandler).Methods(http.MethodGet, http.MethodOptions)

	// Check Jobs
	apiV1.HandleFunc("/check/jobs", apiHandler.CreateCheckJobHandler).Methods(http.MethodPost, http.MethodOptions)
	apiV1.HandleFunc("/check/jobs", apiHandler.ListCheckJobsHandler).Methods(http.MethodGet, http.MethodOptions)
	apiV1.HandleFunc("/check/jobs/{jobId}", apiHandler.GetCheckJobHandler).Methods(http.MethodGet, http.MethodOptions)
	apiV1.HandleFunc("/check/jobs/{jobId}", apiHandler.DeleteCheckJobHandler).Methods(http.MethodDelete, http.MethodOptions)
	apiV1.HandleFunc("/check/jobs/{jobId}/results", apiHandler.GetCheckJobResultsHandler).Methods(http.MethodGet, http.MethodOptions)
	apiV1.HandleFunc("/check/jobs/{jobId}/export", apiHandler.ExportCheckJobResultsHandler).Methods(http.MethodGet, http.MethodOptions)

	// DNS Diagnosis
	apiV1.HandleFunc("/diagnose/dns", apiHandler.DiagnoseDNSHandler).Methods(http.MethodGet, http.MethodOptions)

	// Configuration Management
	apiV1.HandleFunc("/config/checker", apiHandler.GetCheckerConfigHandler).Methods(http.MethodGet, http.MethodOptions)
	apiV1.HandleFunc("/config/checker", apiHandler.UpdateCheckerConfigHandler).Methods(http.MethodPut, http.MethodOptions)
	apiV1.HandleFunc("/config/dns", apiHandler.GetDNSConfigHandler).Methods(http.MethodGet, http.MethodOptions)
	apiV1.HandleFunc("/config/dns", apiHandler.UpdateDNSConfigHandler).Methods(http.MethodPut, http.MethodOptions)

	return router
}
