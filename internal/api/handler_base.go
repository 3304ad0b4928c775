// File: backend/internal/api/handler_base.go
package api

import (
	"sync"

	"github.com/statusflowhq/statusflow/backend/internal/checkjobs"
	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/dnschecker"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// APIHandler holds shared dependencies for API handlers, like configuration
// and the checker pipeline.
type APIHandler struct {
	Config        *config.AppConfig
	SchedulerOpts urlchecker.Options
	JobStore      checkjobs.Store
	Runner        *checkjobs.Runner
	DNS           *dnschecker.Checker

	// configMutex protects Config, scheduler and DNS during dynamic updates
	// via the config endpoints.
	configMutex sync.RWMutex
	sched       *urlchecker.Scheduler
}

// NewAPIHandler creates a new APIHandler with dependencies.
func NewAPIHandler(cfg *config.AppConfig, scheduler *urlchecker.Scheduler, opts urlchecker.Options, store checkjobs.Store, runner *checkjobs.Runner, dns *dnschecker.Checker) *APIHandler {
	return &APIHandler{
		Config:        cfg,
		SchedulerOpts: opts,
		JobStore:      store,
		Runner:        runner,
		DNS:           dns,
		sched:         scheduler,
	}
}

// scheduler returns the current scheduler; config updates swap it out.
func (h *APIHandler) scheduler() *urlchecker.Scheduler {
	h.configMutex.RLock()
	defer h.configMutex.RUnlock()
	return h.sched
}
