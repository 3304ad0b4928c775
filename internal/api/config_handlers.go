// File: backend/internal/api/config_handlers.go
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/dnschecker"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

// rebuildPipelineLocked rebuilds the prober and scheduler from the current
// config. Callers must hold configMutex for writing.
func (h *APIHandler) rebuildPipelineLocked() {
	prober := urlchecker.NewProber(h.Config.Checker, h.DNS, h.SchedulerOpts.Metrics)
	opts := urlchecker.Options{
		Limiter: urlchecker.NewLimiter(h.Config.Checker),
		Metrics: h.SchedulerOpts.Metrics,
	}
	h.SchedulerOpts = opts
	h.sched = urlchecker.NewScheduler(prober, opts)
	if h.Runner != nil {
		h.Runner.SetScheduler(h.sched)
	}
}

// saveConfig persists the config when it was loaded from a file. The running
// state is already updated, so a save failure is logged, not fatal.
func (h *APIHandler) saveConfig(cfg *config.AppConfig) {
	path := cfg.GetLoadedFromPath()
	if path == "" {
		return
	}
	if err := config.Save(cfg, path); err != nil {
		log.Printf("API Error: Failed to save updated config: %v", err)
	}
}

// GetCheckerConfigHandler retrieves the current checker configuration.
func (h *APIHandler) GetCheckerConfigHandler(w http.ResponseWriter, r *http.Request) {
	h.configMutex.RLock()
	checkerConfigJSON := config.ConvertCheckerConfigToJSON(h.Config.Checker)
	h.configMutex.RUnlock()
	respondWithJSON(w, http.StatusOK, checkerConfigJSON)
}

// UpdateCheckerConfigHandler replaces the checker configuration and rebuilds
// the probing pipeline so new settings apply to subsequent runs.
func (h *APIHandler) UpdateCheckerConfigHandler(w http.ResponseWriter, r *http.Request) {
	var reqJSON config.CheckerConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&reqJSON); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	updatedCheckerConfig := config.ConvertJSONToCheckerConfig(reqJSON)
	h.configMutex.Lock()
	h.Config.Checker = updatedCheckerConfig
	h.rebuildPipelineLocked()
	configToSave := *h.Config
	h.configMutex.Unlock()

	h.saveConfig(&configToSave)
	log.Printf("API: Updated checker configuration.")
	respondWithJSON(w, http.StatusOK, config.ConvertCheckerConfigToJSON(updatedCheckerConfig))
}

// GetDNSConfigHandler retrieves the DNS checker configuration.
func (h *APIHandler) GetDNSConfigHandler(w http.ResponseWriter, r *http.Request) {
	h.configMutex.RLock()
	dnsConfigJSON := config.ConvertDNSConfigToJSON(h.Config.DNS)
	h.configMutex.RUnlock()
	respondWithJSON(w, http.StatusOK, dnsConfigJSON)
}

// UpdateDNSConfigHandler replaces the DNS checker configuration and swaps
// the resolver used for unreachable-URL diagnosis.
func (h *APIHandler) UpdateDNSConfigHandler(w http.ResponseWriter, r *http.Request) {
	var reqJSON config.DNSCheckerConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&reqJSON); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	updatedDNSConfig := config.ConvertJSONToDNSConfig(reqJSON)
	h.configMutex.Lock()
	h.Config.DNS = updatedDNSConfig
	if updatedDNSConfig.Enabled {
		h.DNS = dnschecker.New(updatedDNSConfig)
	} else {
		h.DNS = nil
	}
	h.rebuildPipelineLocked()
	configToSave := *h.Config
	h.configMutex.Unlock()

	h.saveConfig(&configToSave)
	log.Printf("API: Updated DNS checker configuration.")
	respondWithJSON(w, http.StatusOK, config.ConvertDNSConfigToJSON(updatedDNSConfig))
}
