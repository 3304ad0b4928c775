// File: backend/cmd/apiserver/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statusflowhq/statusflow/backend/internal/api"
	"github.com/statusflowhq/statusflow/backend/internal/checkjobs"
	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/dnschecker"
	"github.com/statusflowhq/statusflow/backend/internal/memorystore"
	"github.com/statusflowhq/statusflow/backend/internal/monitoring"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"

	_ "net/http/pprof" // For profiling, if needed
)

const (
	defaultPort     = "8080"
	configFilePath  = "config.json"
	shutdownTimeout = 15 * time.Second
)

func main() {
	appConfig, err := config.Load(configFilePath)
	if err != nil {
		log.Printf("Main: Notice during config.Load: %v. Application will proceed with available/defaulted config.", err)
	}
	if appConfig == nil {
		log.Fatalf("CRITICAL: Configuration could not be loaded by config.Load, and no defaults were returned. Exiting.")
	}

	// --- API Key Configuration ---
	loadedAPIKeyFromFile := appConfig.Server.APIKey
	apiKeyFromEnv := os.Getenv("STATUSFLOW_API_KEY")
	if apiKeyFromEnv != "" {
		appConfig.Server.APIKey = apiKeyFromEnv
		log.Printf("API Key: Using value from STATUSFLOW_API_KEY environment variable (length: %d).", len(appConfig.Server.APIKey))
	} else if loadedAPIKeyFromFile == "" {
		log.Printf("API Key: Empty in config.json and no ENV override. Using system default placeholder.")
		appConfig.Server.APIKey = config.DefaultSystemAPIKeyPlaceholder
	}
	if appConfig.Server.APIKey == config.DefaultSystemAPIKeyPlaceholder {
		log.Println("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!")
		log.Println("!!! WARNING: API Key is the default system placeholder. THIS IS INSECURE.       !!!")
		log.Println("!!! Please set a unique 'server.apiKey' in 'config.json' or use               !!!")
		log.Println("!!! the 'STATUSFLOW_API_KEY' environment variable for production deployments.   !!!")
		log.Println("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!")
	}

	// --- Port Configuration ---
	if appConfig.Server.Port == "" {
		appConfig.Server.Port = defaultPort
	}
	if portEnv := os.Getenv("STATUSFLOW_PORT"); portEnv != "" {
		appConfig.Server.Port = portEnv
		log.Printf("Port: Overridden by STATUSFLOW_PORT environment variable: %s", portEnv)
	}

	// --- Initialize Checker Pipeline ---
	metrics := monitoring.New(prometheus.DefaultRegisterer)

	var dnsChecker *dnschecker.Checker
	if appConfig.DNS.Enabled {
		dnsChecker = dnschecker.New(appConfig.DNS)
		log.Printf("Main: DNS diagnosis enabled with resolvers %v.", appConfig.DNS.Resolvers)
	} else {
		log.Printf("Main: DNS diagnosis disabled.")
	}

	prober := urlchecker.NewProber(appConfig.Checker, dnsChecker, metrics)
	schedulerOpts := urlchecker.Options{
		Limiter: urlchecker.NewLimiter(appConfig.Checker),
		Metrics: metrics,
	}
	scheduler := urlchecker.NewScheduler(prober, schedulerOpts)

	jobStore := memorystore.NewInMemoryJobStore()
	runner := checkjobs.NewRunner(jobStore, scheduler)

	// --- Initialize Router and HTTP Server ---
	apiHandler := api.NewAPIHandler(appConfig, scheduler, schedulerOpts, jobStore, runner, dnsChecker)
	router := api.NewRouter(apiHandler, promhttp.Handler())
	serverAddr := ":" + appConfig.Server.Port
	httpServer := &http.Server{
		Handler: router,
		Addr:    serverAddr,
		// WriteTimeout stays 0: SSE streams and large batch runs outlive any
		// reasonable fixed write deadline.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	log.Printf("Starting StatusFlow API server on http://localhost%s", serverAddr)
	if appConfig.Server.APIKey != "" && appConfig.Server.APIKey != config.DefaultSystemAPIKeyPlaceholder {
		log.Printf("API Key configured (length: %d). Ensure this is adequately secured.", len(appConfig.Server.APIKey))
	} else {
		log.Printf("API Key: Using default placeholder (length: %d). THIS IS INSECURE.", len(config.DefaultSystemAPIKeyPlaceholder))
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server ListenAndServe failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Printf("Main: Received signal %s, shutting down.", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Main: HTTP server shutdown error: %v", err)
	}
	log.Printf("Main: Shutdown complete.")
}
