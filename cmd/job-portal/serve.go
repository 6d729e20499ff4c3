// cmd/job-portal/serve.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"job-portal/internal/api"
	"job-portal/internal/common/auth"
	"job-portal/internal/common/camunda"
	"job-portal/internal/common/config"
	"job-portal/internal/common/gemini"
	commonhttp "job-portal/internal/common/http"
	"job-portal/internal/common/observability"
	"job-portal/internal/dispatch"
	analyzeresume "job-portal/internal/workers/ai/analyze-resume"
	scoreresume "job-portal/internal/workers/ai/score-resume"
	applytojob "job-portal/internal/workers/application/apply-to-job"
	screenapplication "job-portal/internal/workers/application/screen-application"
	sendnotification "job-portal/internal/workers/application/send-notification"
	sweepstalescreenings "job-portal/internal/workers/application/sweep-stale-screenings"
	searchjobs "job-portal/internal/workers/data-access/search-jobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the screening backend and the stale screening sweeper",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, log, zapLog := a.cfg, a.log, a.zapLog
	zapLog.Info("Starting job portal...",
		zap.String("environment", cfg.App.Environment),
		zap.String("screeningBackend", cfg.Screening.Backend),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, prometheus.DefaultRegisterer, log)
	defer obs.Shutdown()

	in, err := a.loadIntegrations(ctx)
	if err != nil {
		return err
	}

	generator, err := gemini.NewGenerator(ctx, cfg.APIs.GenAI.APIKey, cfg.APIs.GenAI.Model)
	if err != nil {
		return fmt.Errorf("init gemini: %w", err)
	}
	zapLog.Info("Gemini generator ready", zap.String("model", generator.Model()))

	var objects commonhttp.ObjectOpener
	var resumes api.ResumeUploader
	if in.resumes != nil {
		objects = in.resumes
		resumes = in.resumes
	}
	fetcher := commonhttp.NewClient(config.GetDuration(cfg.APIs.GenAI.Timeout), int64(cfg.APIs.GenAI.MaxDocumentMiB)<<20, objects)

	scorer := scoreresume.NewScorer(scoreresume.LoadConfig(cfg), generator, fetcher, log)
	analyzer := analyzeresume.NewAnalyzer(analyzeresume.LoadConfig(cfg), generator, fetcher, log)
	notifier := a.newNotifier(in)
	dispatcher := screenapplication.NewDispatcher(screenapplication.LoadConfig(cfg), a.applications, scorer, notifier, obs, log)

	// --- Screening backend ---
	pollInterval := config.GetDuration(cfg.Screening.PollInterval)
	var (
		backend     dispatch.Backend
		zeebeClient *camunda.Client
		workers     []*camunda.CamundaWorker
	)

	switch cfg.Screening.Backend {
	case config.ScreeningBackendZeebe:
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			return err
		}
		defer zeebeClient.Close()
		zapLog.Info("Zeebe client connected successfully")

		if cfg.Camunda.ProcessFile != "" {
			if err := zeebeClient.DeployProcess(ctx, cfg.Camunda.ProcessFile); err != nil {
				return fmt.Errorf("deploy %s: %w", cfg.Camunda.ProcessFile, err)
			}
		}

		backend = dispatch.NewRelay(a.applications, zeebeClient, cfg.Camunda.ProcessID, cfg.Screening.Concurrency, pollInterval, log)

		jobTimeout := config.GetDuration(cfg.Camunda.Timeout)
		workers = append(workers, camunda.NewWorker(
			zeebeClient.GetClient(), screenapplication.TaskType, cfg.Screening.Concurrency, jobTimeout,
			screenapplication.NewHandler(dispatcher, log), log,
		))

		if wcfg := config.GetWorkerConfig(cfg, sendnotification.TaskType); wcfg.Enabled {
			workers = append(workers, camunda.NewWorker(
				zeebeClient.GetClient(), sendnotification.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout),
				sendnotification.NewHandler(notifier, log), log,
			))
		}

	default:
		backend = dispatch.NewPool(a.applications, dispatcher, cfg.Screening.Concurrency, pollInterval, log)
	}

	// --- HTTP API ---
	var esClient *elasticsearch.Client
	if a.es != nil {
		esClient = a.es.Client
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(api.Deps{
		Users:        a.users,
		Jobs:         a.jobs,
		Applications: a.applications,
		Search:       searchjobs.NewSearcher(searchjobs.LoadConfig(cfg), esClient, a.jobs, log),
		Intake:       applytojob.NewIntake(applytojob.LoadConfig(cfg), a.applications, a.jobs, backend, log),
		Analyzer:     analyzer,
		Resumes:      resumes,
		Tokens:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL()),
		Passwords:    auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Revocations:  auth.NewRevocationList(a.redis.Client),
	}, api.Config{
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, log)

	apiServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsServer := &http.Server{
		Addr:              cfg.Server.OpsAddr(),
		Handler:           a.opsHandler(zeebeClient),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// --- Start ---
	if err := backend.Start(ctx); err != nil {
		return fmt.Errorf("start screening backend: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	if config.IsWorkerEnabled(cfg, sweepstalescreenings.TaskType) {
		sweeper := sweepstalescreenings.NewSweeper(sweepstalescreenings.LoadConfig(cfg), a.applications, backend, notifier, log)
		go func() {
			defer close(sweepDone)
			sweeper.Run(sweepCtx)
		}()
	} else {
		zapLog.Info("Stale screening sweeper disabled")
		close(sweepDone)
	}

	serverErr := make(chan error, 2)
	for _, srv := range []*http.Server{apiServer, opsServer} {
		go func() {
			zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}()
	}

	// --- Graceful Shutdown ---
	var runErr error
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping...")
	case runErr = <-serverErr:
		zapLog.Error("HTTP server failed, stopping...", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	// no new applications past this point
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	stopSweep()
	<-sweepDone

	for _, w := range workers {
		w.Stop()
	}
	if err := backend.Stop(shutdownCtx); err != nil {
		zapLog.Error("Error stopping screening backend", zap.Error(err))
	}

	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down ops server", zap.Error(err))
	}

	zapLog.Info("Job portal stopped gracefully")
	return runErr
}

// opsHandler serves the health, readiness and metrics endpoints. broker is
// nil unless the zeebe backend is in use.
func (a *app) opsHandler(broker *camunda.Client) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		status := http.StatusOK
		if err := a.pg.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := a.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if broker != nil {
			checks["zeebe"] = "ok"
			if err := broker.HealthCheck(ctx); err != nil {
				checks["zeebe"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not ready"
		}
		writeStatus(w, status, map[string]interface{}{
			"status": state,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
