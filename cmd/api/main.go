// Package main implements the buildq HTTP API server.
package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dsjohal14/buildq/internal/buildlog"
	httpapi "github.com/dsjohal14/buildq/internal/http"
	"github.com/dsjohal14/buildq/internal/libs/config"
	"github.com/dsjohal14/buildq/internal/libs/obs"
	"github.com/dsjohal14/buildq/internal/notify"
	"github.com/dsjohal14/buildq/internal/runner"
	"github.com/dsjohal14/buildq/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	// Load the build pipeline definition
	pipeline, err := runner.LoadPipeline(cfg.PipelinePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.PipelinePath).Msg("failed to load pipeline")
	}
	logger.Info().
		Str("pipeline", pipeline.Name).
		Int("steps", len(pipeline.Steps)).
		Msg("pipeline loaded")

	// Wire the scheduler: shell runner, build archive, log notifier
	shell := runner.NewShellRunner(pipeline, cfg.WorkDir, cfg.BuildTimeout, obs.Logger("runner"))
	builds := buildlog.NewStore(cfg.BuildsDir, cfg.BuildsToKeep)
	notifier := notify.New(obs.Logger("notify"), builds)
	sched := scheduler.New(cfg.MaxActiveJobs, shell, notifier, obs.Logger("scheduler"))

	// Create HTTP handler
	handler := httpapi.NewHandler(sched, builds, logger)

	// Setup router
	r := setupRouter(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info().
		Str("addr", addr).
		Int("max_active_jobs", cfg.MaxActiveJobs).
		Msg("starting API server")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func setupRouter(h *httpapi.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Post("/jobs", h.HandleSubmit)
	r.Get("/jobs", h.HandleListJobs)
	r.Delete("/jobs/{id}", h.HandleCancel)
	r.Get("/builds", h.HandleListBuilds)

	return r
}
