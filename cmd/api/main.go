package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/safeweb/internal/application"
	appanalysis "github.com/bryanwahyu/safeweb/internal/application/analysis"
	appchecks "github.com/bryanwahyu/safeweb/internal/application/checks"
	apphistory "github.com/bryanwahyu/safeweb/internal/application/history"
	"github.com/bryanwahyu/safeweb/internal/config"
	"github.com/bryanwahyu/safeweb/internal/infra/ai"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
	"github.com/bryanwahyu/safeweb/internal/infra/httpserver"
	"github.com/bryanwahyu/safeweb/internal/infra/storage"
	"github.com/bryanwahyu/safeweb/internal/middleware"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger)
	ctx := context.Background()

	analyzer, err := ai.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("analyzer init error")
	}

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.History.Backend).Msg("history backend init error")
	}
	defer backend.Close()

	store := apphistory.NewStore(backend, application.SystemClock{}, log)
	items := store.Load(ctx)
	log.Info().Int("items", len(items)).Str("backend", backend.Name).Msg("history loaded")

	lang := prompt.ParseLang(cfg.AI.Language)
	svc := &appchecks.Service{
		Builder:        appanalysis.NewBuilder(lang),
		Gateway:        appanalysis.NewGateway(analyzer, log),
		History:        store,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		Log:            log.WithComponent("checks"),
	}

	handler := httpserver.NewRouter(httpserver.Options{
		Checks:         svc,
		History:        store,
		Lang:           lang,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIKey:         cfg.Server.APIKey,
		RateLimit:      cfg.RateLimit.RequestsPerSecond,
		RateBurst:      cfg.RateLimit.Burst,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		HealthCheckers: map[string]middleware.HealthChecker{
			"history_slot":        backend,
			"history_persistence": middleware.DegradedChecker{Degraded: store.Degraded},
		},
		Log: log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// no WriteTimeout: a response waits for the analysis however long it takes
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("provider", cfg.AI.Provider).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
