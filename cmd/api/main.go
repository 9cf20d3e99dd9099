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

	"github.com/joho/godotenv"
	"safety-analytics-go/internal/config"
	"safety-analytics-go/internal/dataset"
	"safety-analytics-go/internal/httpapi"
	"safety-analytics-go/internal/logger"
	"safety-analytics-go/internal/pipeline"
	"safety-analytics-go/internal/prefs"
	"safety-analytics-go/internal/processor"
	"safety-analytics-go/internal/state"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("invalid configuration")
	}
	log := logger.NewWith(cfg.Environment, cfg.LogLevel, os.Stdout)
	log.WithField("service", "safety-analytics-go").Info("starting service")

	prefStore, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.PrefsDBPath).Fatal("failed to open preferences store")
	}
	defer prefStore.Close()

	store := state.New()
	timeout := time.Duration(cfg.FetchTimeoutSec) * time.Second
	fetcher := dataset.NewFetcher(timeout, cfg.MaxUploadBytes())
	fetcher.Log = log
	importer := processor.NewImporter(store, fetcher).WithLogger(log)

	if cfg.DataDir != "" {
		results, err := importer.ImportDir(cfg.DataDir)
		if err != nil {
			log.WithError(err).Warn("data dir seed skipped")
		}
		for _, res := range results {
			log.WithField("kind", res.Kind).WithField("rows", res.Rows).
				WithField("source", res.Source).Info("seeded from data dir")
		}
	}

	feeds, err := pipeline.New(cfg.Feeds, importer, timeout)
	if err != nil {
		log.WithError(err).Fatal("failed to schedule feeds")
	}
	feeds.WithLogger(log).Start()
	defer feeds.Stop()

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Store:          store,
			Importer:       importer,
			Prefs:          prefStore,
			Feeds:          feeds,
			BaselineHours:  cfg.BaselineHours,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Log:            log,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).WithField("feeds", len(cfg.Feeds)).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
