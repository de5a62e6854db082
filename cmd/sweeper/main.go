package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ivanmatek/ember/internal/config"
	"github.com/ivanmatek/ember/internal/infra/logger"
	"github.com/ivanmatek/ember/internal/jobs/sweeper"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
)

// Standalone expiry sweeper for deployments that keep the background loop
// out of the api process. Safe to run alongside the api: sweeps are
// idempotent.
func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("init postgres", zap.Error(err))
	}
	defer pool.Close()

	job := sweeper.New(pgrepo.NewMatchRepo(pool), pgrepo.NewProfileRepo(pool), cfg.Sweep.Interval, log)

	log.Info("expiry sweeper started", zap.Duration("interval", cfg.Sweep.Interval))
	if err := job.Run(ctx); err != nil {
		log.Fatal("expiry sweeper failed", zap.Error(err))
	}
}
