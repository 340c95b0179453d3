package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-calendar/internal/audit"
	"github.com/hackgods/appointment-calendar/internal/config"
	"github.com/hackgods/appointment-calendar/internal/db"
	"github.com/hackgods/appointment-calendar/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.PostgresDSN == "" {
		lg.Fatal("POSTGRES_DSN is required")
	}

	lg.Info("audit-pruner starting up",
		zap.String("env", cfg.Env),
		zap.Duration("retention", cfg.AuditRetention),
		zap.String("schedule", cfg.AuditPruneSchedule),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		lg.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	lg.Info("connected to Postgres")

	rec := audit.NewPgRecorder(pgPool)
	if err := rec.EnsureSchema(rootCtx); err != nil {
		lg.Fatal("audit schema error", zap.Error(err))
	}

	pruner := audit.NewPruner(rec, cfg.AuditRetention, cfg.AuditPruneSchedule, lg)

	// Run once at startup
	_, _ = pruner.RunOnce(rootCtx)

	pruner.Start(rootCtx)
	<-rootCtx.Done()

	lg.Info("shutdown signal received, stopping audit pruner")
	pruner.Stop()
}
