package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-calendar/internal/api"
	"github.com/hackgods/appointment-calendar/internal/appointment"
	"github.com/hackgods/appointment-calendar/internal/audit"
	"github.com/hackgods/appointment-calendar/internal/config"
	"github.com/hackgods/appointment-calendar/internal/db"
	"github.com/hackgods/appointment-calendar/internal/lock"
	"github.com/hackgods/appointment-calendar/internal/logger"
	redisclient "github.com/hackgods/appointment-calendar/internal/redis"
	"github.com/hackgods/appointment-calendar/internal/seed"
)

var version = "dev"

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

	lg.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
		zap.Int("working_hours_start", cfg.WorkingHoursStart),
		zap.Int("working_hours_end", cfg.WorkingHoursEnd),
		zap.Bool("working_hours_strict", cfg.WorkingHoursStrict),
		zap.String("lock_backend", cfg.LockBackend),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var deps []api.Dependency

	// Audit log: Postgres when configured, the logger otherwise.
	var recorder appointment.EventRecorder = audit.NewLogRecorder(lg)
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err != nil {
			cancelPg()
			lg.Fatal("postgres connection error", zap.Error(err))
		}
		pg := audit.NewPgRecorder(pgPool)
		err = pg.EnsureSchema(pgCtx)
		cancelPg()
		if err != nil {
			pgPool.Close()
			lg.Fatal("audit schema error", zap.Error(err))
		}
		defer pgPool.Close()
		lg.Info("connected to Postgres, audit log enabled")

		recorder = pg
		deps = append(deps, api.Dependency{Name: "postgres", Pinger: pg})
	}

	locker := lock.NewMemoryLocker()
	if cfg.LockBackend == config.LockBackendRedis {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			lg.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				lg.Warn("error closing redis", zap.Error(err))
			}
		}()
		lg.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

		locker = redisclient.NewRedisCalendarLocker(rdb, cfg.LockTTL)
		deps = append(deps, api.Dependency{
			Name:     "redis",
			Pinger:   api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			Critical: true,
		})
	}

	svc, err := appointment.NewService(appointment.NewStore(), locker, recorder, cfg, lg)
	if err != nil {
		lg.Fatal("service init error", zap.Error(err))
	}

	if err := seedCalendars(rootCtx, svc, cfg); err != nil {
		lg.Fatal("seed error", zap.Error(err))
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service:        svc,
			Logger:         lg,
			Dependencies:   deps,
			Location:       time.Local,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			WriteRateLimit: cfg.WriteRateLimit,
			Env:            cfg.Env,
			Version:        version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()

	lg.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

func seedCalendars(ctx context.Context, svc *appointment.Service, cfg config.Config) error {
	if cfg.SeedDemo {
		if err := svc.Seed(ctx, cfg.DefaultCalendar, seed.Demo(time.Local)); err != nil {
			return err
		}
	}

	if cfg.SeedFile == "" {
		return nil
	}
	calendars, err := seed.LoadFile(cfg.SeedFile, time.Local)
	if err != nil {
		return err
	}
	for _, id := range seed.CalendarIDs(calendars) {
		if err := svc.Seed(ctx, id, calendars[id]); err != nil {
			return err
		}
	}
	return nil
}
