// Command lawnd runs the lawn tracker backend: local mirror, remote store
// client, calendar sync worker, archive sweeper and the JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/archive"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/calsync"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/config"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/httpapi"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/service"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/store"
)

func main() {
	configPath := flag.String("config", "lawnd.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("lawnd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := gorm.Open(sqlite.Open(cfg.MirrorPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return err
	}

	local := store.NewLocalStore(db)
	if err := local.Migrate(ctx); err != nil {
		return err
	}

	var remote *store.RemoteStore
	if cfg.Remote.URL != "" && cfg.Remote.APIKey != "" {
		remote = store.NewRemoteStore(cfg.Remote.URL, cfg.Remote.APIKey,
			store.WithListTimeout(cfg.ListTimeout()))
	}

	client := store.NewClient(ctx, remote, local, store.DefaultProbeConfig(),
		store.WithClientLogger(logger))
	logger.Info("job store ready", "mode", client.Mode())

	opts := []service.Option{service.WithLogger(logger)}

	var worker *calsync.Worker
	if cfg.Calendar.Enabled && cfg.Calendar.URL != "" {
		tasks := calsync.NewTaskStore(db)
		if err := tasks.Migrate(ctx); err != nil {
			return err
		}
		calendar := calsync.NewHTTPCalendar(cfg.Calendar.URL, cfg.Calendar.Token)
		worker = calsync.NewWorker(tasks, client, calendar,
			calsync.PollInterval(cfg.SyncPoll()))
		opts = append(opts, service.WithSyncTasks(tasks))
	}

	var sweeper *archive.Sweeper
	if cfg.Archive.Enabled {
		archiver := archive.NewArchiver(db)
		if err := archiver.Migrate(ctx); err != nil {
			return err
		}
		sweeper = archive.NewSweeper(archiver, cfg.Archive.SweepCron, cfg.Retention())
		opts = append(opts, service.WithArchiver(archiver))
	}

	svc := service.New(client, opts...)

	if worker != nil {
		worker.SetEmitter(svc.Emit)
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("sync worker stopped", "error", err)
			}
		}()
	}
	if sweeper != nil {
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("archive sweeper stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.Handler(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("lawnd listening", "addr", cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	return ctx.Err()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
