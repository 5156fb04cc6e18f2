package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/conference-assistant/internal/application"
	"github.com/example/conference-assistant/internal/catalog"
	"github.com/example/conference-assistant/internal/config"
	"github.com/example/conference-assistant/internal/conflict"
	"github.com/example/conference-assistant/internal/logging"
	"github.com/example/conference-assistant/internal/persistence"
	"github.com/example/conference-assistant/internal/persistence/memory"
	"github.com/example/conference-assistant/internal/persistence/sqlite"
	"github.com/example/conference-assistant/internal/reminder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.Level(cfg.LogLevel)}))
	ctx = logging.ContextWithLogger(ctx, logger)

	store := openStore(ctx, cfg, logger)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	transport := catalog.NewHTTPTransport(cfg.CatalogTimeout)
	importer := catalog.NewImporter(store, transport, cfg.CatalogURL, time.Now, logger)

	if result, err := importer.Initialize(ctx); err != nil {
		// The stored catalog, stale or empty, remains usable offline.
		logger.Warn("catalog synchronization failed", "error", err)
	} else {
		logger.Info("catalog ready", "sessions", result.Sessions, "imported", result.Imported, "version", result.Version)
	}

	scheduler := reminder.NewScheduler(
		&logNotifier{logger: logger},
		reminder.NewMetaSnapshotStore(store),
		time.Now,
		logger,
	)

	coordinator := application.NewCoordinator(store, conflict.NewDetector(store, store), scheduler, application.Options{
		UserID:                   cfg.UserID,
		BlockOnConflict:          cfg.BlockOnConflict,
		SecondaryReminderMinutes: cfg.SecondaryReminderMinutes,
		IDGenerator:              uuid.NewString,
		Now:                      time.Now,
	}, logger)

	if err := coordinator.Initialize(ctx); err != nil {
		logger.Error("failed to initialize application state", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Restore(ctx); err != nil {
		logger.Warn("failed to restore reminder tasks", "error", err)
	}

	if cfg.RefreshSchedule != "" {
		jobs := cron.New()
		_, err := jobs.AddFunc(cfg.RefreshSchedule, func() {
			refreshCtx, cancel := context.WithTimeout(logging.ContextWithLogger(context.Background(), logger), cfg.CatalogTimeout+time.Minute)
			defer cancel()

			result, err := importer.Load(refreshCtx)
			if err != nil {
				logger.Warn("periodic catalog refresh failed", "error", err)
				return
			}
			if err := coordinator.ReloadSessions(refreshCtx); err != nil {
				logger.Warn("failed to reload sessions after refresh", "error", err)
				return
			}
			logger.Info("catalog refreshed", "sessions", result.Sessions, "version", result.Version)
		})
		if err != nil {
			logger.Error("invalid refresh schedule", "schedule", cfg.RefreshSchedule, "error", err)
			os.Exit(1)
		}
		jobs.Start()
		defer jobs.Stop()
	}

	logger.Info("conference assistant ready",
		"user", cfg.UserID,
		"sessions", len(coordinator.Sessions()),
		"bookings", len(coordinator.Bookings()),
		"reminders", len(scheduler.ActiveTasks()),
	)

	<-ctx.Done()
	logger.Info("shutting down")
}

// openStore probes the data directory and opens the durable store, falling
// back to the in-memory store when local storage is unusable. Degraded mode
// keeps the assistant functional; nothing persists across restarts.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) persistence.Store {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		logger.Warn("cannot create data directory, using in-memory store", "dir", cfg.DataDir, "error", err)
		return memory.NewStore()
	}

	if err := sqlite.Probe(ctx, cfg.DataDir); err != nil {
		logger.Warn("storage probe failed, using in-memory store", "dir", cfg.DataDir, "error", err)
		return memory.NewStore()
	}

	store, err := sqlite.Open(cfg.SQLitePath())
	if err != nil {
		logger.Warn("failed to open database, using in-memory store", "error", err)
		return memory.NewStore()
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		logger.Warn("failed to apply migrations, using in-memory store", "error", err)
		return memory.NewStore()
	}
	return store
}

// logNotifier writes notifications to the structured log. Presentation shells
// replace it with a real delivery channel.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Notify(_ context.Context, notification reminder.Notification) error {
	n.logger.Info("reminder",
		"title", notification.Title,
		"body", notification.Body,
		"tag", notification.Tag,
		"sound", notification.SoundEnabled,
		"vibration", notification.VibrationEnabled,
	)
	return nil
}
