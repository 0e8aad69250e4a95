package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/config"
	"github.com/sandeepkv93/bossmode/internal/logging"
	"github.com/sandeepkv93/bossmode/internal/notify"
	"github.com/sandeepkv93/bossmode/internal/reminder"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/service"
	"github.com/sandeepkv93/bossmode/internal/state"
	"github.com/sandeepkv93/bossmode/internal/storage"
)

// app holds the wired process: store, scheduler engine and planner.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	repo    *storage.SQLiteRepository
	engine  *scheduler.Engine
	planner *service.Planner
}

type appOptions struct {
	// LogToFile sends log output to cfg.LogFile instead of stderr.
	LogToFile bool
	Sender    notify.Sender
	// Permission overrides the desktop notifier's permission check.
	Permission notify.Permission
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Development: debug}
	if opts.LogToFile && cfg.LogFile != "" {
		logOpts.OutputPaths = []string{cfg.LogFile}
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateUp(repo.DB()); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()

	desktop := notify.NewDesktopSender(cfg.DesktopNotifications)
	var sender notify.Sender = desktop
	if opts.Sender != nil {
		sender = notify.Fanout{desktop, opts.Sender}
	}
	var permission notify.Permission = desktop
	if opts.Permission != nil {
		permission = opts.Permission
	}

	planner := service.New(repo, service.Options{
		OwnerID:                cfg.OwnerID,
		Location:               loc,
		Logger:                 logger,
		DefaultReminderMinutes: cfg.DefaultReminderMinutes,
		Sender:                 sender,
		Permission:             permission,
		Marker:                 state.NewFileMarker(cfg.StateFile),
		Reminders: reminder.NewWatcher(reminder.Options{
			Location: loc,
			Grace:    cfg.DueAlertGrace.Duration,
			Engine:   engine,
			Logger:   logger,
		}),
	})
	if err := planner.Load(ctx); err != nil {
		engine.Stop()
		_ = repo.Close()
		return nil, err
	}

	logger.Info("planner loaded",
		zap.String("db", cfg.DBPath),
		zap.String("owner_id", cfg.OwnerID),
		zap.String("timezone", loc.String()),
		zap.Int("tasks", len(planner.Tasks())))

	return &app{cfg: cfg, logger: logger, repo: repo, engine: engine, planner: planner}, nil
}

func (a *app) Close() {
	a.engine.Stop()
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
