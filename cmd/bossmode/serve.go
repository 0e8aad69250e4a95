package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/api"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reminder and missed-task jobs behind the JSON API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	jobs := scheduler.NewJobs(a.planner.Location(), a.logger)
	if _, err := jobs.ScheduleInterval("reminders", a.cfg.ReminderCheckInterval.Duration, func(ctx context.Context) {
		a.planner.CheckReminders(ctx)
	}); err != nil {
		return err
	}
	if _, err := jobs.ScheduleDaily("missed", a.cfg.MissedCheckTime, func(ctx context.Context) {
		if _, err := a.planner.CheckMissed(ctx); err != nil {
			a.logger.Error("missed check failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	jobs.Start(ctx)
	defer jobs.Stop()

	go a.planner.RunSnoozes(ctx, a.engine.C())

	// Catch up on anything that fired while the process was down.
	a.planner.CheckReminders(ctx)
	if _, err := a.planner.CheckMissed(ctx); err != nil {
		a.logger.Error("missed check failed", zap.Error(err))
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(a.planner, a.repo.DB(), Version, a.logger)
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           api.NewRouter(handler, a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
