package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Jobs runs periodic work on a cron clock pinned to one location. Jobs
// receive the context passed to Start; it is cancelled by Stop.
type Jobs struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewJobs(loc *time.Location, logger *zap.Logger) *Jobs {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Jobs{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		ctx:    context.Background(),
	}
}

// ScheduleDaily runs job every day at "HH:MM" local time.
func (j *Jobs) ScheduleDaily(name, at string, job func(context.Context)) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, err
	}
	return j.cron.AddFunc(spec, j.wrap(name, job))
}

// ScheduleInterval runs job every interval, rounded down to whole seconds
// with a one second floor.
func (j *Jobs) ScheduleInterval(name string, interval time.Duration, job func(context.Context)) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return j.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), j.wrap(name, job))
}

func (j *Jobs) Entries() int {
	return len(j.cron.Entries())
}

func (j *Jobs) Start(ctx context.Context) {
	j.mu.Lock()
	j.ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()
	j.cron.Start()
}

// Stop halts the clock and waits for running jobs to return.
func (j *Jobs) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()
	<-j.cron.Stop().Done()
}

func (j *Jobs) wrap(name string, job func(context.Context)) func() {
	return func() {
		j.mu.Lock()
		ctx := j.ctx
		j.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				j.logger.Error("scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		started := time.Now()
		job(ctx)
		j.logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(started)))
	}
}

func buildDailySpec(at string) (string, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("scheduler: invalid time %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("scheduler: invalid hour in %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("scheduler: invalid minute in %q", at)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
