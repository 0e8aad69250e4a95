package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/missed"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/reminder"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
)

// CheckReminders raises alerts that became due and sends them to the
// desktop when notifications are allowed.
func (p *Planner) CheckReminders(ctx context.Context) []model.Alert {
	alerts := p.reminders.Check(p.Tasks(), p.Now())
	for _, a := range alerts {
		p.deliver(ctx, a)
	}
	return alerts
}

// Alerts lists alerts waiting for acknowledge or snooze.
func (p *Planner) Alerts() []model.Alert {
	return p.reminders.Active()
}

func (p *Planner) Acknowledge(taskID string) error {
	if _, ok := p.Task(taskID); !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return p.reminders.Acknowledge(taskID)
}

func (p *Planner) Snooze(taskID string, minutes int) (scheduler.Event, error) {
	if _, ok := p.Task(taskID); !ok {
		return scheduler.Event{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return p.reminders.Snooze(taskID, minutes, p.Now())
}

// Resurface handles a snooze delivered by the scheduler engine.
func (p *Planner) Resurface(ctx context.Context, ev scheduler.Event) (model.Alert, bool) {
	task, found := p.Task(ev.TaskID)
	alert, ok := p.reminders.Resurface(ev, task, found, p.Now())
	if !ok {
		p.logger.Debug("stale snooze dropped", zap.String("task_id", ev.TaskID))
		return model.Alert{}, false
	}
	p.deliver(ctx, alert)
	return alert, true
}

// RunSnoozes resurfaces snoozed alerts from events until ctx ends or the
// channel closes.
func (p *Planner) RunSnoozes(ctx context.Context, events <-chan scheduler.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.Resurface(ctx, ev)
		}
	}
}

func (p *Planner) deliver(ctx context.Context, a model.Alert) {
	if !p.permission.Granted(ctx) {
		return
	}
	if err := p.sender.Send(ctx, reminder.Message(a, p.loc)); err != nil {
		p.logger.Warn("send alert failed",
			zap.String("task_id", a.TaskID),
			zap.String("kind", string(a.Kind)),
			zap.Error(err))
	}
}

// Missed returns yesterday's unfinished recurring tasks.
func (p *Planner) Missed() []model.Task {
	tasks, err := missed.Detect(p.Tasks(), p.ledger.Index(), p.Today(), p.loc)
	if err != nil {
		p.logger.Error("missed detection skipped tasks", zap.Error(err))
	}
	return tasks
}

// CheckMissed sends the missed-task summary at most once per day. Without
// notification permission nothing is sent and the day stays unmarked, so a
// later run with permission still reports. ran is false when the check was
// skipped.
func (p *Planner) CheckMissed(ctx context.Context) (ran bool, err error) {
	if p.gate == nil {
		return false, errors.New("service: missed check has no marker")
	}
	if !p.permission.Granted(ctx) {
		p.logger.Debug("missed check skipped: notifications not permitted")
		return false, nil
	}
	today := p.Today()
	return p.gate.RunOnce(today, func() error {
		tasks := p.Missed()
		msg, ok := missed.Summary(tasks)
		if !ok {
			return nil
		}
		msg.At = p.Now()
		if err := p.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send missed summary: %w", err)
		}
		p.logger.Info("missed summary sent", zap.String("date", today), zap.Int("tasks", len(tasks)))
		return nil
	})
}
