package commands

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/service"
)

// Planner is the subset of service.Planner the commands drive.
type Planner interface {
	CreateTask(ctx context.Context, in service.TaskInput) (model.Task, error)
	Task(id string) (model.Task, bool)
	Toggle(ctx context.Context, taskID, instanceDate string) (bool, error)
	Snooze(taskID string, minutes int) (scheduler.Event, error)
	Acknowledge(taskID string) error
	Day(date string, key projection.SortKey, order projection.Order) projection.DayView
	Week(date string) projection.WeekView
	Month(date string) projection.MonthView
	Timeline(f projection.Filter) []projection.TimelineGroup
}

// PlannerHandlers binds every command to p. ctx is used for the store calls
// the commands trigger.
func PlannerHandlers(ctx context.Context, p Planner) Handlers {
	return Handlers{
		Add: func(a AddArgs) (Result, error) {
			task, err := p.CreateTask(ctx, service.TaskInput{
				Title:           a.Title,
				DueDate:         a.Due,
				Priority:        a.Priority,
				Recurrence:      a.Every,
				ReminderMinutes: a.ReminderMinutes,
				CategoryID:      a.CategoryID,
			})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("Added %q (#%s)", task.Title, task.ID)}, nil
		},
		Done: func(a DoneArgs) (Result, error) {
			done, err := p.Toggle(ctx, a.TaskID, a.Date)
			if err != nil {
				return Result{}, err
			}
			title := a.TaskID
			if t, ok := p.Task(a.TaskID); ok {
				title = t.Title
			}
			state := "done"
			if !done {
				state = "not done"
			}
			msg := fmt.Sprintf("Marked %q %s", title, state)
			if a.Date != "" {
				msg += " for " + a.Date
			}
			return Result{Message: msg}, nil
		},
		Show: func(a ShowArgs) (Result, error) {
			switch a.View {
			case ViewWeek:
				return Result{Message: RenderWeek(p.Week(a.Date))}, nil
			case ViewMonth:
				return Result{Message: RenderMonth(p.Month(a.Date))}, nil
			case ViewTimeline:
				return Result{Message: RenderTimeline(p.Timeline(projection.Filter{}))}, nil
			default:
				return Result{Message: RenderDay(p.Day(a.Date, projection.SortByType, projection.Ascending))}, nil
			}
		},
		Snooze: func(a SnoozeArgs) (Result, error) {
			ev, err := p.Snooze(a.TaskID, a.Minutes)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("Snoozed #%s until %s", a.TaskID, ev.TriggerAt.Format("15:04"))}, nil
		},
		Ack: func(a AckArgs) (Result, error) {
			if err := p.Acknowledge(a.TaskID); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("Acknowledged #%s", a.TaskID)}, nil
		},
	}
}
