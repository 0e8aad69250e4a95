package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/optimistic"
	"github.com/sandeepkv93/bossmode/internal/storage"
)

// TaskInput is a new task as typed by the user. Empty strings mean "not
// set"; Priority defaults to medium.
type TaskInput struct {
	Title           string
	DueDate         string
	Priority        string
	Recurrence      string
	ReminderMinutes *int
	CategoryID      string
}

// TaskPatch changes the non-nil fields. An empty DueDate or CategoryID
// clears the value; ClearReminder drops a custom reminder offset.
type TaskPatch struct {
	Title           *string
	DueDate         *string
	Priority        *string
	Recurrence      *string
	ReminderMinutes *int
	ClearReminder   bool
	CategoryID      *string
}

func (p *Planner) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	task := model.Task{
		ID:        p.newID(),
		OwnerID:   p.ownerID,
		CreatedAt: p.Now().UTC(),
	}
	if err := p.applyInput(&task, in); err != nil {
		return model.Task{}, err
	}
	if task.ReminderMinutesBefore == nil && p.defaultReminder > 0 && calendar.HasTime(task.DueDate) {
		minutes := p.defaultReminder
		task.ReminderMinutesBefore = &minutes
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return optimistic.Run(ctx, optimistic.Mutation[model.Task]{
		Apply: func() {
			p.mu.Lock()
			p.tasks = append(p.tasks, task)
			p.mu.Unlock()
		},
		Revert: func() {
			p.mu.Lock()
			if i := p.taskIndex(task.ID); i >= 0 {
				p.tasks = slices.Delete(p.tasks, i, i+1)
			}
			p.mu.Unlock()
		},
		Persist: func(ctx context.Context) (model.Task, error) {
			if err := p.store.CreateTask(ctx, task); err != nil {
				p.logger.Warn("create task failed", zap.String("task_id", task.ID), zap.Error(err))
				return model.Task{}, err
			}
			return task, nil
		},
	})
}

func (p *Planner) applyInput(task *model.Task, in TaskInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	task.Title = title

	priority, err := model.ParsePriority(in.Priority)
	if err != nil {
		return err
	}
	task.Priority = priority

	recurrence, err := model.ParseRecurrence(in.Recurrence)
	if err != nil {
		return err
	}
	task.Recurrence = recurrence

	due, err := normalizeDue(in.DueDate)
	if err != nil {
		return err
	}
	task.DueDate = due

	if in.ReminderMinutes != nil {
		if *in.ReminderMinutes < 0 {
			return fmt.Errorf("%w: %d", model.ErrInvalidReminder, *in.ReminderMinutes)
		}
		minutes := *in.ReminderMinutes
		task.ReminderMinutesBefore = &minutes
	}

	if id := strings.TrimSpace(in.CategoryID); id != "" {
		if !p.hasCategory(id) {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
		}
		task.CategoryID = &id
	}
	return nil
}

// normalizeDue validates a due date at input time. Date-times are kept with
// their clock part.
func normalizeDue(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	if _, err := calendar.ParseCalendarDate(s, time.UTC); err != nil {
		return "", err
	}
	if calendar.HasTime(s) {
		at, err := calendar.ParseLocalDateTime(s, time.UTC)
		if err != nil {
			return "", err
		}
		return calendar.FormatLocalDateTime(at), nil
	}
	day, _ := calendar.DatePart(s)
	return day, nil
}

func (p *Planner) hasCategory(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.categoryIndex(id) >= 0
}

func (p *Planner) UpdateTask(ctx context.Context, id string, patch TaskPatch) (model.Task, error) {
	prev, ok := p.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next, err := p.patched(prev, patch)
	if err != nil {
		return model.Task{}, err
	}
	out, err := p.replaceTask(ctx, prev, next)
	if err != nil {
		return model.Task{}, err
	}
	if out.DueDate != prev.DueDate {
		p.reminders.Forget(id)
	}
	return out, nil
}

func (p *Planner) patched(prev model.Task, patch TaskPatch) (model.Task, error) {
	next := prev
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		next.Title = title
	}
	if patch.DueDate != nil {
		due, err := normalizeDue(*patch.DueDate)
		if err != nil {
			return model.Task{}, err
		}
		next.DueDate = due
	}
	if patch.Priority != nil {
		priority, err := model.ParsePriority(*patch.Priority)
		if err != nil {
			return model.Task{}, err
		}
		next.Priority = priority
	}
	if patch.Recurrence != nil {
		recurrence, err := model.ParseRecurrence(*patch.Recurrence)
		if err != nil {
			return model.Task{}, err
		}
		next.Recurrence = recurrence
		if next.IsRecurring() {
			next.Completed = false
			next.CompletedAt = nil
		}
	}
	if patch.ClearReminder {
		next.ReminderMinutesBefore = nil
	}
	if patch.ReminderMinutes != nil {
		if *patch.ReminderMinutes < 0 {
			return model.Task{}, fmt.Errorf("%w: %d", model.ErrInvalidReminder, *patch.ReminderMinutes)
		}
		minutes := *patch.ReminderMinutes
		next.ReminderMinutesBefore = &minutes
	}
	if patch.CategoryID != nil {
		id := strings.TrimSpace(*patch.CategoryID)
		if id == "" {
			next.CategoryID = nil
		} else {
			if !p.hasCategory(id) {
				return model.Task{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
			}
			next.CategoryID = &id
		}
	}
	if err := next.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return next, nil
}

// replaceTask swaps prev for next locally, persists next and restores prev
// exactly when the store fails.
func (p *Planner) replaceTask(ctx context.Context, prev, next model.Task) (model.Task, error) {
	set := func(t model.Task) {
		p.mu.Lock()
		if i := p.taskIndex(t.ID); i >= 0 {
			p.tasks[i] = t
		}
		p.mu.Unlock()
	}
	return optimistic.Value(ctx,
		func() model.Task { return prev },
		set,
		next,
		func(ctx context.Context) (model.Task, error) {
			if err := p.store.UpdateTask(ctx, next); err != nil {
				p.logger.Warn("update task failed", zap.String("task_id", next.ID), zap.Error(err))
				return model.Task{}, err
			}
			return next, nil
		})
}

// DeleteTask removes the task; its completion records go with it.
func (p *Planner) DeleteTask(ctx context.Context, id string) error {
	p.mu.RLock()
	idx := p.taskIndex(id)
	var prev model.Task
	if idx >= 0 {
		prev = p.tasks[idx]
	}
	p.mu.RUnlock()
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	_, err := optimistic.Run(ctx, optimistic.Mutation[struct{}]{
		Apply: func() {
			p.mu.Lock()
			if i := p.taskIndex(id); i >= 0 {
				p.tasks = slices.Delete(p.tasks, i, i+1)
			}
			p.mu.Unlock()
		},
		Revert: func() {
			p.mu.Lock()
			at := min(idx, len(p.tasks))
			p.tasks = slices.Insert(p.tasks, at, prev)
			p.mu.Unlock()
		},
		Persist: func(ctx context.Context) (struct{}, error) {
			err := p.store.DeleteTask(ctx, id)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				p.logger.Warn("delete task failed", zap.String("task_id", id), zap.Error(err))
				return struct{}{}, err
			}
			return struct{}{}, nil
		},
		Reconcile: func(struct{}) {
			p.ledger.Forget(id)
			p.reminders.Forget(id)
		},
	})
	return err
}

// checkOccurrence rejects instance dates the task's schedule never produces.
func (p *Planner) checkOccurrence(task model.Task, instanceDate string) error {
	if calendar.HasTime(instanceDate) {
		return fmt.Errorf("%w: instance date %q carries a time", calendar.ErrInvalidDate, instanceDate)
	}
	day, err := calendar.ParseCalendarDate(instanceDate, p.loc)
	if err != nil {
		return err
	}
	ok, err := model.OccursOn(task, day)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q does not occur on %s", ErrInvalidInput, task.Title, instanceDate)
	}
	return nil
}

// Toggle flips completion. Recurring tasks toggle the occurrence on
// instanceDate (today when empty) in the ledger; one-off tasks flip their own
// completed flag. It returns the new completed state.
func (p *Planner) Toggle(ctx context.Context, taskID, instanceDate string) (bool, error) {
	task, ok := p.Task(taskID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if task.IsRecurring() {
		if instanceDate == "" {
			instanceDate = p.Today()
		}
		// Existing records can always be cleared, even when a due date edit
		// moved the schedule away from them.
		if !p.ledger.IsCompleted(taskID, instanceDate) {
			if err := p.checkOccurrence(task, instanceDate); err != nil {
				return false, err
			}
		}
		return p.ledger.Toggle(ctx, taskID, instanceDate)
	}

	next := task
	next.Completed = !task.Completed
	if next.Completed {
		at := p.Now().UTC()
		next.CompletedAt = &at
	} else {
		next.CompletedAt = nil
	}
	out, err := p.replaceTask(ctx, task, next)
	if err != nil {
		return task.Completed, err
	}
	if out.Completed {
		p.reminders.Forget(taskID)
	}
	return out.Completed, nil
}
