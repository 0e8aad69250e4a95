// Package reminder decides when timed one-off tasks should alert: once ahead
// of the due time and once at it. Snoozed alerts are parked on the scheduler
// engine and come back through Resurface.
package reminder

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
)

const DefaultDueGrace = time.Hour

var ErrNoActiveAlert = errors.New("reminder: no active alert for task")

// Scheduler parks snoozed alerts until they are due again.
type Scheduler interface {
	Schedule(ev scheduler.Event) error
	Cancel(taskID string) int
}

type Options struct {
	Location *time.Location
	Grace    time.Duration
	Engine   Scheduler
	NewID    func() string
	Logger   *zap.Logger
}

// notice records one fired alert so Check raises it only once.
type notice struct {
	taskID string
	due    time.Time
}

// Watcher remembers which alerts it already raised and which the user has
// dismissed. It is safe for concurrent use.
type Watcher struct {
	loc    *time.Location
	grace  time.Duration
	engine Scheduler
	newID  func() string
	logger *zap.Logger

	mu       sync.Mutex
	notified map[string]notice
	acked    map[string]time.Time
	active   map[string]model.Alert
}

func NewWatcher(opts Options) *Watcher {
	w := &Watcher{
		loc:      opts.Location,
		grace:    opts.Grace,
		engine:   opts.Engine,
		newID:    opts.NewID,
		logger:   opts.Logger,
		notified: map[string]notice{},
		acked:    map[string]time.Time{},
		active:   map[string]model.Alert{},
	}
	if w.loc == nil {
		w.loc = time.Local
	}
	if w.grace <= 0 {
		w.grace = DefaultDueGrace
	}
	if w.newID == nil {
		w.newID = uuid.NewString
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Check returns alerts that became due since the last call. Each (task, kind,
// due time) fires at most once; acknowledged tasks stay quiet until their due
// time changes. Active alerts for tasks that are gone or finished are
// dropped.
func (w *Watcher) Check(tasks []model.Task, now time.Time) []model.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()

	open := make(map[string]time.Time, len(tasks))
	var fired []model.Alert
	for _, t := range tasks {
		due, ok := w.dueAt(t)
		if !ok {
			continue
		}
		open[t.ID] = due
		if w.isAcked(t.ID, due) {
			continue
		}
		kind, ok := w.kindAt(t, due, now)
		if !ok {
			continue
		}
		alert := model.Alert{TaskID: t.ID, Title: t.Title, Kind: kind, DueAt: due, FiredAt: now}
		key := alert.Key()
		if _, seen := w.notified[key]; seen {
			continue
		}
		w.notified[key] = notice{taskID: t.ID, due: due}
		w.active[t.ID] = alert
		fired = append(fired, alert)
	}

	for key, n := range w.notified {
		if due, ok := open[n.taskID]; !ok || !due.Equal(n.due) {
			delete(w.notified, key)
		}
	}
	for id, alert := range w.active {
		due, ok := open[id]
		if !ok || !due.Equal(alert.DueAt) {
			delete(w.active, id)
		}
	}
	for id, due := range w.acked {
		if cur, ok := open[id]; !ok || !cur.Equal(due) {
			delete(w.acked, id)
		}
	}
	sortAlerts(fired)
	return fired
}

// Acknowledge dismisses the task's alert and any pending snooze for it.
func (w *Watcher) Acknowledge(taskID string) error {
	w.mu.Lock()
	alert, ok := w.active[taskID]
	if ok {
		w.acked[taskID] = alert.DueAt
		delete(w.active, taskID)
	}
	w.mu.Unlock()

	cancelled := 0
	if w.engine != nil {
		cancelled = w.engine.Cancel(taskID)
	}
	if !ok && cancelled == 0 {
		return fmt.Errorf("%w: %s", ErrNoActiveAlert, taskID)
	}
	return nil
}

// Snooze hides the task's active alert for minutes and schedules it to come
// back.
func (w *Watcher) Snooze(taskID string, minutes int, now time.Time) (scheduler.Event, error) {
	if err := model.ValidateSnooze(minutes); err != nil {
		return scheduler.Event{}, err
	}
	if w.engine == nil {
		return scheduler.Event{}, errors.New("reminder: snooze needs a scheduler")
	}

	w.mu.Lock()
	alert, ok := w.active[taskID]
	if ok {
		delete(w.active, taskID)
	}
	w.mu.Unlock()
	if !ok {
		return scheduler.Event{}, fmt.Errorf("%w: %s", ErrNoActiveAlert, taskID)
	}

	ev := scheduler.Event{
		ID:        w.newID(),
		TaskID:    taskID,
		Kind:      alert.Kind,
		DueAt:     alert.DueAt,
		TriggerAt: now.Add(time.Duration(minutes) * time.Minute),
	}
	if err := w.engine.Schedule(ev); err != nil {
		w.mu.Lock()
		w.active[taskID] = alert
		w.mu.Unlock()
		return scheduler.Event{}, fmt.Errorf("schedule snooze: %w", err)
	}
	w.logger.Debug("alert snoozed",
		zap.String("task_id", taskID),
		zap.Int("minutes", minutes),
		zap.Time("trigger_at", ev.TriggerAt))
	return ev, nil
}

// Resurface turns a delivered snooze back into an alert when the task is
// still open, still due at the same time and not acknowledged.
func (w *Watcher) Resurface(ev scheduler.Event, task model.Task, found bool, now time.Time) (model.Alert, bool) {
	if !found || task.ID != ev.TaskID {
		return model.Alert{}, false
	}
	due, ok := w.dueAt(task)
	if !ok || !due.Equal(ev.DueAt) {
		return model.Alert{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isAcked(task.ID, due) {
		return model.Alert{}, false
	}
	alert := model.Alert{
		TaskID:  task.ID,
		Title:   task.Title,
		Kind:    ev.Kind,
		DueAt:   due,
		FiredAt: now,
		Snoozed: true,
	}
	w.active[task.ID] = alert
	return alert, true
}

// Active lists surfaced alerts that were neither acknowledged nor snoozed,
// earliest due first.
func (w *Watcher) Active() []model.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Alert, 0, len(w.active))
	for _, a := range w.active {
		out = append(out, a)
	}
	sortAlerts(out)
	return out
}

// Forget clears everything known about a task, e.g. after it is deleted or
// completed.
func (w *Watcher) Forget(taskID string) {
	w.mu.Lock()
	delete(w.active, taskID)
	delete(w.acked, taskID)
	w.mu.Unlock()
	if w.engine != nil {
		w.engine.Cancel(taskID)
	}
}

func (w *Watcher) dueAt(t model.Task) (time.Time, bool) {
	if t.IsRecurring() || t.Completed {
		return time.Time{}, false
	}
	return t.DueTime(w.loc)
}

func (w *Watcher) isAcked(taskID string, due time.Time) bool {
	at, ok := w.acked[taskID]
	return ok && at.Equal(due)
}

func (w *Watcher) kindAt(t model.Task, due, now time.Time) (model.AlertKind, bool) {
	switch {
	case !now.Before(due) && now.Before(due.Add(w.grace)):
		return model.AlertDue, true
	case now.Before(due):
		offset := t.ReminderOffset()
		if offset > 0 && !now.Before(due.Add(-offset)) {
			return model.AlertReminder, true
		}
	}
	return "", false
}

func sortAlerts(alerts []model.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].DueAt.Equal(alerts[j].DueAt) {
			return alerts[i].DueAt.Before(alerts[j].DueAt)
		}
		return alerts[i].TaskID < alerts[j].TaskID
	})
}
