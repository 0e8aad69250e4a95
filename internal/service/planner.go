// Package service holds the Planner, the single entry point the TUI, the
// HTTP API and the slash commands drive. It keeps an in-memory copy of the
// owner's tasks, categories and completion records, applies every change
// optimistically and reverts it when the store refuses.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/ledger"
	"github.com/sandeepkv93/bossmode/internal/missed"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/notify"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/reminder"
	"github.com/sandeepkv93/bossmode/internal/storage"
)

var (
	ErrTaskNotFound      = errors.New("service: task not found")
	ErrCategoryNotFound  = errors.New("service: category not found")
	ErrDuplicateCategory = errors.New("service: category name already exists")
	ErrInvalidInput      = errors.New("service: invalid input")
)

const DefaultCategoryColor = "#8b5cf6"

type Options struct {
	OwnerID  string
	Clock    calendar.Clock
	Location *time.Location
	NewID    func() string
	Logger   *zap.Logger

	// DefaultReminderMinutes is stored on new timed tasks that do not set
	// their own offset. Zero leaves the offset unset.
	DefaultReminderMinutes int

	Sender     notify.Sender
	Permission notify.Permission
	Marker     missed.Marker
	Reminders  *reminder.Watcher
}

type Planner struct {
	store      storage.Repository
	ledger     *ledger.Ledger
	reminders  *reminder.Watcher
	gate       *missed.Gate
	sender     notify.Sender
	permission notify.Permission

	ownerID         string
	clock           calendar.Clock
	loc             *time.Location
	newID           func() string
	logger          *zap.Logger
	defaultReminder int

	mu         sync.RWMutex
	tasks      []model.Task
	categories []model.Category
}

func New(store storage.Repository, opts Options) *Planner {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{Location: opts.Location}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Sender == nil {
		opts.Sender = notify.NoopSender{}
	}
	if opts.Permission == nil {
		opts.Permission = notify.NoopSender{}
	}
	if opts.Reminders == nil {
		opts.Reminders = reminder.NewWatcher(reminder.Options{Location: opts.Location, NewID: opts.NewID, Logger: opts.Logger})
	}
	p := &Planner{
		store:      store,
		reminders:  opts.Reminders,
		sender:     opts.Sender,
		permission: opts.Permission,
		ownerID:    opts.OwnerID,
		clock:      opts.Clock,
		loc:        opts.Location,
		newID:      opts.NewID,
		logger:     opts.Logger.Named("planner"),

		defaultReminder: opts.DefaultReminderMinutes,
	}
	p.ledger = ledger.New(store, ledger.Options{
		OwnerID: opts.OwnerID,
		Clock:   opts.Clock,
		NewID:   opts.NewID,
		Logger:  opts.Logger,
	})
	if opts.Marker != nil {
		p.gate = missed.NewGate(opts.Marker)
	}
	return p
}

// Load replaces local state with the owner's rows from the store.
func (p *Planner) Load(ctx context.Context) error {
	tasks, err := p.store.ListTasks(ctx, storage.TaskListFilter{OwnerID: p.ownerID})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	categories, err := p.store.ListCategories(ctx, storage.CategoryListFilter{OwnerID: p.ownerID})
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	records, err := p.store.ListCompletions(ctx, storage.CompletionListFilter{OwnerID: p.ownerID})
	if err != nil {
		return fmt.Errorf("load completions: %w", err)
	}

	p.mu.Lock()
	p.tasks = tasks
	p.categories = categories
	p.mu.Unlock()
	p.ledger.Replace(records)
	p.logger.Info("planner loaded",
		zap.Int("tasks", len(tasks)),
		zap.Int("categories", len(categories)),
		zap.Int("completions", len(records)))
	return nil
}

func (p *Planner) Now() time.Time {
	return p.clock.Now().In(p.loc)
}

func (p *Planner) Today() string {
	return calendar.Today(p.Now())
}

func (p *Planner) Location() *time.Location {
	return p.loc
}

func (p *Planner) Ledger() *ledger.Ledger {
	return p.ledger
}

func (p *Planner) Tasks() []model.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.tasks)
}

func (p *Planner) Task(id string) (model.Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := p.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return p.tasks[i], true
}

func (p *Planner) Categories() []model.Category {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.categories)
}

// Input snapshots the state projections read.
func (p *Planner) Input() projection.Input {
	return projection.Input{
		Tasks:  p.Tasks(),
		Done:   p.ledger.Index(),
		Today:  p.Today(),
		Loc:    p.loc,
		Report: p.reportExpandError,
	}
}

func (p *Planner) reportExpandError(t model.Task, err error) {
	if errors.Is(err, model.ErrAmbiguousRecurrenceAnchor) {
		p.logger.Error("recurring task has no anchor", zap.String("task_id", t.ID), zap.Error(err))
		return
	}
	p.logger.Debug("task skipped by projection", zap.String("task_id", t.ID), zap.Error(err))
}

// Day projects date (today when empty).
func (p *Planner) Day(date string, key projection.SortKey, order projection.Order) projection.DayView {
	in := p.Input()
	return projection.Day(in, p.dateOrToday(date, in.Today), key, order)
}

func (p *Planner) Week(date string) projection.WeekView {
	in := p.Input()
	return projection.Week(in, p.dateOrToday(date, in.Today))
}

func (p *Planner) Month(date string) projection.MonthView {
	in := p.Input()
	return projection.Month(in, p.dateOrToday(date, in.Today))
}

// Timeline buckets the tasks f keeps.
func (p *Planner) Timeline(f projection.Filter) []projection.TimelineGroup {
	in := p.Input()
	in.Tasks = f.Apply(in.Tasks)
	return projection.Timeline(in)
}

func (p *Planner) List(f projection.Filter) []model.Task {
	return projection.List(p.Input(), f)
}

func (p *Planner) History(q projection.HistoryQuery) []projection.HistoryGroup {
	return projection.History(p.Input(), q)
}

func (p *Planner) Progress() projection.Progress {
	return projection.TodayProgress(p.Input(), p.Now())
}

func (p *Planner) dateOrToday(date, today string) string {
	if date == "" {
		return today
	}
	return date
}

// taskIndex expects p.mu held.
func (p *Planner) taskIndex(id string) int {
	return slices.IndexFunc(p.tasks, func(t model.Task) bool { return t.ID == id })
}

// categoryIndex expects p.mu held.
func (p *Planner) categoryIndex(id string) int {
	return slices.IndexFunc(p.categories, func(c model.Category) bool { return c.ID == id })
}
