// Package ledger tracks which occurrences of recurring tasks are done. A task
// is completed per calendar date by the presence of a record, never by a flag
// on the task itself.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/optimistic"
	"github.com/sandeepkv93/bossmode/internal/storage"
)

// Store persists completion records. CreateCompletion returns
// model.ErrDuplicateCompletion when the (task, date) pair already exists and
// DeleteCompletion returns storage.ErrNotFound for unknown ids.
type Store interface {
	CreateCompletion(ctx context.Context, in model.CompletionRecord) (model.CompletionRecord, error)
	DeleteCompletion(ctx context.Context, id string) error
	FindCompletion(ctx context.Context, taskID, instanceDate string) (model.CompletionRecord, error)
}

type key struct {
	taskID string
	date   string
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type Options struct {
	OwnerID string
	Clock   calendar.Clock
	NewID   func() string
	Logger  *zap.Logger
}

// Ledger holds the local copy of completion records and keeps it in step with
// the store. Toggles on the same (task, date) are serialized; toggles on
// different occurrences proceed independently.
type Ledger struct {
	store   Store
	ownerID string
	clock   calendar.Clock
	newID   func() string
	logger  *zap.Logger

	mu       sync.Mutex
	records  map[key]model.CompletionRecord
	inflight map[key]*keyLock
}

func New(store Store, opts Options) *Ledger {
	if opts.Clock == nil {
		opts.Clock = calendar.SystemClock{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Ledger{
		store:    store,
		ownerID:  opts.OwnerID,
		clock:    opts.Clock,
		newID:    opts.NewID,
		logger:   opts.Logger.Named("ledger"),
		records:  make(map[key]model.CompletionRecord),
		inflight: make(map[key]*keyLock),
	}
}

// Replace swaps the local state for records loaded from the store. Later
// duplicates of a (task, date) pair are ignored.
func (l *Ledger) Replace(records []model.CompletionRecord) {
	next := make(map[key]model.CompletionRecord, len(records))
	for _, rec := range records {
		k := key{rec.TaskID, rec.InstanceDate}
		if _, ok := next[k]; ok {
			continue
		}
		next[k] = rec
	}
	l.mu.Lock()
	l.records = next
	l.mu.Unlock()
}

// Records returns a snapshot ordered by instance date, then task id.
func (l *Ledger) Records() []model.CompletionRecord {
	l.mu.Lock()
	out := make([]model.CompletionRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	l.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].InstanceDate != out[j].InstanceDate {
			return out[i].InstanceDate < out[j].InstanceDate
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

func (l *Ledger) IsCompleted(taskID, instanceDate string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[key{taskID, instanceDate}]
	return ok
}

// Index returns a lookup over the current records for projections.
func (l *Ledger) Index() Index {
	return NewIndex(l.Records())
}

// Forget drops local records of a deleted task. The store cascades the rows.
func (l *Ledger) Forget(taskID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.records {
		if k.taskID == taskID {
			delete(l.records, k)
		}
	}
}

// Toggle flips the completion of one occurrence and reports the new state.
// The local change is visible immediately; when the store rejects it the
// previous state is restored exactly and the error wraps
// optimistic.ErrPersistenceFailure.
func (l *Ledger) Toggle(ctx context.Context, taskID, instanceDate string) (bool, error) {
	if calendar.HasTime(instanceDate) {
		return false, fmt.Errorf("%w: instance date %q carries a time", calendar.ErrInvalidDate, instanceDate)
	}
	if _, err := calendar.ParseCalendarDate(instanceDate, time.UTC); err != nil {
		return false, err
	}
	k := key{taskID, instanceDate}
	unlock := l.lock(k)
	defer unlock()

	l.mu.Lock()
	prev, exists := l.records[k]
	l.mu.Unlock()

	if exists {
		return l.uncomplete(ctx, k, prev)
	}
	return l.complete(ctx, k)
}

func (l *Ledger) complete(ctx context.Context, k key) (bool, error) {
	pending := model.CompletionRecord{
		ID:           l.newID(),
		TaskID:       k.taskID,
		OwnerID:      l.ownerID,
		InstanceDate: k.date,
		CompletedAt:  l.clock.Now(),
	}
	_, err := optimistic.Run(ctx, optimistic.Mutation[model.CompletionRecord]{
		Apply:  func() { l.put(pending) },
		Revert: func() { l.drop(k, pending.ID) },
		Persist: func(ctx context.Context) (model.CompletionRecord, error) {
			saved, err := l.store.CreateCompletion(ctx, pending)
			if errors.Is(err, model.ErrDuplicateCompletion) {
				l.logger.Debug("completion already recorded", zap.String("task_id", k.taskID), zap.String("instance_date", k.date))
				return l.store.FindCompletion(ctx, k.taskID, k.date)
			}
			return saved, err
		},
		Reconcile: func(saved model.CompletionRecord) {
			l.drop(k, pending.ID)
			l.put(saved)
		},
	})
	if err != nil {
		l.logger.Warn("complete occurrence failed", zap.String("task_id", k.taskID), zap.String("instance_date", k.date), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (l *Ledger) uncomplete(ctx context.Context, k key, prev model.CompletionRecord) (bool, error) {
	_, err := optimistic.Run(ctx, optimistic.Mutation[struct{}]{
		Apply:  func() { l.drop(k, prev.ID) },
		Revert: func() { l.put(prev) },
		Persist: func(ctx context.Context) (struct{}, error) {
			err := l.store.DeleteCompletion(ctx, prev.ID)
			if errors.Is(err, storage.ErrNotFound) {
				return struct{}{}, nil
			}
			return struct{}{}, err
		},
	})
	if err != nil {
		l.logger.Warn("uncomplete occurrence failed", zap.String("task_id", k.taskID), zap.String("instance_date", k.date), zap.Error(err))
		return true, err
	}
	return false, nil
}

func (l *Ledger) put(rec model.CompletionRecord) {
	l.mu.Lock()
	l.records[key{rec.TaskID, rec.InstanceDate}] = rec
	l.mu.Unlock()
}

func (l *Ledger) drop(k key, id string) {
	l.mu.Lock()
	if cur, ok := l.records[k]; ok && cur.ID == id {
		delete(l.records, k)
	}
	l.mu.Unlock()
}

func (l *Ledger) lock(k key) func() {
	l.mu.Lock()
	kl, ok := l.inflight[k]
	if !ok {
		kl = &keyLock{}
		l.inflight[k] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.inflight, k)
		}
		l.mu.Unlock()
	}
}
