package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/bossmode/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bossmode-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestTaskCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	task := model.Task{
		ID:                    "task-1",
		OwnerID:               "owner",
		Title:                 "Write schema",
		DueDate:               "2026-02-10T09:30:00",
		Priority:              model.PriorityHigh,
		ReminderMinutesBefore: intPtr(30),
		CreatedAt:             created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || got.DueDate != task.DueDate || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task get result: %#v", got)
	}
	if got.ReminderMinutesBefore == nil || *got.ReminderMinutesBefore != 30 {
		t.Fatalf("reminder offset not round-tripped: %#v", got.ReminderMinutesBefore)
	}
	if got.Recurrence != model.RecurrenceNone || got.CategoryID != nil || got.CompletedAt != nil {
		t.Fatalf("unexpected optional fields: %#v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at mismatch: %v", got.CreatedAt)
	}

	completedAt := parseRFC3339(t, "2026-02-10T08:00:00Z")
	task.Title = "Write schema v2"
	task.Completed = true
	task.CompletedAt = &completedAt
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	done := true
	completed, err := repo.ListTasks(ctx, TaskListFilter{OwnerID: "owner", Completed: &done})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != task.ID || completed[0].CompletedAt == nil {
		t.Fatalf("unexpected completed list: %#v", completed)
	}

	open := false
	active, err := repo.ListTasks(ctx, TaskListFilter{Completed: &open})
	if err != nil {
		t.Fatalf("list active tasks: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active tasks, got %#v", active)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.UpdateTask(ctx, task); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update of missing task, got %v", err)
	}
}

func TestListTasksFiltersAndPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	base := parseRFC3339(t, "2026-03-01T10:00:00Z")

	if err := repo.CreateCategory(ctx, model.Category{ID: "cat-work", OwnerID: "owner", Name: "Work", CreatedAt: base}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	tasks := []model.Task{
		{ID: "t1", OwnerID: "owner", Title: "Standup", Priority: model.PriorityMedium, Recurrence: model.RecurrenceDaily, CategoryID: strPtr("cat-work"), CreatedAt: base},
		{ID: "t2", OwnerID: "owner", Title: "Invoice", Priority: model.PriorityLow, CategoryID: strPtr("cat-work"), CreatedAt: base.Add(time.Minute)},
		{ID: "t3", OwnerID: "owner", Title: "Groceries", Priority: model.PriorityLow, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t4", OwnerID: "someone-else", Title: "Other", Priority: model.PriorityHigh, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, task := range tasks {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %s: %v", task.ID, err)
		}
	}

	owned, err := repo.ListTasks(ctx, TaskListFilter{OwnerID: "owner"})
	if err != nil {
		t.Fatalf("list owned: %v", err)
	}
	if len(owned) != 3 || owned[0].ID != "t1" || owned[2].ID != "t3" {
		t.Fatalf("unexpected owned list: %#v", owned)
	}

	work, err := repo.ListTasks(ctx, TaskListFilter{OwnerID: "owner", CategoryID: "cat-work"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(work) != 2 {
		t.Fatalf("expected 2 work tasks, got %d", len(work))
	}

	recurring := true
	rec, err := repo.ListTasks(ctx, TaskListFilter{Recurring: &recurring})
	if err != nil {
		t.Fatalf("list recurring: %v", err)
	}
	if len(rec) != 1 || rec[0].Recurrence != model.RecurrenceDaily {
		t.Fatalf("unexpected recurring list: %#v", rec)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{OwnerID: "owner", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "t2" {
		t.Fatalf("unexpected page: %#v", page)
	}

	tail, err := repo.ListTasks(ctx, TaskListFilter{OwnerID: "owner", Offset: 2})
	if err != nil {
		t.Fatalf("list offset only: %v", err)
	}
	if len(tail) != 1 || tail[0].ID != "t3" {
		t.Fatalf("unexpected tail: %#v", tail)
	}
}

func TestCategoryCRUDAndDuplicateNames(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	now := parseRFC3339(t, "2026-03-01T10:00:00Z")

	cat := model.Category{ID: "cat-1", OwnerID: "owner", Name: "Health", Color: "#8b5cf6", CreatedAt: now}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}
	dup := model.Category{ID: "cat-2", OwnerID: "owner", Name: "health", CreatedAt: now}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for case-insensitive name, got %v", err)
	}
	other := model.Category{ID: "cat-3", OwnerID: "other-owner", Name: "Health", CreatedAt: now}
	if err := repo.CreateCategory(ctx, other); err != nil {
		t.Fatalf("same name for another owner should be allowed: %v", err)
	}
	second := model.Category{ID: "cat-4", OwnerID: "owner", Name: "Errands", CreatedAt: now}
	if err := repo.CreateCategory(ctx, second); err != nil {
		t.Fatalf("create second category: %v", err)
	}

	second.Name = "HEALTH"
	if err := repo.UpdateCategory(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on rename, got %v", err)
	}

	cat.Color = "#22c55e"
	if err := repo.UpdateCategory(ctx, cat); err != nil {
		t.Fatalf("update category: %v", err)
	}
	got, err := repo.GetCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if got.Color != "#22c55e" || got.Name != "Health" {
		t.Fatalf("unexpected category: %#v", got)
	}

	list, err := repo.ListCategories(ctx, CategoryListFilter{OwnerID: "owner"})
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Errands" || list[1].Name != "Health" {
		t.Fatalf("unexpected category list: %#v", list)
	}
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	now := parseRFC3339(t, "2026-03-01T10:00:00Z")

	if err := repo.CreateCategory(ctx, model.Category{ID: "cat-1", OwnerID: "owner", Name: "Work", CreatedAt: now}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	task := model.Task{ID: "task-1", OwnerID: "owner", Title: "Deploy", Priority: model.PriorityMedium, CategoryID: strPtr("cat-1"), CreatedAt: now}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := repo.DeleteCategory(ctx, "cat-1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := repo.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected category to be detached, got %q", *got.CategoryID)
	}
	if err := repo.DeleteCategory(ctx, "cat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompletionUniquenessAndCascade(t *testing.T) {
	repo := setupRepo(t)
	ctx := t.Context()
	now := parseRFC3339(t, "2026-03-01T10:00:00Z")

	task := model.Task{ID: "gym", OwnerID: "owner", Title: "Gym", Priority: model.PriorityMedium, Recurrence: model.RecurrenceDaily, DueDate: "2026-03-01", CreatedAt: now}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	first := model.CompletionRecord{ID: "c1", TaskID: "gym", OwnerID: "owner", InstanceDate: "2026-03-02", CompletedAt: now}
	stored, err := repo.CreateCompletion(ctx, first)
	if err != nil {
		t.Fatalf("create completion: %v", err)
	}
	if stored.ID != "c1" || stored.InstanceDate != "2026-03-02" {
		t.Fatalf("unexpected stored record: %#v", stored)
	}

	dup := model.CompletionRecord{ID: "c2", TaskID: "gym", OwnerID: "owner", InstanceDate: "2026-03-02", CompletedAt: now}
	if _, err := repo.CreateCompletion(ctx, dup); !errors.Is(err, model.ErrDuplicateCompletion) {
		t.Fatalf("expected ErrDuplicateCompletion, got %v", err)
	}

	found, err := repo.FindCompletion(ctx, "gym", "2026-03-02")
	if err != nil {
		t.Fatalf("find completion: %v", err)
	}
	if found.ID != "c1" {
		t.Fatalf("expected original record, got %#v", found)
	}
	if _, err := repo.FindCompletion(ctx, "gym", "2026-03-03"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing date, got %v", err)
	}

	for _, rec := range []model.CompletionRecord{
		{ID: "c3", TaskID: "gym", OwnerID: "owner", InstanceDate: "2026-03-03", CompletedAt: now},
		{ID: "c5", TaskID: "gym", OwnerID: "owner", InstanceDate: "2026-03-05", CompletedAt: now},
	} {
		if _, err := repo.CreateCompletion(ctx, rec); err != nil {
			t.Fatalf("create completion %s: %v", rec.InstanceDate, err)
		}
	}
	window, err := repo.ListCompletions(ctx, CompletionListFilter{OwnerID: "owner", From: "2026-03-02", To: "2026-03-04"})
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(window) != 2 || window[0].InstanceDate != "2026-03-02" || window[1].InstanceDate != "2026-03-03" {
		t.Fatalf("unexpected window: %#v", window)
	}

	if err := repo.DeleteCompletion(ctx, "c1"); err != nil {
		t.Fatalf("delete completion: %v", err)
	}
	if err := repo.DeleteCompletion(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	if err := repo.DeleteTask(ctx, "gym"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	left, err := repo.ListCompletions(ctx, CompletionListFilter{TaskID: "gym"})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected completions to be removed with task, got %#v", left)
	}
}

func TestCompletionRequiresExistingTask(t *testing.T) {
	repo := setupRepo(t)
	rec := model.CompletionRecord{ID: "c1", TaskID: "missing", InstanceDate: "2026-03-02", CompletedAt: time.Now()}
	if _, err := repo.CreateCompletion(t.Context(), rec); err == nil {
		t.Fatal("expected foreign key failure for unknown task")
	}
}
