package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/bossmode/internal/model"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(t.Context(), model.Task{
		ID:         "task-rt-1",
		Title:      "Roundtrip task",
		Priority:   model.PriorityMedium,
		Recurrence: model.RecurrenceWeekly,
		DueDate:    "2026-02-09",
		CreatedAt:  now,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := repo.GetTask(t.Context(), "task-rt-1")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Title != "Roundtrip task" || got.Recurrence != model.RecurrenceWeekly {
		t.Fatalf("unexpected task after roundtrip: %#v", got)
	}
	if _, err := repo.CreateCompletion(t.Context(), model.CompletionRecord{
		ID:           "c-rt-1",
		TaskID:       "task-rt-1",
		InstanceDate: "2026-02-16",
		CompletedAt:  now,
	}); err != nil {
		t.Fatalf("completion insert after roundtrip failed: %v", err)
	}
}

func TestMigrationsEnforceTaskChecks(t *testing.T) {
	repo := setupRepo(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	err := repo.CreateTask(t.Context(), model.Task{
		ID:         "bad",
		Title:      "Bad recurrence",
		Priority:   model.PriorityMedium,
		Recurrence: model.Recurrence("yearly"),
		CreatedAt:  now,
	})
	if err == nil {
		t.Fatal("expected check constraint failure for unknown recurrence")
	}
	err = repo.CreateTask(t.Context(), model.Task{
		ID:        "bad-priority",
		Title:     "Bad priority",
		Priority:  model.Priority("urgent"),
		CreatedAt: now,
	})
	if err == nil {
		t.Fatal("expected check constraint failure for unknown priority")
	}
}
