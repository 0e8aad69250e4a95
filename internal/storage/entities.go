package storage

import (
	"database/sql"

	"github.com/sandeepkv93/bossmode/internal/model"
)

type TaskListFilter struct {
	OwnerID    string
	CategoryID string
	Completed  *bool
	Recurring  *bool
	Limit      int
	Offset     int
}

type CategoryListFilter struct {
	OwnerID string
	Limit   int
	Offset  int
}

// CompletionListFilter bounds records by instance date; From and To are
// inclusive "YYYY-MM-DD" values and either may be empty.
type CompletionListFilter struct {
	OwnerID string
	TaskID  string
	From    string
	To      string
	Limit   int
	Offset  int
}

var taskColumns = []string{
	"id", "owner_id", "title", "due_date", "priority", "recurrence",
	"reminder_minutes_before", "category_id", "completed", "completed_at", "created_at",
}

type taskRow struct {
	ID                    string         `db:"id"`
	OwnerID               string         `db:"owner_id"`
	Title                 string         `db:"title"`
	DueDate               sql.NullString `db:"due_date"`
	Priority              string         `db:"priority"`
	Recurrence            sql.NullString `db:"recurrence"`
	ReminderMinutesBefore sql.NullInt64  `db:"reminder_minutes_before"`
	CategoryID            sql.NullString `db:"category_id"`
	Completed             bool           `db:"completed"`
	CompletedAt           sql.NullString `db:"completed_at"`
	CreatedAt             string         `db:"created_at"`
}

func (r taskRow) toModel() (model.Task, error) {
	out := model.Task{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Title:      r.Title,
		DueDate:    r.DueDate.String,
		Priority:   model.Priority(r.Priority),
		Recurrence: model.Recurrence(r.Recurrence.String),
		Completed:  r.Completed,
	}
	if r.ReminderMinutesBefore.Valid {
		minutes := int(r.ReminderMinutesBefore.Int64)
		out.ReminderMinutesBefore = &minutes
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.String
		out.CategoryID = &id
	}
	createdAt, err := parseRequiredTime(r.CreatedAt)
	if err != nil {
		return model.Task{}, err
	}
	out.CreatedAt = createdAt
	completedAt, err := parseNullableTime(r.CompletedAt)
	if err != nil {
		return model.Task{}, err
	}
	out.CompletedAt = completedAt
	return out, nil
}

// taskValues returns column values in taskColumns order.
func taskValues(in model.Task) []any {
	return []any{
		in.ID, in.OwnerID, in.Title, nullString(in.DueDate), string(in.Priority),
		nullString(string(in.Recurrence)), nullInt(in.ReminderMinutesBefore), nullStringPtr(in.CategoryID),
		boolInt(in.Completed), nullTime(in.CompletedAt), mustTime(in.CreatedAt),
	}
}

var categoryColumns = []string{"id", "owner_id", "name", "color", "created_at"}

type categoryRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	CreatedAt string `db:"created_at"`
}

func (r categoryRow) toModel() (model.Category, error) {
	createdAt, err := parseRequiredTime(r.CreatedAt)
	if err != nil {
		return model.Category{}, err
	}
	return model.Category{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: createdAt,
	}, nil
}

var completionColumns = []string{"id", "task_id", "owner_id", "instance_date", "completed_at"}

type completionRow struct {
	ID           string `db:"id"`
	TaskID       string `db:"task_id"`
	OwnerID      string `db:"owner_id"`
	InstanceDate string `db:"instance_date"`
	CompletedAt  string `db:"completed_at"`
}

func (r completionRow) toModel() (model.CompletionRecord, error) {
	completedAt, err := parseRequiredTime(r.CompletedAt)
	if err != nil {
		return model.CompletionRecord{}, err
	}
	return model.CompletionRecord{
		ID:           r.ID,
		TaskID:       r.TaskID,
		OwnerID:      r.OwnerID,
		InstanceDate: r.InstanceDate,
		CompletedAt:  completedAt,
	}, nil
}
