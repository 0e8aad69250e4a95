package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

var (
	ErrInvalidPriority   = errors.New("model: invalid task priority")
	ErrInvalidRecurrence = errors.New("model: invalid recurrence")
	ErrInvalidReminder   = errors.New("model: invalid reminder offset")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities high > medium > low. Unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Task is a unit of work. DueDate is empty, a "YYYY-MM-DD" date or a local
// "YYYY-MM-DDTHH:mm:ss" date-time.
type Task struct {
	ID                    string
	OwnerID               string
	Title                 string
	DueDate               string
	Priority              Priority
	Recurrence            Recurrence
	ReminderMinutesBefore *int
	CategoryID            *string
	Completed             bool
	CompletedAt           *time.Time
	CreatedAt             time.Time
}

func (t Task) IsRecurring() bool {
	return t.Recurrence != RecurrenceNone
}

// DueDay returns the calendar part of the due date. Missing or malformed
// dates read as "no date".
func (t Task) DueDay() (string, bool) {
	if strings.TrimSpace(t.DueDate) == "" {
		return "", false
	}
	return calendar.DatePart(t.DueDate)
}

// DueTime returns the due instant for tasks that carry a clock time.
func (t Task) DueTime(loc *time.Location) (time.Time, bool) {
	if !calendar.HasTime(t.DueDate) {
		return time.Time{}, false
	}
	at, err := calendar.ParseLocalDateTime(t.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// CompletedOn is the local calendar date of the completion timestamp.
func (t Task) CompletedOn(loc *time.Location) (string, bool) {
	if t.CompletedAt == nil || t.CompletedAt.IsZero() {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	return calendar.FormatCalendarDate(t.CompletedAt.In(loc)), true
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	if strings.TrimSpace(t.DueDate) != "" {
		if _, err := calendar.ParseCalendarDate(t.DueDate, time.UTC); err != nil {
			return err
		}
		if calendar.HasTime(t.DueDate) {
			if _, err := calendar.ParseLocalDateTime(t.DueDate, time.UTC); err != nil {
				return err
			}
		}
	}
	if t.ReminderMinutesBefore != nil && *t.ReminderMinutesBefore < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidReminder, *t.ReminderMinutesBefore)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.IsRecurring() && t.Completed {
		return errors.New("model: recurring tasks are completed per occurrence, not as a whole")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	return nil
}

type Category struct {
	ID        string
	OwnerID   string
	Name      string
	Color     string
	CreatedAt time.Time
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("model: category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: category name is required")
	}
	return nil
}

// SameName compares category names case-insensitively.
func (c Category) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}
