package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidAlertKind = errors.New("model: invalid alert kind")
	ErrInvalidSnooze    = errors.New("model: snooze minutes out of range")
)

const (
	DefaultReminderMinutes = 15
	MinSnoozeMinutes       = 1
	MaxSnoozeMinutes       = 1440
)

// AlertKind distinguishes the advance reminder from the alert at due time.
type AlertKind string

const (
	AlertReminder AlertKind = "reminder"
	AlertDue      AlertKind = "due"
)

func (k AlertKind) IsValid() bool {
	switch k {
	case AlertReminder, AlertDue:
		return true
	default:
		return false
	}
}

// Alert is one surfaced reminder for a timed one-off task.
type Alert struct {
	TaskID  string
	Title   string
	Kind    AlertKind
	DueAt   time.Time
	FiredAt time.Time
	Snoozed bool
}

// Key identifies the alert for a task's current due time, so editing the due
// time re-arms it.
func (a Alert) Key() string {
	return a.TaskID + "|" + string(a.Kind) + "|" + a.DueAt.UTC().Format(time.RFC3339)
}

func (a Alert) Validate() error {
	if strings.TrimSpace(a.TaskID) == "" {
		return errors.New("model: alert task_id is required")
	}
	if !a.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAlertKind, a.Kind)
	}
	if a.DueAt.IsZero() {
		return errors.New("model: alert due_at is required")
	}
	return nil
}

// ReminderOffset is the lead time before due for the advance reminder.
func (t Task) ReminderOffset() time.Duration {
	if t.ReminderMinutesBefore == nil {
		return DefaultReminderMinutes * time.Minute
	}
	return time.Duration(*t.ReminderMinutesBefore) * time.Minute
}

func ValidateSnooze(minutes int) error {
	if minutes < MinSnoozeMinutes || minutes > MaxSnoozeMinutes {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSnooze, minutes, MinSnoozeMinutes, MaxSnoozeMinutes)
	}
	return nil
}
