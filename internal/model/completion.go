package model

import (
	"errors"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

// ErrDuplicateCompletion is returned by stores when a (task, instance date)
// pair already has a completion record.
var ErrDuplicateCompletion = errors.New("model: completion already recorded")

// CompletionRecord marks one occurrence of a recurring task as done.
type CompletionRecord struct {
	ID           string
	TaskID       string
	OwnerID      string
	InstanceDate string
	CompletedAt  time.Time
}

func (r CompletionRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: completion id is required")
	}
	if strings.TrimSpace(r.TaskID) == "" {
		return errors.New("model: completion task_id is required")
	}
	if calendar.HasTime(r.InstanceDate) {
		return errors.New("model: completion instance_date must not carry a time")
	}
	if _, err := calendar.ParseCalendarDate(r.InstanceDate, time.UTC); err != nil {
		return err
	}
	if r.CompletedAt.IsZero() {
		return errors.New("model: completion completed_at is required")
	}
	return nil
}
