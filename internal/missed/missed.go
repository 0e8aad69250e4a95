// Package missed finds recurring occurrences from yesterday that were never
// completed and builds the once-a-day summary notification for them.
package missed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/ledger"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/notify"
)

// Detect returns recurring tasks with an occurrence yesterday (relative to
// today, in loc) that has no completion record. It is pure: identical inputs
// give identical output. Tasks whose anchor cannot be resolved are skipped and
// reported in the joined error alongside the result.
func Detect(tasks []model.Task, done ledger.Index, today string, loc *time.Location) ([]model.Task, error) {
	out := make([]model.Task, 0)
	todayDate, err := calendar.ParseCalendarDate(today, loc)
	if err != nil {
		return out, err
	}
	yesterday := calendar.AddDays(todayDate, -1)
	day := calendar.FormatCalendarDate(yesterday)

	var errs []error
	for _, t := range tasks {
		if !t.IsRecurring() {
			continue
		}
		anchor, err := t.Anchor(loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if anchor.After(yesterday) {
			continue
		}
		occurs, err := model.OccursOn(t, yesterday)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %s: %w", t.ID, err))
			continue
		}
		if occurs && !done.Has(t.ID, day) {
			out = append(out, t)
		}
	}
	return out, errors.Join(errs...)
}

// Summary builds the notification for missed tasks. ok is false when there
// is nothing to report.
func Summary(tasks []model.Task) (notify.Message, bool) {
	switch n := len(tasks); {
	case n == 0:
		return notify.Message{}, false
	case n == 1:
		return notify.Message{
			Title: "Missed Task Yesterday",
			Body:  `You missed: "` + tasks[0].Title + `"`,
		}, true
	default:
		shown := tasks
		if len(shown) > 3 {
			shown = shown[:3]
		}
		titles := make([]string, 0, len(shown))
		for _, t := range shown {
			titles = append(titles, t.Title)
		}
		body := "You missed: " + strings.Join(titles, ", ")
		if n > 3 {
			body += fmt.Sprintf(" and %d more", n-3)
		}
		return notify.Message{
			Title: fmt.Sprintf("%d Missed Tasks Yesterday", n),
			Body:  body,
		}, true
	}
}
