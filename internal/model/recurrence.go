package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

var ErrAmbiguousRecurrenceAnchor = errors.New("model: recurrence anchor cannot be resolved")

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurrence(s string) (Recurrence, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "none" {
		return RecurrenceNone, nil
	}
	r := Recurrence(v)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, s)
	}
	return r, nil
}

// Anchor resolves the first occurrence of a recurring task: its due date when
// one parses, otherwise its creation date, as local midnight in loc.
func (t Task) Anchor(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if day, ok := t.DueDay(); ok {
		return calendar.ParseCalendarDate(day, loc)
	}
	if !t.CreatedAt.IsZero() {
		return calendar.NormalizeToMidnight(t.CreatedAt.In(loc)), nil
	}
	return time.Time{}, fmt.Errorf("%w: task %q has neither due date nor creation date", ErrAmbiguousRecurrenceAnchor, t.ID)
}

// schedule indexes the occurrences of a rule: nth(0) is the anchor and every
// later occurrence is k steps after it. Monthly occurrences keep the anchor's
// day-of-month and clamp to the last day of shorter months; they are always
// computed from the anchor, so a clamped February never drags March back.
type schedule struct {
	rule   Recurrence
	anchor time.Time
}

func newSchedule(t Task, loc *time.Location) (schedule, bool, error) {
	if !t.IsRecurring() {
		return schedule{}, false, nil
	}
	if !t.Recurrence.IsValid() {
		return schedule{}, false, fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.Recurrence)
	}
	anchor, err := t.Anchor(loc)
	if err != nil {
		return schedule{}, false, err
	}
	return schedule{rule: t.Recurrence, anchor: anchor}, true, nil
}

func (s schedule) stepDays() int {
	if s.rule == RecurrenceWeekly {
		return 7
	}
	return 1
}

func (s schedule) nth(k int) time.Time {
	if s.rule != RecurrenceMonthly {
		return calendar.AddDays(s.anchor, k*s.stepDays())
	}
	y, m, d := s.anchor.Date()
	first := time.Date(y, m+time.Month(k), 1, 0, 0, 0, 0, s.anchor.Location())
	fy, fm, _ := first.Date()
	if last := calendar.DaysIn(fy, fm); d > last {
		d = last
	}
	return time.Date(fy, fm, d, 0, 0, 0, 0, s.anchor.Location())
}

func (s schedule) monthsUntil(t time.Time) int {
	ay, am, _ := s.anchor.Date()
	ty, tm, _ := t.Date()
	return (ty-ay)*12 + int(tm) - int(am)
}

func (s schedule) firstIndexOnOrAfter(t time.Time) int {
	if !s.anchor.Before(t) {
		return 0
	}
	if s.rule != RecurrenceMonthly {
		step := s.stepDays()
		return (calendar.DaysBetween(s.anchor, t) + step - 1) / step
	}
	k := s.monthsUntil(t)
	for s.nth(k).Before(t) {
		k++
	}
	return k
}

// lastIndexOnOrBefore returns -1 when t precedes the anchor.
func (s schedule) lastIndexOnOrBefore(t time.Time) int {
	if t.Before(s.anchor) {
		return -1
	}
	if s.rule != RecurrenceMonthly {
		return calendar.DaysBetween(s.anchor, t) / s.stepDays()
	}
	k := s.monthsUntil(t)
	for k >= 0 && s.nth(k).After(t) {
		k--
	}
	return k
}

// Expand lists the occurrence dates of a recurring task inside the inclusive
// window [start, end], ascending. The window must be bounded by the caller;
// its location decides how the anchor is read. Non-recurring tasks and empty
// windows yield an empty slice.
func Expand(t Task, start, end time.Time) ([]string, error) {
	out := make([]string, 0)
	start = calendar.NormalizeToMidnight(start)
	end = calendar.NormalizeToMidnight(end.In(start.Location()))
	if end.Before(start) {
		return out, nil
	}
	s, ok, err := newSchedule(t, start.Location())
	if err != nil || !ok {
		return out, err
	}
	for k := s.firstIndexOnOrAfter(start); ; k++ {
		cur := s.nth(k)
		if cur.After(end) {
			break
		}
		out = append(out, calendar.FormatCalendarDate(cur))
	}
	return out, nil
}

// OccursOn reports whether a recurring task has an occurrence on day.
func OccursOn(t Task, day time.Time) (bool, error) {
	dates, err := Expand(t, day, day)
	if err != nil {
		return false, err
	}
	return len(dates) == 1, nil
}

// LatestOnOrBefore returns the most recent occurrence not after day.
func LatestOnOrBefore(t Task, day time.Time) (string, bool, error) {
	day = calendar.NormalizeToMidnight(day)
	s, ok, err := newSchedule(t, day.Location())
	if err != nil || !ok {
		return "", false, err
	}
	k := s.lastIndexOnOrBefore(day)
	if k < 0 {
		return "", false, nil
	}
	return calendar.FormatCalendarDate(s.nth(k)), true, nil
}

// Upcoming lists the next count occurrences on or after from.
func Upcoming(t Task, from time.Time, count int) ([]string, error) {
	out := make([]string, 0, max(count, 0))
	if count <= 0 {
		return out, nil
	}
	from = calendar.NormalizeToMidnight(from)
	s, ok, err := newSchedule(t, from.Location())
	if err != nil || !ok {
		return out, err
	}
	k := s.firstIndexOnOrAfter(from)
	for i := 0; i < count; i++ {
		out = append(out, calendar.FormatCalendarDate(s.nth(k+i)))
	}
	return out, nil
}
