// Package calendar holds the local-time date helpers every scheduling
// computation goes through. Calendar dates are exchanged as "YYYY-MM-DD"
// strings built from wall-clock components of an explicit location, never
// from UTC truncation.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

var ErrInvalidDate = errors.New("calendar: invalid date")

// Clock is the single source of "now" for the engine.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// Today returns now's calendar date in now's own location.
func Today(now time.Time) string {
	return FormatCalendarDate(now)
}

// ParseCalendarDate accepts "YYYY-MM-DD" or "YYYY-MM-DDTHH:mm:ss" (only the
// date part is used) and returns local midnight of that day in loc.
func ParseCalendarDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	datePart := strings.TrimSpace(s)
	if i := strings.IndexAny(datePart, "T "); i >= 0 {
		datePart = datePart[:i]
	}
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if m < 1 || m > 12 || d < 1 || d > DaysIn(y, time.Month(m)) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc), nil
}

// ParseLocalDateTime parses "YYYY-MM-DDTHH:mm:ss" (or "YYYY-MM-DDTHH:mm") as
// wall-clock time in loc.
func ParseLocalDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func NormalizeToMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func FormatCalendarDate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

func FormatLocalDateTime(t time.Time) string {
	y, mo, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", y, int(mo), d, t.Hour(), t.Minute(), t.Second())
}

// AddDays moves by calendar days, so DST transitions never shift the date.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// ShiftDate adds n days to a "YYYY-MM-DD" string.
func ShiftDate(date string, n int) (string, error) {
	t, err := ParseCalendarDate(date, time.UTC)
	if err != nil {
		return "", err
	}
	return FormatCalendarDate(AddDays(t, n)), nil
}

// DaysBetween counts calendar days from a to b, ignoring clock time and DST.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	return AddDays(NormalizeToMidnight(t), -int(t.Weekday()))
}

// DatePart returns the "YYYY-MM-DD" prefix of a date or date-time string when
// it is a valid calendar date.
func DatePart(s string) (string, bool) {
	t, err := ParseCalendarDate(s, time.UTC)
	if err != nil {
		return "", false
	}
	return FormatCalendarDate(t), true
}

// HasTime reports whether s carries a clock component.
func HasTime(s string) bool {
	return strings.ContainsAny(strings.TrimSpace(s), "T ")
}
