package classify

import (
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketUpcoming Bucket = "upcoming"
	BucketLater    Bucket = "later"
)

// Buckets lists timeline buckets in display order.
var Buckets = []Bucket{BucketOverdue, BucketToday, BucketTomorrow, BucketUpcoming, BucketLater}

func (b Bucket) Label() string {
	switch b {
	case BucketOverdue:
		return "Overdue"
	case BucketToday:
		return "Today"
	case BucketTomorrow:
		return "Tomorrow"
	case BucketUpcoming:
		return "Upcoming"
	default:
		return "Later"
	}
}

// DaysFrom counts calendar days from today to date. ok is false when either
// string is not a calendar date.
func DaysFrom(today, date string) (int, bool) {
	t, err := calendar.ParseCalendarDate(today, time.UTC)
	if err != nil {
		return 0, false
	}
	d, err := calendar.ParseCalendarDate(date, time.UTC)
	if err != nil {
		return 0, false
	}
	return calendar.DaysBetween(t, d), true
}

// TimelineBucket places an effective date relative to today. Upcoming covers
// two to seven days out.
func TimelineBucket(date, today string) Bucket {
	diff, ok := DaysFrom(today, date)
	switch {
	case !ok:
		return BucketLater
	case diff < 0:
		return BucketOverdue
	case diff == 0:
		return BucketToday
	case diff == 1:
		return BucketTomorrow
	case diff <= 7:
		return BucketUpcoming
	default:
		return BucketLater
	}
}

// DueGroup is a day-view group keyed by a due date relative to today.
type DueGroup struct {
	Key   string
	Label string
}

const NoDateKey = "no-date"

// GroupByDue labels a due date for the day view: overdue, today, tomorrow,
// the weekday name within a week, else the short month and day.
func GroupByDue(date, today string) DueGroup {
	day, ok := calendar.DatePart(date)
	if !ok {
		return DueGroup{Key: NoDateKey, Label: "No Due Date"}
	}
	diff, ok := DaysFrom(today, day)
	if !ok {
		return DueGroup{Key: NoDateKey, Label: "No Due Date"}
	}
	switch {
	case diff < 0:
		return DueGroup{Key: "overdue", Label: "Overdue"}
	case diff == 0:
		return DueGroup{Key: "today", Label: "Due Today"}
	case diff == 1:
		return DueGroup{Key: "tomorrow", Label: "Due Tomorrow"}
	}
	parsed, _ := calendar.ParseCalendarDate(day, time.UTC)
	if diff <= 7 {
		return DueGroup{Key: "due-" + day, Label: "Due " + parsed.Weekday().String()}
	}
	return DueGroup{Key: "due-" + day, Label: "Due " + parsed.Format("Jan 2")}
}
