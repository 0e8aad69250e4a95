// Package classify decides which one-off tasks belong to a calendar day and
// how dates fall into relative buckets. Every view goes through it so the
// day, week, month and timeline surfaces agree.
package classify

import (
	"time"

	"github.com/sandeepkv93/bossmode/internal/model"
)

// Rule is the first classifier rule that matched a task for a day.
type Rule int

const (
	Excluded Rule = iota
	DueOnDay
	CompletedOnDay
	Undated
	Overdue
)

func (r Rule) String() string {
	switch r {
	case DueOnDay:
		return "due"
	case CompletedOnDay:
		return "completed"
	case Undated:
		return "undated"
	case Overdue:
		return "overdue"
	default:
		return "excluded"
	}
}

type Decision struct {
	Rule      Rule
	Completed bool
}

func (d Decision) Included() bool { return d.Rule != Excluded }

// OneOff classifies a non-recurring task for day, given today's date. Both
// dates are "YYYY-MM-DD" in loc; loc also decides the completion date.
// Malformed due dates read as "no date".
//
// Rules, first match wins:
//  1. due on day: included with the task's own completed flag
//  2. completed on day and day is today
//  3. no due date, day is today, open or completed today
//  4. due before day, open, day is today: overdue
func OneOff(t model.Task, day, today string, loc *time.Location) Decision {
	if t.IsRecurring() {
		return Decision{}
	}
	due, hasDue := t.DueDay()
	completedOn, _ := t.CompletedOn(loc)
	isToday := day == today

	switch {
	case hasDue && due == day:
		return Decision{Rule: DueOnDay, Completed: t.Completed}
	case t.Completed && completedOn == day && isToday:
		return Decision{Rule: CompletedOnDay, Completed: true}
	case !hasDue && isToday:
		if !t.Completed || completedOn == day {
			return Decision{Rule: Undated, Completed: t.Completed}
		}
	case hasDue && due < day && !t.Completed && isToday:
		return Decision{Rule: Overdue}
	}
	return Decision{}
}

// IsOverdue reports an open one-off task whose due date is before today.
func IsOverdue(t model.Task, today string) bool {
	if t.IsRecurring() || t.Completed {
		return false
	}
	due, ok := t.DueDay()
	return ok && due < today
}
