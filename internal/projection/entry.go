// Package projection turns tasks and completion records into the lists each
// surface renders: day, week, month, timeline, list and history. Every
// function is pure over its Input and safe to call on each render.
package projection

import (
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/classify"
	"github.com/sandeepkv93/bossmode/internal/ledger"
	"github.com/sandeepkv93/bossmode/internal/model"
)

// Input is the shared state every projection reads. Today is "YYYY-MM-DD" in
// Loc. Report, when set, receives tasks that could not be expanded; they are
// left out of the result.
type Input struct {
	Tasks  []model.Task
	Done   ledger.Index
	Today  string
	Loc    *time.Location
	Report func(model.Task, error)
}

func (in Input) location() *time.Location {
	if in.Loc == nil {
		return time.Local
	}
	return in.Loc
}

func (in Input) report(t model.Task, err error) {
	if in.Report != nil && err != nil {
		in.Report(t, err)
	}
}

func (in Input) parse(day string) (time.Time, bool) {
	d, err := calendar.ParseCalendarDate(day, in.location())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Entry is one task shown on one date.
type Entry struct {
	Task         model.Task
	InstanceDate string
	Recurring    bool
	Completed    bool
	Overdue      bool
	Rule         classify.Rule
}

// EffectiveDate is the date an entry sorts by: the occurrence date for
// recurring tasks, the due date for one-offs, empty when undated.
func (e Entry) EffectiveDate() string {
	if e.Recurring {
		return e.InstanceDate
	}
	day, _ := e.Task.DueDay()
	return day
}

// DayEntries lists every occurrence shown on day: recurring tasks the
// expander schedules there and one-off tasks the classifier includes.
func DayEntries(in Input, day string) []Entry {
	out := make([]Entry, 0)
	date, ok := in.parse(day)
	if !ok {
		return out
	}
	loc := in.location()
	for _, t := range in.Tasks {
		if t.IsRecurring() {
			occurs, err := model.OccursOn(t, date)
			if err != nil {
				in.report(t, err)
				continue
			}
			if occurs {
				out = append(out, Entry{
					Task:         t,
					InstanceDate: day,
					Recurring:    true,
					Completed:    in.Done.Has(t.ID, day),
					Rule:         classify.DueOnDay,
				})
			}
			continue
		}
		d := classify.OneOff(t, day, in.Today, loc)
		if !d.Included() {
			continue
		}
		out = append(out, Entry{
			Task:         t,
			InstanceDate: day,
			Completed:    d.Completed,
			Overdue:      classify.IsOverdue(t, in.Today),
			Rule:         d.Rule,
		})
	}
	return out
}

type SortKey string

const (
	SortByType     SortKey = "type"
	SortByPriority SortKey = "priority"
	SortByDue      SortKey = "due"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByType, SortByPriority, SortByDue:
		return k, true
	case "":
		return SortByType, true
	default:
		return "", false
	}
}

type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

func ParseOrder(s string) (Order, bool) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case Ascending, Descending:
		return o, true
	case "":
		return Ascending, true
	default:
		return "", false
	}
}

// Compare orders entries within a group. Priority (high first) breaks ties
// unless key is already priority; then the effective date ascending (undated
// last), then creation time, then id.
func Compare(a, b Entry, key SortKey) int {
	if key != SortByPriority {
		if c := comparePriority(a.Task, b.Task); c != 0 {
			return c
		}
	}
	if c := compareDates(a.EffectiveDate(), b.EffectiveDate()); c != 0 {
		return c
	}
	return compareCreated(a.Task, b.Task)
}

func sortEntries(entries []Entry, key SortKey) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Compare(entries[i], entries[j], key) < 0
	})
}

func comparePriority(a, b model.Task) int {
	return b.Priority.Rank() - a.Priority.Rank()
}

// compareDates sorts ascending with empty dates last.
func compareDates(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	case a < b:
		return -1
	default:
		return 1
	}
}

func compareCreated(a, b model.Task) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

// CompareTasks is the list ordering: priority high first, due date ascending
// with undated last, then creation time.
func CompareTasks(a, b model.Task) int {
	if c := comparePriority(a, b); c != 0 {
		return c
	}
	ad, _ := a.DueDay()
	bd, _ := b.DueDay()
	if c := compareDates(ad, bd); c != 0 {
		return c
	}
	if c := compareDates(dueClock(a), dueClock(b)); c != 0 {
		return c
	}
	return compareCreated(a, b)
}

func dueClock(t model.Task) string {
	if !calendar.HasTime(t.DueDate) {
		return ""
	}
	return strings.TrimSpace(t.DueDate)
}
