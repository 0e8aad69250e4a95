package projection

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/classify"
	"github.com/sandeepkv93/bossmode/internal/model"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAll, StatusActive, StatusCompleted:
		return st, true
	case "":
		return StatusAll, true
	default:
		return "", false
	}
}

// Filter narrows the task list. An empty CategoryID matches every task.
type Filter struct {
	Status     Status
	CategoryID string
}

func (f Filter) Match(t model.Task) bool {
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.CategoryID != "" {
		if t.CategoryID == nil || *t.CategoryID != f.CategoryID {
			return false
		}
	}
	return true
}

// Apply keeps the tasks f matches, preserving order.
func (f Filter) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// IsHistory reports a one-off task completed on an earlier day. Without a
// completion time the due date decides; completed with neither counts as
// history.
func IsHistory(t model.Task, today string, loc *time.Location) bool {
	if !t.Completed {
		return false
	}
	if day, ok := t.CompletedOn(loc); ok {
		return day < today
	}
	if due, ok := t.DueDay(); ok {
		return due < today
	}
	return true
}

// List returns current tasks: not history and not recurring with a future
// due date, filtered and in list order.
func List(in Input, f Filter) []model.Task {
	loc := in.location()
	out := make([]model.Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if IsHistory(t, in.Today, loc) {
			continue
		}
		if due, ok := t.DueDay(); ok && t.IsRecurring() && due > in.Today {
			continue
		}
		if !f.Match(t) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, CompareTasks)
	return out
}

type HistoryQuery struct {
	Search string
	Year   int
	Month  int
	Day    int
}

type HistoryGroup struct {
	// Date is the completion day, or empty when it is unknown.
	Date  string
	Tasks []model.Task
}

// History groups past completions by completion day, newest first.
func History(in Input, q HistoryQuery) []HistoryGroup {
	loc := in.location()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	byDay := map[string][]model.Task{}
	for _, t := range in.Tasks {
		if !IsHistory(t, in.Today, loc) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		day := historyDay(t, loc)
		if !q.matches(day) {
			continue
		}
		byDay[day] = append(byDay[day], t)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		a, b := days[i], days[j]
		if a == "" || b == "" {
			return b == "" && a != ""
		}
		return a > b
	})
	out := make([]HistoryGroup, 0, len(days))
	for _, day := range days {
		tasks := byDay[day]
		sort.SliceStable(tasks, func(i, j int) bool {
			return completedAt(tasks[i]).After(completedAt(tasks[j]))
		})
		out = append(out, HistoryGroup{Date: day, Tasks: tasks})
	}
	return out
}

func historyDay(t model.Task, loc *time.Location) string {
	if day, ok := t.CompletedOn(loc); ok {
		return day
	}
	day, _ := t.DueDay()
	return day
}

func completedAt(t model.Task) time.Time {
	if t.CompletedAt == nil {
		return time.Time{}
	}
	return *t.CompletedAt
}

func (q HistoryQuery) matches(day string) bool {
	if q.Year == 0 && q.Month == 0 && q.Day == 0 {
		return true
	}
	t, err := calendar.ParseCalendarDate(day, time.UTC)
	if err != nil {
		return false
	}
	return (q.Year == 0 || q.Year == t.Year()) &&
		(q.Month == 0 || q.Month == int(t.Month())) &&
		(q.Day == 0 || q.Day == t.Day())
}

// Mood summarizes today's progress the way the dashboard face does.
type Mood string

const (
	MoodIdle     Mood = "idle"
	MoodStarry   Mood = "starry"
	MoodAngry    Mood = "angry"
	MoodSweating Mood = "sweating"
	MoodSaluting Mood = "saluting"
	MoodPumped   Mood = "pumped"
	MoodUnamused Mood = "unamused"
	MoodFocused  Mood = "focused"
)

type Progress struct {
	Total     int
	Completed int
	Percent   float64
	Overdue   bool
	Mood      Mood
}

// TodayProgress counts today's entries and derives the mood from completion
// rate, overdue work and the hour of now.
func TodayProgress(in Input, now time.Time) Progress {
	entries := DayEntries(in, in.Today)
	p := Progress{Total: len(entries)}
	for _, e := range entries {
		if e.Completed {
			p.Completed++
		}
		if e.Rule == classify.Overdue {
			p.Overdue = true
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
	}
	p.Mood = moodFor(p, now.Hour())
	return p
}

func moodFor(p Progress, hour int) Mood {
	open := p.Total - p.Completed
	rate := 0.0
	if p.Total > 0 {
		rate = float64(p.Completed) / float64(p.Total)
	}
	switch {
	case p.Total == 0:
		return MoodIdle
	case open == 0:
		return MoodStarry
	case p.Overdue || rate < 0.33:
		return MoodAngry
	case hour >= 22:
		return MoodSweating
	case hour < 5:
		return MoodSaluting
	case open == 1 || rate > 0.8:
		return MoodPumped
	case rate < 0.5 && p.Total > 3:
		return MoodUnamused
	default:
		return MoodFocused
	}
}
