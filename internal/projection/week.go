package projection

import (
	"sort"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
)

type WeekDay struct {
	Date    string
	Weekday time.Weekday
	IsToday bool
	IsPast  bool
	OneOffs []Entry
}

// GridCell is one weekday of a recurring task. Only scheduled cells can be
// toggled.
type GridCell struct {
	Date      string
	Scheduled bool
	Completed bool
}

type GridRow struct {
	Task  model.Task
	Cells [7]GridCell
}

type WeekView struct {
	Start string
	End   string
	Days  [7]WeekDay
	Grid  []GridRow
}

// Week projects the Sunday-start week containing anchor. Recurring tasks form
// a task by weekday grid; one-off tasks are listed per day with the same
// classifier the day view uses.
func Week(in Input, anchor string) WeekView {
	var view WeekView
	date, ok := in.parse(anchor)
	if !ok {
		return view
	}
	start := calendar.StartOfWeek(date)
	end := calendar.AddDays(start, 6)
	view.Start = calendar.FormatCalendarDate(start)
	view.End = calendar.FormatCalendarDate(end)

	singles := oneOffInput(in)
	for i := range view.Days {
		d := calendar.AddDays(start, i)
		day := calendar.FormatCalendarDate(d)
		oneOffs := DayEntries(singles, day)
		sortEntries(oneOffs, SortByDue)
		view.Days[i] = WeekDay{
			Date:    day,
			Weekday: d.Weekday(),
			IsToday: day == in.Today,
			IsPast:  day < in.Today,
			OneOffs: oneOffs,
		}
	}

	for _, t := range in.Tasks {
		if !t.IsRecurring() {
			continue
		}
		dates, err := model.Expand(t, start, end)
		if err != nil {
			in.report(t, err)
			continue
		}
		if len(dates) == 0 {
			continue
		}
		scheduled := make(map[string]bool, len(dates))
		for _, d := range dates {
			scheduled[d] = true
		}
		row := GridRow{Task: t}
		for i, wd := range view.Days {
			row.Cells[i] = GridCell{
				Date:      wd.Date,
				Scheduled: scheduled[wd.Date],
				Completed: scheduled[wd.Date] && in.Done.Has(t.ID, wd.Date),
			}
		}
		view.Grid = append(view.Grid, row)
	}
	sort.SliceStable(view.Grid, func(i, j int) bool {
		a, b := view.Grid[i].Task, view.Grid[j].Task
		if c := comparePriority(a, b); c != 0 {
			return c < 0
		}
		return compareCreated(a, b) < 0
	})
	return view
}

func oneOffInput(in Input) Input {
	out := in
	out.Tasks = make([]model.Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if !t.IsRecurring() {
			out.Tasks = append(out.Tasks, t)
		}
	}
	return out
}
