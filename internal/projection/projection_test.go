package projection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/bossmode/internal/classify"
	"github.com/sandeepkv93/bossmode/internal/ledger"
	"github.com/sandeepkv93/bossmode/internal/model"
)

var base = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func task(id, title string, p model.Priority, due string, opts ...func(*model.Task)) model.Task {
	t := model.Task{ID: id, Title: title, Priority: p, DueDate: due, CreatedAt: base}
	for _, o := range opts {
		o(&t)
	}
	return t
}

func every(r model.Recurrence) func(*model.Task) {
	return func(t *model.Task) { t.Recurrence = r }
}

func doneAt(at time.Time) func(*model.Task) {
	return func(t *model.Task) {
		t.Completed = true
		t.CompletedAt = &at
	}
}

func created(at time.Time) func(*model.Task) {
	return func(t *model.Task) { t.CreatedAt = at }
}

func inCategory(id string) func(*model.Task) {
	return func(t *model.Task) { t.CategoryID = &id }
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Task.ID)
	}
	return out
}

func groupKeys(groups []Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Key)
	}
	return out
}

func fixture() Input {
	return Input{
		Tasks: []model.Task{
			task("gym", "Gym", model.PriorityHigh, "2025-06-02", every(model.RecurrenceDaily)),
			task("review", "Weekly review", model.PriorityLow, "2025-06-06", every(model.RecurrenceWeekly)),
			task("report", "File report", model.PriorityMedium, "2025-06-05"),
			task("late", "Overdue invoice", model.PriorityLow, "2025-06-01"),
			task("inbox", "Sort inbox", model.PriorityHigh, ""),
			task("future", "Dentist", model.PriorityMedium, "2025-06-10"),
			task("early", "Done early", model.PriorityMedium, "2025-06-09", doneAt(time.Date(2025, 6, 5, 11, 0, 0, 0, time.UTC))),
			task("old", "Old chore", model.PriorityMedium, "2025-05-20", doneAt(time.Date(2025, 5, 21, 9, 0, 0, 0, time.UTC))),
		},
		Done:  ledger.NewIndex([]model.CompletionRecord{{TaskID: "gym", InstanceDate: "2025-06-05"}}),
		Today: "2025-06-05",
		Loc:   time.UTC,
	}
}

func TestDayEntriesToday(t *testing.T) {
	in := fixture()
	entries := DayEntries(in, "2025-06-05")
	assert.ElementsMatch(t, []string{"gym", "report", "late", "inbox", "early"}, ids(entries))
	for _, e := range entries {
		switch e.Task.ID {
		case "gym":
			assert.True(t, e.Recurring)
			assert.True(t, e.Completed)
		case "late":
			assert.True(t, e.Overdue)
			assert.Equal(t, classify.Overdue, e.Rule)
		case "early":
			assert.True(t, e.Completed)
			assert.Equal(t, classify.CompletedOnDay, e.Rule)
		}
	}
}

func TestDayViewGroupByType(t *testing.T) {
	in := fixture()
	view := Day(in, "2025-06-06", SortByType, Ascending)
	assert.False(t, view.IsToday)
	require.Equal(t, []string{"recurring"}, groupKeys(view.Groups), "empty groups are omitted")
	assert.Equal(t, []string{"gym", "review"}, ids(view.Groups[0].Entries))

	view = Day(in, "2025-06-05", SortByType, Ascending)
	require.Equal(t, []string{"tasks", "recurring"}, groupKeys(view.Groups))
	// priority desc, then due date asc with undated last
	assert.Equal(t, []string{"inbox", "report", "early", "late"}, ids(view.Groups[0].Entries))
	assert.Equal(t, 5, view.Total)
	assert.Equal(t, 2, view.Completed)

	desc := Day(in, "2025-06-05", SortByType, Descending)
	assert.Equal(t, []string{"recurring", "tasks"}, groupKeys(desc.Groups))
	assert.Equal(t, ids(view.Groups[0].Entries), ids(desc.Groups[1].Entries))
}

func TestDayViewGroupByPriority(t *testing.T) {
	in := fixture()
	view := Day(in, "2025-06-05", SortByPriority, Ascending)
	require.Equal(t, []string{"high", "medium", "low"}, groupKeys(view.Groups))
	// within a priority: due date asc, undated last
	assert.Equal(t, []string{"gym", "inbox"}, ids(view.Groups[0].Entries))
	assert.Equal(t, "Normal Priority", view.Groups[1].Label)

	desc := Day(in, "2025-06-05", SortByPriority, Descending)
	assert.Equal(t, []string{"low", "medium", "high"}, groupKeys(desc.Groups))
}

func TestDayViewGroupByDue(t *testing.T) {
	in := fixture()
	view := Day(in, "2025-06-05", SortByDue, Ascending)
	require.Equal(t, []string{"overdue", "today", "due-2025-06-09", classify.NoDateKey}, groupKeys(view.Groups))
	assert.Equal(t, []string{"gym", "report"}, ids(view.Groups[1].Entries))
	assert.Equal(t, "Due Monday", view.Groups[2].Label)

	desc := Day(in, "2025-06-05", SortByDue, Descending)
	assert.Equal(t, []string{classify.NoDateKey, "due-2025-06-09", "today", "overdue"}, groupKeys(desc.Groups))
}

func TestDayViewEmptyAndInvalid(t *testing.T) {
	view := Day(Input{Today: "2025-06-05", Loc: time.UTC}, "2025-06-05", SortByType, Ascending)
	assert.Empty(t, view.Groups)
	assert.Zero(t, view.Total)
	assert.Empty(t, DayEntries(fixture(), "not-a-date"))
}

func TestWeekView(t *testing.T) {
	in := fixture()
	view := Week(in, "2025-06-05") // Thursday
	assert.Equal(t, "2025-06-01", view.Start)
	assert.Equal(t, "2025-06-07", view.End)
	assert.Equal(t, time.Sunday, view.Days[0].Weekday)
	assert.True(t, view.Days[4].IsToday)

	require.Len(t, view.Grid, 2)
	assert.Equal(t, "gym", view.Grid[0].Task.ID)
	gym := view.Grid[0].Cells
	assert.False(t, gym[0].Scheduled, "before anchor")
	assert.True(t, gym[1].Scheduled)
	assert.True(t, gym[4].Completed)
	assert.False(t, gym[3].Completed)
	review := view.Grid[1].Cells
	for i, c := range review {
		assert.Equal(t, i == 5, c.Scheduled, c.Date)
	}

	assert.ElementsMatch(t, []string{"report", "late", "inbox", "early"}, ids(view.Days[4].OneOffs))
	assert.Equal(t, []string{"late"}, ids(view.Days[0].OneOffs), "due on its own day")
	assert.Empty(t, view.Days[5].OneOffs)
}

func TestMonthView(t *testing.T) {
	in := fixture()
	view := Month(in, "2025-06-18")
	assert.Equal(t, time.June, view.Month)
	assert.Equal(t, "2025-06-01", view.Cells[0].Date, "June 2025 starts on Sunday")
	assert.Equal(t, "2025-07-12", view.Cells[41].Date)

	byDate := map[string]MonthCell{}
	for _, c := range view.Cells {
		byDate[c.Date] = c
	}
	today := byDate["2025-06-05"]
	assert.Equal(t, 5, today.Total)
	assert.Equal(t, 2, today.Completed)
	assert.InDelta(t, 40.0, today.Percent, 0.001)
	assert.Equal(t, HeatQuarter, today.Heat)

	yesterday := byDate["2025-06-04"]
	assert.Equal(t, 1, yesterday.Total)
	assert.Equal(t, HeatZero, yesterday.Heat)

	future := byDate["2025-06-10"]
	assert.True(t, future.IsFuture)
	assert.Equal(t, 2, future.Total)
	assert.Equal(t, -1.0, future.Percent)
	assert.Equal(t, HeatNone, future.Heat)

	trailing := byDate["2025-07-12"]
	assert.False(t, trailing.InMonth)
	assert.Equal(t, HeatNone, trailing.Heat)
}

func TestViewsAgreeOnEachDay(t *testing.T) {
	in := fixture()
	month := Month(in, "2025-06-05")
	week := Week(in, "2025-06-05")
	for i, wd := range week.Days {
		day := Day(in, wd.Date, SortByType, Ascending)
		oneOffs := 0
		for _, g := range day.Groups {
			if g.Key == "tasks" {
				oneOffs = len(g.Entries)
			}
		}
		assert.Equal(t, len(wd.OneOffs), oneOffs, wd.Date)

		recurring := 0
		for _, row := range week.Grid {
			if row.Cells[i].Scheduled {
				recurring++
			}
		}
		var cell MonthCell
		for _, c := range month.Cells {
			if c.Date == wd.Date {
				cell = c
			}
		}
		assert.Equal(t, day.Total, cell.Total, wd.Date)
		assert.Equal(t, day.Total, oneOffs+recurring, wd.Date)
	}
}

func TestHeatFor(t *testing.T) {
	cases := map[float64]Heat{-1: HeatNone, 0: HeatZero, 10: HeatLow, 25: HeatQuarter, 49.9: HeatQuarter, 50: HeatHalf, 75: HeatHigh, 99: HeatHigh, 100: HeatFull}
	for pct, want := range cases {
		assert.Equal(t, want, HeatFor(pct), pct)
	}
}

func TestTimeline(t *testing.T) {
	in := fixture()
	in.Tasks = append(in.Tasks,
		task("tomorrow", "Pack", model.PriorityLow, "2025-06-06"),
		task("monthly", "Rent", model.PriorityHigh, "2025-06-20", every(model.RecurrenceMonthly)),
		task("far", "Passport", model.PriorityHigh, "2025-07-30"),
	)
	groups := Timeline(in)
	require.Len(t, groups, 5)
	got := map[classify.Bucket][]string{}
	for _, g := range groups {
		got[g.Bucket] = ids(g.Entries)
	}
	assert.Equal(t, []string{"late"}, got[classify.BucketOverdue])
	assert.ElementsMatch(t, []string{"gym", "report", "inbox", "early"}, got[classify.BucketToday])
	assert.Equal(t, []string{"tomorrow"}, got[classify.BucketTomorrow])
	assert.Equal(t, []string{"future"}, got[classify.BucketUpcoming])
	assert.Equal(t, []string{"far"}, got[classify.BucketLater])

	// weekly review anchored 2025-06-06 has no occurrence yet; monthly rent neither
	for _, g := range groups {
		for _, e := range g.Entries {
			assert.NotEqual(t, "review", e.Task.ID)
			assert.NotEqual(t, "monthly", e.Task.ID)
			assert.NotEqual(t, "old", e.Task.ID)
		}
	}
}

func TestTimelineRecurringUsesLatestOccurrence(t *testing.T) {
	in := Input{
		Tasks: []model.Task{task("weekly", "Review", model.PriorityMedium, "2025-05-26", every(model.RecurrenceWeekly))},
		Done:  ledger.NewIndex(nil),
		Today: "2025-06-05",
		Loc:   time.UTC,
	}
	groups := Timeline(in)
	require.Len(t, groups[0].Entries, 1)
	assert.Equal(t, "2025-06-02", groups[0].Entries[0].InstanceDate)
}

func TestReportSkipsUnanchoredTasks(t *testing.T) {
	var reported []string
	in := Input{
		Tasks: []model.Task{{ID: "ghost", Title: "Ghost", Recurrence: model.RecurrenceDaily}},
		Today: "2025-06-05",
		Loc:   time.UTC,
		Report: func(t model.Task, err error) {
			if errors.Is(err, model.ErrAmbiguousRecurrenceAnchor) {
				reported = append(reported, t.ID)
			}
		},
	}
	assert.Empty(t, DayEntries(in, "2025-06-05"))
	assert.Empty(t, Week(in, "2025-06-05").Grid)
	assert.Equal(t, []string{"ghost", "ghost"}, reported)
}

func TestListOrderingAndFilters(t *testing.T) {
	later := base.Add(time.Hour)
	in := Input{
		Tasks: []model.Task{
			task("c", "Undated high", model.PriorityHigh, ""),
			task("a", "Due high", model.PriorityHigh, "2025-06-07"),
			task("b", "Due high earlier created later", model.PriorityHigh, "2025-06-07", created(later)),
			task("d", "Low", model.PriorityLow, "2025-06-01", inCategory("work")),
			task("e", "Future recurring", model.PriorityHigh, "2025-06-30", every(model.RecurrenceDaily)),
			task("f", "Done today", model.PriorityMedium, "", doneAt(time.Date(2025, 6, 5, 7, 0, 0, 0, time.UTC))),
			task("g", "Done yesterday", model.PriorityMedium, "", doneAt(time.Date(2025, 6, 4, 7, 0, 0, 0, time.UTC))),
		},
		Today: "2025-06-05",
		Loc:   time.UTC,
	}
	assert.Equal(t, []string{"a", "b", "c", "f", "d"}, taskIDs(List(in, Filter{})))
	assert.Equal(t, []string{"a", "b", "c", "d"}, taskIDs(List(in, Filter{Status: StatusActive})))
	assert.Equal(t, []string{"f"}, taskIDs(List(in, Filter{Status: StatusCompleted})))
	assert.Equal(t, []string{"d"}, taskIDs(List(in, Filter{CategoryID: "work"})))
}

func TestCompareTasksUsesTimeOfDay(t *testing.T) {
	a := task("a", "Morning", model.PriorityMedium, "2025-06-07T09:00:00")
	b := task("b", "Evening", model.PriorityMedium, "2025-06-07T18:00:00")
	assert.Negative(t, CompareTasks(a, b))
	assert.Positive(t, CompareTasks(b, a))
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestHistory(t *testing.T) {
	in := Input{
		Tasks: []model.Task{
			task("a", "Buy milk", model.PriorityLow, "", doneAt(time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC))),
			task("b", "Call plumber", model.PriorityLow, "", doneAt(time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC))),
			task("c", "Buy bread", model.PriorityLow, "", doneAt(time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC))),
			task("d", "Legacy", model.PriorityLow, "2025-04-01", func(t *model.Task) { t.Completed = true }),
			task("e", "Today", model.PriorityLow, "", doneAt(time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC))),
			task("f", "Open", model.PriorityLow, "2025-05-01"),
		},
		Today: "2025-06-05",
		Loc:   time.UTC,
	}
	groups := History(in, HistoryQuery{})
	require.Len(t, groups, 3)
	assert.Equal(t, "2025-06-03", groups[0].Date)
	assert.Equal(t, []string{"b", "a"}, taskIDs(groups[0].Tasks))
	assert.Equal(t, "2025-05-30", groups[1].Date)
	assert.Equal(t, "2025-04-01", groups[2].Date)

	search := History(in, HistoryQuery{Search: "BUY"})
	require.Len(t, search, 2)
	assert.Equal(t, []string{"a"}, taskIDs(search[0].Tasks))

	may := History(in, HistoryQuery{Year: 2025, Month: 5})
	require.Len(t, may, 1)
	assert.Equal(t, "2025-05-30", may[0].Date)
}

func TestTodayProgressMood(t *testing.T) {
	in := fixture()
	p := TodayProgress(in, time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 2, p.Completed)
	assert.True(t, p.Overdue)
	assert.Equal(t, MoodAngry, p.Mood)

	assert.Equal(t, MoodIdle, moodFor(Progress{}, 12))
	assert.Equal(t, MoodStarry, moodFor(Progress{Total: 3, Completed: 3}, 12))
	assert.Equal(t, MoodSweating, moodFor(Progress{Total: 2, Completed: 1}, 23))
	assert.Equal(t, MoodSaluting, moodFor(Progress{Total: 2, Completed: 1}, 3))
	assert.Equal(t, MoodPumped, moodFor(Progress{Total: 2, Completed: 1}, 12))
	assert.Equal(t, MoodUnamused, moodFor(Progress{Total: 6, Completed: 2}, 12))
	assert.Equal(t, MoodFocused, moodFor(Progress{Total: 4, Completed: 2}, 12))
}

func TestParseHelpers(t *testing.T) {
	k, ok := ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, SortByType, k)
	_, ok = ParseSortKey("alpha")
	assert.False(t, ok)
	o, ok := ParseOrder("DESC")
	assert.True(t, ok)
	assert.Equal(t, Descending, o)
	s, ok := ParseStatus("active")
	assert.True(t, ok)
	assert.Equal(t, StatusActive, s)
}
