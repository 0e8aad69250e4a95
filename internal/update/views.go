package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/views"
)

var groupCycle = []projection.SortKey{projection.SortByType, projection.SortByPriority, projection.SortByDue}

func flatten(groups []projection.Group) []projection.Entry {
	var out []projection.Entry
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}

func flattenTimeline(groups []projection.TimelineGroup) []projection.Entry {
	var out []projection.Entry
	for _, g := range groups {
		out = append(out, g.Entries...)
	}
	return out
}

func (m Model) timelineGroups() []projection.TimelineGroup {
	return m.planner.Timeline(projection.Filter{Status: projection.StatusActive, CategoryID: m.Category})
}

func (m *Model) moveCursor(delta, n int) {
	m.Cursor += delta
	m.clampCursor(n)
}

func (m *Model) clampCursor(n int) {
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) shiftDate(days int) {
	next, err := calendar.ShiftDate(m.Date, days)
	if err != nil {
		m.fail(err)
		return
	}
	m.Date = next
}

func (m *Model) shiftMonth(delta int) {
	t, err := calendar.ParseCalendarDate(m.Date, time.UTC)
	if err != nil {
		m.fail(err)
		return
	}
	first := time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	day := min(t.Day(), calendar.DaysIn(first.Year(), first.Month()))
	m.Date = calendar.FormatCalendarDate(first.AddDate(0, 0, day-1))
}

// toggleEntry completes or reopens one displayed occurrence.
func (m *Model) toggleEntry(e projection.Entry) {
	date := ""
	if e.Recurring {
		date = e.InstanceDate
	}
	done, err := m.planner.Toggle(m.ctx, e.Task.ID, date)
	if err != nil {
		m.fail(err)
		return
	}
	state := "done"
	if !done {
		state = "reopened"
	}
	text := fmt.Sprintf("%q %s", e.Task.Title, state)
	if date != "" {
		text += " for " + date
	}
	m.setStatus(text, false)
}

func (m Model) handleDayKey(msg tea.KeyMsg) Model {
	entries := flatten(m.planner.Day(m.Date, m.Group, m.Order).Groups)
	switch msg.String() {
	case "h", "left":
		m.shiftDate(-1)
		m.Cursor = 0
	case "l", "right":
		m.shiftDate(1)
		m.Cursor = 0
	case "t":
		m.Date = m.planner.Today()
		m.Cursor = 0
	case "j", "down":
		m.moveCursor(1, len(entries))
	case "k", "up":
		m.moveCursor(-1, len(entries))
	case " ", "enter":
		if m.Cursor < len(entries) {
			m.toggleEntry(entries[m.Cursor])
		}
	case "g":
		for i, k := range groupCycle {
			if k == m.Group {
				m.Group = groupCycle[(i+1)%len(groupCycle)]
				break
			}
		}
		m.setStatus("grouped by "+string(m.Group), false)
	case "o":
		if m.Order == projection.Ascending {
			m.Order = projection.Descending
		} else {
			m.Order = projection.Ascending
		}
		m.setStatus("order "+string(m.Order), false)
	}
	return m
}

func (m Model) handleWeekKey(msg tea.KeyMsg) Model {
	week := m.planner.Week(m.Date)
	switch msg.String() {
	case "h", "left":
		m.shiftDate(-7)
	case "l", "right":
		m.shiftDate(7)
	case ",":
		m.shiftDate(-1)
	case ".":
		m.shiftDate(1)
	case "t":
		m.Date = m.planner.Today()
	case "j", "down":
		m.moveCursor(1, len(week.Grid))
	case "k", "up":
		m.moveCursor(-1, len(week.Grid))
	case " ", "enter":
		if m.Cursor >= len(week.Grid) {
			return m
		}
		row := week.Grid[m.Cursor]
		for _, c := range row.Cells {
			if c.Date != m.Date {
				continue
			}
			if !c.Scheduled {
				m.setStatus(fmt.Sprintf("%q is not scheduled on %s", row.Task.Title, c.Date), true)
				return m
			}
			m.toggleEntry(projection.Entry{Task: row.Task, InstanceDate: c.Date, Recurring: true})
		}
	}
	return m
}

func (m Model) handleMonthKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.shiftMonth(-1)
	case "l", "right":
		m.shiftMonth(1)
	case ",":
		m.shiftDate(-1)
	case ".":
		m.shiftDate(1)
	case "t":
		m.Date = m.planner.Today()
	case "enter":
		m.CurrentView = ViewDay
		m.Cursor = 0
	}
	return m
}

func (m Model) handleTimelineKey(msg tea.KeyMsg) Model {
	entries := flattenTimeline(m.timelineGroups())
	switch msg.String() {
	case "j", "down":
		m.moveCursor(1, len(entries))
	case "k", "up":
		m.moveCursor(-1, len(entries))
	case " ", "enter":
		if m.Cursor < len(entries) {
			m.toggleEntry(entries[m.Cursor])
		}
		m.clampCursor(len(flattenTimeline(m.timelineGroups())))
	case "f":
		m.Category = m.nextCategory()
		m.Cursor = 0
		m.setStatus("timeline: "+m.categoryLabel(), false)
	}
	return m
}

func (m Model) nextCategory() string {
	cats := m.planner.Categories()
	if len(cats) == 0 {
		return ""
	}
	if m.Category == "" {
		return cats[0].ID
	}
	for i, c := range cats {
		if c.ID == m.Category {
			if i+1 < len(cats) {
				return cats[i+1].ID
			}
			return ""
		}
	}
	return ""
}

func (m Model) categoryLabel() string {
	if m.Category == "" {
		return "all categories"
	}
	for _, c := range m.planner.Categories() {
		if c.ID == m.Category {
			return c.Name
		}
	}
	return m.Category
}

func entryData(e projection.Entry, selected bool) views.EntryData {
	d := views.EntryData{
		Title:     e.Task.Title,
		Priority:  string(e.Task.Priority),
		Completed: e.Completed,
		Overdue:   e.Overdue,
		Selected:  selected,
	}
	switch {
	case e.Recurring:
		d.Meta = fmt.Sprintf("(%s)", e.Task.Recurrence)
	case e.Task.DueDate != "":
		d.Meta = "due " + dueLabel(e.Task)
	}
	return d
}

func dueLabel(t model.Task) string {
	day, _ := t.DueDay()
	if calendar.HasTime(t.DueDate) && len(t.DueDate) >= 16 {
		return day + " " + t.DueDate[11:16]
	}
	return day
}

func (m Model) renderDayView() string {
	v := m.planner.Day(m.Date, m.Group, m.Order)
	data := views.DayPanelData{
		Date:      v.Date,
		IsToday:   v.IsToday,
		Group:     string(m.Group),
		Order:     string(m.Order),
		Total:     v.Total,
		Completed: v.Completed,
	}
	i := 0
	for _, g := range v.Groups {
		sec := views.SectionData{Label: g.Label}
		for _, e := range g.Entries {
			sec.Entries = append(sec.Entries, entryData(e, i == m.Cursor))
			i++
		}
		data.Sections = append(data.Sections, sec)
	}
	return views.RenderDayPanel(data)
}

func (m Model) renderWeekView() string {
	v := m.planner.Week(m.Date)
	data := views.WeekPanelData{Start: v.Start, End: v.End}
	for _, d := range v.Days {
		h := d.Weekday.String()[:2]
		if d.Date == m.Date {
			h = "[" + h[:1] + "]"
		}
		data.Headers = append(data.Headers, fmt.Sprintf("%-3s", h))
	}
	for i, row := range v.Grid {
		r := views.WeekRowData{Title: row.Task.Title, Selected: i == m.Cursor}
		for _, c := range row.Cells {
			r.Cells = append(r.Cells, views.WeekCellData{
				Scheduled: c.Scheduled,
				Completed: c.Completed,
				Selected:  i == m.Cursor && c.Date == m.Date,
			})
		}
		data.Rows = append(data.Rows, r)
	}
	for _, d := range v.Days {
		if len(d.OneOffs) == 0 {
			continue
		}
		sec := views.SectionData{Label: d.Weekday.String() + " " + d.Date}
		for _, e := range d.OneOffs {
			sec.Entries = append(sec.Entries, entryData(e, false))
		}
		data.OneOffs = append(data.OneOffs, sec)
	}
	return views.RenderWeekPanel(data)
}

func (m Model) renderMonthView() string {
	v := m.planner.Month(m.Date)
	data := views.MonthPanelData{Title: fmt.Sprintf("%s %d", v.Month, v.Year), Selected: m.Date}
	for _, c := range v.Cells {
		data.Cells = append(data.Cells, views.MonthCellData{
			Day:      c.Day,
			InMonth:  c.InMonth,
			IsToday:  c.IsToday,
			Selected: c.Date == m.Date,
			Heat:     string(c.Heat),
		})
		if c.Date == m.Date {
			switch {
			case c.Total == 0:
				data.Summary = "no tasks"
			case c.IsFuture:
				data.Summary = fmt.Sprintf("%d scheduled", c.Total)
			default:
				data.Summary = fmt.Sprintf("%d/%d done (%.0f%%)", c.Completed, c.Total, c.Percent)
			}
		}
	}
	return views.RenderMonthPanel(data)
}

func (m Model) renderTimelineView() string {
	data := views.TimelinePanelData{Filter: m.categoryLabel()}
	i := 0
	for _, g := range m.timelineGroups() {
		sec := views.SectionData{Label: fmt.Sprintf("%s (%d)", g.Label, len(g.Entries))}
		for _, e := range g.Entries {
			sec.Entries = append(sec.Entries, entryData(e, i == m.Cursor))
			i++
		}
		data.Sections = append(data.Sections, sec)
	}
	return views.RenderTimelinePanel(data)
}
