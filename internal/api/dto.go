package api

import (
	"time"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
)

type TaskItem struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	DueDate               string  `json:"due_date,omitempty"`
	Priority              string  `json:"priority"`
	Recurrence            string  `json:"recurrence"`
	ReminderMinutesBefore *int    `json:"reminder_minutes_before,omitempty"`
	CategoryID            *string `json:"category_id,omitempty"`
	Completed             bool    `json:"completed"`
	CompletedAt           *string `json:"completed_at,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

type CreateTaskRequest struct {
	Title           string `json:"title" binding:"required,max=500"`
	DueDate         string `json:"due_date"`
	Priority        string `json:"priority"`
	Recurrence      string `json:"recurrence"`
	ReminderMinutes *int   `json:"reminder_minutes_before"`
	CategoryID      string `json:"category_id"`
}

// UpdateTaskRequest changes only the fields present. An empty due_date or
// category_id clears the value.
type UpdateTaskRequest struct {
	Title           *string `json:"title"`
	DueDate         *string `json:"due_date"`
	Priority        *string `json:"priority"`
	Recurrence      *string `json:"recurrence"`
	ReminderMinutes *int    `json:"reminder_minutes_before"`
	ClearReminder   bool    `json:"clear_reminder"`
	CategoryID      *string `json:"category_id"`
}

type ToggleRequest struct {
	InstanceDate string `json:"instance_date"`
}

type ToggleResponse struct {
	TaskID       string `json:"task_id"`
	InstanceDate string `json:"instance_date,omitempty"`
	Completed    bool   `json:"completed"`
}

type CategoryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type AlertItem struct {
	TaskID  string `json:"task_id"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	DueAt   string `json:"due_at"`
	FiredAt string `json:"fired_at"`
	Snoozed bool   `json:"snoozed"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

type SnoozeResponse struct {
	TaskID    string `json:"task_id"`
	TriggerAt string `json:"trigger_at"`
}

type EntryItem struct {
	Task         TaskItem `json:"task"`
	InstanceDate string   `json:"instance_date,omitempty"`
	Recurring    bool     `json:"recurring"`
	Completed    bool     `json:"completed"`
	Overdue      bool     `json:"overdue"`
}

type GroupItem struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Entries []EntryItem `json:"entries"`
}

type DayResponse struct {
	Date      string      `json:"date"`
	IsToday   bool        `json:"is_today"`
	IsPast    bool        `json:"is_past"`
	Total     int         `json:"total"`
	Completed int         `json:"completed"`
	Groups    []GroupItem `json:"groups"`
}

type WeekDayItem struct {
	Date    string      `json:"date"`
	Weekday string      `json:"weekday"`
	IsToday bool        `json:"is_today"`
	IsPast  bool        `json:"is_past"`
	OneOffs []EntryItem `json:"one_offs"`
}

type GridCellItem struct {
	Date      string `json:"date"`
	Scheduled bool   `json:"scheduled"`
	Completed bool   `json:"completed"`
}

type GridRowItem struct {
	Task  TaskItem       `json:"task"`
	Cells []GridCellItem `json:"cells"`
}

type WeekResponse struct {
	Start string        `json:"start"`
	End   string        `json:"end"`
	Days  []WeekDayItem `json:"days"`
	Grid  []GridRowItem `json:"grid"`
}

type MonthCellItem struct {
	Date      string  `json:"date"`
	Day       int     `json:"day"`
	InMonth   bool    `json:"in_month"`
	IsToday   bool    `json:"is_today"`
	IsFuture  bool    `json:"is_future"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
	Heat      string  `json:"heat"`
}

type MonthResponse struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Cells []MonthCellItem `json:"cells"`
}

type TimelineItem struct {
	Bucket  string      `json:"bucket"`
	Label   string      `json:"label"`
	Entries []EntryItem `json:"entries"`
}

type HistoryItem struct {
	Date  string     `json:"date,omitempty"`
	Tasks []TaskItem `json:"tasks"`
}

type ProgressResponse struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
	Overdue   bool    `json:"overdue"`
	Mood      string  `json:"mood"`
}

func toTaskItem(t model.Task) TaskItem {
	item := TaskItem{
		ID:                    t.ID,
		Title:                 t.Title,
		DueDate:               t.DueDate,
		Priority:              string(t.Priority),
		Recurrence:            string(t.Recurrence),
		ReminderMinutesBefore: t.ReminderMinutesBefore,
		CategoryID:            t.CategoryID,
		Completed:             t.Completed,
		CreatedAt:             formatTime(t.CreatedAt),
	}
	if item.Recurrence == "" {
		item.Recurrence = "none"
	}
	if t.CompletedAt != nil {
		s := formatTime(*t.CompletedAt)
		item.CompletedAt = &s
	}
	return item
}

func toTaskItems(tasks []model.Task) []TaskItem {
	out := make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskItem(t))
	}
	return out
}

func toEntryItems(entries []projection.Entry) []EntryItem {
	out := make([]EntryItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryItem{
			Task:         toTaskItem(e.Task),
			InstanceDate: e.InstanceDate,
			Recurring:    e.Recurring,
			Completed:    e.Completed,
			Overdue:      e.Overdue,
		})
	}
	return out
}

func toDayResponse(v projection.DayView) DayResponse {
	out := DayResponse{
		Date:      v.Date,
		IsToday:   v.IsToday,
		IsPast:    v.IsPast,
		Total:     v.Total,
		Completed: v.Completed,
		Groups:    make([]GroupItem, 0, len(v.Groups)),
	}
	for _, g := range v.Groups {
		out.Groups = append(out.Groups, GroupItem{Key: g.Key, Label: g.Label, Entries: toEntryItems(g.Entries)})
	}
	return out
}

func toWeekResponse(v projection.WeekView) WeekResponse {
	out := WeekResponse{Start: v.Start, End: v.End, Grid: make([]GridRowItem, 0, len(v.Grid))}
	for _, d := range v.Days {
		out.Days = append(out.Days, WeekDayItem{
			Date:    d.Date,
			Weekday: d.Weekday.String(),
			IsToday: d.IsToday,
			IsPast:  d.IsPast,
			OneOffs: toEntryItems(d.OneOffs),
		})
	}
	for _, row := range v.Grid {
		item := GridRowItem{Task: toTaskItem(row.Task)}
		for _, c := range row.Cells {
			item.Cells = append(item.Cells, GridCellItem{Date: c.Date, Scheduled: c.Scheduled, Completed: c.Completed})
		}
		out.Grid = append(out.Grid, item)
	}
	return out
}

func toMonthResponse(v projection.MonthView) MonthResponse {
	out := MonthResponse{Year: v.Year, Month: int(v.Month), Cells: make([]MonthCellItem, 0, len(v.Cells))}
	for _, c := range v.Cells {
		out.Cells = append(out.Cells, MonthCellItem{
			Date:      c.Date,
			Day:       c.Day,
			InMonth:   c.InMonth,
			IsToday:   c.IsToday,
			IsFuture:  c.IsFuture,
			Total:     c.Total,
			Completed: c.Completed,
			Percent:   c.Percent,
			Heat:      string(c.Heat),
		})
	}
	return out
}

func toTimelineItems(groups []projection.TimelineGroup) []TimelineItem {
	out := make([]TimelineItem, 0, len(groups))
	for _, g := range groups {
		out = append(out, TimelineItem{Bucket: string(g.Bucket), Label: g.Label, Entries: toEntryItems(g.Entries)})
	}
	return out
}

func toHistoryItems(groups []projection.HistoryGroup) []HistoryItem {
	out := make([]HistoryItem, 0, len(groups))
	for _, g := range groups {
		out = append(out, HistoryItem{Date: g.Date, Tasks: toTaskItems(g.Tasks)})
	}
	return out
}

func toCategoryItem(c model.Category) CategoryItem {
	return CategoryItem{ID: c.ID, Name: c.Name, Color: c.Color, CreatedAt: formatTime(c.CreatedAt)}
}

func toAlertItems(alerts []model.Alert) []AlertItem {
	out := make([]AlertItem, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertItem{
			TaskID:  a.TaskID,
			Title:   a.Title,
			Kind:    string(a.Kind),
			DueAt:   formatTime(a.DueAt),
			FiredAt: formatTime(a.FiredAt),
			Snoozed: a.Snoozed,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
