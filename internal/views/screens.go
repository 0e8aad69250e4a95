package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type EntryData struct {
	Title     string
	Meta      string
	Priority  string
	Completed bool
	Overdue   bool
	Selected  bool
}

type SectionData struct {
	Label   string
	Entries []EntryData
}

type DayPanelData struct {
	Date      string
	IsToday   bool
	Group     string
	Order     string
	Total     int
	Completed int
	Sections  []SectionData
}

type WeekCellData struct {
	Scheduled bool
	Completed bool
	Selected  bool
}

type WeekRowData struct {
	Title    string
	Selected bool
	Cells    []WeekCellData
}

type WeekPanelData struct {
	Start   string
	End     string
	Headers []string
	Rows    []WeekRowData
	OneOffs []SectionData
}

type MonthCellData struct {
	Day      int
	InMonth  bool
	IsToday  bool
	Selected bool
	Heat     string
}

type MonthPanelData struct {
	Title    string
	Cells    []MonthCellData
	Selected string
	Summary  string
}

type TimelinePanelData struct {
	Filter   string
	Sections []SectionData
}

type AlertData struct {
	Title string
	Body  string
	Due   bool
}

type ProgressPanelData struct {
	Bar       string
	Completed int
	Total     int
	Mood      string
	Overdue   bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

var (
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	dueAlertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	heatStyles    = map[string]lipgloss.Style{
		"none":    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"zero":    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"low":     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"quarter": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"half":    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"high":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"full":    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
)

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	title := data.Date
	if data.IsToday {
		title += " (today)"
	}
	b.WriteString(fmt.Sprintf("day: %s\n", title))
	b.WriteString(fmt.Sprintf("group: %s | order: %s | done: %d/%d\n", data.Group, data.Order, data.Completed, data.Total))
	b.WriteString("actions: [h/l]date [t]today [j/k]move [space]toggle [g]group [o]order\n")
	if data.Total == 0 {
		b.WriteString("\n(nothing scheduled)")
		return b.String()
	}
	renderSections(&b, data.Sections)
	return strings.TrimSpace(b.String())
}

func RenderWeekPanel(data WeekPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("week: %s .. %s\n", data.Start, data.End))
	b.WriteString("actions: [h/l]week [j/k]task [,/.]day [space]toggle\n")
	if len(data.Rows) == 0 {
		b.WriteString("\n(no recurring tasks)\n")
	} else {
		b.WriteString(fmt.Sprintf("\n  %-18s %s\n", "recurring", strings.Join(data.Headers, " ")))
		for _, row := range data.Rows {
			cursor := " "
			if row.Selected {
				cursor = ">"
			}
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				cells = append(cells, weekCell(c))
			}
			b.WriteString(fmt.Sprintf("%s %-18s %s\n", cursor, truncate(row.Title, 18), strings.Join(cells, " ")))
		}
	}
	renderSections(&b, data.OneOffs)
	return strings.TrimSpace(b.String())
}

func weekCell(c WeekCellData) string {
	mark := " ·"
	switch {
	case c.Completed:
		mark = " ✓"
	case c.Scheduled:
		mark = " ○"
	}
	if c.Selected {
		return selectedStyle.Render("[" + strings.TrimSpace(mark) + "]")
	}
	return mark + " "
}

func RenderMonthPanel(data MonthPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("month: %s\n", data.Title))
	b.WriteString("actions: [h/l]month [,/.]day [enter]open day\n\n")
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
	for i, c := range data.Cells {
		cell := "    "
		if c.InMonth {
			style, ok := heatStyles[c.Heat]
			if !ok {
				style = heatStyles["none"]
			}
			if c.IsToday || c.Selected {
				style = style.Underline(true)
			}
			cell = style.Render(fmt.Sprintf(" %2d ", c.Day))
			if c.Selected {
				cell = style.Render(fmt.Sprintf("[%2d]", c.Day))
			}
		}
		b.WriteString(cell)
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	if data.Selected != "" {
		b.WriteString(fmt.Sprintf("\n%s: %s", data.Selected, data.Summary))
	}
	return strings.TrimSpace(b.String())
}

func RenderTimelinePanel(data TimelinePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("timeline: %s\n", data.Filter))
	b.WriteString("actions: [j/k]move [space]toggle [f]filter\n")
	renderSections(&b, data.Sections)
	return strings.TrimSpace(b.String())
}

func RenderProgressPanel(data ProgressPanelData) string {
	line := fmt.Sprintf("progress: %d/%d %s", data.Completed, data.Total, data.Bar)
	if data.Mood != "" {
		line += fmt.Sprintf("\nmood: %s", data.Mood)
	}
	if data.Overdue {
		line += overdueStyle.Render(" (overdue work)")
	}
	return line
}

func RenderAlertsPanel(alerts []AlertData) string {
	if len(alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nalerts: [a]ack [s]snooze\n")
	for _, a := range alerts {
		title := a.Title
		if a.Due {
			title = dueAlertStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", title, a.Body))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func renderSections(b *strings.Builder, sections []SectionData) {
	for _, s := range sections {
		b.WriteString(fmt.Sprintf("\n%s:\n", s.Label))
		if len(s.Entries) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		for _, e := range s.Entries {
			b.WriteString(renderEntry(e) + "\n")
		}
	}
}

func renderEntry(e EntryData) string {
	cursor := " "
	if e.Selected {
		cursor = ">"
	}
	box := "[ ]"
	if e.Completed {
		box = "[x]"
	}
	title := e.Title
	switch {
	case e.Completed:
		title = doneStyle.Render(title)
	case e.Overdue:
		title = overdueStyle.Render(title)
	case e.Selected:
		title = selectedStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s %s", cursor, box, priorityBadge(e.Priority), title)
	if e.Meta != "" {
		line += " " + e.Meta
	}
	return line
}

func priorityBadge(p string) string {
	switch p {
	case "high":
		return "[RED]"
	case "low":
		return "[GREEN]"
	default:
		return "[YELLOW]"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
