package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
)

// Plain-text renderings of the views, used by /show and the CLI.

func RenderDay(v projection.DayView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", v.Date)
	if v.IsToday {
		b.WriteString(" (today)")
	}
	fmt.Fprintf(&b, "  %d/%d done\n", v.Completed, v.Total)
	if v.Total == 0 {
		b.WriteString("  nothing scheduled\n")
	}
	for _, g := range v.Groups {
		fmt.Fprintf(&b, "%s\n", g.Label)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  %s\n", entryLine(e))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderWeek(v projection.WeekView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s .. %s\n", v.Start, v.End)
	if len(v.Grid) > 0 {
		b.WriteString(fmt.Sprintf("%-20s", "Recurring"))
		for _, d := range v.Days {
			b.WriteString(" " + d.Weekday.String()[:2])
		}
		b.WriteString("\n")
		for _, row := range v.Grid {
			b.WriteString(fmt.Sprintf("%-20s", truncate(row.Task.Title, 20)))
			for _, c := range row.Cells {
				mark := " ·"
				switch {
				case c.Completed:
					mark = " x"
				case c.Scheduled:
					mark = " o"
				}
				b.WriteString(" " + mark)
			}
			b.WriteString("\n")
		}
	}
	for _, d := range v.Days {
		if len(d.OneOffs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", d.Weekday.String()[:3], d.Date)
		for _, e := range d.OneOffs {
			fmt.Fprintf(&b, "  %s\n", entryLine(e))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderMonth(v projection.MonthView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", v.Month, v.Year)
	b.WriteString(" Su   Mo   Tu   We   Th   Fr   Sa\n")
	for i, c := range v.Cells {
		cell := "    "
		if c.InMonth {
			cell = fmt.Sprintf("%2d%s", c.Day, heatMark(c.Heat))
		}
		b.WriteString(" " + cell)
		if i%7 == 6 {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderTimeline(groups []projection.TimelineGroup) string {
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "%s (%d)\n", g.Label, len(g.Entries))
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "  %s\n", entryLine(e))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func entryLine(e projection.Entry) string {
	box := "[ ]"
	if e.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s", box, e.Task.Title)
	if e.Task.Priority == model.PriorityHigh {
		line += " !"
	}
	if date := e.EffectiveDate(); date != "" && !e.Recurring {
		line += "  due " + date
	}
	if e.Overdue {
		line += " (overdue)"
	}
	return line + "  #" + e.Task.ID
}

func heatMark(h projection.Heat) string {
	switch h {
	case projection.HeatFull:
		return "██"
	case projection.HeatHigh:
		return "▓▓"
	case projection.HeatHalf:
		return "▒▒"
	case projection.HeatQuarter, projection.HeatLow:
		return "░░"
	case projection.HeatZero:
		return " ."
	default:
		return "  "
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
