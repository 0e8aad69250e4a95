package projection

import (
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

// Heat buckets a day's completion percentage. HeatNone marks future days and
// days without tasks, which are "no data" rather than a 0% failure.
type Heat string

const (
	HeatNone    Heat = "none"
	HeatZero    Heat = "zero"
	HeatLow     Heat = "low"
	HeatQuarter Heat = "quarter"
	HeatHalf    Heat = "half"
	HeatHigh    Heat = "high"
	HeatFull    Heat = "full"
)

// HeatFor maps a percentage to its bucket; negative means no data.
func HeatFor(percent float64) Heat {
	switch {
	case percent < 0:
		return HeatNone
	case percent >= 100:
		return HeatFull
	case percent >= 75:
		return HeatHigh
	case percent >= 50:
		return HeatHalf
	case percent >= 25:
		return HeatQuarter
	case percent > 0:
		return HeatLow
	default:
		return HeatZero
	}
}

type MonthCell struct {
	Date      string
	Day       int
	InMonth   bool
	IsToday   bool
	IsFuture  bool
	Total     int
	Completed int
	// Percent is -1 when the cell has no data.
	Percent float64
	Heat    Heat
}

type MonthView struct {
	Year  int
	Month time.Month
	Cells [42]MonthCell
}

// Month projects the six-week Sunday-start grid around anchor's month. Each
// cell counts the same entries the day view would show for that date.
func Month(in Input, anchor string) MonthView {
	var view MonthView
	date, ok := in.parse(anchor)
	if !ok {
		return view
	}
	y, m, _ := date.Date()
	view.Year, view.Month = y, m
	first := time.Date(y, m, 1, 0, 0, 0, 0, date.Location())
	start := calendar.StartOfWeek(first)

	for i := range view.Cells {
		d := calendar.AddDays(start, i)
		day := calendar.FormatCalendarDate(d)
		cell := MonthCell{
			Date:     day,
			Day:      d.Day(),
			InMonth:  d.Month() == m,
			IsToday:  day == in.Today,
			IsFuture: day > in.Today,
		}
		for _, e := range DayEntries(in, day) {
			cell.Total++
			if e.Completed {
				cell.Completed++
			}
		}
		cell.Percent = -1
		if !cell.IsFuture && cell.Total > 0 {
			cell.Percent = float64(cell.Completed) / float64(cell.Total) * 100
		}
		cell.Heat = HeatFor(cell.Percent)
		view.Cells[i] = cell
	}
	return view
}
