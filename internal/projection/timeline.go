package projection

import (
	"sort"

	"github.com/sandeepkv93/bossmode/internal/classify"
	"github.com/sandeepkv93/bossmode/internal/model"
)

type TimelineGroup struct {
	Bucket  classify.Bucket
	Label   string
	Entries []Entry
}

// Timeline buckets open work relative to today. One-off tasks the classifier
// places on today land in Today (or Overdue when rolled forward); the rest go
// by due date. Recurring tasks contribute only their latest occurrence on or
// before today. Completed history is left out. All five buckets are returned
// in display order, empty ones included.
func Timeline(in Input) []TimelineGroup {
	today, ok := in.parse(in.Today)
	groups := make([]TimelineGroup, len(classify.Buckets))
	for i, b := range classify.Buckets {
		groups[i] = TimelineGroup{Bucket: b, Label: b.Label()}
	}
	if !ok {
		return groups
	}
	loc := in.location()
	index := make(map[classify.Bucket]int, len(groups))
	for i, g := range groups {
		index[g.Bucket] = i
	}
	add := func(e Entry, date string) {
		b := classify.TimelineBucket(date, in.Today)
		i := index[b]
		groups[i].Entries = append(groups[i].Entries, e)
	}

	for _, t := range in.Tasks {
		if t.IsRecurring() {
			day, ok, err := model.LatestOnOrBefore(t, today)
			if err != nil {
				in.report(t, err)
				continue
			}
			if !ok {
				continue
			}
			add(Entry{
				Task:         t,
				InstanceDate: day,
				Recurring:    true,
				Completed:    in.Done.Has(t.ID, day),
				Rule:         classify.DueOnDay,
			}, day)
			continue
		}
		if IsHistory(t, in.Today, loc) {
			continue
		}
		d := classify.OneOff(t, in.Today, in.Today, loc)
		due, hasDue := t.DueDay()
		switch {
		case d.Rule == classify.Overdue:
			add(Entry{Task: t, InstanceDate: due, Overdue: true, Rule: d.Rule}, due)
		case d.Included():
			add(Entry{Task: t, InstanceDate: in.Today, Completed: d.Completed, Rule: d.Rule}, in.Today)
		case hasDue && due > in.Today:
			add(Entry{Task: t, InstanceDate: due, Completed: t.Completed, Rule: classify.DueOnDay}, due)
		}
	}

	for i := range groups {
		entries := groups[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			if c := compareDates(entries[a].InstanceDate, entries[b].InstanceDate); c != 0 {
				return c < 0
			}
			return Compare(entries[a], entries[b], SortByDue) < 0
		})
	}
	return groups
}
