package projection

import (
	"sort"

	"github.com/sandeepkv93/bossmode/internal/classify"
	"github.com/sandeepkv93/bossmode/internal/model"
)

type Group struct {
	Key     string
	Label   string
	Entries []Entry
}

type DayView struct {
	Date      string
	IsToday   bool
	IsPast    bool
	Groups    []Group
	Total     int
	Completed int
}

// Day projects one date grouped by key. Ascending order puts one-off tasks
// before recurring, high priority before low, and earlier due dates first;
// Descending reverses the group order only.
func Day(in Input, day string, key SortKey, order Order) DayView {
	entries := DayEntries(in, day)
	view := DayView{
		Date:    day,
		IsToday: day == in.Today,
		IsPast:  day < in.Today,
		Total:   len(entries),
	}
	for _, e := range entries {
		if e.Completed {
			view.Completed++
		}
	}
	switch key {
	case SortByPriority:
		view.Groups = groupByPriority(entries)
	case SortByDue:
		view.Groups = groupByDue(entries, in.Today, order)
		return view
	default:
		view.Groups = groupByType(entries)
	}
	if order == Descending {
		reverseGroups(view.Groups)
	}
	return view
}

func groupByType(entries []Entry) []Group {
	var oneOff, recurring []Entry
	for _, e := range entries {
		if e.Recurring {
			recurring = append(recurring, e)
		} else {
			oneOff = append(oneOff, e)
		}
	}
	groups := make([]Group, 0, 2)
	if len(oneOff) > 0 {
		sortEntries(oneOff, SortByType)
		groups = append(groups, Group{Key: "tasks", Label: "Tasks", Entries: oneOff})
	}
	if len(recurring) > 0 {
		sortEntries(recurring, SortByType)
		groups = append(groups, Group{Key: "recurring", Label: "Recurring", Entries: recurring})
	}
	return groups
}

func groupByPriority(entries []Entry) []Group {
	buckets := map[model.Priority][]Entry{}
	for _, e := range entries {
		p := e.Task.Priority
		if !p.IsValid() {
			p = model.PriorityMedium
		}
		buckets[p] = append(buckets[p], e)
	}
	groups := make([]Group, 0, 3)
	for _, p := range []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		items := buckets[p]
		if len(items) == 0 {
			continue
		}
		sortEntries(items, SortByPriority)
		groups = append(groups, Group{Key: string(p), Label: priorityLabel(p), Entries: items})
	}
	return groups
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "High Priority"
	case model.PriorityLow:
		return "Low Priority"
	default:
		return "Normal Priority"
	}
}

// groupByDue buckets entries by their effective date relative to today.
// Group date ranges never overlap, so groups order by their earliest date with
// undated entries last; descending flips that.
func groupByDue(entries []Entry, today string, order Order) []Group {
	type bucket struct {
		group Group
		first string
	}
	index := map[string]*bucket{}
	var keys []string
	for _, e := range entries {
		g := classify.GroupByDue(e.EffectiveDate(), today)
		b, ok := index[g.Key]
		if !ok {
			b = &bucket{group: Group{Key: g.Key, Label: g.Label}, first: e.EffectiveDate()}
			index[g.Key] = b
			keys = append(keys, g.Key)
		}
		b.group.Entries = append(b.group.Entries, e)
		if date := e.EffectiveDate(); compareDates(date, b.first) < 0 {
			b.first = date
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		c := compareDates(index[keys[i]].first, index[keys[j]].first)
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := index[k].group
		sortEntries(g.Entries, SortByDue)
		groups = append(groups, g)
	}
	return groups
}

func reverseGroups(groups []Group) {
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
}
