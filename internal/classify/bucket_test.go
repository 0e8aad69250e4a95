package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineBucket(t *testing.T) {
	today := "2025-06-05"
	cases := map[string]Bucket{
		"2025-06-01": BucketOverdue,
		"2025-06-05": BucketToday,
		"2025-06-06": BucketTomorrow,
		"2025-06-07": BucketUpcoming,
		"2025-06-12": BucketUpcoming,
		"2025-06-13": BucketLater,
		"garbage":    BucketLater,
	}
	for date, want := range cases {
		assert.Equal(t, want, TimelineBucket(date, today), date)
	}
}

func TestGroupByDue(t *testing.T) {
	today := "2025-03-05" // Wednesday
	assert.Equal(t, DueGroup{Key: NoDateKey, Label: "No Due Date"}, GroupByDue("", today))
	assert.Equal(t, DueGroup{Key: "overdue", Label: "Overdue"}, GroupByDue("2025-03-01", today))
	assert.Equal(t, DueGroup{Key: "today", Label: "Due Today"}, GroupByDue("2025-03-05T10:00:00", today))
	assert.Equal(t, DueGroup{Key: "tomorrow", Label: "Due Tomorrow"}, GroupByDue("2025-03-06", today))
	assert.Equal(t, DueGroup{Key: "due-2025-03-10", Label: "Due Monday"}, GroupByDue("2025-03-10", today))
	assert.Equal(t, DueGroup{Key: "due-2025-03-20", Label: "Due Mar 20"}, GroupByDue("2025-03-20", today))
}

func TestDaysFrom(t *testing.T) {
	diff, ok := DaysFrom("2025-02-27", "2025-03-02")
	assert.True(t, ok)
	assert.Equal(t, 3, diff)
	_, ok = DaysFrom("2025-02-27", "nope")
	assert.False(t, ok)
}
