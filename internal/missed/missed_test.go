package missed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/bossmode/internal/ledger"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/state"
)

func TestDetectYesterdayOccurrences(t *testing.T) {
	tasks := []model.Task{
		{ID: "daily-open", Title: "Stretch", DueDate: "2025-07-01", Recurrence: model.RecurrenceDaily},
		{ID: "daily-done", Title: "Read", DueDate: "2025-07-01", Recurrence: model.RecurrenceDaily},
		{ID: "weekly-other-day", Title: "Review", DueDate: "2025-07-02", Recurrence: model.RecurrenceWeekly},
		{ID: "starts-today", Title: "New habit", DueDate: "2025-07-05", Recurrence: model.RecurrenceDaily},
		{ID: "one-off", Title: "Call mom", DueDate: "2025-07-04"},
	}
	done := ledger.NewIndex([]model.CompletionRecord{{TaskID: "daily-done", InstanceDate: "2025-07-04"}})

	got, err := Detect(tasks, done, "2025-07-05", time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "daily-open", got[0].ID)

	again, err := Detect(tasks, done, "2025-07-05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestDetectReportsAmbiguousAnchor(t *testing.T) {
	tasks := []model.Task{
		{ID: "broken", Title: "No anchor", Recurrence: model.RecurrenceDaily},
		{ID: "ok", Title: "Walk", DueDate: "2025-07-01", Recurrence: model.RecurrenceDaily},
	}
	got, err := Detect(tasks, ledger.NewIndex(nil), "2025-07-05", time.UTC)
	require.ErrorIs(t, err, model.ErrAmbiguousRecurrenceAnchor)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].ID)
}

func TestDetectEmptyInputs(t *testing.T) {
	got, err := Detect(nil, nil, "2025-07-05", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummary(t *testing.T) {
	_, ok := Summary(nil)
	assert.False(t, ok)

	msg, ok := Summary([]model.Task{{Title: "Stretch"}})
	require.True(t, ok)
	assert.Equal(t, "Missed Task Yesterday", msg.Title)
	assert.Equal(t, `You missed: "Stretch"`, msg.Body)

	msg, _ = Summary([]model.Task{{Title: `say "hi" C:\tmp`}})
	assert.Equal(t, `You missed: "say "hi" C:\tmp"`, msg.Body, "titles are not escaped")

	msg, _ = Summary([]model.Task{{Title: "a"}, {Title: "b"}})
	assert.Equal(t, "2 Missed Tasks Yesterday", msg.Title)
	assert.Equal(t, "You missed: a, b", msg.Body)

	msg, _ = Summary([]model.Task{{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}, {Title: "e"}})
	assert.Equal(t, "5 Missed Tasks Yesterday", msg.Title)
	assert.Equal(t, "You missed: a, b, c and 2 more", msg.Body)
}

func TestGateRunsOncePerDay(t *testing.T) {
	gate := NewGate(state.NewFileMarker(""))
	calls := 0
	fn := func() error { calls++; return nil }

	ran, err := gate.RunOnce("2025-07-05", fn)
	require.NoError(t, err)
	assert.True(t, ran)
	ran, err = gate.RunOnce("2025-07-05", fn)
	require.NoError(t, err)
	assert.False(t, ran)
	ran, _ = gate.RunOnce("2025-07-06", fn)
	assert.True(t, ran)
	assert.Equal(t, 2, calls)
}

func TestGateRetriesAfterFailure(t *testing.T) {
	gate := NewGate(state.NewFileMarker(""))
	boom := errors.New("send failed")
	_, err := gate.RunOnce("2025-07-05", func() error { return boom })
	require.ErrorIs(t, err, boom)

	ran, err := gate.RunOnce("2025-07-05", func() error { return nil })
	require.NoError(t, err)
	assert.True(t, ran)
}
