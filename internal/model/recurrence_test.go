package model

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
)

func date(t *testing.T, s string, loc *time.Location) time.Time {
	t.Helper()
	d, err := calendar.ParseCalendarDate(s, loc)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestExpandWeeklyWithinMonth(t *testing.T) {
	task := Task{ID: "t1", DueDate: "2025-03-10", Recurrence: RecurrenceWeekly}
	got, err := Expand(task, date(t, "2025-03-01", time.UTC), date(t, "2025-03-31", time.UTC))
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"2025-03-10", "2025-03-17", "2025-03-24", "2025-03-31"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
}

func TestExpandMonthlyClampsToMonthEnd(t *testing.T) {
	task := Task{ID: "t1", DueDate: "2025-01-31", Recurrence: RecurrenceMonthly}
	got, err := Expand(task, date(t, "2025-02-01", time.UTC), date(t, "2025-04-30", time.UTC))
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"2025-02-28", "2025-03-31", "2025-04-30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}

	leap, err := Expand(task, date(t, "2024-02-01", time.UTC), date(t, "2024-02-29", time.UTC))
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(leap) != 0 {
		t.Fatalf("expected nothing before the anchor, got %v", leap)
	}
}

func TestExpandDailyAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone unavailable: %v", err)
	}
	task := Task{ID: "t1", DueDate: "2025-03-07", Recurrence: RecurrenceDaily}
	got, err := Expand(task, date(t, "2025-03-08", ny), date(t, "2025-03-11", ny))
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"2025-03-08", "2025-03-09", "2025-03-10", "2025-03-11"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
}

func TestExpandFallsBackToCreationDate(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("timezone unavailable: %v", err)
	}
	// 03:00 UTC on the 5th is still the 4th in Los Angeles.
	created := time.Date(2025, 5, 5, 3, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", Recurrence: RecurrenceWeekly, CreatedAt: created}
	got, err := Expand(task, date(t, "2025-05-01", la), date(t, "2025-05-12", la))
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"2025-05-04", "2025-05-11"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %v, want %v", got, want)
	}
}

func TestExpandAmbiguousAnchor(t *testing.T) {
	task := Task{ID: "t1", Recurrence: RecurrenceDaily}
	_, err := Expand(task, date(t, "2025-05-01", time.UTC), date(t, "2025-05-02", time.UTC))
	if !errors.Is(err, ErrAmbiguousRecurrenceAnchor) {
		t.Fatalf("expected ErrAmbiguousRecurrenceAnchor, got %v", err)
	}
}

func TestExpandEdgeWindows(t *testing.T) {
	task := Task{ID: "t1", DueDate: "2025-03-10", Recurrence: RecurrenceDaily}

	inverted, err := Expand(task, date(t, "2025-03-20", time.UTC), date(t, "2025-03-12", time.UTC))
	if err != nil || len(inverted) != 0 {
		t.Fatalf("inverted window = %v, %v", inverted, err)
	}

	single, err := Expand(task, date(t, "2025-03-15", time.UTC), date(t, "2025-03-15", time.UTC))
	if err != nil || !reflect.DeepEqual(single, []string{"2025-03-15"}) {
		t.Fatalf("single-day window = %v, %v", single, err)
	}

	oneOff := Task{ID: "t2", DueDate: "2025-03-10"}
	none, err := Expand(oneOff, date(t, "2025-03-01", time.UTC), date(t, "2025-03-31", time.UTC))
	if err != nil || len(none) != 0 {
		t.Fatalf("one-off expansion = %v, %v", none, err)
	}
}

func TestExpandIsDeterministicAndAscending(t *testing.T) {
	task := Task{ID: "t1", DueDate: "2024-01-31", Recurrence: RecurrenceMonthly}
	start, end := date(t, "2024-01-01", time.UTC), date(t, "2026-12-31", time.UTC)
	first, err := Expand(task, start, end)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	second, _ := Expand(task, start, end)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expansion is not deterministic")
	}
	if len(first) != 36 {
		t.Fatalf("expected 36 monthly occurrences, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i] <= first[i-1] {
			t.Fatalf("not strictly ascending at %d: %v", i, first[i-1:i+1])
		}
	}
	if first[1] != "2024-02-29" || first[13] != "2025-02-28" {
		t.Fatalf("unexpected clamping: %s %s", first[1], first[13])
	}
}

func TestLatestOnOrBeforeAndUpcoming(t *testing.T) {
	task := Task{ID: "t1", DueDate: "2025-03-10", Recurrence: RecurrenceWeekly}
	got, ok, err := LatestOnOrBefore(task, date(t, "2025-03-23", time.UTC))
	if err != nil || !ok || got != "2025-03-17" {
		t.Fatalf("LatestOnOrBefore = %q %v %v", got, ok, err)
	}
	if _, ok, _ := LatestOnOrBefore(task, date(t, "2025-03-09", time.UTC)); ok {
		t.Fatal("expected no occurrence before the anchor")
	}

	monthly := Task{ID: "t2", DueDate: "2025-01-31", Recurrence: RecurrenceMonthly}
	got, ok, _ = LatestOnOrBefore(monthly, date(t, "2025-03-30", time.UTC))
	if !ok || got != "2025-02-28" {
		t.Fatalf("monthly LatestOnOrBefore = %q %v", got, ok)
	}

	next, err := Upcoming(monthly, date(t, "2025-02-01", time.UTC), 3)
	if err != nil || !reflect.DeepEqual(next, []string{"2025-02-28", "2025-03-31", "2025-04-30"}) {
		t.Fatalf("Upcoming = %v %v", next, err)
	}

	on, err := OccursOn(task, date(t, "2025-03-24", time.UTC))
	if err != nil || !on {
		t.Fatalf("OccursOn = %v %v", on, err)
	}
}

func TestParseRecurrence(t *testing.T) {
	if r, err := ParseRecurrence("none"); err != nil || r != RecurrenceNone {
		t.Fatalf("none = %q %v", r, err)
	}
	if r, err := ParseRecurrence("Weekly"); err != nil || r != RecurrenceWeekly {
		t.Fatalf("Weekly = %q %v", r, err)
	}
	if _, err := ParseRecurrence("hourly"); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence, got %v", err)
	}
}
