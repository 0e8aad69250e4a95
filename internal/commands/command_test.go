package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/service"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent due:2026-03-01", TypeAdd},
		{"done t1", TypeDone},
		{"/show week 2026-03-04", TypeShow},
		{"snooze t1 10m", TypeSnooze},
		{"/ACK t1", TypeAck},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddOptions(t *testing.T) {
	cmd, err := Parse("/add gym due:2026-03-02 every:weekly p:HIGH workout cat:c1 remind:5")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	a := cmd.Add
	if a.Title != "gym workout" {
		t.Fatalf("title = %q", a.Title)
	}
	if a.Due != "2026-03-02" || a.Every != "weekly" || a.Priority != "high" || a.CategoryID != "c1" {
		t.Fatalf("unexpected args: %+v", a)
	}
	if a.ReminderMinutes == nil || *a.ReminderMinutes != 5 {
		t.Fatalf("reminder = %v", a.ReminderMinutes)
	}
}

func TestParseAddAcceptsDateTimeAndPlainColons(t *testing.T) {
	cmd, err := Parse("add call re: budget due:2026-03-02T14:30:00")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Title != "call re: budget" || cmd.Add.Due != "2026-03-02T14:30:00" {
		t.Fatalf("unexpected args: %+v", cmd.Add)
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"/add x due:2026-02-30", calendar.ErrInvalidDate},
		{"/add x p:urgent", model.ErrInvalidPriority},
		{"/add x every:hourly", model.ErrInvalidRecurrence},
		{"/add x remind:-1", model.ErrInvalidReminder},
		{"/done t1 2026-03-02T10:00:00", calendar.ErrInvalidDate},
		{"/snooze t1 0", model.ErrInvalidSnooze},
		{"/snooze t1 1441", model.ErrInvalidSnooze},
		{"/snooze t1 soon", model.ErrInvalidSnooze},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", tc.in, err)
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("parse %q: expected %v in chain, got %v", tc.in, tc.want, err)
		}
	}
}

func TestParseArityErrors(t *testing.T) {
	for _, in := range []string{"/add due:2026-03-01", "/done", "/show", "/show year", "/snooze t1", "/ack"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show day")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

type fakePlanner struct {
	created  service.TaskInput
	toggled  []string
	snoozed  int
	acked    string
	ackErr   error
	dayDates []string
}

func (f *fakePlanner) CreateTask(_ context.Context, in service.TaskInput) (model.Task, error) {
	f.created = in
	return model.Task{ID: "t9", Title: in.Title}, nil
}

func (f *fakePlanner) Task(id string) (model.Task, bool) {
	return model.Task{ID: id, Title: "Gym"}, id == "t1"
}

func (f *fakePlanner) Toggle(_ context.Context, taskID, date string) (bool, error) {
	f.toggled = append(f.toggled, taskID+"@"+date)
	return true, nil
}

func (f *fakePlanner) Snooze(taskID string, minutes int) (scheduler.Event, error) {
	f.snoozed = minutes
	return scheduler.Event{TaskID: taskID}, nil
}

func (f *fakePlanner) Acknowledge(taskID string) error {
	f.acked = taskID
	return f.ackErr
}

func (f *fakePlanner) Day(date string, _ projection.SortKey, _ projection.Order) projection.DayView {
	f.dayDates = append(f.dayDates, date)
	return projection.DayView{
		Date:      "2026-03-04",
		IsToday:   true,
		Total:     1,
		Completed: 1,
		Groups: []projection.Group{{
			Label:   "Tasks",
			Entries: []projection.Entry{{Task: model.Task{ID: "t2", Title: "Report", Priority: model.PriorityHigh, DueDate: "2026-03-02"}, Completed: true}},
		}},
	}
}

func (f *fakePlanner) Week(string) projection.WeekView   { return projection.WeekView{Start: "2026-03-01", End: "2026-03-07"} }
func (f *fakePlanner) Month(string) projection.MonthView { return projection.MonthView{Year: 2026, Month: 3} }
func (f *fakePlanner) Timeline(projection.Filter) []projection.TimelineGroup {
	return []projection.TimelineGroup{{Label: "Today"}}
}

func TestPlannerHandlersAdd(t *testing.T) {
	fp := &fakePlanner{}
	cmd, err := Parse("/add pay rent due:2026-03-01 p:high")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	res, err := Execute(cmd, PlannerHandlers(context.Background(), fp))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if fp.created.Title != "pay rent" || fp.created.DueDate != "2026-03-01" || fp.created.Priority != "high" {
		t.Fatalf("unexpected input: %+v", fp.created)
	}
	if !strings.Contains(res.Message, `"pay rent"`) || !strings.Contains(res.Message, "#t9") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
}

func TestPlannerHandlersDoneAndAck(t *testing.T) {
	fp := &fakePlanner{}
	h := PlannerHandlers(context.Background(), fp)

	res, err := h.Done(DoneArgs{TaskID: "t1", Date: "2026-03-02"})
	if err != nil {
		t.Fatalf("done failed: %v", err)
	}
	if len(fp.toggled) != 1 || fp.toggled[0] != "t1@2026-03-02" {
		t.Fatalf("unexpected toggles: %v", fp.toggled)
	}
	if res.Message != `Marked "Gym" done for 2026-03-02` {
		t.Fatalf("unexpected message: %q", res.Message)
	}

	fp.ackErr = errors.New("nothing to ack")
	if _, err := h.Ack(AckArgs{TaskID: "t1"}); err == nil {
		t.Fatal("expected ack error to propagate")
	}
	if fp.acked != "t1" {
		t.Fatalf("acked = %q", fp.acked)
	}
}

func TestPlannerHandlersShowDay(t *testing.T) {
	fp := &fakePlanner{}
	res, err := PlannerHandlers(context.Background(), fp).Show(ShowArgs{View: ViewDay})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	want := "2026-03-04 (today)  1/1 done\nTasks\n  [x] Report !  due 2026-03-02  #t2"
	if res.Message != want {
		t.Fatalf("unexpected render:\n%s\nwant:\n%s", res.Message, want)
	}
	if len(fp.dayDates) != 1 || fp.dayDates[0] != "" {
		t.Fatalf("day called with %v", fp.dayDates)
	}
}

func TestRenderMonthGrid(t *testing.T) {
	var v projection.MonthView
	v.Year, v.Month = 2026, 3
	v.Cells[0] = projection.MonthCell{Day: 1, InMonth: true, Heat: projection.HeatFull}
	out := RenderMonth(v)
	lines := strings.Split(out, "\n")
	if lines[0] != "March 2026" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 8 {
		t.Fatalf("expected header, weekday row and six weeks, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[2], "  1██") {
		t.Fatalf("first week = %q", lines[2])
	}
}
