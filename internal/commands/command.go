package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeShow   Type = "show"
	TypeSnooze Type = "snooze"
	TypeAck    Type = "ack"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...), Err: err}
}

// AddArgs come from "/add <title> [due:DATE] [p:PRIORITY] [every:RULE]
// [cat:CATEGORY_ID] [remind:MINUTES]". Options may appear anywhere; the other
// words form the title.
type AddArgs struct {
	Title           string
	Due             string
	Priority        string
	Every           string
	CategoryID      string
	ReminderMinutes *int
}

type DoneArgs struct {
	TaskID string
	Date   string
}

type View string

const (
	ViewDay      View = "day"
	ViewWeek     View = "week"
	ViewMonth    View = "month"
	ViewTimeline View = "timeline"
)

type ShowArgs struct {
	View View
	Date string
}

type SnoozeArgs struct {
	TaskID  string
	Minutes int
}

type AckArgs struct {
	TaskID string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *DoneArgs
	Show   *ShowArgs
	Snooze *SnoozeArgs
	Ack    *AckArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeSnooze:
		return parseSnooze(input, args)
	case TypeAck:
		return parseAck(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	var out AddArgs
	title := make([]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if !ok || value == "" {
			title = append(title, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "due":
			if err := checkDate(value); err != nil {
				return Command{}, invalid(err, "bad due date %q", value)
			}
			out.Due = value
		case "p", "priority":
			p, err := model.ParsePriority(value)
			if err != nil {
				return Command{}, invalid(err, "bad priority %q", value)
			}
			out.Priority = string(p)
		case "every":
			r, err := model.ParseRecurrence(value)
			if err != nil {
				return Command{}, invalid(err, "bad recurrence %q", value)
			}
			out.Every = string(r)
		case "cat":
			out.CategoryID = value
		case "remind":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Command{}, invalid(model.ErrInvalidReminder, "bad reminder minutes %q", value)
			}
			out.ReminderMinutes = &n
		default:
			title = append(title, arg)
		}
	}
	out.Title = strings.TrimSpace(strings.Join(title, " "))
	if out.Title == "" {
		return Command{}, invalid(nil, "add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid(nil, "done requires a task id and an optional date")
	}
	out := DoneArgs{TaskID: args[0]}
	if len(args) == 2 {
		if calendar.HasTime(args[1]) {
			return Command{}, invalid(calendar.ErrInvalidDate, "instance date %q must not carry a time", args[1])
		}
		if err := checkDate(args[1]); err != nil {
			return Command{}, invalid(err, "bad date %q", args[1])
		}
		out.Date = args[1]
	}
	return Command{Type: TypeDone, Raw: raw, Done: &out}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid(nil, "show requires day, week, month or timeline")
	}
	view := View(strings.ToLower(args[0]))
	switch view {
	case ViewDay, ViewWeek, ViewMonth, ViewTimeline:
	default:
		return Command{}, invalid(nil, "unknown view %q", args[0])
	}
	out := ShowArgs{View: view}
	if len(args) == 2 {
		if err := checkDate(args[1]); err != nil {
			return Command{}, invalid(err, "bad date %q", args[1])
		}
		out.Date = args[1]
	}
	return Command{Type: TypeShow, Raw: raw, Show: &out}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid(nil, "snooze requires a task id and minutes")
	}
	minutes, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[1]), "m"))
	if err != nil {
		return Command{}, invalid(model.ErrInvalidSnooze, "bad minutes %q", args[1])
	}
	if err := model.ValidateSnooze(minutes); err != nil {
		return Command{}, invalid(err, "snooze minutes must be %d..%d", model.MinSnoozeMinutes, model.MaxSnoozeMinutes)
	}
	return Command{Type: TypeSnooze, Raw: raw, Snooze: &SnoozeArgs{TaskID: args[0], Minutes: minutes}}, nil
}

func parseAck(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid(nil, "ack requires a task id")
	}
	return Command{Type: TypeAck, Raw: raw, Ack: &AckArgs{TaskID: args[0]}}, nil
}

func checkDate(s string) error {
	_, err := calendar.ParseCalendarDate(s, time.UTC)
	return err
}
