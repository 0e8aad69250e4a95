package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/projection"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/service"
)

type View string

const (
	ViewDay      View = "Day"
	ViewWeek     View = "Week"
	ViewMonth    View = "Month"
	ViewTimeline View = "Timeline"
)

const (
	DefaultReminderInterval = time.Minute
	DefaultSnoozeMinutes    = 10
	maxNotifications        = 40
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Day      string
	Week     string
	Month    string
	Timeline string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	CurrentView   View
	// Date is the focused calendar date of the day, week and month views.
	Date          string
	Group         projection.SortKey
	Order         projection.Order
	Cursor        int
	// Category narrows the timeline; empty shows every category.
	Category      string
	Alerts        []model.Alert
	Notifications []Notification
	Palette       CommandPaletteState
	HelpVisible   bool
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	SnoozeMinutes    int
	ReminderInterval time.Duration

	planner *service.Planner
	ctx     context.Context
	snoozes <-chan scheduler.Event

	commandInput textinput.Model
	helpModel    help.Model
	progressBar  progress.Model
}

type Options struct {
	Context context.Context
	// Snoozes delivers snoozed alerts back to the TUI, usually the
	// scheduler engine's channel.
	Snoozes          <-chan scheduler.Event
	ReminderInterval time.Duration
	SnoozeMinutes    int
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderTickMsg struct {
	At time.Time
}

type SnoozeFiredMsg struct {
	Event scheduler.Event
}

type MissedCheckMsg struct{}

func NewModel(planner *service.Planner, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.ReminderInterval <= 0 {
		opts.ReminderInterval = DefaultReminderInterval
	}
	if opts.SnoozeMinutes <= 0 {
		opts.SnoozeMinutes = DefaultSnoozeMinutes
	}
	m := Model{
		CurrentView:      ViewDay,
		Date:             planner.Today(),
		Group:            projection.SortByType,
		Order:            projection.Ascending,
		SnoozeMinutes:    opts.SnoozeMinutes,
		ReminderInterval: opts.ReminderInterval,
		planner:          planner,
		ctx:              opts.Context,
		snoozes:          opts.Snoozes,
		Keys: GlobalKeyMap{
			Day:      "1",
			Week:     "2",
			Month:    "3",
			Timeline: "4",
			Help:     "?",
			Quit:     "q",
		},
	}
	m.initBubbleComponents()
	m.Alerts = planner.Alerts()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.progressBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))
}

func (m *Model) notify(title, body, level string) {
	if body == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.planner.Now(),
	})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.Status = StatusBar{Text: text, IsError: isErr}
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.setStatus(err.Error(), true)
	m.notify("Error", err.Error(), "error")
}
