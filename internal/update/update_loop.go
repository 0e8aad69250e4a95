package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/bossmode/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return MissedCheckMsg{} },
		func() tea.Msg { return ReminderTickMsg{} },
	}
	if wait := waitForSnoozeCmd(m.snoozes); wait != nil {
		cmds = append(cmds, wait)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.setStatus("command palette active", false)
			return m, nil
		case m.Keys.Day:
			return m.switchView(ViewDay), nil
		case m.Keys.Week:
			return m.switchView(ViewWeek), nil
		case m.Keys.Month:
			return m.switchView(ViewMonth), nil
		case m.Keys.Timeline:
			return m.switchView(ViewTimeline), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.setStatus("help shown", false)
			} else {
				m.setStatus("help hidden", false)
			}
			return m, nil
		case "a":
			return m.acknowledgeFirst(), nil
		case "s":
			return m.snoozeFirst(), nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewDay:
			return m.handleDayKey(typed), nil
		case ViewWeek:
			return m.handleWeekKey(typed), nil
		case ViewMonth:
			return m.handleMonthKey(typed), nil
		case ViewTimeline:
			return m.handleTimelineKey(typed), nil
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			return m.switchView(typed.View), nil
		}
		return m, nil
	case SetStatusMsg:
		m.setStatus(typed.Text, typed.IsError)
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.fail(typed.Err)
		}
		return m, nil
	case ReminderTickMsg:
		return m.onReminderTick()
	case SnoozeFiredMsg:
		return m.onSnoozeFired(typed.Event)
	case MissedCheckMsg:
		return m.onMissedCheck(), nil
	}

	return m, nil
}

func (m Model) switchView(v View) Model {
	if m.CurrentView != v {
		m.Cursor = 0
	}
	m.CurrentView = v
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewDay:
		leftPane = m.renderDayView()
	case ViewWeek:
		leftPane = m.renderWeekView()
	case ViewMonth:
		leftPane = m.renderMonthView()
	case ViewTimeline:
		leftPane = m.renderTimelineView()
	}
	rightPane := strings.TrimSpace(m.renderProgressView() + "\n" +
		m.renderAlertsView() +
		views.RenderCommandPalette(m.Palette.Active, m.Palette.Input) +
		m.renderHelpIfVisible())

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("bossmode | view: %s | date: %s | today: %s", m.CurrentView, m.Date, m.planner.Today()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s day | %s week | %s month | %s timeline | / cmd | %s help | %s quit",
			m.Keys.Day, m.Keys.Week, m.Keys.Month, m.Keys.Timeline, m.Keys.Help, m.Keys.Quit),
	})
}
