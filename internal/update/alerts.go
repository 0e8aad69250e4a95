package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/reminder"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/views"
)

func reminderTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(at time.Time) tea.Msg { return ReminderTickMsg{At: at} })
}

func waitForSnoozeCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SnoozeFiredMsg{Event: ev}
	}
}

func (m Model) onReminderTick() (Model, tea.Cmd) {
	fired := m.planner.CheckReminders(m.ctx)
	for _, a := range fired {
		msg := reminder.Message(a, m.planner.Location())
		m.notify(msg.Title, msg.Body, "reminder")
		m.setStatus(msg.Title+": "+msg.Body, false)
	}
	m.Alerts = m.planner.Alerts()
	return m, reminderTickCmd(m.ReminderInterval)
}

func (m Model) onSnoozeFired(ev scheduler.Event) (Model, tea.Cmd) {
	if a, ok := m.planner.Resurface(m.ctx, ev); ok {
		msg := reminder.Message(a, m.planner.Location())
		m.notify(msg.Title, msg.Body, "reminder")
		m.setStatus(msg.Title+": "+msg.Body, false)
	}
	m.Alerts = m.planner.Alerts()
	return m, waitForSnoozeCmd(m.snoozes)
}

func (m Model) onMissedCheck() Model {
	ran, err := m.planner.CheckMissed(m.ctx)
	if err != nil {
		m.fail(err)
		return m
	}
	if !ran {
		return m
	}
	if missed := m.planner.Missed(); len(missed) > 0 {
		text := fmt.Sprintf("%d recurring task(s) missed yesterday", len(missed))
		m.setStatus(text, false)
		m.notify("Missed", text, "info")
	}
	return m
}

// acknowledgeFirst and snoozeFirst act on the oldest active alert.
func (m Model) acknowledgeFirst() Model {
	if len(m.Alerts) == 0 {
		m.setStatus("no active alerts", false)
		return m
	}
	a := m.Alerts[0]
	if err := m.planner.Acknowledge(a.TaskID); err != nil {
		m.fail(err)
	} else {
		m.setStatus(fmt.Sprintf("acknowledged %q", a.Title), false)
	}
	m.Alerts = m.planner.Alerts()
	return m
}

func (m Model) snoozeFirst() Model {
	if len(m.Alerts) == 0 {
		m.setStatus("no active alerts", false)
		return m
	}
	a := m.Alerts[0]
	ev, err := m.planner.Snooze(a.TaskID, m.SnoozeMinutes)
	if err != nil {
		m.fail(err)
	} else {
		m.setStatus(fmt.Sprintf("snoozed %q until %s", a.Title, ev.TriggerAt.In(m.planner.Location()).Format("15:04")), false)
	}
	m.Alerts = m.planner.Alerts()
	return m
}

func (m Model) renderAlertsView() string {
	data := make([]views.AlertData, 0, len(m.Alerts))
	for _, a := range m.Alerts {
		msg := reminder.Message(a, m.planner.Location())
		data = append(data, views.AlertData{Title: msg.Title, Body: msg.Body, Due: a.Kind == model.AlertDue})
	}
	return views.RenderAlertsPanel(data)
}

func (m Model) renderProgressView() string {
	p := m.planner.Progress()
	return views.RenderProgressPanel(views.ProgressPanelData{
		Bar:       m.progressBar.ViewAs(p.Percent / 100),
		Completed: p.Completed,
		Total:     p.Total,
		Mood:      string(p.Mood),
		Overdue:   p.Overdue,
	})
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	last := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(last.Level, last.Title+": "+last.Body)
}
