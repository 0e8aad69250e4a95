package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/bossmode/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.setStatus("command palette closed", false)
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		case tea.KeySpace:
			m.commandInput.SetValue(m.commandInput.Value() + " ")
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m
	}
	res, err := commands.Execute(cmd, commands.PlannerHandlers(m.ctx, m.planner))
	if err != nil {
		m.setStatus(err.Error(), true)
		m.notify("Command Failed", err.Error(), "error")
		return m
	}

	if cmd.Show != nil {
		m.openShow(*cmd.Show)
	}
	// /show renders into the left pane, so only its first line goes to the
	// status bar.
	first, _, _ := strings.Cut(res.Message, "\n")
	m.setStatus(first, false)
	m.notify("Command", first, "info")
	m.Alerts = m.planner.Alerts()
	return m
}

func (m *Model) openShow(s commands.ShowArgs) {
	switch s.View {
	case commands.ViewWeek:
		m.CurrentView = ViewWeek
	case commands.ViewMonth:
		m.CurrentView = ViewMonth
	case commands.ViewTimeline:
		m.CurrentView = ViewTimeline
	default:
		m.CurrentView = ViewDay
	}
	if s.Date != "" {
		m.Date = s.Date
	}
	m.Cursor = 0
}
