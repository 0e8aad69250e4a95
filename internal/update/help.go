package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/bossmode/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    []string{views.RenderMarkdown(m.helpMarkdown())},
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("| key | action |\n|---|---|\n")
	for _, kb := range append(m.globalBindings(), m.viewBindings()...) {
		fmt.Fprintf(&b, "| `%s` | %s |\n", kb.Key, kb.Action)
	}
	b.WriteString("\nCommands: `/add <title> due:DATE p:PRIORITY every:RULE`, `/done <id> [date]`, `/show <view> [date]`, `/snooze <id> <min>`, `/ack <id>`\n")
	return b.String()
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Day, Action: "switch to Day"},
		{Key: m.Keys.Week, Action: "switch to Week"},
		{Key: m.Keys.Month, Action: "switch to Month"},
		{Key: m.Keys.Timeline, Action: "switch to Timeline"},
		{Key: "/", Action: "open command palette"},
		{Key: "a", Action: "acknowledge alert"},
		{Key: "s", Action: fmt.Sprintf("snooze alert %d min", m.SnoozeMinutes)},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewDay:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next day"},
			{Key: "t", Action: "jump to today"},
			{Key: "j/k", Action: "move selection"},
			{Key: "space", Action: "toggle completion"},
			{Key: "g", Action: "cycle grouping"},
			{Key: "o", Action: "flip order"},
		}
	case ViewWeek:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next week"},
			{Key: ",/.", Action: "previous/next day"},
			{Key: "j/k", Action: "move task row"},
			{Key: "space", Action: "toggle selected day"},
		}
	case ViewMonth:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next month"},
			{Key: ",/.", Action: "previous/next day"},
			{Key: "enter", Action: "open day"},
		}
	case ViewTimeline:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "space", Action: "toggle completion"},
			{Key: "f", Action: "cycle category filter"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
