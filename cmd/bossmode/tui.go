package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/bossmode/internal/notify"
	"github.com/sandeepkv93/bossmode/internal/update"
)

var snoozeMinutes int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal planner (default)",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&snoozeMinutes, "snooze", update.DefaultSnoozeMinutes, "minutes the s key snoozes an alert")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	// The in-app feed is always visible, so the missed check runs even
	// without desktop notifications.
	feed := &notify.Recorder{Allowed: true}
	a, err := newApp(ctx, appOptions{LogToFile: true, Sender: feed, Permission: feed})
	if err != nil {
		return err
	}
	defer a.Close()

	program := tea.NewProgram(update.NewModel(a.planner, update.Options{
		Context:          ctx,
		Snoozes:          a.engine.C(),
		ReminderInterval: a.cfg.ReminderCheckInterval.Duration,
		SnoozeMinutes:    snoozeMinutes,
	}))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("bossmode failed: %w", err)
	}
	return nil
}
