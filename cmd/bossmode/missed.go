package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var missedCmd = &cobra.Command{
	Use:   "missed",
	Short: "List recurring tasks missed yesterday and send the daily summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		tasks := a.planner.Missed()
		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No recurring tasks missed yesterday.")
		}
		for _, t := range tasks {
			fmt.Fprintf(out, "%s  %s (%s)\n", t.ID, t.Title, t.Recurrence)
		}

		ran, err := a.planner.CheckMissed(cmd.Context())
		if err != nil {
			return err
		}
		if !ran {
			fmt.Fprintln(out, "Summary not sent: already sent today or notifications disabled.")
		}
		return nil
	},
}
