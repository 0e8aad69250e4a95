package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/bossmode/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the SQLite schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		repo, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		switch direction {
		case "down":
			err = storage.MigrateDown(repo.DB())
		default:
			err = storage.MigrateUp(repo.DB())
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s: %s\n", direction, cfg.DBPath)
		return nil
	},
}
