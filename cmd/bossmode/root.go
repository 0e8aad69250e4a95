package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/bossmode/internal/config"
)

var (
	configPath string
	envFile    string
	dbPath     string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "bossmode",
	Short: "Personal planner with recurring tasks, reminders and calendar views",
	Long: `bossmode keeps one-off and recurring tasks in a local SQLite file.

Run it without a subcommand to open the terminal UI, or use "serve" to run
the reminder loop behind a JSON API.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFileName, "TOML config file, created with defaults when missing")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file layered over the config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides db_path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(missedCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
