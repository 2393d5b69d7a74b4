package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "shift-report-bot",
	Short:         "Telegram bot that collects shift reports from rental points",
	SilenceUsage:  true,
	SilenceErrors: true,
	// Serving is the default when no subcommand is given.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("shift-report-bot: " + err.Error() + "\n")
		os.Exit(1)
	}
}
