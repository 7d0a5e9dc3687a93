package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	viewFlag   string
	dateFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "hrs",
	Short: "Daily hours – log tasks and hours per day",
	Long: `hrs keeps a timesheet of tasks and hours per calendar day, with
day, week and month views, leave days and running totals.
Entries live in Supabase, SQLite, PostgreSQL or plain JSON files;
settings are read from ~/.hrs/config.yaml.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.hrs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&viewFlag, "view", "day", "View: day, week or month")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "today", "Selected date: today, YYYY-MM-DD or DD/MM/YYYY")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(calCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(serveCmd)
}
