// Package main provides the timeclock command-line client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "timeclock",
	Short:         "Time clock punch history client",
	Long:          "timeclock logs into the time clock web application and extracts monthly punch history (time worked, work days and individual punches) from its pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	rootConfigPath string
	rootBaseURL    string
	rootEmail      string
	rootLogLevel   string
	rootVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&rootBaseURL, "base-url", "", "Time clock base URL (overrides config and TIMECLOCK_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&rootEmail, "email", "", "Account email (overrides config and TIMECLOCK_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Debug logging in human-readable form")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
