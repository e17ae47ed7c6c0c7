package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/timeclock/internal/config"
	"github.com/jonathan/timeclock/internal/logger"
	"github.com/jonathan/timeclock/internal/observability"
	"github.com/jonathan/timeclock/internal/schemas"
	"github.com/jonathan/timeclock/internal/timeclock"
	"github.com/jonathan/timeclock/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Output formats accepted by --format.
const (
	formatJSON  = "json"
	formatTable = "table"
)

// loadSettings resolves the effective configuration with persistent flags
// applied last.
func loadSettings(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ctx, rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = rootBaseURL
	}
	if flags.Changed("email") {
		cfg.Email = rootEmail
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = rootLogLevel
	}
	if rootVerbose {
		cfg.LogLevel = "debug"
		cfg.LogPretty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: cmd.ErrOrStderr(),
	})
}

// openSession creates a client from cfg and logs in with the configured
// account.
func openSession(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*timeclock.Client, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("credentials required: set --email or TIMECLOCK_EMAIL, and TIMECLOCK_PASSWORD or the config password")
	}

	client, err := timeclock.New(&timeclock.Options{
		BaseURL:            cfg.BaseURL,
		Timeout:            cfg.Timeout(),
		UserAgent:          cfg.UserAgent,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	ok, err := client.Authenticate(ctx, types.Credentials{Email: cfg.Email, Password: cfg.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("login rejected for %s", cfg.Email)
	}
	return client, nil
}

// fetchError wraps an error from a history fetch for the given period,
// calling out a session the time clock no longer accepts.
func fetchError(period string, err error) error {
	if timeclock.IsPrecondition(err) {
		return fmt.Errorf("time clock session ended while fetching %s, run the command again to log in: %w", period, err)
	}
	return fmt.Errorf("failed to fetch %s: %w", period, err)
}

// writeSummary renders summary in the requested format. JSON output is
// checked against the punch history schema before it is written.
func writeSummary(w io.Writer, summary *types.PunchHistorySummary, format string) error {
	switch format {
	case formatTable:
		observability.NewPrinter(w).PrintPunchHistory(summary)
		return nil
	case formatJSON:
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal punch history: %w", err)
		}
		if err := schemas.ValidatePunchHistory(data); err != nil {
			return fmt.Errorf("punch history failed schema validation: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatTable)
	}
}
