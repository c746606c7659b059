package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	applifting "github.com/applifting/applifting-sdk-go"
	"github.com/applifting/applifting-sdk-go/config"
)

type contextKey string

const cliContextKey contextKey = "cliContext"

// cliContext holds what every subcommand needs.
type cliContext struct {
	Config config.Config
	Client *applifting.Client
	Logger zerolog.Logger
}

// flagEnv maps persistent flags to the environment variables they override.
var flagEnv = map[string]string{
	"base-url":      "BASE_URL",
	"refresh-token": "REFRESH_TOKEN",
	"cache-file":    "TOKEN_CACHE_FILE",
	"log-level":     "LOG_LEVEL",
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var cliCtx cliContext

	rootCmd := &cobra.Command{
		Use:   "applifting",
		Short: "Register products and list their offers",
		Long: `A command line client for the Applifting offers API.

Settings come from flags, then the environment (REFRESH_TOKEN, BASE_URL,
TOKEN_CACHE_FILE, LOG_LEVEL, ...), then a .env file in the working directory.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // main.go prints the error
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOverrides(cmd.Context(), changedFlags(cmd))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cliCtx.Config = cfg
			cliCtx.Logger = newLogger(cmd.ErrOrStderr(), cfg.Level())
			cliCtx.Logger.Debug().Str("command", cmd.Name()).Msg("CLI started")

			client, err := applifting.New(cfg, applifting.WithLogger(cliCtx.Logger))
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			cliCtx.Client = client

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &cliCtx))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("base-url", "", "API base URL (env BASE_URL)")
	rootCmd.PersistentFlags().String("refresh-token", "", "Refresh token (env REFRESH_TOKEN)")
	rootCmd.PersistentFlags().String("cache-file", "", "Token cache file (env TOKEN_CACHE_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")

	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newRegisterCommand())
	rootCmd.AddCommand(newOffersCommand())
	rootCmd.AddCommand(newDemoCommand())

	return rootCmd
}

// changedFlags returns the persistent flags set on the command line, keyed by
// the environment variable they override.
func changedFlags(cmd *cobra.Command) map[string]string {
	overrides := map[string]string{}
	for name, env := range flagEnv {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, err := cmd.Flags().GetString(name)
		if err != nil {
			continue
		}
		overrides[env] = value
	}
	return overrides
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// getCliContext returns the context set up by the root command.
func getCliContext(cmd *cobra.Command) (*cliContext, error) {
	cliCtx, ok := cmd.Context().Value(cliContextKey).(*cliContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("CLI context not initialized")
	}
	return cliCtx, nil
}

// isTTY reports whether stderr is a character device (interactive terminal).
// We check stderr because the TUI renders to stderr, allowing stdout to be piped.
func isTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
