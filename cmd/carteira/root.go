package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/cli"
	"carteira/internal/config"
	"carteira/internal/core"
	applog "carteira/internal/log"
)

var (
	flagOwner    string
	flagYear     int
	flagLogLevel string
)

// Loaded once per invocation by the root pre-run hook.
var (
	cfg    *config.Config
	logger *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "carteira",
	Short:         "Personal finance tracker",
	Long:          "Track expenses, incomes, cards, recurring bills and goals; serve the JSON API and print reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cli.LoadEnvFile()
		loaded, err := cli.LoadAndValidateConfig()
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			loaded.LogLevel = flagLogLevel
		}
		cfg = loaded
		logger = cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentCLI)
		return nil
	},
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

// addReportFlags registers the owner and year flags shared by report commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagOwner, "owner", "", "Owner id the records belong to")
	cmd.Flags().IntVar(&flagYear, "year", time.Now().Year(), "Calendar year")
	_ = cmd.MarkFlagRequired("owner")
}

func owner() (core.OwnerID, error) {
	o := strings.TrimSpace(flagOwner)
	if o == "" {
		return "", fmt.Errorf("--owner is required")
	}
	return core.OwnerID(o), nil
}

// openRuntime opens the configured backend for a one-shot command.
func openRuntime(ctx context.Context) (*cli.Runtime, error) {
	return cli.Open(ctx, cfg, logger)
}

// currency is the owner's display currency, BRL when settings are unreadable.
func currency(ctx context.Context, rt *cli.Runtime, owner core.OwnerID) string {
	st, err := rt.Backend.Store.Settings().Get(ctx, owner)
	if err != nil {
		logger.WarnContext(ctx, "Settings unavailable, using BRL", applog.FieldError, err)
		return "BRL"
	}
	return st.Currency
}
