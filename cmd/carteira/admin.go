package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/classify"
	"carteira/internal/cli"
	"carteira/internal/core"
	"carteira/internal/storage"
)

var (
	flagEmail string
	flagTTL   time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations to the SQLite file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
		version, err := storage.RunMigrations(storage.DSN(cfg.SQLiteDBPath))
		if err != nil {
			return err
		}
		fmt.Printf("Schema at version %d (%s)\n", version, cfg.SQLiteDBPath)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <owner>",
	Short: "Issue a bearer token for an owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tokens, err := cli.NewTokenIssuer(cfg)
		if err != nil {
			return err
		}
		ttl := flagTTL
		if ttl <= 0 {
			ttl = cfg.TokenTTL
		}
		tok, err := tokens.Issue(core.OwnerID(strings.TrimSpace(args[0])), flagEmail, ttl)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <description>",
	Short: "Suggest the category of an expense description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		fmt.Println(classify.Classify(strings.Join(args, " ")))
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagEmail, "email", "", "Email claim")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "Token lifetime (default TOKEN_TTL)")

	rootCmd.AddCommand(migrateCmd, tokenCmd, classifyCmd)
}
