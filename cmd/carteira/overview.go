package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/auth"
	"carteira/internal/cli"
	"carteira/internal/services"
	"carteira/internal/summary"
)

var flagToken string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the dashboard of the user a token belongs to",
	Long:  "Sign in with a bearer token (--token or CARTEIRA_TOKEN) and print the month's dashboard.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token := flagToken
		if token == "" {
			token = os.Getenv("CARTEIRA_TOKEN")
		}
		if token == "" {
			return errors.New("--token or CARTEIRA_TOKEN is required")
		}
		if flagMonth < 1 || flagMonth > 12 {
			return fmt.Errorf("--month must be between 1 and 12")
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		tokens, err := rt.Tokens()
		if err != nil {
			return err
		}
		user, err := tokens.Parse(token)
		if err != nil {
			return err
		}

		session := auth.NewSession()
		ws := services.NewWorkspace(rt.Backend.Store, rt.Logger)
		session.SignIn(user)
		if err := ws.Attach(ctx, session); err != nil {
			return err
		}
		defer func() {
			session.SignOut()
			ws.Detach()
		}()

		snap := ws.Snapshot()
		o := summary.BuildOverview(snap, flagYear, time.Month(flagMonth))
		fmt.Println(cli.RenderTitle(fmt.Sprintf("CARTEIRA  %s", ws.Owner())))
		fmt.Print(cli.RenderTable(cli.OverviewTable(o, snap.Settings.Currency)))
		return nil
	},
}

func init() {
	overviewCmd.Flags().StringVar(&flagToken, "token", "", "Bearer token issued by 'carteira token'")
	overviewCmd.Flags().IntVar(&flagYear, "year", time.Now().Year(), "Calendar year")
	overviewCmd.Flags().IntVar(&flagMonth, "month", int(time.Now().Month()), "Month")
	rootCmd.AddCommand(overviewCmd)
}
