package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/cli"
	"carteira/internal/export"
	applog "carteira/internal/log"
)

var (
	flagCard   int64
	flagMonth  int
	flagQuery  string
	flagOut    string
	flagSheets bool
)

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Print the month-by-month summary of a year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := owner()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		a, err := rt.Dashboard.Annual(ctx, o, flagYear)
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderTitle(fmt.Sprintf("CARTEIRA  %d", flagYear)))
		fmt.Print(cli.RenderTable(cli.AnnualTable(a, currency(ctx, rt, o))))
		return nil
	},
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Print a card invoice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := owner()
		if err != nil {
			return err
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

		inv, err := rt.Dashboard.Invoice(ctx, o, flagCard, flagYear, time.Month(flagMonth), flagQuery)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderTable(cli.InvoiceTable(inv, currency(ctx, rt, o))))
		if flagQuery != "" && len(inv.Displayed) < len(inv.Items) {
			fmt.Printf("  %d of %d items match %q\n", len(inv.Displayed), len(inv.Items), flagQuery)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the annual report to an XLSX file or Google Sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := owner()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		annual, invoices, err := rt.Dashboard.Report(ctx, o, flagYear)
		if err != nil {
			return err
		}

		if flagSheets {
			creds, err := export.LoadCredentials(cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsFile)
			if err != nil {
				return err
			}
			exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, rt.Logger, export.CredentialOptions(creds)...)
			if err != nil {
				return err
			}
			if err := exporter.ExportAnnual(ctx, annual, invoices); err != nil {
				return err
			}
			fmt.Printf("Exported %d to spreadsheet %s (%d invoices)\n", flagYear, cfg.GoogleSpreadsheetID, len(invoices))
			return nil
		}

		out := flagOut
		if out == "" {
			out = fmt.Sprintf("carteira-%d.xlsx", flagYear)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		if err := export.WriteXLSX(f, annual, invoices); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		logger.InfoContext(ctx, "Annual workbook written",
			applog.FieldOwner, string(o),
			applog.FieldYear, flagYear,
			"path", out,
		)
		fmt.Printf("Wrote %s (%d invoices)\n", out, len(invoices))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{annualCmd, invoiceCmd, exportCmd} {
		addReportFlags(c)
	}

	invoiceCmd.Flags().Int64Var(&flagCard, "card", 0, "Card id")
	invoiceCmd.Flags().IntVar(&flagMonth, "month", int(time.Now().Month()), "Month the invoice closes in")
	invoiceCmd.Flags().StringVar(&flagQuery, "query", "", "Show only items whose description matches")
	_ = invoiceCmd.MarkFlagRequired("card")

	exportCmd.Flags().StringVar(&flagOut, "out", "", "XLSX output path (default carteira-YEAR.xlsx)")
	exportCmd.Flags().BoolVar(&flagSheets, "sheets", false, "Write to GOOGLE_SPREADSHEET_ID instead of a file")

	rootCmd.AddCommand(annualCmd, invoiceCmd, exportCmd)
}
