package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/amqp"
	"carteira/internal/cli"
	"carteira/internal/export"
	applog "carteira/internal/log"
	"carteira/internal/worker"
)

var flagSyncInterval time.Duration

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Consume record change events",
	Long: "Consume record change events from AMQP_QUEUE and log them. With --owner and\n" +
		"GOOGLE_SPREADSHEET_ID set, the owner's annual report is kept in sync in Google Sheets.",
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&flagOwner, "owner", "", "Sync this owner's report to Google Sheets")
	eventsCmd.Flags().DurationVar(&flagSyncInterval, "sync-interval", 30*time.Second, "How often stale reports are rewritten")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is not set")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPRoutingKey, logger)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	sync, closeSync, err := newSheetsSync(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSync()
	if sync != nil {
		sync.MarkStale(time.Now().Year())
		go sync.Run(ctx)
	}

	err = client.ConsumeRecordChanged(ctx, func(msg *amqp.RecordChangedMessage) error {
		logger.InfoContext(ctx, "Record changed",
			applog.FieldEventID, msg.EventID.String(),
			applog.FieldOperation, msg.Op,
			applog.FieldEntity, msg.Entity,
			applog.FieldOwner, string(msg.OwnerID),
			applog.FieldRecordID, msg.RecordID,
		)
		if sync == nil {
			return nil
		}
		return sync.HandleRecordChanged(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if sync != nil && sync.Pending() > 0 {
		flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := sync.Flush(flushCtx); err != nil {
			logger.Warn("Final report sync incomplete", applog.FieldError, err)
		}
	}
	<-done
	return nil
}

// newSheetsSync builds the report sync worker when --owner and a
// spreadsheet are configured; otherwise it returns nil.
func newSheetsSync(ctx context.Context) (*worker.SyncWorker, func(), error) {
	noop := func() {}
	if flagOwner == "" {
		return nil, noop, nil
	}
	o, err := owner()
	if err != nil {
		return nil, noop, err
	}
	if cfg.GoogleSpreadsheetID == "" {
		return nil, noop, errors.New("--owner needs GOOGLE_SPREADSHEET_ID to sync reports")
	}

	creds, err := export.LoadCredentials(cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, noop, err
	}
	exporter, err := export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, logger, export.CredentialOptions(creds)...)
	if err != nil {
		return nil, noop, err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return nil, noop, err
	}
	closeRuntime := func() {
		if err := rt.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}

	logger.Info("Report sync enabled",
		applog.FieldOwner, string(o),
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"interval", flagSyncInterval.String(),
	)
	return worker.NewSyncWorker(rt.Dashboard, exporter, o, flagSyncInterval, logger), closeRuntime, nil
}
