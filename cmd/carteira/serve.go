package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/cache"
	"carteira/internal/cli"
	apphttp "carteira/internal/http"
	applog "carteira/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	tokens, err := rt.Tokens()
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:     rt.Backend.Store,
		Tokens:    tokens,
		Dashboard: rt.Dashboard,
		Records:   rt.Records,
		Primary:   rt.Primary,
		Goals:     rt.Goals,
		Logger:    rt.Logger,
		Ping:      rt.Backend.Ping,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return err
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})
	if rt.Backend.Snapshots != nil {
		go sweepSnapshots(ctx, rt.Backend.Snapshots, cfg.CacheTTL)
	}

	logger.Info("Starting carteira server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", cfg.AMQPEnabled(),
		"cache", cfg.CacheEnabled(),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	logger.Info("Server stopped gracefully")
	return nil
}

// sweepSnapshots drops expired snapshots so idle owners release memory.
func sweepSnapshots(ctx context.Context, snapshots *cache.SnapshotCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := snapshots.CleanExpired(); n > 0 {
				logger.Debug("Expired snapshots removed", "count", n, "remaining", snapshots.Size())
			}
		}
	}
}
