// Package cli holds the start-up plumbing shared by the carteira commands:
// logging, configuration, backend assembly, shutdown and terminal output.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carteira/internal/auth"
	"carteira/internal/backend"
	"carteira/internal/config"
	applog "carteira/internal/log"
	"carteira/internal/services"
)

// SetupLogger builds the process logger at level and installs it as the
// slog default.
func SetupLogger(level string) *applog.Logger {
	lvl := applog.ParseLevel(level)
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	slog.SetDefault(logger.Logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the layered configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runtime is the assembled backend plus the services built over it.
type Runtime struct {
	Config    *config.Config
	Logger    *applog.Logger
	Backend   *backend.Result
	Dashboard *services.Dashboard
	Primary   *services.PrimaryService
	Records   *services.RecordService
	Goals     *services.GoalService
}

// Open creates the configured backend and the services sharing it.
func Open(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Runtime, error) {
	return OpenWith(ctx, backend.NewFactory(logger), cfg, logger)
}

// OpenWith is Open with an explicit backend factory.
func OpenWith(ctx context.Context, factory backend.Factory, cfg *config.Config, logger *applog.Logger) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	primary := services.NewPrimaryService(res.Store, logger)
	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Backend:   res,
		Dashboard: services.NewDashboard(res.Store, res.Snapshots, logger),
		Primary:   primary,
		Records:   services.NewRecordService(res.Store, primary, nil, logger),
		Goals:     services.NewGoalService(res.Store),
	}, nil
}

// Close releases the backend.
func (r *Runtime) Close() error {
	if r.Backend == nil || r.Backend.Cleanup == nil {
		return nil
	}
	return r.Backend.Cleanup()
}

// Tokens builds the token issuer from the configured secret.
func (r *Runtime) Tokens() (*auth.TokenIssuer, error) {
	return NewTokenIssuer(r.Config)
}

// NewTokenIssuer builds the issuer the server and the token command share.
func NewTokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer)
	if errors.Is(err, auth.ErrNoSecret) {
		return nil, fmt.Errorf("%w: set JWT_SECRET", err)
	}
	return tokens, err
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// the signal, cleanup runs with a context bounded by timeout; the returned
// channel closes once it has finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
			return
		}
		logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
	}()

	return ctx, done
}
