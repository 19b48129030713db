package backend

import (
	"context"
	"errors"
	"fmt"

	"carteira/internal/adapters"
	"carteira/internal/amqp"
	"carteira/internal/cache"
	applog "carteira/internal/log"
	"carteira/internal/storage"
	"carteira/internal/store"
	"carteira/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	dial   func(cfg Config, logger *applog.Logger) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		dial: func(cfg Config, logger *applog.Logger) (*amqp.Client, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPRoutingKey, logger)
		},
	}
}

// CreateBackend opens the configured store and, when enabled, decorates it
// so mutations invalidate the snapshot cache and publish change events. An
// unreachable broker is logged and the backend runs without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	base, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	// Untyped nils: a typed nil pointer in these interfaces would be called.
	var (
		publisher   adapters.EventPublisher
		invalidator adapters.Invalidator
	)

	if config.CacheSize > 0 {
		result.Snapshots = cache.NewSnapshotCache(config.CacheSize, config.CacheTTL)
		invalidator = result.Snapshots
	}

	if config.AMQPURL != "" {
		client, err := f.dial(config, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				applog.FieldError, err.Error())
		} else {
			result.Events = client
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
	}

	result.Store = base
	if p, ok := base.(interface{ Ping(context.Context) error }); ok {
		result.Ping = p.Ping
	}
	if publisher != nil || invalidator != nil {
		result.Store = adapters.NewNotifyingStore(base, publisher, invalidator, f.logger)
	}

	result.Cleanup = func() error {
		var errs []error
		if result.Events != nil {
			errs = append(errs, result.Events.Close())
		}
		errs = append(errs, base.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Backend ready",
		"type", config.Type.String(),
		"cache_enabled", result.Snapshots != nil,
		"events_enabled", result.Events != nil)
	return result, nil
}

func (f *DefaultFactory) openStore(config Config) (store.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	case MemoryBackend:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
