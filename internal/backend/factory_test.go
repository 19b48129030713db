package backend

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"carteira/internal/adapters"
	"carteira/internal/amqp"
	"carteira/internal/config"
	applog "carteira/internal/log"
	"carteira/internal/storage"
	"carteira/internal/store/memory"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.NewTextConfig(io.Discard, applog.ParseLevel("error"), applog.ComponentBackend))
}

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantErr    bool
		wantCache  bool
		decorated  bool
		checkStore func(t *testing.T, r *Result)
	}{
		{
			name:   "plain memory",
			config: Config{Type: MemoryBackend},
			checkStore: func(t *testing.T, r *Result) {
				if _, ok := r.Store.(*memory.Store); !ok {
					t.Errorf("store = %T, want *memory.Store", r.Store)
				}
			},
		},
		{
			name:      "memory with cache",
			config:    Config{Type: MemoryBackend, CacheSize: 4, CacheTTL: time.Minute},
			wantCache: true,
			decorated: true,
		},
		{
			name:    "broker unreachable keeps running",
			config:  Config{Type: MemoryBackend, AMQPURL: "amqp://nowhere", AMQPExchange: "x", AMQPQueue: "q", AMQPRoutingKey: "k"},
			wantErr: false,
			checkStore: func(t *testing.T, r *Result) {
				if r.Events != nil {
					t.Error("events should be disabled")
				}
				if _, ok := r.Store.(*memory.Store); !ok {
					t.Errorf("store = %T, want the undecorated store", r.Store)
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend},
			checkStore: func(t *testing.T, r *Result) {
				if _, ok := r.Store.(*storage.SQLiteRepository); !ok {
					t.Errorf("store = %T, want *storage.SQLiteRepository", r.Store)
				}
				if r.Ping == nil || r.Ping(context.Background()) != nil {
					t.Error("sqlite backend should expose a working Ping")
				}
			},
		},
		{
			name:    "invalid type",
			config:  Config{Type: "sheets"},
			wantErr: true,
		},
		{
			name:    "amqp without routing key",
			config:  Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x", AMQPQueue: "q"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &DefaultFactory{
				logger: quietLogger(),
				dial: func(Config, *applog.Logger) (*amqp.Client, error) {
					return nil, errors.New("connection refused")
				},
			}
			if tt.config.Type == SQLiteBackend {
				tt.config.SQLiteDBPath = filepath.Join(t.TempDir(), "carteira.db")
			}

			r, err := f.CreateBackend(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer r.Cleanup()

			if (r.Snapshots != nil) != tt.wantCache {
				t.Errorf("snapshots enabled = %v, want %v", r.Snapshots != nil, tt.wantCache)
			}
			if _, ok := r.Store.(*adapters.NotifyingStore); ok != tt.decorated {
				t.Errorf("decorated = %v, want %v", ok, tt.decorated)
			}
			if tt.checkStore != nil {
				tt.checkStore(t, r)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	app := config.Default()
	app.DataBackend = "sqlite"
	app.AMQPURL = "amqp://localhost/"

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != app.SQLiteDBPath {
		t.Errorf("unexpected backend config: %+v", cfg)
	}
	if cfg.AMQPRoutingKey != app.AMQPRoutingKey || cfg.CacheSize != app.CacheSize {
		t.Errorf("amqp/cache settings not carried: %+v", cfg)
	}

	app.DataBackend = "sheets"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected an error for a nil config")
	}
}

func TestBackendTypes(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "sqlite" || got[1] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}
