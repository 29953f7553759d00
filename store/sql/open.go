package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-resources/core"
	"github.com/goliatone/go-resources/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const otelIdentifier = "go-resources"

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool                { return c.debug }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c persistenceConfig) GetOtelIdentifier() string     { return otelIdentifier }

// Mirror owns the persistence client backing an EntityStore.
type Mirror struct {
	client *persistence.Client
	store  *EntityStore
}

func (m *Mirror) Store() *EntityStore {
	if m == nil {
		return nil
	}
	return m.store
}

func (m *Mirror) Client() *persistence.Client {
	if m == nil {
		return nil
	}
	return m.client
}

func (m *Mirror) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Open connects to cfg's database, applies the mirror schema and returns the
// store. Supported drivers are sqlite3 and postgres.
func Open(ctx context.Context, cfg core.PersistenceConfig) (*Mirror, error) {
	driver := strings.TrimSpace(strings.ToLower(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, core.NewConfigurationError("sqlstore: persistence dsn is required", map[string]any{
			"driver": driver,
		})
	}
	dialect, err := migrations.DialectForDriver(driver)
	if err != nil {
		return nil, core.NewConfigurationError("sqlstore: unsupported persistence driver", map[string]any{
			"driver": driver,
		})
	}
	sqlDriver := driver
	if sqlDriver == "sqlite" {
		sqlDriver = "sqlite3"
	}
	if sqlDriver == "postgresql" {
		sqlDriver = "postgres"
	}

	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", sqlDriver, err)
	}
	if sqlDriver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := newClient(persistenceConfig{driver: sqlDriver, server: dsn, debug: cfg.Debug}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	if err := migrations.RegisterForDriver(ctx, sqlDriver, func(fsys fs.FS) {
		client.RegisterSQLMigrations(fsys)
	}); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}

	db, err := resolveBunDB(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	store, err := NewEntityStore(db)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Mirror{client: client, store: store}, nil
}

func newClient(cfg persistenceConfig, sqlDB *sql.DB, dialect string) (*persistence.Client, error) {
	if dialect == migrations.DialectPostgres {
		return persistence.New(cfg, sqlDB, pgdialect.New())
	}
	return persistence.New(cfg, sqlDB, sqlitedialect.New())
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

// NewEntityStoreFromPersistence builds a store on an already migrated client.
func NewEntityStoreFromPersistence(client any) (*EntityStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewEntityStore(db)
}
