// Package database provides PostgreSQL and SQLite connection management with
// lifecycle coordination and embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/emotionwave/pkg/lifecycle"
	"github.com/JaimeStill/emotionwave/pkg/query"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Dialect returns the SQL dialect of the configured driver.
	Dialect() query.Dialect
	// Ready reports whether the startup ping (and migration, when enabled) succeeded.
	Ready() bool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	cfg         Config
	conn        *sql.DB
	migrations  fs.FS
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New creates a database system with the given configuration.
// It calls sql.Open to validate the DSN and configure pool parameters,
// but does not establish a connection until Start is called.
// When cfg.AutoMigrate is set, migrations are applied during startup;
// a nil migrations FS disables that step.
func New(cfg *Config, migrations fs.FS, logger *slog.Logger) (System, error) {
	db, err := sql.Open(cfg.DriverName(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		cfg:         *cfg,
		conn:        db,
		migrations:  migrations,
		logger:      logger.With("system", "database", "driver", cfg.Driver),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Dialect() query.Dialect {
	if d.cfg.Driver == DriverSQLite {
		return query.SQLite
	}
	return query.Postgres
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	lc.OnStartup(func() error {
		if d.cfg.Driver == DriverSQLite {
			if err := os.MkdirAll(filepath.Dir(d.cfg.Path), 0o755); err != nil {
				return fmt.Errorf("%w: %w", ErrNotReady, err)
			}
		}

		pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(pingCtx); err != nil {
			d.logger.Error("database ping failed", "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		if d.cfg.AutoMigrate && d.migrations != nil {
			version, err := Migrate(&d.cfg, d.migrations)
			if err != nil {
				d.logger.Error("database migration failed", "error", err)
				return err
			}
			d.logger.Info("database migrated", "version", version)
		}

		d.ready.Store(true)
		d.logger.Info("database connection established")
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}
