// Package database opens the bun writer and reader pools and manages the
// schema lifecycle.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/schema"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

const pingTimeout = 5 * time.Second

// Connections holds the writer pool and the reader pool. Without a distinct
// reader DSN both point at the same pool.
type Connections struct {
	Driver string
	Writer *bun.DB
	Reader *bun.DB
}

type driver struct {
	dialect func() schema.Dialect
	open    func(dsn string) (*sql.DB, error)
	// single forces one pooled connection.
	single bool
}

var drivers = map[string]driver{
	"postgres": {
		dialect: func() schema.Dialect { return pgdialect.New() },
		open: func(dsn string) (*sql.DB, error) {
			return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), nil
		},
	},
	"mysql": {
		dialect: func() schema.Dialect { return mysqldialect.New() },
		open:    func(dsn string) (*sql.DB, error) { return sql.Open("mysql", dsn) },
	},
	// sqlite serialises writers; one connection also keeps in-memory databases alive.
	"sqlite": {
		dialect: func() schema.Dialect { return sqlitedialect.New() },
		open:    func(dsn string) (*sql.DB, error) { return sql.Open("sqlite3", dsn) },
		single:  true,
	},
}

// Module opens the writer and reader pools and prepares the schema.
var Module = fx.Provide(New)

// New opens the pools and applies the configured schema mode on start.
// create-drop removes the schema again on stop.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Connections, error) {
	conns, err := Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	mode := cfg.Database.SchemaMode

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := conns.Ping(ctx); err != nil {
				return err
			}
			logger.Info("database connected", zap.String("driver", conns.Driver), zap.Bool("replica", conns.HasReplica()))

			if mode == config.SchemaCreate || mode == config.SchemaCreateDrop {
				if err := CreateSchema(ctx, conns.Writer); err != nil {
					return fmt.Errorf("create schema: %w", err)
				}
				logger.Info("schema ensured", zap.String("mode", mode))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var dropErr error
			if mode == config.SchemaCreateDrop {
				if err := DropSchema(ctx, conns.Writer); err != nil {
					dropErr = fmt.Errorf("drop schema: %w", err)
				}
			}
			return errors.Join(dropErr, conns.Close())
		},
	})

	return conns, nil
}

// Open builds the pools without binding them to a lifecycle.
func Open(cfg config.Database, logger *zap.Logger) (*Connections, error) {
	drv, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	writer, err := openPool(drv, cfg, cfg.WriterDSN)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	conns := &Connections{Driver: cfg.Driver, Writer: writer, Reader: writer}

	if cfg.ReaderDSN != "" && cfg.ReaderDSN != cfg.WriterDSN {
		reader, err := openPool(drv, cfg, cfg.ReaderDSN)
		if err != nil {
			_ = writer.Close()
			return nil, fmt.Errorf("open reader: %w", err)
		}
		conns.Reader = reader
	}

	if cfg.LogQueries && logger != nil {
		hook := NewQueryLogger(logger)
		conns.each(func(db *bun.DB) { db.AddQueryHook(hook) })
	}
	return conns, nil
}

func openPool(drv driver, cfg config.Database, dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DSN")
	}
	sqldb, err := drv.open(dsn)
	if err != nil {
		return nil, err
	}

	switch {
	case drv.single:
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
	default:
		if cfg.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.MaxConnLifetime > 0 {
			sqldb.SetConnMaxLifetime(cfg.MaxConnLifetime)
		}
	}
	return bun.NewDB(sqldb, drv.dialect()), nil
}

// HasReplica reports whether reads go to a separate pool.
func (c *Connections) HasReplica() bool {
	return c.Reader != nil && c.Reader != c.Writer
}

func (c *Connections) each(fn func(*bun.DB)) {
	fn(c.Writer)
	if c.HasReplica() {
		fn(c.Reader)
	}
}

// Ping checks every pool, each bounded by pingTimeout.
func (c *Connections) Ping(ctx context.Context) error {
	if err := ping(ctx, c.Writer); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	if c.HasReplica() {
		if err := ping(ctx, c.Reader); err != nil {
			return fmt.Errorf("ping reader: %w", err)
		}
	}
	return nil
}

// Close closes every pool.
func (c *Connections) Close() error {
	var errs []error
	c.each(func(db *bun.DB) { errs = append(errs, db.Close()) })
	return errors.Join(errs...)
}

func ping(ctx context.Context, db *bun.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}
