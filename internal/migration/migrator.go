package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/database"
)

// Module applies pending migrations on start when DB_SCHEMA_MODE=migrate.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(migrateOnStart),
)

// Migrator wraps a goose provider holding the timeclock migrations.
type Migrator struct {
	provider *goose.Provider
	logger   *zap.Logger
}

// New constructs a goose-backed migrator over the writer connection.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	return NewWithDB(cfg.Database.Driver, conns.Writer, logger)
}

// NewWithDB builds a migrator for an already opened database.
func NewWithDB(driver string, db *bun.DB, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := goose.NewProvider(dialect, db.DB, nil, goose.WithGoMigrations(migrations(db)...))
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: provider, logger: logger.Named("migration")}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")
			return nil
		}
		return err
	}
	for _, r := range results {
		m.logger.Info("migration applied", zap.Int64("version", r.Source.Version), zap.Duration("took", r.Duration))
	}
	return nil
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		results, err := m.provider.DownTo(ctx, 0)
		if err != nil && !isNoMigrationErr(err) {
			return err
		}
		m.logger.Info("migrations rolled back", zap.String("mode", "all"), zap.Int("count", len(results)))
		return nil
	}

	if steps <= 0 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if _, err := m.provider.Down(ctx); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")
				return nil
			}
			return err
		}
	}
	m.logger.Info("migrations rolled back", zap.Int("steps", steps))
	return nil
}

// Version returns the current database version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

func migrateOnStart(lc fx.Lifecycle, cfg config.Config, m *Migrator) {
	if cfg.Database.SchemaMode != config.SchemaMigrate {
		return
	}
	lc.Append(fx.Hook{OnStart: m.Up})
}

// migrations are written against bun so that one definition serves every
// supported dialect.
func migrations(db *bun.DB) []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
				return database.CreateTables(ctx, db, tx)
			}},
			&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
				return database.DropTables(ctx, db, tx)
			}},
		),
		goose.NewGoMigration(2,
			&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
				for _, idx := range lookupIndexes {
					q := db.NewCreateIndex().Conn(tx).Model(idx.model).Index(idx.name).Column(idx.columns...)
					if _, err := q.Exec(ctx); err != nil {
						return fmt.Errorf("create index %s: %w", idx.name, err)
					}
				}
				return nil
			}},
			&goose.GoFunc{RunTx: func(ctx context.Context, tx *sql.Tx) error {
				for _, idx := range lookupIndexes {
					q := db.NewDropIndex().Conn(tx).Model(idx.model).Index(idx.name)
					if _, err := q.Exec(ctx); err != nil {
						return fmt.Errorf("drop index %s: %w", idx.name, err)
					}
				}
				return nil
			}},
		),
	}
}

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case "postgres", "pg":
		return goose.DialectPostgres, nil
	case "mysql":
		return goose.DialectMySQL, nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	return errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrations)
}
