package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	// Import file driver for the migration source.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/serenolabs/sereno/internal/server/config"
	"github.com/serenolabs/sereno/internal/server/logger"
)

// Pool wraps pgxpool.Pool with migration and health-check support.
type Pool struct {
	*pgxpool.Pool
	cfg config.DatabaseConfig
}

// NewPool connects to PostgreSQL with retry and exponential backoff, then
// runs pending migrations unless the config skips them.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// All timestamps are stored and compared in UTC.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "SET timezone = 'UTC'"); err != nil {
			return fmt.Errorf("failed to set timezone: %w", err)
		}
		return nil
	}

	var pool *pgxpool.Pool
	retryCfg := DefaultRetryConfig()

	err = Retry(ctx, retryCfg, func() error {
		var err error
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("failed to create pool: %w", err)
		}

		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("ping failed: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &Pool{
		Pool: pool,
		cfg:  cfg,
	}

	if !cfg.SkipMigrations {
		if err := p.runMigrations(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return p, nil
}

// Health pings the database with a short timeout.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

func (p *Pool) runMigrations() error {
	// Register the pgx driver with database/sql for the migration run.
	db := stdlib.OpenDB(*p.Pool.Config().ConnConfig)
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationsPath := p.cfg.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", version)
	}

	if errors.Is(err, migrate.ErrNilVersion) {
		logger.Get().Info("database migrations completed (no migrations found)")
	} else {
		logger.Get().Info("database migrations completed", zap.Uint("version", version))
	}

	return nil
}
