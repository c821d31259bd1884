package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type DBConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OpenPostgres creates a pgx pool, wraps it for the ent SQL driver and makes
// sure the artifacts table exists.
func OpenPostgres(ctx context.Context, cfg DBConfig, retention time.Duration, logger *slog.Logger) (ArtifactRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("repository.postgres.parse_dsn_failed", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "pdfsheets"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("repository.postgres.connect_failed", "error", err)
		return nil, err
	}
	if err := HealthCheck(dialCtx, pool, cfg.DialTimeout, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	// wrap pool as *sql.DB for the ent driver
	drv := entsql.OpenDB(dialect.Postgres, stdlib.OpenDBFromPool(pool))
	repo, err := newSQLRepository(ctx, drv, retention, logger)
	if err != nil {
		_ = drv.Close()
		pool.Close()
		return nil, err
	}
	repo.pool = pool
	logger.Info("repository.postgres.connected")
	return repo, nil
}

// OpenSQLite opens (creating if needed) a SQLite file through modernc.org/sqlite.
func OpenSQLite(ctx context.Context, path string, retention time.Duration, logger *slog.Logger) (ArtifactRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps SQLITE_BUSY away
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	drv := entsql.OpenDB(dialect.SQLite, db)
	repo, err := newSQLRepository(ctx, drv, retention, logger)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	return repo, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("repository.postgres.ping")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}
