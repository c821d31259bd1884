package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/pdfsheets/internal/export"
)

const artifactsTable = "artifacts"

var artifactsDDL = map[string]string{
	dialect.SQLite: `CREATE TABLE IF NOT EXISTS artifacts (
	filename    TEXT PRIMARY KEY,
	template_id TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	data        BLOB NOT NULL,
	created_at  INTEGER NOT NULL
)`,
	dialect.Postgres: `CREATE TABLE IF NOT EXISTS artifacts (
	filename    TEXT PRIMARY KEY,
	template_id TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	data        BYTEA NOT NULL,
	created_at  BIGINT NOT NULL
)`,
}

// sqlRepo stores artifacts in one table. created_at holds Unix nanoseconds.
type sqlRepo struct {
	drv       *entsql.Driver
	pool      *pgxpool.Pool
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func newSQLRepository(ctx context.Context, drv *entsql.Driver, retention time.Duration, logger *slog.Logger) (*sqlRepo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ddl, ok := artifactsDDL[drv.Dialect()]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %q", drv.Dialect())
	}
	if _, err := drv.ExecContext(ctx, ddl); err != nil {
		logger.Error("repository.sql.migrate_failed", "dialect", drv.Dialect(), "error", err)
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}
	return &sqlRepo{drv: drv, retention: retention, now: time.Now, logger: logger}, nil
}

func (r *sqlRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *sqlRepo) Put(ctx context.Context, a export.Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	query, args := r.builder().
		Insert(artifactsTable).
		Columns("filename", "template_id", "row_count", "data", "created_at").
		Values(a.Filename, a.TemplateID, a.Rows, a.Data, a.CreatedAt.UnixNano()).
		OnConflict(entsql.ConflictColumns("filename"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.drv.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.sql.put_failed", "filename", a.Filename, "error", err)
		return fmt.Errorf("insert artifact: %w", err)
	}
	r.logger.Debug("repository.put", "filename", a.Filename, "bytes", len(a.Data))
	return nil
}

func (r *sqlRepo) Get(ctx context.Context, filename string) (export.Artifact, error) {
	b := r.builder()
	query, args := b.Select("template_id", "row_count", "data", "created_at").
		From(b.Table(artifactsTable)).
		Where(entsql.EQ("filename", filename)).
		Query()
	rows, err := r.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return export.Artifact{}, fmt.Errorf("query artifact: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return export.Artifact{}, err
		}
		return export.Artifact{}, notFound(filename)
	}
	a := export.Artifact{Filename: filename}
	var created int64
	if err := rows.Scan(&a.TemplateID, &a.Rows, &a.Data, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Artifact{}, notFound(filename)
		}
		return export.Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}
	a.CreatedAt = time.Unix(0, created)
	if expired(a, r.retention, r.now()) {
		return export.Artifact{}, notFound(filename)
	}
	return a, nil
}

func (r *sqlRepo) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	query, args := r.builder().
		Delete(artifactsTable).
		Where(entsql.LT("created_at", cutoff.UnixNano())).
		Query()
	res, err := r.drv.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge artifacts: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *sqlRepo) Close() error {
	err := r.drv.Close()
	if r.pool != nil {
		r.pool.Close()
	}
	return err
}
