// Package postgres provides a PostgreSQL implementation of database.Source
// backed by pgxpool.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
)

// Driver is a PostgreSQL database.Source. The pool is opened lazily by
// Connect and released by Close; a Driver is meant to be owned by exactly
// one pipeline orchestrator and used by one statement at a time.
type Driver struct {
	cfg  *database.Config
	pool *pgxpool.Pool
}

// New returns an unconnected Driver for the given config.
// No connection is made until Connect is called.
func New(cfg *database.Config) *Driver {
	return &Driver{cfg: cfg}
}

// --- database.Source implementation ---

// Connect opens the connection pool and validates it with a ping.
// A no-op while a live pool exists.
func (d *Driver) Connect(ctx context.Context) error {
	if d.pool != nil {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(d.cfg.DSN)
	if err != nil {
		return errs.Wrap(errs.ErrKindConnection, "invalid DSN", err)
	}

	poolCfg.MaxConns = d.cfg.MaxConns
	poolCfg.MinConns = d.cfg.MinConns
	poolCfg.MaxConnLifetime = d.cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = d.cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = d.cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return errs.Wrap(errs.ErrKindConnection, "failed to create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errs.Wrap(errs.ErrKindConnection, "ping failed", err)
	}

	d.pool = pool
	return nil
}

// Close drains the pool. Safe to call with no live pool, and safe to call
// repeatedly; a later Connect opens a fresh pool.
func (d *Driver) Close(_ context.Context) error {
	if d.pool == nil {
		return nil
	}
	d.pool.Close()
	d.pool = nil
	return nil
}

// Ping verifies the database is reachable.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return errs.New(errs.ErrKindConnection, "not connected")
	}
	if err := d.pool.Ping(ctx); err != nil {
		return errs.Wrap(errs.ErrKindConnection, "ping failed", err)
	}
	return nil
}

// Query executes sql with the given parameters and collects every row into
// a loosely-typed Record keyed by the result column names.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) ([]database.Record, error) {
	if d.pool == nil {
		return nil, errs.New(errs.ErrKindConnection, "not connected")
	}

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return collectRecords(rows)
}

// collectRecords drains rows into Records. It always closes rows.
func collectRecords(rows pgx.Rows) ([]database.Record, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []database.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, mapError(err, "failed to read row values")
		}
		rec := make(database.Record, len(fields))
		for i, f := range fields {
			rec[f.Name] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating rows")
	}
	return out, nil
}
