package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stage-mapper/internal/engine"
)

// Copier is the bulk-load subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Postgres copies rows into a staging table with COPY FROM STDIN.
type Postgres struct {
	db    Copier
	table pgx.Identifier
	// Copied counts rows loaded so far.
	Copied int64
}

// NewPostgres loads into table, which may be schema-qualified ("stage.vehicle").
// Column names are used as they appear in the mapping.
func NewPostgres(db Copier, table string) *Postgres {
	return &Postgres{db: db, table: pgx.Identifier(strings.Split(table, "."))}
}

// Write implements Sink. One call is one COPY; a failed COPY loads nothing.
func (p *Postgres) Write(ctx context.Context, columns []string, rows []engine.Row) error {
	if len(rows) == 0 {
		return nil
	}

	n, err := p.db.CopyFrom(ctx, p.table, columns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return rows[i].Values(), nil
	}))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", p.table.Sanitize(), err)
	}

	p.Copied += n

	return nil
}

// Close implements Sink. The connection belongs to the caller.
func (p *Postgres) Close() error {
	return nil
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
