package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IsNoRows reports whether err is the "no matching row" outcome of a
// QueryRow/Scan call, as opposed to a connection, context, or
// serialization failure. Repository Get methods use this to decide
// between apperr.ErrNotFound and apperr.ErrInfrastructure without
// importing pgx themselves.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Postgres adapts a caller-owned pgxpool.Pool to the Port contract.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-connected pool. The caller owns the pool's
// lifecycle (creation, ping, close).
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Execute runs a statement and returns the number of affected rows.
func (p *Postgres) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("store: execute: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryRow runs a statement expected to return at most one row.
func (p *Postgres) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return p.pool.QueryRow(ctx, sql, args...)
}

// QueryRows runs a statement expected to return any number of rows.
func (p *Postgres) QueryRows(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	return pgxRows{rows}, nil
}

// WithTx runs fn inside a transaction at the requested isolation level,
// rolling back unless fn returns nil and the commit succeeds. Isolation
// is parameterized because group-edge writes need Serializable while
// ordinary mutations are fine at ReadCommitted.
func (p *Postgres) WithTx(ctx context.Context, iso IsoLevel, fn func(Tx) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: toPgxIso(iso)})
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(pgxTx{tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

func toPgxIso(iso IsoLevel) pgx.TxIsoLevel {
	switch iso {
	case Serializable:
		return pgx.Serializable
	case RepeatableRead:
		return pgx.RepeatableRead
	default:
		return pgx.ReadCommitted
	}
}

type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Scan(dest ...any) error { return r.Rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.Rows.Err() }

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("store: tx execute: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t pgxTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return t.tx.QueryRow(ctx, sql, args...)
}

func (t pgxTx) QueryRows(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: tx query: %w", err)
	}
	return pgxRows{rows}, nil
}
