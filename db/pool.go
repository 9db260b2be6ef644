package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zetteln/server/closer"
	"github.com/zetteln/server/o11y"
)

// Pool is the process wide connection pool. It is safe for concurrent use.
type Pool struct {
	db *sqlx.DB
}

func NewPool(db *sqlx.DB) *Pool {
	return &Pool{db: db}
}

// WithConn takes a dedicated connection from the pool, blocking while the pool
// is exhausted, and hands it to f. The connection goes back to the pool when f
// returns, whether f succeeded, failed, or ctx was cancelled. A broken
// connection is discarded by database/sql instead.
func (p *Pool) WithConn(ctx context.Context, f func(ctx context.Context, q Querier) error) (err error) {
	ctx, span := o11y.StartSpan(ctx, "db: with-conn")
	defer o11y.End(span, &err)

	stats := p.db.Stats()
	span.AddRawField("db.pool.in_use", stats.InUse)
	span.AddRawField("db.pool.max_open", stats.MaxOpenConnections)

	conn, err := p.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", mapError(err))
	}
	defer closer.ErrorHandler(conn, &err)

	return f(ctx, Wrap(conn))
}

// NoConn returns a Querier that runs each statement on whichever pooled
// connection is free.
func (p *Pool) NoConn() Querier {
	return Wrap(p.db)
}

func (p *Pool) Close() error {
	return p.db.Close()
}
