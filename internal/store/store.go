// Package store is the typed SQL gateway (spec.md §4.B): typed operations
// grouped by entity over hive_accounts, hive_posts, hive_follows,
// hive_reblogs, hive_blocks, hive_feed_cache, and hive_posts_cache, plus
// explicit transaction scoping. All projector writes for one block run
// inside a single *Tx; reads are allowed outside a transaction through the
// Gateway itself.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// querier is the subset of *pgxpool.Pool and pgx.Tx that entity operations
// need; it lets the same SQL-issuing helper run against either a pooled
// connection (reads outside a transaction) or a transaction (writes inside
// one block).
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// poolIface is the subset of *pgxpool.Pool the Gateway needs. It exists so
// tests can substitute github.com/pashagolub/pgxmock/v3, which implements
// the same method set, in place of a live connection (SPEC_FULL.md §8).
type poolIface interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Gateway owns the pool and exposes read operations plus transaction
// scoping. A single Gateway (and its underlying pool) is shared by the
// sync driver and the cache maintainer; the driver's block transactions
// and the maintainer's own transactions never run concurrently against the
// same block (spec.md §5).
type Gateway struct {
	pool   poolIface
	logger *logrus.Logger
}

// New wires a Gateway around an already-connected pool (typically
// *pgxpool.Pool; tests may pass a pgxmock.PgxPoolIface instead).
func New(pool poolIface, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gateway{pool: pool, logger: logger}
}

// Begin starts a new transaction. All projector writes for one block must
// run through the returned *Tx and be committed or rolled back as a unit.
func (g *Gateway) Begin(ctx context.Context) (*Tx, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, utils.Wrap(err, "begin transaction")
	}
	return &Tx{tx: tx}, nil
}

// DBLastBlock returns the max block number stored, or 0 if hive_blocks is
// empty.
func (g *Gateway) DBLastBlock(ctx context.Context) (uint32, error) {
	var n uint32
	err := g.pool.QueryRow(ctx, `SELECT COALESCE(MAX(num), 0) FROM hive_blocks`).Scan(&n)
	if err != nil {
		return 0, utils.Wrap(err, "db last block")
	}
	return n, nil
}

// Close releases the underlying pool.
func (g *Gateway) Close() {
	g.pool.Close()
}
