package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// Tx wraps one pgx transaction. Every projector write for a single block
// runs through the same Tx; a crash mid-batch rolls the whole batch back,
// which is safe because block application is idempotent per block number
// (spec.md §5).
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return utils.Wrap(t.tx.Commit(ctx), "commit transaction")
}

// Rollback rolls the transaction back. Safe to call after Commit; pgx
// reports pgx.ErrTxClosed in that case, which callers may ignore.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return utils.Wrap(err, "rollback transaction")
	}
	return nil
}
