package store

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// InsertReblog inserts (account, postID) if not already present
// (insert-or-ignore, spec.md §4.B).
func (t *Tx) InsertReblog(ctx context.Context, account string, postID int64, ts time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_reblogs (account, post_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (account, post_id) DO NOTHING
	`, account, postID, ts)
	return utils.Wrap(err, "insert reblog")
}

// DeleteReblog removes the reblog row for (account, postID). LIMIT 1 is not
// expressible via a plain DELETE...WHERE in postgres without a subquery;
// the primary key already guarantees at most one row matches, so a direct
// delete satisfies the "at most one row removed" requirement from
// spec.md §4.D reblog semantics.
func (t *Tx) DeleteReblog(ctx context.Context, account string, postID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM hive_reblogs WHERE account = $1 AND post_id = $2`, account, postID)
	return utils.Wrap(err, "delete reblog")
}

// ReblogExists reports whether account has reblogged postID.
func (g *Gateway) ReblogExists(ctx context.Context, account string, postID int64) (bool, error) {
	var exists bool
	err := g.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM hive_reblogs WHERE account = $1 AND post_id = $2)`, account, postID).Scan(&exists)
	return exists, utils.Wrap(err, "reblog exists")
}
