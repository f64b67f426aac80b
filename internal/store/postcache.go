package store

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// UpsertPostCache writes or overwrites the denormalized cache row for a
// post, refreshed from the adapter's payout lookup (spec.md §4.E).
func (g *Gateway) UpsertPostCache(ctx context.Context, postID int64, p *model.PayoutInfo, refreshedAt time.Time) error {
	_, err := g.pool.Exec(ctx, `
		INSERT INTO hive_posts_cache (post_id, author, permlink, pending_payout, total_payout, is_paidout, refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (post_id) DO UPDATE SET
			pending_payout = EXCLUDED.pending_payout,
			total_payout   = EXCLUDED.total_payout,
			is_paidout     = EXCLUDED.is_paidout,
			refreshed_at   = EXCLUDED.refreshed_at
	`, postID, p.Author, p.Permlink, p.PendingPayout, p.TotalPayout, p.IsPaidOut, refreshedAt)
	return utils.Wrap(err, "upsert post cache")
}

// MaxPostCacheID returns the highest post_id present in hive_posts_cache, 0
// if it is empty. Used alongside MaxPostID to size the missing-fill pass
// (spec.md §4.E "Missing-fill").
func (g *Gateway) MaxPostCacheID(ctx context.Context) (int64, error) {
	var id int64
	err := g.pool.QueryRow(ctx, `SELECT COALESCE(MAX(post_id), 0) FROM hive_posts_cache`).Scan(&id)
	return id, utils.Wrap(err, "max post cache id")
}

// DeletePostCache removes the cache row for postID (post deletion,
// spec.md §4.D step 5).
func (t *Tx) DeletePostCache(ctx context.Context, postID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM hive_posts_cache WHERE post_id = $1`, postID)
	return utils.Wrap(err, "delete post cache")
}
