package store

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/pkg/utils"
)

// InsertFeedCache inserts-or-ignores (account, postID) into hive_feed_cache.
func (t *Tx) InsertFeedCache(ctx context.Context, account string, postID int64, ts time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_feed_cache (account, post_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (account, post_id) DO NOTHING
	`, account, postID, ts)
	return utils.Wrap(err, "insert feed cache")
}

// DeleteFeedCache removes the feed-cache row for (account, postID).
func (t *Tx) DeleteFeedCache(ctx context.Context, account string, postID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM hive_feed_cache WHERE account = $1 AND post_id = $2`, account, postID)
	return utils.Wrap(err, "delete feed cache")
}

// DeleteFeedCacheForPost removes every feed-cache row referencing postID,
// regardless of account — used when a post is deleted (spec.md §4.D step 5).
func (t *Tx) DeleteFeedCacheForPost(ctx context.Context, postID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM hive_feed_cache WHERE post_id = $1`, postID)
	return utils.Wrap(err, "delete feed cache for post")
}

// RebuildFeedCache derives the entire feed cache from hive_posts (root,
// non-deleted) and hive_reblogs in one statement. Idempotent: truncating
// and re-deriving always yields the same membership for the same base
// tables (spec.md §4.E "Feed-cache rebuild").
func (g *Gateway) RebuildFeedCache(ctx context.Context) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return utils.Wrap(err, "rebuild feed cache: begin")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE hive_feed_cache`); err != nil {
		return utils.Wrap(err, "rebuild feed cache: truncate")
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO hive_feed_cache (account, post_id, created_at)
		SELECT author, id, created_at FROM hive_posts WHERE depth = 0 AND is_deleted = FALSE
	`); err != nil {
		return utils.Wrap(err, "rebuild feed cache: roots")
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO hive_feed_cache (account, post_id, created_at)
		SELECT r.account, r.post_id, r.created_at FROM hive_reblogs r
		JOIN hive_posts p ON p.id = r.post_id
		WHERE p.is_deleted = FALSE
		ON CONFLICT (account, post_id) DO NOTHING
	`); err != nil {
		return utils.Wrap(err, "rebuild feed cache: reblogs")
	}
	return utils.Wrap(tx.Commit(ctx), "rebuild feed cache: commit")
}
