package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// GetPost looks up (author, permlink) outside a transaction. Returns
// (nil, nil) if absent. Deleted rows are returned too, so callers can
// decide whether a delete or a reinstate applies.
func (g *Gateway) GetPost(ctx context.Context, author, permlink string) (*model.Post, error) {
	return getPost(ctx, g.pool, author, permlink)
}

// GetPost looks up (author, permlink) within tx.
func (t *Tx) GetPost(ctx context.Context, author, permlink string) (*model.Post, error) {
	return getPost(ctx, t.tx, author, permlink)
}

func getPost(ctx context.Context, q querier, author, permlink string) (*model.Post, error) {
	var p model.Post
	err := q.QueryRow(ctx, `
		SELECT id, author, permlink, parent_id, root_id, depth, category, community, is_valid, is_deleted, created_at
		FROM hive_posts WHERE author = $1 AND permlink = $2
	`, author, permlink).Scan(&p.ID, &p.Author, &p.Permlink, &p.ParentID, &p.RootID, &p.Depth,
		&p.Category, &p.Community, &p.IsValid, &p.IsDeleted, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(err, "get post")
	}
	return &p, nil
}

// InsertPost creates a brand new post row and returns its assigned id.
func (t *Tx) InsertPost(ctx context.Context, p *model.Post) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO hive_posts (author, permlink, parent_id, root_id, depth, category, community, is_valid, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
		RETURNING id
	`, p.Author, p.Permlink, p.ParentID, p.RootID, p.Depth, p.Category, p.Community, p.IsValid, p.CreatedAt).Scan(&id)
	if err != nil {
		return 0, utils.Wrap(err, "insert post")
	}
	return id, nil
}

// SetRootSelf sets root_id = id for a freshly inserted root post, whose own
// id is only known after the insert completes (spec.md §3 "Post.RootID").
func (t *Tx) SetRootSelf(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE hive_posts SET root_id = $1 WHERE id = $1`, id)
	return utils.Wrap(err, "set root self")
}

// ReinstatePost un-deletes an existing post id, refreshing the fields that
// may have changed since it was first registered (spec.md §4.D step 4).
func (t *Tx) ReinstatePost(ctx context.Context, id int64, p *model.Post) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE hive_posts SET is_deleted = FALSE, is_valid = $2, parent_id = $3,
			root_id = $4, category = $5, community = $6, depth = $7
		WHERE id = $1
	`, id, p.IsValid, p.ParentID, p.RootID, p.Category, p.Community, p.Depth)
	return utils.Wrap(err, "reinstate post")
}

// MarkPostDeleted sets is_deleted = TRUE for id.
func (t *Tx) MarkPostDeleted(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE hive_posts SET is_deleted = TRUE WHERE id = $1`, id)
	return utils.Wrap(err, "mark post deleted")
}

// MaxPostID returns the highest assigned post id, 0 if hive_posts is empty.
func (g *Gateway) MaxPostID(ctx context.Context) (int64, error) {
	var id int64
	err := g.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM hive_posts`).Scan(&id)
	return id, utils.Wrap(err, "max post id")
}

// ResolvePostKeys resolves a batch of (author, permlink) pairs to their
// (id, author, permlink), skipping deleted posts. A key with no row at all
// yields model.ErrIntegrity. Used by the cache maintainer's edit-refresh
// discipline (spec.md §4.E).
func (g *Gateway) ResolvePostKeys(ctx context.Context, keys []model.PostKey) ([]PostRef, error) {
	out := make([]PostRef, 0, len(keys))
	for _, k := range keys {
		var ref PostRef
		var isDeleted bool
		err := g.pool.QueryRow(ctx, `
			SELECT id, author, permlink, is_deleted FROM hive_posts
			WHERE author = $1 AND permlink = $2
		`, k.Author, k.Permlink).Scan(&ref.ID, &ref.Author, &ref.Permlink, &isDeleted)
		if err == pgx.ErrNoRows {
			return nil, model.ErrIntegrity
		}
		if err != nil {
			return nil, utils.Wrap(err, "resolve post key")
		}
		if isDeleted {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// PostRef is a resolved (id, author, permlink) tuple.
type PostRef struct {
	ID       int64
	Author   string
	Permlink string
}

// ListMissingCacheIDs returns up to limit post ids present in hive_posts but
// absent from hive_posts_cache, in ascending id order.
func (g *Gateway) ListMissingCacheIDs(ctx context.Context, limit int) ([]PostRef, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT p.id, p.author, p.permlink FROM hive_posts p
		LEFT JOIN hive_posts_cache c ON c.post_id = p.id
		WHERE c.post_id IS NULL
		ORDER BY p.id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, utils.Wrap(err, "list missing cache ids")
	}
	defer rows.Close()
	var out []PostRef
	for rows.Next() {
		var r PostRef
		if err := rows.Scan(&r.ID, &r.Author, &r.Permlink); err != nil {
			return nil, utils.Wrap(err, "scan missing cache id")
		}
		out = append(out, r)
	}
	return out, utils.Wrap(rows.Err(), "list missing cache ids")
}

// ListPayoutWindowIDs returns posts created on day, for the payout-refresh
// discipline (spec.md §4.E).
func (g *Gateway) ListPayoutWindowIDs(ctx context.Context, day time.Time) ([]PostRef, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	rows, err := g.pool.Query(ctx, `
		SELECT id, author, permlink FROM hive_posts
		WHERE created_at >= $1 AND created_at < $2 AND is_deleted = FALSE
	`, start, end)
	if err != nil {
		return nil, utils.Wrap(err, "list payout window ids")
	}
	defer rows.Close()
	var out []PostRef
	for rows.Next() {
		var r PostRef
		if err := rows.Scan(&r.ID, &r.Author, &r.Permlink); err != nil {
			return nil, utils.Wrap(err, "scan payout window id")
		}
		out = append(out, r)
	}
	return out, utils.Wrap(rows.Err(), "list payout window ids")
}
