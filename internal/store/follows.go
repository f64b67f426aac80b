package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// UpsertFollow sets (follower, following) to state at ts, replacing any
// existing row for the pair (spec.md §4.B, §4.D follow op semantics).
func (t *Tx) UpsertFollow(ctx context.Context, follower, following string, state model.FollowState, ts time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hive_follows (follower, following, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (follower, following) DO UPDATE SET state = EXCLUDED.state, created_at = EXCLUDED.created_at
	`, follower, following, state, ts)
	return utils.Wrap(err, "upsert follow")
}

// GetFollow returns the current state for (follower, following), or nil if
// no row exists.
func (g *Gateway) GetFollow(ctx context.Context, follower, following string) (*model.Follow, error) {
	var f model.Follow
	err := g.pool.QueryRow(ctx, `
		SELECT follower, following, state, created_at FROM hive_follows
		WHERE follower = $1 AND following = $2
	`, follower, following).Scan(&f.Follower, &f.Following, &f.State, &f.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(err, "get follow")
	}
	return &f, nil
}
