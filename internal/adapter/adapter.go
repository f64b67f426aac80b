// Package adapter implements the upstream block-fetching contract
// (spec.md §4.A): head/irreversible height queries, single and ranged block
// fetches, and a per-post payout lookup consumed by the cache maintainer.
package adapter

import (
	"context"
	"time"

	"github.com/hiveio/hive-indexer/internal/model"
)

// Adapter is the single collaborator the sync driver and cache maintainer
// hold for talking to the upstream node. Implementations fail with
// model.ErrTransient when the upstream is unreachable; GetBlock reports a
// block that does not exist yet as (nil, nil). HTTPAdapter retries with
// backoff internally and returns ErrTransient once its retry window is
// exhausted; callers in this module do not retry it again and stop on it.
type Adapter interface {
	// HeadBlock returns the upstream's current head height.
	HeadBlock(ctx context.Context) (uint32, error)
	// LastIrreversibleBlock returns the last block the upstream considers
	// irreversible.
	LastIrreversibleBlock(ctx context.Context) (uint32, error)
	// GetBlock returns block num, or (nil, nil) if it does not exist yet.
	GetBlock(ctx context.Context, num uint32) (*model.Block, error)
	// GetBlocksRange returns blocks in the half-open range [lo, hi).
	GetBlocksRange(ctx context.Context, lo, hi uint32) ([]*model.Block, error)
	// HeadTime returns the upstream's current head block timestamp.
	HeadTime(ctx context.Context) (time.Time, error)
	// PostPayout resolves payout/display metadata for one post.
	PostPayout(ctx context.Context, author, permlink string) (*model.PayoutInfo, error)
}
