// Package cachemaint implements the three cache-maintenance disciplines
// (spec.md §4.E): missing-fill, edit refresh, and payout refresh, plus the
// idempotent feed-cache rebuild trigger.
package cachemaint

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/store"
)

// missingFillBatch bounds a single missing-fill pass (spec.md §4.E).
const missingFillBatch = 1_000_000

// Maintainer refreshes hive_posts_cache and hive_feed_cache from the store
// and the upstream adapter's payout lookup.
type Maintainer struct {
	store   *store.Gateway
	adapter adapter.Adapter
	logger  *logrus.Logger
	// sugar carries batch-size and count lines; errors and warnings go
	// through logger instead.
	sugar *zap.SugaredLogger
}

// New builds a Maintainer. sugar may be nil, in which case zap.NewNop's
// sugared logger is used.
func New(s *store.Gateway, a adapter.Adapter, logger *logrus.Logger, sugar *zap.SugaredLogger) *Maintainer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return &Maintainer{store: s, adapter: a, logger: logger, sugar: sugar}
}

// FillMissing refreshes post-cache rows for ids present in hive_posts but
// absent from hive_posts_cache, in batches of at most missingFillBatch,
// until none remain (spec.md §4.E "Missing-fill").
func (m *Maintainer) FillMissing(ctx context.Context) error {
	for {
		maxPost, err := m.store.MaxPostID(ctx)
		if err != nil {
			return err
		}
		maxCache, err := m.store.MaxPostCacheID(ctx)
		if err != nil {
			return err
		}
		missing := maxPost - maxCache
		if missing <= 0 {
			return nil
		}

		limit := missing
		if limit > missingFillBatch {
			limit = missingFillBatch
		}
		refs, err := m.store.ListMissingCacheIDs(ctx, int(limit))
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return nil
		}
		m.sugar.Infof("cachemaint: filling %d missing post-cache rows", len(refs))
		if err := m.refreshRefs(ctx, refs, time.Now().UTC()); err != nil {
			return err
		}
	}
}

// RefreshDirty resolves dirty keys to live posts and refreshes their
// post-cache rows. Keys of deleted posts are skipped; a key that resolves
// to no row at all raises model.ErrIntegrity (spec.md §4.E "Edits").
func (m *Maintainer) RefreshDirty(ctx context.Context, dirty model.DirtySet, refreshedAt time.Time) error {
	if dirty.Len() == 0 {
		return nil
	}
	refs, err := m.store.ResolvePostKeys(ctx, dirty.Keys())
	if err != nil {
		return err
	}
	return m.refreshRefs(ctx, refs, refreshedAt)
}

// RefreshPayoutWindow refreshes every post created on day (spec.md §4.E
// "Payouts").
func (m *Maintainer) RefreshPayoutWindow(ctx context.Context, day time.Time) error {
	refs, err := m.store.ListPayoutWindowIDs(ctx, day)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	m.sugar.Infof("cachemaint: refreshing %d payout-window posts for %s", len(refs), day.Format("2006-01-02"))
	return m.refreshRefs(ctx, refs, day)
}

// RebuildFeedCache delegates to the store's idempotent feed-cache rebuild
// (spec.md §4.E "Feed-cache rebuild").
func (m *Maintainer) RebuildFeedCache(ctx context.Context) error {
	return m.store.RebuildFeedCache(ctx)
}

func (m *Maintainer) refreshRefs(ctx context.Context, refs []store.PostRef, refreshedAt time.Time) error {
	for _, ref := range refs {
		payout, err := m.adapter.PostPayout(ctx, ref.Author, ref.Permlink)
		if err != nil {
			return err
		}
		if payout == nil {
			payout = &model.PayoutInfo{Author: ref.Author, Permlink: ref.Permlink, PayoutAt: refreshedAt}
		}
		if err := m.store.UpsertPostCache(ctx, ref.ID, payout, refreshedAt); err != nil {
			return err
		}
	}
	return nil
}
