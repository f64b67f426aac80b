// Package projector applies one block's effects to the store in a single
// transaction and reports the set of posts the block touched (spec.md
// §4.D). It is the largest component in the pipeline: accounts, the
// comment tree, deletes, and follow/reblog/community custom-json ops all
// flow through ProcessBlock.
package projector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/internal/community"
	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/parser"
	"github.com/hiveio/hive-indexer/internal/store"
)

// legacyFollowCutoff is the block height below which a "follow" custom_json
// whose body is a bare object (not a [cmd, data] pair) is still accepted,
// wrapped as ["follow", body] (spec.md §4.D step 6).
const legacyFollowCutoff = 6_000_000

// communityOpCutoff is the block height above which com.steemit.community
// custom_json ops are honored (spec.md §4.D step 6).
const communityOpCutoff = 13_000_000

// Projector owns one Gateway and applies blocks against it.
type Projector struct {
	store  *store.Gateway
	logger *logrus.Logger

	// NewPredicate builds the community-admissibility predicate for a single
	// block transaction. Defaults to community.NewDefaultPredicate, backed
	// by tx itself (component G is pluggable per spec.md §4.G).
	NewPredicate func(tx *store.Tx) community.Predicate
}

// New builds a Projector around s, logging through logger (or
// logrus.StandardLogger() if nil).
func New(s *store.Gateway, logger *logrus.Logger) *Projector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Projector{
		store:  s,
		logger: logger,
		NewPredicate: func(tx *store.Tx) community.Predicate {
			return community.NewDefaultPredicate(tx)
		},
	}
}

// ProcessBlock applies b end-to-end inside its own transaction and returns
// the dirty set of posts it touched. On any error the transaction is rolled
// back and no partial effects are visible (spec.md §4.D, §5). Used by live
// tail, where every block commits on its own.
func (p *Projector) ProcessBlock(ctx context.Context, b *model.Block) (model.DirtySet, error) {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	dirty, err := p.applyBlock(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return dirty, nil
}

// ProcessBatch applies every block in blocks inside a single shared
// transaction, in order, and returns the merged dirty set. A crash or error
// mid-batch rolls the whole batch back, which is safe because block
// application is idempotent per block number (spec.md §5, batch backfill
// and checkpoint replay).
func (p *Projector) ProcessBatch(ctx context.Context, blocks []*model.Block) (model.DirtySet, error) {
	tx, err := p.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	dirty := model.NewDirtySet()
	for _, b := range blocks {
		d, err := p.applyBlock(ctx, tx, b)
		if err != nil {
			return nil, err
		}
		dirty.Merge(d)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return dirty, nil
}

// applyBlock runs one block's projector protocol (spec.md §4.D steps 1-7)
// through tx without committing or rolling back — the caller owns the
// transaction boundary.
func (p *Projector) applyBlock(ctx context.Context, tx *store.Tx, b *model.Block) (model.DirtySet, error) {
	num, err := b.Num()
	if err != nil {
		return nil, err
	}

	parsed := parser.ParseBlock(b)
	predicate := p.NewPredicate(tx)

	if err := tx.InsertBlock(ctx, &model.BlockRecord{
		Num:       num,
		Hash:      b.BlockID,
		PrevHash:  b.Previous,
		TxCount:   len(b.Transactions),
		OpCount:   b.OpCount(),
		Timestamp: b.Timestamp,
	}); err != nil {
		return nil, err
	}

	if err := p.registerAccounts(ctx, tx, parsed.NewAccounts, b.Timestamp); err != nil {
		return nil, err
	}

	if err := p.registerPosts(ctx, tx, predicate, parsed.Comments, b.Timestamp); err != nil {
		return nil, err
	}

	if err := p.deletePosts(ctx, tx, parsed.DeleteComments); err != nil {
		return nil, err
	}

	if err := p.applyCustomJSONs(ctx, tx, num, parsed.CustomJSONs, b.Timestamp); err != nil {
		return nil, err
	}

	return parsed.Dirty, nil
}

// registerAccounts inserts every unseen name with createdAt. Names failing
// the account-name regex are still inserted as given — the upstream is the
// source of truth at creation time (spec.md §4.D step 3).
func (p *Projector) registerAccounts(ctx context.Context, tx *store.Tx, names []string, createdAt time.Time) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if err := tx.RegisterAccount(ctx, name, createdAt); err != nil {
			return err
		}
	}
	return nil
}
