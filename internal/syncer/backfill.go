package syncer

import (
	"context"

	"github.com/hiveio/hive-indexer/internal/model"
)

// rangeBackfill fetches from db_last_block+1 up to the adapter's
// last-irreversible height in windows of RangeWindow blocks, projecting
// each window in one transaction. Preserves the source's `while lbound <
// ubound` loop shape, which leaves the final block unprocessed by this
// loop (live tail picks it up) — see DESIGN.md Open Question (b).
func (s *Syncer) rangeBackfill(ctx context.Context, isInitial bool) error {
	lo, err := s.store.DBLastBlock(ctx)
	if err != nil {
		return err
	}
	lo++

	hiFinal, err := s.adapter.LastIrreversibleBlock(ctx)
	if err != nil {
		return err
	}

	for lo < hiFinal {
		hi := lo + s.cfg.RangeWindow
		if hi > hiFinal {
			hi = hiFinal
		}
		blocks, err := s.adapter.GetBlocksRange(ctx, lo, hi)
		if err != nil {
			return err
		}
		dirty, err := s.projector.ProcessBatch(ctx, blocks)
		if err != nil {
			return err
		}
		s.dirty.Merge(dirty)
		s.recordBlocksProcessed(len(blocks))
		s.recordDirtySetSize(s.dirty.Len())
		lo = hi
	}

	if isInitial {
		return nil
	}

	headTime, err := s.adapter.HeadTime(ctx)
	if err != nil {
		return err
	}
	if err := s.maintainer.RefreshDirty(ctx, s.dirty, headTime); err != nil {
		return err
	}
	if err := s.maintainer.RefreshPayoutWindow(ctx, headTime); err != nil {
		return err
	}
	s.dirty = model.NewDirtySet()
	return nil
}
