package syncer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/internal/model"
)

// liveTail follows the head with TrailBlocks lag, enforcing fork linkage
// against lastHash and refreshing edits/payouts per block (spec.md §4.F
// step 5). Returns model.ErrForkDetected if a block's previous hash
// doesn't match, and nil if ctx is cancelled or Stop is called.
func (s *Syncer) liveTail(ctx context.Context, lastHash string) error {
	last, err := s.store.DBLastBlock(ctx)
	if err != nil {
		return err
	}
	n := last + 1

	for {
		if s.shouldStop(ctx) {
			return nil
		}

		start := time.Now()

		if err := s.waitForTrailedHead(ctx, n); err != nil {
			return err
		}
		if s.shouldStop(ctx) {
			return nil
		}

		b, err := s.waitForBlock(ctx, n)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}

		if forked(b, lastHash) {
			s.logger.WithFields(logrus.Fields{
				"block": n, "expected_previous": lastHash, "got_previous": b.Previous,
			}).Error("fork detected")
			s.recordForkDetected()
			return model.ErrForkDetected
		}

		dirty, err := s.projector.ProcessBlock(ctx, b)
		if err != nil {
			return err
		}
		s.recordBlocksProcessed(1)
		s.recordDirtySetSize(dirty.Len())
		if err := s.maintainer.RefreshDirty(ctx, dirty, b.Timestamp); err != nil {
			return err
		}
		if err := s.maintainer.RefreshPayoutWindow(ctx, b.Timestamp); err != nil {
			return err
		}

		lastHash = b.BlockID
		n++

		if elapsed := time.Since(start); elapsed > s.cfg.WallClockWarn {
			s.logger.Warnf("live-tail block %d took %s, exceeding %s budget", n-1, elapsed, s.cfg.WallClockWarn)
		}
	}
}

// forked reports whether b violates fork linkage against lastHash. An
// empty lastHash (no prior block applied yet) never forks (spec.md §8
// scenario S7).
func forked(b *model.Block, lastHash string) bool {
	return lastHash != "" && b.Previous != lastHash
}

func (s *Syncer) shouldStop(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-s.quit:
		return true
	default:
		return false
	}
}

// waitForTrailedHead blocks until the adapter's head is at least
// n + TrailBlocks, sleeping LiveRetrySleep between polls.
func (s *Syncer) waitForTrailedHead(ctx context.Context, n uint32) error {
	for {
		head, err := s.adapter.HeadBlock(ctx)
		if err != nil {
			return err
		}
		if head >= n+s.cfg.TrailBlocks {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.quit:
			return nil
		case <-time.After(s.cfg.LiveRetrySleep):
		}
	}
}

// waitForBlock retries GetBlock on a miss with LiveRetrySleep sleeps. A nil
// return means the caller should stop (cancellation), not that the block
// will never arrive.
func (s *Syncer) waitForBlock(ctx context.Context, n uint32) (*model.Block, error) {
	for {
		b, err := s.adapter.GetBlock(ctx, n)
		if err != nil {
			return nil, err
		}
		if b != nil {
			return b, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-s.quit:
			return nil, nil
		case <-time.After(s.cfg.LiveRetrySleep):
		}
	}
}
