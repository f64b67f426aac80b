package syncer

import "context"

// initPhase creates the schema if absent and decides whether this is an
// initial sync (post cache empty). If not initial, it runs a missing-fill
// pass to repair any interrupted prior run (spec.md §4.F step 1).
func (s *Syncer) initPhase(ctx context.Context) (isInitial bool, err error) {
	if err := s.store.Init(ctx); err != nil {
		return false, err
	}

	maxCache, err := s.store.MaxPostCacheID(ctx)
	if err != nil {
		return false, err
	}
	isInitial = maxCache == 0

	if !isInitial {
		if err := s.maintainer.FillMissing(ctx); err != nil {
			return false, err
		}
	}
	return isInitial, nil
}
