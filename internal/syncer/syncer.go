// Package syncer orchestrates checkpoint replay, range backfill, and live
// tail (spec.md §4.F): the state machine that sequences every other
// component and decides batch sizes. Structurally grounded on the
// teacher's SyncManager (core/blockchain_synchronization.go) — the same
// Start/Stop/Status shape and mu+quit cancellation, generalized from
// "replicator + consensus + ledger" to "adapter + projector + cache
// maintainer + store".
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/cachemaint"
	"github.com/hiveio/hive-indexer/internal/metrics"
	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/internal/projector"
	"github.com/hiveio/hive-indexer/internal/store"
)

// Config holds the tunables spec.md §4.F and §5 name explicitly.
type Config struct {
	// TrailBlocks is the lag the live tail keeps behind the upstream head
	// (default 2, spec.md §4.F step 5, GLOSSARY "Trail blocks").
	TrailBlocks uint32
	// LiveRetrySleep is the sleep between retries of a missing live block.
	LiveRetrySleep time.Duration
	// WallClockWarn is the per-block budget the live tail warns past.
	WallClockWarn time.Duration
	// ChunkSize bounds checkpoint-replay transaction size (default 250).
	ChunkSize int
	// RangeWindow bounds range-backfill transaction size (default 1000).
	RangeWindow uint32
	// CheckpointDir holds files matching "<end_block_number>.json.lst".
	CheckpointDir string
}

// DefaultConfig returns the defaults named in spec.md §4.F/§5.
func DefaultConfig() Config {
	return Config{
		TrailBlocks:    2,
		LiveRetrySleep: 500 * time.Millisecond,
		WallClockWarn:  1 * time.Second,
		ChunkSize:      250,
		RangeWindow:    1000,
	}
}

// Syncer is the single writer that drives the pipeline (spec.md §5).
// Running two against the same store is undefined behavior.
type Syncer struct {
	store      *store.Gateway
	adapter    adapter.Adapter
	projector  *projector.Projector
	maintainer *cachemaint.Maintainer
	logger     *logrus.Logger
	cfg        Config

	// dirty accumulates posts touched during backfill, flushed to the cache
	// maintainer at the points named in spec.md §3 "Ownership and lifecycle".
	dirty model.DirtySet

	// metrics is optional; every record* helper is a no-op when nil.
	metrics *metrics.Metrics

	mu     sync.RWMutex
	active bool
	quit   chan struct{}
}

// SetMetrics attaches m so the sync loop reports block/chunk/fork counters
// as it runs. Safe to call before Start; a nil Syncer.metrics is a no-op.
func (s *Syncer) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// recordBlocksProcessed adds n to the processed-block counter.
func (s *Syncer) recordBlocksProcessed(n int) {
	if s.metrics != nil {
		s.metrics.AddBlocksProcessed(n)
	}
}

// recordDirtySetSize reports the current count of posts awaiting a cache
// refresh.
func (s *Syncer) recordDirtySetSize(n int) {
	if s.metrics != nil {
		s.metrics.SetDirtySetSize(n)
	}
}

// recordCheckpointChunk counts one committed checkpoint-replay transaction.
func (s *Syncer) recordCheckpointChunk() {
	if s.metrics != nil {
		s.metrics.IncCheckpointChunk()
	}
}

// recordForkDetected counts one fork mismatch raised by the live tail.
func (s *Syncer) recordForkDetected() {
	if s.metrics != nil {
		s.metrics.IncForkDetected()
	}
}

// New wires a Syncer around its collaborators.
func New(s *store.Gateway, a adapter.Adapter, p *projector.Projector, m *cachemaint.Maintainer, cfg Config, logger *logrus.Logger) *Syncer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Syncer{
		store:      s,
		adapter:    a,
		projector:  p,
		maintainer: m,
		cfg:        cfg,
		logger:     logger,
		dirty:      model.NewDirtySet(),
		quit:       make(chan struct{}),
	}
}

// Start launches Run in a background goroutine. Calling Start twice on an
// already-active Syncer is a no-op.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		if err := s.Run(ctx); err != nil {
			s.logger.WithError(err).Error("syncer exited")
		}
	}()
	s.logger.Info("syncer started")
}

// Stop signals the live-tail loop to return at its next sleep point
// (spec.md §5 "Cancellation").
func (s *Syncer) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	close(s.quit)
	s.active = false
	s.mu.Unlock()
	s.logger.Info("syncer stopped")
}

// Status reports liveness and progress as a plain map, reused verbatim by
// internal/healthz's /status endpoint.
func (s *Syncer) Status(ctx context.Context) map[string]any {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()

	status := map[string]any{"active": active}
	if last, err := s.store.DBLastBlock(ctx); err == nil {
		status["db_last_block"] = last
	}
	if head, err := s.adapter.HeadBlock(ctx); err == nil {
		status["adapter_head"] = head
	}
	return status
}

// Run executes the full state machine once: init, checkpoint replay, range
// backfill, initial finalization, then live tail until ctx is cancelled or
// Stop is called (spec.md §4.F).
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.Backfill(ctx); err != nil {
		return err
	}

	lastHash, err := s.currentLastHash(ctx)
	if err != nil {
		return err
	}
	return s.liveTail(ctx, lastHash)
}

// Backfill runs init, checkpoint replay, range backfill, and (on a fresh
// store) the initial missing-fill and feed-cache rebuild, then returns
// without starting the live tail. Used by the "backfill" CLI subcommand
// to catch a store up to the upstream's last irreversible block without
// holding a long-lived live-tail process open.
func (s *Syncer) Backfill(ctx context.Context) error {
	isInitial, err := s.initPhase(ctx)
	if err != nil {
		return err
	}

	if err := s.replayCheckpoints(ctx); err != nil {
		return err
	}

	if err := s.rangeBackfill(ctx, isInitial); err != nil {
		return err
	}

	if isInitial {
		if err := s.maintainer.FillMissing(ctx); err != nil {
			return err
		}
		if err := s.maintainer.RebuildFeedCache(ctx); err != nil {
			return err
		}
	}
	return nil
}

// currentLastHash returns the hash of the highest persisted block, or "" if
// none yet.
func (s *Syncer) currentLastHash(ctx context.Context) (string, error) {
	num, err := s.store.DBLastBlock(ctx)
	if err != nil {
		return "", err
	}
	if num == 0 {
		return "", nil
	}
	br, err := s.store.GetBlock(ctx, num)
	if err != nil {
		return "", err
	}
	if br == nil {
		return "", nil
	}
	return br.Hash, nil
}
