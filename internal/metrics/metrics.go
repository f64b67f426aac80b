// Package metrics exposes the indexer's Prometheus gauges and counters: a
// private registry, one field per metric, a RunCollector ticker loop, and
// a StartServer/Shutdown pair around promhttp.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Collector is the source of gauge readings, satisfied by *syncer.Syncer's
// Status() shape without importing the syncer package (avoids a cycle,
// since syncer imports metrics).
type Collector interface {
	Status(ctx context.Context) map[string]any
}

// Metrics tracks indexer throughput and lag (spec.md §4.F, §8).
type Metrics struct {
	registry *prometheus.Registry

	blocksProcessed  prometheus.Counter
	dirtySetSize     prometheus.Gauge
	syncLagBlocks    prometheus.Gauge
	checkpointChunks prometheus.Counter
	forksDetected    prometheus.Counter

	log *logrus.Logger
}

// New builds a Metrics with its own private registry.
func New(log *logrus.Logger) *Metrics {
	if log == nil {
		log = logrus.StandardLogger()
	}
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg, log: log}

	m.blocksProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hive_indexer_blocks_processed_total",
		Help: "Total number of blocks applied to the store.",
	})
	m.dirtySetSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hive_indexer_dirty_set_size",
		Help: "Number of posts awaiting a cache refresh.",
	})
	m.syncLagBlocks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hive_indexer_sync_lag_blocks",
		Help: "Blocks behind the upstream head.",
	})
	m.checkpointChunks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hive_indexer_checkpoint_chunks_total",
		Help: "Total number of checkpoint-replay transactions committed.",
	})
	m.forksDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hive_indexer_forks_detected_total",
		Help: "Total number of fork mismatches raised by the live tail.",
	})

	reg.MustRegister(
		m.blocksProcessed,
		m.dirtySetSize,
		m.syncLagBlocks,
		m.checkpointChunks,
		m.forksDetected,
	)
	return m
}

// AddBlocksProcessed increments the processed-block counter by n.
func (m *Metrics) AddBlocksProcessed(n int) {
	m.blocksProcessed.Add(float64(n))
}

// SetDirtySetSize records the current dirty-set cardinality.
func (m *Metrics) SetDirtySetSize(n int) {
	m.dirtySetSize.Set(float64(n))
}

// SetSyncLag records blocks remaining behind the upstream head.
func (m *Metrics) SetSyncLag(n uint32) {
	m.syncLagBlocks.Set(float64(n))
}

// IncCheckpointChunk counts one committed checkpoint-replay transaction.
func (m *Metrics) IncCheckpointChunk() {
	m.checkpointChunks.Inc()
}

// IncForkDetected counts one fork mismatch.
func (m *Metrics) IncForkDetected() {
	m.forksDetected.Inc()
}

// Registry exposes the underlying registry for mounting alongside other
// HTTP handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartServer exposes /metrics on addr, returning the *http.Server so the
// caller controls its lifecycle.
func (m *Metrics) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.WithError(err).Error("metrics server stopped")
		}
	}()
	return srv
}

// Shutdown gracefully stops the metrics HTTP server.
func (m *Metrics) Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}

// RunCollector periodically samples c and updates the lag gauge until ctx
// is cancelled.
func (m *Metrics) RunCollector(ctx context.Context, c Collector, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sample(c)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Metrics) sample(c Collector) {
	status := c.Status(context.Background())
	dbLast, _ := status["db_last_block"].(uint32)
	head, _ := status["adapter_head"].(uint32)
	if head > dbLast {
		m.SetSyncLag(head - dbLast)
	} else {
		m.SetSyncLag(0)
	}
}
