package metrics

import (
	"context"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

type fakeCollector struct {
	status map[string]any
}

func (f fakeCollector) Status(ctx context.Context) map[string]any {
	return f.status
}

func gaugeValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		metrics := fam.GetMetric()
		if len(metrics) != 1 {
			t.Fatalf("expected 1 metric for %s, got %d", name, len(metrics))
		}
		return metricValue(metrics[0])
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func metricValue(m *dto.Metric) float64 {
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	return 0
}

func TestSampleSetsLagFromStatus(t *testing.T) {
	m := New(nil)
	m.sample(fakeCollector{status: map[string]any{
		"db_last_block": uint32(100),
		"adapter_head":  uint32(107),
	}})
	if got := gaugeValue(t, m, "hive_indexer_sync_lag_blocks"); got != 7 {
		t.Fatalf("expected lag 7, got %v", got)
	}
}

func TestSampleClampsNegativeLagToZero(t *testing.T) {
	m := New(nil)
	m.sample(fakeCollector{status: map[string]any{
		"db_last_block": uint32(100),
		"adapter_head":  uint32(90),
	}})
	if got := gaugeValue(t, m, "hive_indexer_sync_lag_blocks"); got != 0 {
		t.Fatalf("expected lag 0, got %v", got)
	}
}

func TestCountersIncrement(t *testing.T) {
	m := New(nil)
	m.AddBlocksProcessed(3)
	m.IncCheckpointChunk()
	m.IncForkDetected()
	m.SetDirtySetSize(5)

	if got := gaugeValue(t, m, "hive_indexer_blocks_processed_total"); got != 3 {
		t.Fatalf("expected 3 blocks processed, got %v", got)
	}
	if got := gaugeValue(t, m, "hive_indexer_checkpoint_chunks_total"); got != 1 {
		t.Fatalf("expected 1 checkpoint chunk, got %v", got)
	}
	if got := gaugeValue(t, m, "hive_indexer_forks_detected_total"); got != 1 {
		t.Fatalf("expected 1 fork detected, got %v", got)
	}
	if got := gaugeValue(t, m, "hive_indexer_dirty_set_size"); got != 5 {
		t.Fatalf("expected dirty set size 5, got %v", got)
	}
}
