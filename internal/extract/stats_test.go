package extract

import (
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record("gpt-4o-mini", ms, "")
	}

	snap, ok := stats.Snapshot()["gpt-4o-mini"]
	if !ok {
		t.Fatal("expected stats for gpt-4o-mini")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLLMStatsSeparatesModelsAndCountsFailures(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record("m1", 10, KindTransient)
	stats.Record("m1", 20, "")
	stats.Record("m2", 30, KindSchemaInvalid)

	snaps := stats.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 models, got %d", len(snaps))
	}
	if snaps["m1"].Count != 2 || snaps["m1"].Failures[KindTransient] != 1 {
		t.Errorf("unexpected m1 stats: %+v", snaps["m1"])
	}
	if snaps["m2"].Failures[KindSchemaInvalid] != 1 {
		t.Errorf("unexpected m2 stats: %+v", snaps["m2"])
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewLLMStats(10 * time.Millisecond)
	stats.Record("m", 100, "")
	time.Sleep(25 * time.Millisecond)

	if n := len(stats.Snapshot()); n != 0 {
		t.Fatalf("expected no models after prune, got %d", n)
	}

	stats.Record("m", 200, "")
	snap := stats.Snapshot()["m"]
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record("m", -10, "")
	snap := stats.Snapshot()["m"]
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
