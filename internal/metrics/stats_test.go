package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestConversionStatsSnapshotPercentiles(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	stats.Record(100*time.Millisecond, false, 0)
	stats.Record(200*time.Millisecond, false, 1)
	stats.Record(300*time.Millisecond, true, 0)
	stats.Record(400*time.Millisecond, false, 2)
	stats.Record(500*time.Millisecond, false, 0)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Failed != 1 {
		t.Fatalf("expected failed=1, got %d", snap.Failed)
	}
	if snap.Degradations != 3 {
		t.Fatalf("expected degradations=3, got %d", snap.Degradations)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
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

func TestConversionStatsPrunesExpiredSamples(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := NewConversionStats(time.Minute)
	stats.now = func() time.Time { return clock }

	stats.Record(100*time.Millisecond, false, 0)
	clock = clock.Add(2 * time.Minute)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, false, 0)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestConversionStatsRecordClampsNegatives(t *testing.T) {
	stats := NewConversionStats(time.Hour)
	stats.Record(-10*time.Millisecond, false, -3)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.Degradations != 0 {
		t.Fatalf("expected clamped degradations=0, got %d", snap.Degradations)
	}
}

func TestConversionStatsEmpty(t *testing.T) {
	if snap := NewConversionStats(0).Snapshot(); snap != (StatsSnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestPercentile(t *testing.T) {
	values := []int64{10, 20, 30, 40}
	tests := []struct {
		pct  float64
		want float64
	}{
		{0, 10},
		{-5, 10},
		{100, 40},
		{150, 40},
		{50, 25},
		{25, 17.5},
	}
	for _, tt := range tests {
		if got := percentile(values, tt.pct); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestCollectorsExposition(t *testing.T) {
	c := NewCollectors()
	c.Conversions.WithLabelValues(OutcomeOK).Inc()
	c.Conversions.WithLabelValues(OutcomeFailed).Add(2)
	c.Degradations.WithLabelValues("table").Inc()
	c.PendingImages.Add(3)
	c.Duration.Observe(0.02)
	depth := 7
	c.RegisterQueueDepth(func() int { return depth })

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`md2docx_conversions_total{outcome="ok"} 1`,
		`md2docx_conversions_total{outcome="failed"} 2`,
		`md2docx_degradations_total{kind="table"} 1`,
		`md2docx_pending_images_total 3`,
		`md2docx_conversion_duration_seconds_count 1`,
		`md2docx_queue_depth 7`,
		`md2docx_boot_time_seconds`,
		`go_goroutines`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestCollectorsAreIsolated(t *testing.T) {
	a, b := NewCollectors(), NewCollectors()
	a.PendingImages.Inc()

	families, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "md2docx_pending_images_total" {
			continue
		}
		if v := mf.GetMetric()[0].GetCounter().GetValue(); v != 0 {
			t.Fatalf("expected isolated registry, got %v", v)
		}
	}
}
