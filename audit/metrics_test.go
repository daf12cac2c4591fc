package audit

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.cacheLookup("vision", true)
	m.cacheLookup("vision", true)
	m.cacheLookup("audit", false)

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("vision", "hit")); got != 2 {
		t.Errorf("vision hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("audit", "miss")); got != 1 {
		t.Errorf("audit misses = %v, want 1", got)
	}

	m.inferenceCall("reasoning", nil)
	m.inferenceCall("reasoning", errors.New("boom"))

	if got := testutil.ToFloat64(m.InferenceCalls.WithLabelValues("reasoning", "ok")); got != 1 {
		t.Errorf("reasoning ok calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InferenceCalls.WithLabelValues("reasoning", "error")); got != 1 {
		t.Errorf("reasoning error calls = %v, want 1", got)
	}

	m.audit("FAIL")
	if got := testutil.ToFloat64(m.Audits.WithLabelValues("FAIL")); got != 1 {
		t.Errorf("FAIL audits = %v, want 1", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.cacheLookup("vision", true)
	m.inferenceCall("reasoning", nil)
	m.audit("PASS")
}
