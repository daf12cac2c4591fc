package audit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the pipeline. All fields are optional at the
// pipeline level; a nil Metrics disables instrumentation entirely.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	InferenceCalls *prometheus.CounterVec
	Audits         *prometheus.CounterVec
}

// NewMetrics creates and registers pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsentinel",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by stage and result.",
		}, []string{"stage", "result"}),
		InferenceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsentinel",
			Name:      "inference_calls_total",
			Help:      "Inference calls issued by stage and result.",
		}, []string{"stage", "result"}),
		Audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labsentinel",
			Name:      "audits_total",
			Help:      "Completed audits by terminal verdict.",
		}, []string{"verdict"}),
	}
	reg.MustRegister(m.CacheLookups, m.InferenceCalls, m.Audits)
	return m
}

func (m *Metrics) cacheLookup(stage string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) inferenceCall(stage string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.InferenceCalls.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) audit(verdict string) {
	if m == nil {
		return
	}
	m.Audits.WithLabelValues(verdict).Inc()
}
