package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulerMetrics exposes counters/histograms for the chat booking flow.
type SchedulerMetrics struct {
	turnsTotal       *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	oracleLatency    prometheus.Histogram
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by extraction outcome",
		}, []string{"outcome"}),
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "booking",
			Name:      "resolutions_total",
			Help:      "Total booking resolver outcomes",
		}, []string{"action", "result"}),
		oracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "chat",
			Name:      "oracle_latency_seconds",
			Help:      "Latency of oracle completions",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.resolutionsTotal, m.oracleLatency)
	return m
}

func (m *SchedulerMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulerMetrics) ObserveResolution(action, result string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(action, result).Inc()
}

func (m *SchedulerMetrics) ObserveOracleLatency(seconds float64) {
	if m == nil {
		return
	}
	m.oracleLatency.Observe(seconds)
}
