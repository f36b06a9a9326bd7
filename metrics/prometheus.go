package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports client events and latencies as Prometheus
// metrics under the oracle_sentinel namespace. Collectors are registered on
// the default registry, so build at most one per process.
type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oracle_sentinel",
			Name:      "events_total",
			Help:      "Request and payment events by endpoint",
		},
		[]string{"event", "endpoint"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oracle_sentinel",
			Name:      "request_duration_seconds",
			Help:      "API call latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "endpoint"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"event":    name,
		"endpoint": labels["endpoint"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"endpoint":  labels["endpoint"],
	}).Observe(d.Seconds())
}
