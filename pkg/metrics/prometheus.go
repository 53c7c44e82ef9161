package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	stageLatency *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	anomalies    *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stageLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "anomalylens_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anomalylens_errors_total",
				Help: "Total number of pipeline failures by kind",
			},
			[]string{"kind"},
		),
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anomalylens_runs_total",
				Help: "Total number of successful pipeline runs",
			},
			[]string{"strategy", "model"},
		),
		anomalies: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "anomalylens_anomalies_per_run",
				Help:    "Number of anomalous days flagged per run",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"strategy"},
		),
	}
}

// RecordStage records stage latency in seconds.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordError records a failure by error kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRun records a successful run and its anomaly count.
func (r *Recorder) RecordRun(strategy, model string, anomalies int) {
	r.runsTotal.WithLabelValues(strategy, model).Inc()
	r.anomalies.WithLabelValues(strategy).Observe(float64(anomalies))
}
