// Package metrics exposes extraction outcomes as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements aggregate.Observer using Prometheus.
type Recorder struct {
	registry *prometheus.Registry

	extractions *prometheus.CounterVec
	records     *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	rounds      prometheus.Counter
	lastRound   prometheus.Gauge
}

// New creates a recorder with its own registry, so several recorders can
// coexist in one process.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		extractions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpuprices_extractions_total",
				Help: "Extractor invocations by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		records: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gpuprices_records",
				Help: "Records returned by the provider's last extraction",
			},
			[]string{"provider"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gpuprices_extraction_duration_seconds",
				Help:    "Extractor latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		rounds: f.NewCounter(prometheus.CounterOpts{
			Name: "gpuprices_aggregation_rounds_total",
			Help: "Completed aggregation rounds",
		}),
		lastRound: f.NewGauge(prometheus.GaugeOpts{
			Name: "gpuprices_last_round_timestamp_seconds",
			Help: "Unix time of the last completed aggregation round",
		}),
	}
}

// ObserveExtraction records one extractor outcome.
func (r *Recorder) ObserveExtraction(provider string, records int, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.extractions.WithLabelValues(provider, outcome).Inc()
	r.records.WithLabelValues(provider).Set(float64(records))
	r.duration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveRound records the completion of an aggregation round.
func (r *Recorder) ObserveRound(at time.Time) {
	r.rounds.Inc()
	r.lastRound.Set(float64(at.Unix()))
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
