package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry harvesting. All methods are
// nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Upstream calls by host and outcome tag
	UpstreamRequests *prometheus.CounterVec

	// Upstream call latency by host
	UpstreamLatency *prometheus.HistogramVec

	// Harvest results by dataset and error kind ("ok" on success)
	HarvestOutcome *prometheus.CounterVec

	// End-to-end harvest latency by dataset
	HarvestLatency *prometheus.HistogramVec

	// Number of registry hops needed to reach the main unit
	ResolutionDepth prometheus.Histogram
}

// New creates Metrics registered with the default Prometheus registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates Metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbt_upstream_requests_total",
			Help: "Upstream registry requests by host and classified outcome",
		}, []string{"host", "outcome"}),

		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arbt_upstream_request_duration_seconds",
			Help:    "Duration of upstream registry requests",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"host"}),

		HarvestOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbt_harvest_outcomes_total",
			Help: "Harvest results by dataset and error kind",
		}, []string{"dataset", "kind"}),

		HarvestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arbt_harvest_duration_seconds",
			Help:    "Duration of a full harvest including organization resolution",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"dataset"}),

		ResolutionDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbt_resolution_depth",
			Help:    "Registry lookups needed to resolve an organization to its main unit",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 16},
		}),
	}
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(host, outcome string, d time.Duration) {
	if m != nil {
		m.UpstreamRequests.WithLabelValues(host, outcome).Inc()
		m.UpstreamLatency.WithLabelValues(host).Observe(d.Seconds())
	}
}

// ObserveHarvest records one harvest result.
func (m *Metrics) ObserveHarvest(dataset, kind string, d time.Duration) {
	if m != nil {
		m.HarvestOutcome.WithLabelValues(dataset, kind).Inc()
		m.HarvestLatency.WithLabelValues(dataset).Observe(d.Seconds())
	}
}

// ObserveResolutionDepth records how many registry records were visited.
func (m *Metrics) ObserveResolutionDepth(depth int) {
	if m != nil {
		m.ResolutionDepth.Observe(float64(depth))
	}
}
