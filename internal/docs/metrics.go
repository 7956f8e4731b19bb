package docs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"traindocs/internal/core"
)

// Metrics holds the Prometheus counters for the retrieval service.
// A nil *Metrics disables collection.
type Metrics struct {
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	upstreamFetches prometheus.Counter
	upstreamErrors  *prometheus.CounterVec
}

// NewMetrics registers the service counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "traindocs_cache_hits_total",
			Help: "File content requests served from the cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "traindocs_cache_misses_total",
			Help: "File content requests that required an upstream fetch.",
		}),
		upstreamFetches: factory.NewCounter(prometheus.CounterOpts{
			Name: "traindocs_upstream_fetches_total",
			Help: "Successful upstream file content fetches.",
		}),
		upstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "traindocs_upstream_errors_total",
			Help: "Upstream failures by error kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) fetch() {
	if m != nil {
		m.upstreamFetches.Inc()
	}
}

func (m *Metrics) failure(kind core.ErrorKind) {
	if m != nil {
		m.upstreamErrors.WithLabelValues(string(kind)).Inc()
	}
}
