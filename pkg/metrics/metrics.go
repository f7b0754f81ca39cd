// Package metrics holds the crawl counters and the optional HTTP endpoint serving them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons reported by the crawler.
const (
	SkipDepth       = "depth"
	SkipInvalidURL  = "invalid_url"
	SkipOffOrigin   = "off_origin"
	SkipQuarantined = "quarantined"
	SkipVisited     = "visited"
	SkipUninterest  = "uninteresting"
	SkipRecent      = "recently_visited"
)

// Metrics are the crawl counters. A nil *Metrics records nothing.
type Metrics struct {
	PagesFetched  prometheus.Counter
	FetchErrors   *prometheus.CounterVec
	Skips         *prometheus.CounterVec
	Stored        *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	FetchDuration prometheus.Histogram
}

// New registers the crawl counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "brew_crawler_pages_fetched_total",
			Help: "Total number of pages fetched successfully.",
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brew_crawler_fetch_errors_total",
			Help: "Total number of failed fetches.",
		}, []string{"kind"}), // kind: transport, status
		Skips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brew_crawler_skips_total",
			Help: "URLs not crawled, by reason.",
		}, []string{"reason"}),
		Stored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brew_crawler_records_stored_total",
			Help: "Page records written, by operation.",
		}, []string{"op"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "brew_crawler_store_errors_total",
			Help: "Total number of failed page writes.",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "brew_crawler_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) Fetched(d time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) FetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) Skip(reason string) {
	if m == nil {
		return
	}
	m.Skips.WithLabelValues(reason).Inc()
}

func (m *Metrics) Store(op string) {
	if m == nil {
		return
	}
	m.Stored.WithLabelValues(op).Inc()
}

func (m *Metrics) StoreError() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}
