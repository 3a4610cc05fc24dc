package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the scrape service. A nil
// *Metrics is a no-op so tests can run without a registry.
type Metrics struct {
	Registry            *prometheus.Registry
	ScrapesTotal        *prometheus.CounterVec
	ScrapeDuration      prometheus.Histogram
	SearchAttemptsTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_scrapes_total",
			Help: "Total product scrapes by outcome.",
		},
		[]string{"outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_scrape_duration_seconds",
			Help:    "Latency of a full product scrape.",
			Buckets: prometheus.DefBuckets,
		},
	)
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_search_attempts_total",
			Help: "Total search attempts by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(scrapes, duration, attempts)

	return &Metrics{
		Registry:            registry,
		ScrapesTotal:        scrapes,
		ScrapeDuration:      duration,
		SearchAttemptsTotal: attempts,
	}
}

// IncScrape increments the scrape counter for an outcome label.
func (m *Metrics) IncScrape(outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveScrapeDuration records how long one scrape took.
func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

// IncSearchAttempt increments the search attempt counter.
func (m *Metrics) IncSearchAttempt(outcome string) {
	if m == nil {
		return
	}
	m.SearchAttemptsTotal.WithLabelValues(outcome).Inc()
}
