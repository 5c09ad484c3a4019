package metrics

import (
	"time"

	"github.com/jupiterclapton/journal/pkg/listing"
	"github.com/prometheus/client_golang/prometheus"
)

// ListingMetrics implémente ports.ListingObserver.
type ListingMetrics struct {
	duration *prometheus.HistogramVec
	items    *prometheus.HistogramVec
	pages    *prometheus.CounterVec
}

func NewListingMetrics(reg prometheus.Registerer) *ListingMetrics {
	m := &ListingMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "journal",
			Subsystem: "listing",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching one page.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "strategy"}),
		items: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "journal",
			Subsystem: "listing",
			Name:      "page_items",
			Help:      "Number of items returned per page.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"endpoint"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "listing",
			Name:      "pages_total",
			Help:      "Pages served, by outcome (more, last, error).",
		}, []string{"endpoint", "outcome"}),
	}
	reg.MustRegister(m.duration, m.items, m.pages)
	return m
}

func (m *ListingMetrics) ObservePage(endpoint string, strategy listing.Strategy, items int, hasMore bool, elapsed time.Duration, err error) {
	m.duration.WithLabelValues(endpoint, strategy.String()).Observe(elapsed.Seconds())
	outcome := "last"
	switch {
	case err != nil:
		outcome = "error"
	case hasMore:
		outcome = "more"
	}
	m.pages.WithLabelValues(endpoint, outcome).Inc()
	if err == nil {
		m.items.WithLabelValues(endpoint).Observe(float64(items))
	}
}
