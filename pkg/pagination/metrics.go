package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_pagination_pages_total",
		Help: "Total pages fetched by source",
	}, []string{"source"})

	paginationStopsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsearch_pagination_stops_total",
		Help: "Total pagination runs by source and stop reason",
	}, []string{"source", "reason"})
)
