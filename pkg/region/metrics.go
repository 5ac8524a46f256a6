package region

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bizsearch_region_resolutions_total",
	Help: "Total provider set resolutions by set and deciding rule",
}, []string{"set", "reason"})
