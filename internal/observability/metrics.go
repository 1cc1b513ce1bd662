package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Aggregations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locations_aggregations_total",
		Help: "The total number of aggregation passes over the analytics payload",
	}, []string{"mode"})
	AggregationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locations_aggregation_cache_hits_total",
		Help: "The total number of aggregations served from the memo cache",
	})
	SortActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locations_sort_activations_total",
		Help: "The total number of column header activations",
	}, []string{"view", "key"})
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locations_sessions_active",
		Help: "The number of live display sessions",
	})
)
