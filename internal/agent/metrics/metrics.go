package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors are package-level so every component can record without plumbing.
// They only become visible once Register has been called.
var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orderbot",
			Name:      "turns_total",
			Help:      "Hook turns handled, by route and resulting dialog action",
		},
		[]string{"route", "action"},
	)

	TurnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orderbot",
			Name:      "turn_duration_seconds",
			Help:      "Wall time spent handling one hook turn",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"route"},
	)

	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orderbot",
			Name:      "menu_resolutions_total",
			Help:      "Menu phrase resolutions, by method (exact, similarity, miss, embed_error)",
		},
		[]string{"method"},
	)

	ParseOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orderbot",
			Name:      "llm_parse_outcomes_total",
			Help:      "Structured LLM responses, by kind (order, changes, intent) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CatalogRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orderbot",
			Name:      "catalog_refreshes_total",
			Help:      "Catalog store reads, by outcome (ok, error, stale)",
		},
		[]string{"outcome"},
	)

	LLMCostUSD = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orderbot",
			Name:      "llm_cost_usd_total",
			Help:      "Accumulated completion cost in USD",
		},
		[]string{"model"},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg exactly once per process.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			TurnsTotal,
			TurnDuration,
			ResolutionsTotal,
			ParseOutcomesTotal,
			CatalogRefreshesTotal,
			LLMCostUSD,
		)
	})
}
